package model

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/veesr/escrow/src/utils/build_info"
	"github.com/veesr/escrow/src/utils/config"
	l "github.com/veesr/escrow/src/utils/logger"
	"github.com/veesr/escrow/src/utils/model/sql_migrations"

	migrate "github.com/rubenv/sql-migrate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(ctx context.Context, dbConfig *config.Database, username, password, applicationName string) (self *gorm.DB, err error) {
	log := l.NewSublogger("db")

	logger := logger.New(log,
		logger.Config{
			SlowThreshold:             500 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Error,           // Log level
			IgnoreRecordNotFoundError: true,                   // Ignore ErrRecordNotFound error for logger
			Colorful:                  false,                  // Disable color
		},
	)

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=%s/escrow/%s",
		dbConfig.Host,
		dbConfig.Port,
		username,
		password,
		dbConfig.Name,
		dbConfig.SslMode,
		applicationName,
		build_info.Version,
	)

	if dbConfig.CaCertPath != "" && dbConfig.ClientKeyPath != "" && dbConfig.ClientCertPath != "" {
		log.Info("Using SSL certificates from files")
		dsn += fmt.Sprintf(" sslcert=%s sslkey=%s sslrootcert=%s", dbConfig.ClientCertPath, dbConfig.ClientKeyPath, dbConfig.CaCertPath)
	} else if dbConfig.ClientKey != "" && dbConfig.ClientCert != "" && dbConfig.CaCert != "" {
		log.Info("Using SSL certificates from variables")

		var keyFile, certFile, caFile string
		keyFile, err = writeTemp("key.pem", dbConfig.ClientKey)
		if err != nil {
			return
		}
		defer os.Remove(keyFile)

		certFile, err = writeTemp("cert.pem", dbConfig.ClientCert)
		if err != nil {
			return
		}
		defer os.Remove(certFile)

		caFile, err = writeTemp("ca.pem", dbConfig.CaCert)
		if err != nil {
			return
		}
		defer os.Remove(caFile)

		dsn += fmt.Sprintf(" sslcert=%s sslkey=%s sslrootcert=%s", certFile, keyFile, caFile)
	}

	self, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger})
	if err != nil {
		return
	}

	db, err := self.DB()
	if err != nil {
		return
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxIdleTime(dbConfig.ConnMaxIdleTime)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)
	err = Ping(ctx, dbConfig, self)
	if err != nil {
		return
	}

	return
}

func writeTemp(pattern, content string) (name string, err error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return
	}
	defer f.Close()

	name = f.Name()
	_, err = f.WriteString(content)
	if err != nil {
		os.Remove(name)
	}
	return
}

func NewConnection(ctx context.Context, config *config.Config, applicationName string) (self *gorm.DB, err error) {
	err = Migrate(ctx, config)
	if err != nil {
		return
	}

	return Connect(ctx, &config.Database, config.Database.User, config.Database.Password, applicationName)
}

// Migrate applies all pending migrations
func Migrate(ctx context.Context, config *config.Config) (err error) {
	_, err = MigrateDirection(ctx, config, migrate.Up)
	return
}

// MigrateDirection applies embedded migrations in the given direction, returns the number of applied migrations
func MigrateDirection(ctx context.Context, config *config.Config, direction migrate.MigrationDirection) (n int, err error) {
	log := l.NewSublogger("db-migrate")

	if config.Database.MigrationUser == "" || config.Database.MigrationPassword == "" {
		log.Info("Migration user not set, skipping migrations")
		return
	}

	migrations := &migrate.HttpFileSystemMigrationSource{
		FileSystem: http.FS(sql_migrations.FS),
	}

	// Use special migration user
	self, err := Connect(ctx, &config.Database, config.Database.MigrationUser, config.Database.MigrationPassword, "migration")
	if err != nil {
		return
	}

	db, err := self.DB()
	if err != nil {
		return
	}
	defer db.Close()

	n, err = migrate.Exec(db, "postgres", migrations, direction)
	if err != nil {
		return
	}

	log.WithField("num", n).WithField("direction", direction).Info("Applied migrations")
	return
}

func Ping(ctx context.Context, dbConfig *config.Database, db *gorm.DB) (err error) {
	if dbConfig.PingTimeout < 0 {
		// Ping disabled
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbConfig.PingTimeout)
	defer cancel()

	return sqlDB.PingContext(dbCtx)
}
