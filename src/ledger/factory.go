package ledger

import (
	"context"
	"fmt"

	"github.com/veesr/escrow/src/utils/config"
	"github.com/veesr/escrow/src/utils/model"
	"github.com/veesr/escrow/src/utils/task"
)

// New creates the ledger backend selected in the config.
// The returned function releases the backend.
func New(ctx context.Context, conf *config.Config) (out Ledger, release func(), err error) {
	switch conf.Ledger.Backend {
	case config.LedgerBackendMemory:
		memory := NewMemory(conf)
		return memory, memory.Close, nil
	case config.LedgerBackendPostgres:
		db, err := model.NewConnection(ctx, conf, "escrow")
		if err != nil {
			return nil, nil, err
		}

		err = task.NewRetry().
			WithContext(ctx).
			WithMaxElapsedTime(conf.Ledger.MaxElapsedTime).
			Run(func() error {
				return model.Ping(ctx, &conf.Database, db)
			})
		if err != nil {
			return nil, nil, err
		}

		release = func() {
			sqlDB, err := db.DB()
			if err == nil {
				_ = sqlDB.Close()
			}
		}
		return NewPostgres(conf).WithDB(db), release, nil
	default:
		return nil, nil, fmt.Errorf("unknown ledger backend: %q", conf.Ledger.Backend)
	}
}
