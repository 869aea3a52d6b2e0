package config

import (
	"bytes"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const ENV_PREFIX = "ESCROW_"

// Config stores global configuration
type Config struct {
	// Is development mode on. Enables airdrops.
	IsDevelopment bool

	// REST API address
	RESTListenAddress string

	// Maximum time the service will be closing before stop is forced.
	StopTimeout time.Duration

	// Logging level
	LogLevel string

	Escrow   Escrow
	Ledger   Ledger
	Database Database
	Server   Server
	Profiler Profiler
}

func setDefaults() {
	viper.SetDefault("IsDevelopment", "false")
	viper.SetDefault("RESTListenAddress", ":7777")
	viper.SetDefault("LogLevel", "DEBUG")
	viper.SetDefault("StopTimeout", "30s")

	setEscrowDefaults()
	setLedgerDefaults()
	setDatabaseDefaults()
	setServerDefaults()
	setProfilerDefaults()
}

func Default() (config *Config) {
	config, _ = Load("")
	return
}

// BindEnv visits every field and registers an upper snake case env name for it, e.g. ESCROW_ESCROW_FEE_BPS
func BindEnv(path []string, val reflect.Value) {
	if val.Kind() != reflect.Struct {
		key := strings.Join(path, ".")
		env := ENV_PREFIX + strcase.ToScreamingSnake(strings.Join(path, "_"))
		err := viper.BindEnv(key, env)
		if err != nil {
			panic(err)
		}
		return
	}

	// Iterates over struct fields
	for i := 0; i < val.NumField(); i++ {
		newPath := make([]string, len(path))
		copy(newPath, path)
		newPath = append(newPath, val.Type().Field(i).Name)
		BindEnv(newPath, val.Field(i))
	}
}

// Load configuration from file and env
func Load(filename string) (config *Config, err error) {
	viper.SetConfigType("json")

	setDefaults()

	// Works with embedded structs
	BindEnv([]string{}, reflect.ValueOf(Config{}))

	// Empty filename means we use default values
	if filename != "" {
		var content []byte
		/* #nosec */
		content, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}

		err = viper.ReadConfig(bytes.NewBuffer(content))
		if err != nil {
			return nil, err
		}
	}

	config = new(Config)
	err = viper.Unmarshal(config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, err
	}

	return
}
