package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	LedgerBackendMemory   = "memory"
	LedgerBackendPostgres = "postgres"
)

type Ledger struct {
	// memory or postgres
	Backend string

	// Storage deposit parameters, deposit = (128 + space) * LamportsPerByteYear * ExemptionThreshold
	LamportsPerByteYear uint64
	ExemptionThreshold  uint64

	// Retrying transactions that failed because of concurrent updates. 0 is no limit
	MaxElapsedTime time.Duration
	MaxInterval    time.Duration
}

func setLedgerDefaults() {
	viper.SetDefault("Ledger.Backend", LedgerBackendMemory)
	viper.SetDefault("Ledger.LamportsPerByteYear", "3480")
	viper.SetDefault("Ledger.ExemptionThreshold", "2")
	viper.SetDefault("Ledger.MaxElapsedTime", "10s")
	viper.SetDefault("Ledger.MaxInterval", "500ms")
}
