package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

type ConfigTestSuite struct {
	suite.Suite
}

func (s *ConfigTestSuite) TearDownTest() {
	viper.Reset()
}

func (s *ConfigTestSuite) TestDefaults() {
	config := Default()
	require.NotNil(s.T(), config)
	require.Equal(s.T(), uint64(300), config.Escrow.FeeBps)
	require.Equal(s.T(), 30*24*time.Hour, config.Escrow.CampaignDuration)
	require.Equal(s.T(), LedgerBackendMemory, config.Ledger.Backend)
	require.Equal(s.T(), uint64(3480), config.Ledger.LamportsPerByteYear)
	require.Equal(s.T(), uint64(2), config.Ledger.ExemptionThreshold)
	require.Equal(s.T(), 30*time.Second, config.StopTimeout)
	require.Equal(s.T(), 5*time.Minute, config.Server.SignatureMaxAge)
	require.Equal(s.T(), uint16(5432), config.Database.Port)
	require.False(s.T(), config.IsDevelopment)
}

func (s *ConfigTestSuite) TestEnv() {
	s.T().Setenv("ESCROW_ESCROW_FEE_BPS", "250")
	s.T().Setenv("ESCROW_LEDGER_BACKEND", "postgres")
	s.T().Setenv("ESCROW_IS_DEVELOPMENT", "true")

	config, err := Load("")
	require.Nil(s.T(), err)
	require.Equal(s.T(), uint64(250), config.Escrow.FeeBps)
	require.Equal(s.T(), LedgerBackendPostgres, config.Ledger.Backend)
	require.True(s.T(), config.IsDevelopment)
}

func (s *ConfigTestSuite) TestFile() {
	filename := filepath.Join(s.T().TempDir(), "config.json")
	err := os.WriteFile(filename, []byte(`{"Escrow": {"FeeBps": 100, "CampaignDuration": "1h"}, "LogLevel": "info"}`), 0600)
	require.Nil(s.T(), err)

	config, err := Load(filename)
	require.Nil(s.T(), err)
	require.Equal(s.T(), uint64(100), config.Escrow.FeeBps)
	require.Equal(s.T(), time.Hour, config.Escrow.CampaignDuration)
	require.Equal(s.T(), "info", config.LogLevel)

	// Not overridden
	require.Equal(s.T(), "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS", config.Escrow.ProgramId)
}

func (s *ConfigTestSuite) TestMissingFile() {
	_, err := Load(filepath.Join(s.T().TempDir(), "missing.json"))
	require.Error(s.T(), err)
}
