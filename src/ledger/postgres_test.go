package ledger

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/veesr/escrow/src/utils/address"
	"github.com/veesr/escrow/src/utils/config"
	"github.com/veesr/escrow/src/utils/model"

	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestIsSerializationFailure(t *testing.T) {
	require.True(t, IsSerializationFailure(&pgconn.PgError{Code: "40001"}))
	require.True(t, IsSerializationFailure(&pgconn.PgError{Code: "40P01"}))
	require.False(t, IsSerializationFailure(&pgconn.PgError{Code: "23505"}))
	require.False(t, IsSerializationFailure(errors.New("40001")))
}

// Needs a running database, e.g. ESCROW_DATABASE_HOST=127.0.0.1 ESCROW_DATABASE_PORT=5432
func TestPostgresTestSuite(t *testing.T) {
	if os.Getenv("ESCROW_DATABASE_HOST") == "" {
		t.Skip("ESCROW_DATABASE_HOST not set")
	}
	suite.Run(t, new(PostgresTestSuite))
}

type PostgresTestSuite struct {
	suite.Suite
	ctx    context.Context
	config *config.Config
	ledger *Postgres
}

func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.config = config.Default()

	db, err := model.NewConnection(s.ctx, s.config, "ledger-test")
	require.Nil(s.T(), err)

	s.ledger = NewPostgres(s.config).WithDB(db)
}

func (s *PostgresTestSuite) TestRollback() {
	addr, err := address.FromBytes(make([]byte, 32))
	require.Nil(s.T(), err)
	addr[0] = 0xAB

	failure := errors.New("fail")
	err = s.ledger.Execute(s.ctx, func(tx Tx) error {
		require.Nil(s.T(), tx.Airdrop(addr, 10))
		return failure
	})
	require.ErrorIs(s.T(), err, failure)

	err = s.ledger.View(s.ctx, func(tx Tx) error {
		balance, err := tx.Balance(addr)
		require.Nil(s.T(), err)
		require.Equal(s.T(), uint64(0), balance)
		return nil
	})
	require.Nil(s.T(), err)
}
