package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/veesr/escrow/src/escrow"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (out *bytes.Buffer, err error) {
	out = new(bytes.Buffer)
	RootCmd.SetOut(out)
	RootCmd.SetArgs(args)
	err = RootCmd.Execute()
	return
}

func TestAccountCommand(t *testing.T) {
	out, err := run(t, "account", "Gf2t3iS1MTkLpn3d2hWqrM3p4Wzt5iWj2iFv2a4v5z7b")
	require.Nil(t, err)

	var account escrow.Account
	require.Nil(t, json.Unmarshal(out.Bytes(), &account))
	require.Equal(t, "Gf2t3iS1MTkLpn3d2hWqrM3p4Wzt5iWj2iFv2a4v5z7b", account.Address.String())
	require.Equal(t, uint64(0), account.Lamports)
	require.Nil(t, account.Campaign)
}

func TestCreateWithoutFunds(t *testing.T) {
	// Memory ledger starts empty, the signer can't pay the deposit
	_, err := run(t, "create",
		"--signer", "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS",
		"--title", "Library books",
		"--description", "Books for the village school",
		"--target", "5000",
		"--category", "education")
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "InsufficientFunds")
}

func TestCreateValidation(t *testing.T) {
	_, err := run(t, "create",
		"--signer", "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS",
		"--title", "Library books",
		"--description", "Books for the village school",
		"--target", "0")
	require.ErrorIs(t, err, escrow.ErrInvalidTargetAmount)
}
