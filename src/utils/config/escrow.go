package config

import (
	"time"

	"github.com/spf13/viper"
)

type Escrow struct {
	// Id of the escrow program, part of every derived address
	ProgramId string

	// Wallet receiving the platform fee. Withdrawals naming any other wallet are rejected.
	PlatformWallet string

	// Platform fee in basis points, 300 is 3%
	FeeBps uint64

	// Time between campaign creation and its deadline
	CampaignDuration time.Duration
}

func setEscrowDefaults() {
	viper.SetDefault("Escrow.ProgramId", "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS")
	viper.SetDefault("Escrow.PlatformWallet", "Gf2t3iS1MTkLpn3d2hWqrM3p4Wzt5iWj2iFv2a4v5z7b")
	viper.SetDefault("Escrow.FeeBps", "300")
	viper.SetDefault("Escrow.CampaignDuration", "720h")
}
