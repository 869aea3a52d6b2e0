package model

import "github.com/veesr/escrow/src/utils/address"

const (
	TableBalance = "balances"
)

// Native currency held by an address, wallets and program accounts alike
type Balance struct {
	Address  address.Identity `gorm:"primaryKey; type:text" json:"address"`
	Lamports uint64           `gorm:"not null" json:"lamports"`
}

func (Balance) TableName() string {
	return TableBalance
}
