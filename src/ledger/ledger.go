package ledger

import (
	"context"
	"errors"

	"github.com/veesr/escrow/src/utils/address"
	"github.com/veesr/escrow/src/utils/config"
	"github.com/veesr/escrow/src/utils/model"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountAlreadyInUse = errors.New("account already in use")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrBalanceOverflow     = errors.New("balance overflow")
	ErrPanic               = errors.New("transaction panicked")
	ErrLedgerClosed        = errors.New("ledger closed")
)

// Ledger executes a function as one atomic transaction.
// Either every change made through Tx is persisted or none is.
type Ledger interface {
	Execute(ctx context.Context, fn func(tx Tx) error) error

	// View runs fn with a transaction that is always rolled back
	View(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of host facilities available to a single operation
type Tx interface {
	Campaign(addr address.Identity) (*model.Campaign, error)

	// InitCampaign creates the account, payer funds its storage deposit.
	// Fails with ErrAccountAlreadyInUse if anything lives at the address.
	InitCampaign(payer address.Identity, campaign *model.Campaign) error
	SaveCampaign(campaign *model.Campaign) error

	// CloseCampaign moves all lamports held by the account to recipient and removes it
	CloseCampaign(addr, recipient address.Identity) error

	Receipt(addr address.Identity) (*model.DonationReceipt, error)
	InitReceipt(payer address.Identity, receipt *model.DonationReceipt) error
	CloseReceipt(addr, recipient address.Identity) error

	// Transfer moves lamports between any two addresses
	Transfer(from, to address.Identity, lamports uint64) error
	Balance(addr address.Identity) (uint64, error)

	// Airdrop mints lamports, development only
	Airdrop(to address.Identity, lamports uint64) error

	Rent() Rent
}

// Rent computes storage deposits the same way for every account
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  uint64
}

// Bytes of account metadata charged on top of the data
const AccountStorageOverhead = 128

func NewRent(config *config.Ledger) Rent {
	return Rent{
		LamportsPerByteYear: config.LamportsPerByteYear,
		ExemptionThreshold:  config.ExemptionThreshold,
	}
}

func (self Rent) MinimumBalance(space uint64) uint64 {
	return (AccountStorageOverhead + space) * self.LamportsPerByteYear * self.ExemptionThreshold
}

func (self Rent) CampaignDeposit() uint64 {
	return self.MinimumBalance(model.CampaignSpace)
}

func (self Rent) ReceiptDeposit() uint64 {
	return self.MinimumBalance(model.DonationReceiptSpace)
}
