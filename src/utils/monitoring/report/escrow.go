package report

import (
	"go.uber.org/atomic"
)

// Failed operations grouped by error kind
type EscrowErrors struct {
	Validation    atomic.Uint64 `json:"validation"`
	State         atomic.Uint64 `json:"state"`
	Authorization atomic.Uint64 `json:"authorization"`
	NotFound      atomic.Uint64 `json:"not_found"`
	Funds         atomic.Uint64 `json:"funds"`
	Arithmetic    atomic.Uint64 `json:"arithmetic"`
	Internal      atomic.Uint64 `json:"internal"`
}

type EscrowState struct {
	CampaignsCreated atomic.Uint64 `json:"campaigns_created"`
	CampaignsFunded  atomic.Uint64 `json:"campaigns_funded"`
	CampaignsClosed  atomic.Uint64 `json:"campaigns_closed"`

	Donations       atomic.Uint64 `json:"donations"`
	DonatedLamports atomic.Uint64 `json:"donated_lamports"`

	Withdrawals       atomic.Uint64 `json:"withdrawals"`
	WithdrawnLamports atomic.Uint64 `json:"withdrawn_lamports"`
	FeesLamports      atomic.Uint64 `json:"fees_lamports"`

	Cancellations atomic.Uint64 `json:"cancellations"`

	Refunds          atomic.Uint64 `json:"refunds"`
	RefundedLamports atomic.Uint64 `json:"refunded_lamports"`

	AverageOperationsPerMinute atomic.Float64 `json:"average_operations_per_minute"`
}

type EscrowReport struct {
	State  EscrowState  `json:"state"`
	Errors EscrowErrors `json:"errors"`
}

// Successful operations of all kinds
func (self *EscrowReport) Operations() uint64 {
	return self.State.CampaignsCreated.Load() +
		self.State.Donations.Load() +
		self.State.Withdrawals.Load() +
		self.State.Cancellations.Load() +
		self.State.Refunds.Load()
}
