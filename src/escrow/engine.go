package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/veesr/escrow/src/ledger"
	"github.com/veesr/escrow/src/utils/address"
	"github.com/veesr/escrow/src/utils/config"
	"github.com/veesr/escrow/src/utils/logger"
	"github.com/veesr/escrow/src/utils/model"
	"github.com/veesr/escrow/src/utils/monitoring"
	"github.com/veesr/escrow/src/utils/monitoring/report"

	"github.com/sirupsen/logrus"
)

// Engine runs campaign operations, each one inside a single ledger transaction.
// It holds no state of its own, everything lives in the ledger.
type Engine struct {
	log    *logrus.Entry
	ledger ledger.Ledger
	report *report.EscrowReport

	programId        address.Identity
	fees             FeeConfig
	campaignDuration time.Duration
	clock            func() time.Time
}

func NewEngine(config *config.Config) (self *Engine, err error) {
	self = new(Engine)
	self.log = logger.NewSublogger("escrow")
	self.clock = time.Now
	self.report = &report.EscrowReport{}

	self.programId, err = address.Parse(config.Escrow.ProgramId)
	if err != nil {
		err = fmt.Errorf("program id: %w", err)
		return
	}

	platformWallet, err := address.Parse(config.Escrow.PlatformWallet)
	if err != nil {
		err = fmt.Errorf("platform wallet: %w", err)
		return
	}

	self.fees, err = NewFeeConfig(config.Escrow.FeeBps, platformWallet)
	if err != nil {
		return
	}

	if config.Escrow.CampaignDuration <= 0 {
		err = errors.New("campaign duration must be positive")
		return
	}
	self.campaignDuration = config.Escrow.CampaignDuration

	return
}

func (self *Engine) WithLedger(ledger ledger.Ledger) *Engine {
	self.ledger = ledger
	return self
}

// WithClock replaces the wall clock, used in tests
func (self *Engine) WithClock(clock func() time.Time) *Engine {
	self.clock = clock
	return self
}

func (self *Engine) WithMonitor(monitor monitoring.Monitor) *Engine {
	self.report = monitor.GetReport().Escrow
	return self
}

func (self *Engine) ProgramId() address.Identity {
	return self.programId
}

func (self *Engine) Fees() FeeConfig {
	return self.fees
}

func (self *Engine) now() int64 {
	return self.clock().Unix()
}

func (self *Engine) CampaignAddress(authority address.Identity) (address.Identity, uint8, error) {
	return address.Campaign(self.programId, authority)
}

func (self *Engine) ReceiptAddress(campaign, donor address.Identity) (address.Identity, uint8, error) {
	return address.Donation(self.programId, campaign, donor)
}

// execute runs fn atomically and counts failures by kind
func (self *Engine) execute(ctx context.Context, operation string, fn func(tx ledger.Tx) error) (err error) {
	err = self.ledger.Execute(ctx, fn)
	if err == nil {
		return
	}

	kind := KindOf(err)
	self.countError(kind)

	log := self.log.WithError(err).WithField("operation", operation)
	if kind == KindInternal {
		log.Error("Operation failed")
	} else {
		log.Debug("Operation rejected")
	}
	return
}

func (self *Engine) countError(kind Kind) {
	errs := &self.report.Errors
	switch kind {
	case KindValidation:
		errs.Validation.Inc()
	case KindState:
		errs.State.Inc()
	case KindAuthorization:
		errs.Authorization.Inc()
	case KindNotFound:
		errs.NotFound.Inc()
	case KindFunds:
		errs.Funds.Inc()
	case KindArithmetic:
		errs.Arithmetic.Inc()
	default:
		errs.Internal.Inc()
	}
}

// loadCampaign loads the account and checks it lives at the address derived from its authority
func (self *Engine) loadCampaign(tx ledger.Tx, addr address.Identity) (campaign *model.Campaign, err error) {
	campaign, err = tx.Campaign(addr)
	if err != nil {
		return
	}
	if !address.Verify(addr, address.CampaignSeeds(campaign.Authority), campaign.Bump, self.programId) {
		err = fmt.Errorf("%w: campaign %s", ErrConstraintSeeds, addr)
		return
	}
	return
}

// Account is everything the ledger knows about one address
type Account struct {
	Address  address.Identity       `json:"address"`
	Lamports uint64                 `json:"lamports"`
	Campaign *model.Campaign        `json:"campaign,omitempty"`
	Receipt  *model.DonationReceipt `json:"receipt,omitempty"`
}

// Account reads a single address. Plain wallets only have a balance.
func (self *Engine) Account(ctx context.Context, addr address.Identity) (out *Account, err error) {
	out = &Account{Address: addr}
	err = self.ledger.View(ctx, func(tx ledger.Tx) (err error) {
		out.Lamports, err = tx.Balance(addr)
		if err != nil {
			return
		}

		out.Campaign, err = tx.Campaign(addr)
		if err == nil || !errors.Is(err, ledger.ErrAccountNotFound) {
			return
		}

		out.Receipt, err = tx.Receipt(addr)
		if errors.Is(err, ledger.ErrAccountNotFound) {
			err = nil
		}
		return
	})
	if err != nil {
		return nil, err
	}
	return
}

func (self *Engine) Campaign(ctx context.Context, addr address.Identity) (out *model.Campaign, err error) {
	err = self.ledger.View(ctx, func(tx ledger.Tx) (err error) {
		out, err = tx.Campaign(addr)
		return
	})
	return
}

func (self *Engine) Receipt(ctx context.Context, addr address.Identity) (out *model.DonationReceipt, err error) {
	err = self.ledger.View(ctx, func(tx ledger.Tx) (err error) {
		out, err = tx.Receipt(addr)
		return
	})
	return
}

func (self *Engine) Balance(ctx context.Context, addr address.Identity) (out uint64, err error) {
	err = self.ledger.View(ctx, func(tx ledger.Tx) (err error) {
		out, err = tx.Balance(addr)
		return
	})
	return
}

// Airdrop funds a wallet out of thin air. Development only.
func (self *Engine) Airdrop(ctx context.Context, to address.Identity, lamports uint64) (err error) {
	if to.IsZero() {
		return fmt.Errorf("%w: zero address", address.ErrInvalidIdentity)
	}
	return self.execute(ctx, "airdrop", func(tx ledger.Tx) error {
		return tx.Airdrop(to, lamports)
	})
}
