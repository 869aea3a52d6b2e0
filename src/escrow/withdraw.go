package escrow

import (
	"context"
	"fmt"

	"github.com/veesr/escrow/src/ledger"
	"github.com/veesr/escrow/src/utils/address"
)

type WithdrawRequest struct {
	Campaign address.Identity `json:"campaign"`

	// Receives the campaign total minus the fee
	Executor address.Identity `json:"executor"`

	// Must be the configured platform wallet
	PlatformWallet address.Identity `json:"platform_wallet"`
}

type WithdrawResult struct {
	Campaign         address.Identity `json:"campaign"`
	Total            uint64           `json:"total"`
	Fee              uint64           `json:"fee"`
	AmountToExecutor uint64           `json:"amount_to_executor"`

	// Deposit and any other lamports left on the account, returned to the authority
	Reclaimed uint64 `json:"reclaimed"`
}

// WithdrawAndComplete pays out a funded campaign and closes its account
func (self *Engine) WithdrawAndComplete(ctx context.Context, authority address.Identity, req *WithdrawRequest) (out *WithdrawResult, err error) {
	if req.Executor.IsZero() {
		self.countError(KindValidation)
		return nil, fmt.Errorf("%w: zero executor", address.ErrInvalidIdentity)
	}

	out = &WithdrawResult{Campaign: req.Campaign}
	err = self.execute(ctx, "withdraw", func(tx ledger.Tx) (err error) {
		campaign, err := tx.Campaign(req.Campaign)
		if err != nil {
			return
		}

		if campaign.Authority != authority {
			return fmt.Errorf("%w: campaign %s", ErrConstraintHasOne, req.Campaign)
		}

		if !address.Verify(req.Campaign, address.CampaignSeeds(authority), campaign.Bump, self.programId) {
			return fmt.Errorf("%w: campaign %s", ErrConstraintSeeds, req.Campaign)
		}

		if req.PlatformWallet != self.fees.PlatformWallet {
			return ErrInvalidPlatformWallet
		}

		err = canWithdraw(campaign)
		if err != nil {
			return
		}

		out.Total = campaign.CurrentAmount
		out.Fee, out.AmountToExecutor, err = self.fees.Split(campaign.CurrentAmount)
		if err != nil {
			return
		}

		if out.Fee > 0 {
			err = tx.Transfer(req.Campaign, req.PlatformWallet, out.Fee)
			if err != nil {
				return
			}
		}

		if out.AmountToExecutor > 0 {
			err = tx.Transfer(req.Campaign, req.Executor, out.AmountToExecutor)
			if err != nil {
				return
			}
		}

		out.Reclaimed, err = tx.Balance(req.Campaign)
		if err != nil {
			return
		}

		return tx.CloseCampaign(req.Campaign, authority)
	})
	if err != nil {
		return nil, err
	}

	self.report.State.Withdrawals.Inc()
	self.report.State.WithdrawnLamports.Add(out.AmountToExecutor)
	self.report.State.FeesLamports.Add(out.Fee)
	self.report.State.CampaignsClosed.Inc()
	self.log.WithField("campaign", req.Campaign).
		WithField("executor", req.Executor).
		WithField("amount_to_executor", out.AmountToExecutor).
		WithField("fee", out.Fee).
		Info("Withdrawal complete")
	return
}
