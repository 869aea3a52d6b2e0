package escrow

import (
	"context"
	"fmt"

	"github.com/veesr/escrow/src/ledger"
	"github.com/veesr/escrow/src/utils/address"
)

type RefundResult struct {
	Campaign      address.Identity `json:"campaign"`
	Receipt       address.Identity `json:"receipt"`
	Amount        uint64           `json:"amount"`
	CurrentAmount uint64           `json:"current_amount"`

	// Receipt's storage deposit, returned to the donor
	Reclaimed uint64 `json:"reclaimed"`
}

// ClaimRefund returns the donation documented by the receipt and destroys the receipt.
// Zero receiptAddr means the receipt derived from the campaign and the donor.
func (self *Engine) ClaimRefund(ctx context.Context, donor, campaignAddr, receiptAddr address.Identity) (out *RefundResult, err error) {
	if receiptAddr.IsZero() {
		receiptAddr, _, err = self.ReceiptAddress(campaignAddr, donor)
		if err != nil {
			return
		}
	}

	out = &RefundResult{Campaign: campaignAddr, Receipt: receiptAddr}
	err = self.execute(ctx, "refund", func(tx ledger.Tx) (err error) {
		campaign, err := self.loadCampaign(tx, campaignAddr)
		if err != nil {
			return
		}

		receipt, err := tx.Receipt(receiptAddr)
		if err != nil {
			return
		}

		if receipt.Campaign != campaignAddr {
			return fmt.Errorf("%w: receipt %s belongs to campaign %s", ErrConstraintHasOne, receiptAddr, receipt.Campaign)
		}

		if !address.Verify(receiptAddr, address.DonationSeeds(campaignAddr, receipt.Donor), receipt.Bump, self.programId) {
			return fmt.Errorf("%w: receipt %s", ErrConstraintSeeds, receiptAddr)
		}

		err = canRefund(campaign)
		if err != nil {
			return
		}

		if receipt.Donor != donor {
			return ErrInvalidRefundRequest
		}

		currentAmount, err := checkedSub(campaign.CurrentAmount, receipt.Amount)
		if err != nil {
			return
		}

		err = tx.Transfer(campaignAddr, donor, receipt.Amount)
		if err != nil {
			return
		}

		campaign.CurrentAmount = currentAmount
		err = tx.SaveCampaign(campaign)
		if err != nil {
			return
		}

		out.Reclaimed, err = tx.Balance(receiptAddr)
		if err != nil {
			return
		}

		out.Amount = receipt.Amount
		out.CurrentAmount = campaign.CurrentAmount
		return tx.CloseReceipt(receiptAddr, donor)
	})
	if err != nil {
		return nil, err
	}

	self.report.State.Refunds.Inc()
	self.report.State.RefundedLamports.Add(out.Amount)
	self.log.WithField("campaign", campaignAddr).
		WithField("donor", donor).
		WithField("amount", out.Amount).
		Info("Refund successful")
	return
}
