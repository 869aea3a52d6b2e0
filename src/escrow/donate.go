package escrow

import (
	"context"

	"github.com/veesr/escrow/src/ledger"
	"github.com/veesr/escrow/src/utils/address"
	"github.com/veesr/escrow/src/utils/model"
)

type DonationResult struct {
	Receipt       *model.DonationReceipt `json:"receipt"`
	CurrentAmount uint64                 `json:"current_amount"`
	Status        model.CampaignStatus   `json:"status"`
	Deposit       uint64                 `json:"deposit"`
}

// DonateToCampaign moves amount from the donor into campaign custody and issues a receipt.
// A donor gets one receipt per campaign, a second donation fails with ErrAccountAlreadyInUse.
func (self *Engine) DonateToCampaign(ctx context.Context, donor, campaignAddr address.Identity, amount uint64) (out *DonationResult, err error) {
	if amount == 0 {
		self.countError(KindValidation)
		return nil, ErrInvalidDonationAmount
	}

	receiptAddr, bump, err := self.ReceiptAddress(campaignAddr, donor)
	if err != nil {
		return
	}

	out = new(DonationResult)
	err = self.execute(ctx, "donate", func(tx ledger.Tx) (err error) {
		campaign, err := self.loadCampaign(tx, campaignAddr)
		if err != nil {
			return
		}

		now := self.now()
		err = canDonate(campaign, now)
		if err != nil {
			return
		}

		currentAmount, err := checkedAdd(campaign.CurrentAmount, amount)
		if err != nil {
			return
		}

		receipt := &model.DonationReceipt{
			Address:   receiptAddr,
			Bump:      bump,
			Donor:     donor,
			Campaign:  campaignAddr,
			Amount:    amount,
			Timestamp: now,
		}
		err = tx.InitReceipt(donor, receipt)
		if err != nil {
			return
		}

		err = tx.Transfer(donor, campaignAddr, amount)
		if err != nil {
			return
		}

		campaign.CurrentAmount = currentAmount
		if campaign.CurrentAmount >= campaign.TargetAmount {
			campaign.Status = model.CampaignStatusFunded
		}

		err = tx.SaveCampaign(campaign)
		if err != nil {
			return
		}

		out.Receipt = receipt
		out.CurrentAmount = campaign.CurrentAmount
		out.Status = campaign.Status
		out.Deposit = tx.Rent().ReceiptDeposit()
		return
	})
	if err != nil {
		return nil, err
	}

	self.report.State.Donations.Inc()
	self.report.State.DonatedLamports.Add(amount)
	self.log.WithField("campaign", campaignAddr).
		WithField("donor", donor).
		WithField("amount", amount).
		Info("Donation received, receipt created")

	if out.Status == model.CampaignStatusFunded {
		self.report.State.CampaignsFunded.Inc()
		self.log.WithField("campaign", campaignAddr).
			WithField("current_amount", out.CurrentAmount).
			Info("Campaign is fully funded")
	}
	return
}
