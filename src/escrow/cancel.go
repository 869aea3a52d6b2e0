package escrow

import (
	"context"
	"fmt"

	"github.com/veesr/escrow/src/ledger"
	"github.com/veesr/escrow/src/utils/address"
	"github.com/veesr/escrow/src/utils/model"
)

type CancelResult struct {
	Campaign      address.Identity     `json:"campaign"`
	Closed        bool                 `json:"closed"`
	Status        model.CampaignStatus `json:"status,omitempty"`
	CurrentAmount uint64               `json:"current_amount"`
	Reclaimed     uint64               `json:"reclaimed"`
}

// CancelCampaign closes a campaign without donations right away.
// With donations the campaign becomes Cancelled and stays open for refunds.
func (self *Engine) CancelCampaign(ctx context.Context, authority, campaignAddr address.Identity) (out *CancelResult, err error) {
	out = &CancelResult{Campaign: campaignAddr}
	err = self.execute(ctx, "cancel", func(tx ledger.Tx) (err error) {
		campaign, err := tx.Campaign(campaignAddr)
		if err != nil {
			return
		}

		if campaign.Authority != authority {
			return fmt.Errorf("%w: campaign %s", ErrConstraintHasOne, campaignAddr)
		}

		if !address.Verify(campaignAddr, address.CampaignSeeds(authority), campaign.Bump, self.programId) {
			return fmt.Errorf("%w: campaign %s", ErrConstraintSeeds, campaignAddr)
		}

		out.Closed, err = canCancel(campaign, self.now())
		if err != nil {
			return
		}

		if out.Closed {
			out.Reclaimed, err = tx.Balance(campaignAddr)
			if err != nil {
				return
			}
			return tx.CloseCampaign(campaignAddr, authority)
		}

		campaign.Status = model.CampaignStatusCancelled
		out.Status = campaign.Status
		out.CurrentAmount = campaign.CurrentAmount
		return tx.SaveCampaign(campaign)
	})
	if err != nil {
		return nil, err
	}

	self.report.State.Cancellations.Inc()
	log := self.log.WithField("campaign", campaignAddr)
	if out.Closed {
		self.report.State.CampaignsClosed.Inc()
		log.Info("Campaign has no donations and is closed")
	} else {
		log.WithField("current_amount", out.CurrentAmount).Info("Campaign cancelled, donors can claim refunds")
	}
	return
}
