package escrow

import (
	"fmt"

	"github.com/veesr/escrow/src/utils/model"
)

// Every check switches over all statuses, a status added later won't compile into a silent pass

func unknownStatus(status model.CampaignStatus) error {
	return fmt.Errorf("%w: %q", model.ErrUnknownStatus, string(status))
}

// Donations are accepted strictly before the deadline
func canDonate(campaign *model.Campaign, now int64) error {
	switch campaign.Status {
	case model.CampaignStatusActive:
	case model.CampaignStatusFunded, model.CampaignStatusCancelled:
		return ErrCampaignNotActive
	default:
		return unknownStatus(campaign.Status)
	}

	if now >= campaign.Deadline {
		return ErrCampaignExpired
	}
	return nil
}

func canWithdraw(campaign *model.Campaign) error {
	switch campaign.Status {
	case model.CampaignStatusFunded:
		return nil
	case model.CampaignStatusActive, model.CampaignStatusCancelled:
		return ErrCampaignNotFunded
	default:
		return unknownStatus(campaign.Status)
	}
}

// canCancel returns true when the cancellation closes the account
func canCancel(campaign *model.Campaign, now int64) (closes bool, err error) {
	isExpired := now > campaign.Deadline

	switch campaign.Status {
	case model.CampaignStatusActive:
	case model.CampaignStatusFunded:
		return false, ErrCannotCancelCampaign
	case model.CampaignStatusCancelled:
		// Fully refunded campaigns can be closed at any time
		if campaign.CurrentAmount != 0 && !isExpired {
			return false, ErrCannotCancelCampaign
		}
	default:
		return false, unknownStatus(campaign.Status)
	}

	return campaign.CurrentAmount == 0, nil
}

func canRefund(campaign *model.Campaign) error {
	switch campaign.Status {
	case model.CampaignStatusCancelled:
		return nil
	case model.CampaignStatusActive, model.CampaignStatusFunded:
		return ErrCampaignNotCancelled
	default:
		return unknownStatus(campaign.Status)
	}
}
