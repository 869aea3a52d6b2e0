package escrow

import (
	"context"
	"time"

	"github.com/veesr/escrow/src/ledger"
	"github.com/veesr/escrow/src/utils/address"
	"github.com/veesr/escrow/src/utils/model"

	"github.com/lib/pq"
)

type CreateCampaignRequest struct {
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	TargetAmount uint64                 `json:"target_amount"`
	Location     string                 `json:"location"`
	Metrics      []string               `json:"metrics"`
	MediaUris    []string               `json:"media_uris"`
	Category     model.CampaignCategory `json:"category"`
}

// Validate checks the request before anything touches the ledger.
// Lengths are in bytes.
func (self *CreateCampaignRequest) Validate() error {
	if self.TargetAmount == 0 {
		return ErrInvalidTargetAmount
	}
	if len(self.Title) == 0 || len(self.Title) > model.MaxTitleLength {
		return ErrInvalidTitle
	}
	if len(self.Description) == 0 || len(self.Description) > model.MaxDescriptionLength {
		return ErrInvalidDescription
	}
	if len(self.Location) > model.MaxLocationLength {
		return ErrInvalidLocation
	}
	if !fits(self.Metrics, model.MaxMetrics, model.MaxMetricLength) {
		return ErrInvalidMetrics
	}
	if !fits(self.MediaUris, model.MaxMediaUris, model.MaxMediaUriLength) {
		return ErrInvalidMediaUris
	}
	if !self.Category.IsValid() {
		return ErrInvalidCategory
	}
	return nil
}

func fits(values []string, maxCount, maxLength int) bool {
	if len(values) > maxCount {
		return false
	}
	for _, v := range values {
		if len(v) > maxLength {
			return false
		}
	}
	return true
}

type CreateCampaignResult struct {
	Campaign *model.Campaign `json:"campaign"`
	Deposit  uint64          `json:"deposit"`
}

// CreateCampaign opens the one campaign the authority may have.
// The authority pays the storage deposit.
func (self *Engine) CreateCampaign(ctx context.Context, authority address.Identity, req *CreateCampaignRequest) (out *CreateCampaignResult, err error) {
	err = req.Validate()
	if err != nil {
		self.countError(KindOf(err))
		return
	}

	addr, bump, err := self.CampaignAddress(authority)
	if err != nil {
		return
	}

	now := self.clock()
	campaign := &model.Campaign{
		Address:       addr,
		Bump:          bump,
		Authority:     authority,
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		Metrics:       append(pq.StringArray{}, req.Metrics...),
		MediaUris:     append(pq.StringArray{}, req.MediaUris...),
		TargetAmount:  req.TargetAmount,
		CurrentAmount: 0,
		CreatedAt:     now.Unix(),
		Deadline:      now.Add(self.campaignDuration).Unix(),
		Status:        model.CampaignStatusActive,
		Category:      req.Category,
	}

	out = &CreateCampaignResult{Campaign: campaign}
	err = self.execute(ctx, "create", func(tx ledger.Tx) (err error) {
		out.Deposit = tx.Rent().CampaignDeposit()
		return tx.InitCampaign(authority, campaign)
	})
	if err != nil {
		return nil, err
	}

	self.report.State.CampaignsCreated.Inc()
	self.log.WithField("campaign", addr).
		WithField("title", campaign.Title).
		WithField("authority", authority).
		WithField("target", req.TargetAmount).
		WithField("deadline", time.Unix(campaign.Deadline, 0).UTC()).
		Info("Campaign created")
	return
}
