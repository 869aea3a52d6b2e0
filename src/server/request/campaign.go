package request

import (
	"strings"

	"github.com/veesr/escrow/src/escrow"
	"github.com/veesr/escrow/src/utils/model"
)

type CreateCampaign struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	TargetAmount uint64   `json:"target_amount"`
	Location     string   `json:"location"`
	Metrics      []string `json:"metrics"`
	MediaUris    []string `json:"media_uris"`

	// Case insensitive, OTHER when empty
	Category string `json:"category"`
}

func (self *CreateCampaign) ToEngine() (out *escrow.CreateCampaignRequest, err error) {
	category := model.CampaignCategoryOther
	if strings.TrimSpace(self.Category) != "" {
		category, err = model.ParseCampaignCategory(self.Category)
		if err != nil {
			return nil, escrow.ErrInvalidCategory
		}
	}

	return &escrow.CreateCampaignRequest{
		Title:        self.Title,
		Description:  self.Description,
		TargetAmount: self.TargetAmount,
		Location:     self.Location,
		Metrics:      self.Metrics,
		MediaUris:    self.MediaUris,
		Category:     category,
	}, nil
}
