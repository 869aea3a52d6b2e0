package model

import (
	"github.com/veesr/escrow/src/utils/address"

	"github.com/lib/pq"
)

const (
	TableCampaign = "campaigns"

	MaxTitleLength       = 50
	MaxDescriptionLength = 500
	MaxLocationLength    = 100
	MaxMetrics           = 5
	MaxMetricLength      = 50
	MaxMediaUris         = 5
	MaxMediaUriLength    = 100
)

// Campaign collects donations toward TargetAmount.
// Lamports held in custody live in the balances table under Address.
type Campaign struct {
	Address       address.Identity `gorm:"primaryKey; type:text; comment:Program derived address, seeds: campaign + authority" json:"address"`
	Bump          uint8            `gorm:"not null; comment:Bump seed of the derived address" json:"bump"`
	Authority     address.Identity `gorm:"not null; type:text; comment:Creator, the only one allowed to withdraw or cancel" json:"authority"`
	Title         string           `gorm:"not null" json:"title"`
	Description   string           `gorm:"not null" json:"description"`
	Location      string           `gorm:"not null" json:"location"`
	Metrics       pq.StringArray   `gorm:"type:text[]" json:"metrics"`
	MediaUris     pq.StringArray   `gorm:"type:text[]" json:"media_uris"`
	TargetAmount  uint64           `gorm:"not null" json:"target_amount"`
	CurrentAmount uint64           `gorm:"not null; comment:Sum of amounts of all live receipts" json:"current_amount"`
	CreatedAt     int64            `gorm:"not null; autoCreateTime:false; comment:Unix timestamp" json:"created_at"`
	Deadline      int64            `gorm:"not null; comment:Unix timestamp, donations are accepted strictly before it" json:"deadline"`
	Status        CampaignStatus   `gorm:"not null; type:campaign_status" json:"status"`
	Category      CampaignCategory `gorm:"not null" json:"category"`
}

func (Campaign) TableName() string {
	return TableCampaign
}

// Clone returns a deep copy, string slices included
func (self *Campaign) Clone() *Campaign {
	out := *self
	out.Metrics = append(pq.StringArray(nil), self.Metrics...)
	out.MediaUris = append(pq.StringArray(nil), self.MediaUris...)
	return &out
}
