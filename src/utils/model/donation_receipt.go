package model

import "github.com/veesr/escrow/src/utils/address"

const (
	TableDonationReceipt = "donation_receipts"
)

// DonationReceipt documents one donor's contribution and entitles the donor to a refund.
// It's removed when the refund is paid.
type DonationReceipt struct {
	Address   address.Identity `gorm:"primaryKey; type:text; comment:Program derived address, seeds: donation + campaign + donor" json:"address"`
	Bump      uint8            `gorm:"not null" json:"bump"`
	Donor     address.Identity `gorm:"not null; type:text" json:"donor"`
	Campaign  address.Identity `gorm:"not null; type:text; index" json:"campaign"`
	Amount    uint64           `gorm:"not null" json:"amount"`
	Timestamp int64            `gorm:"not null; comment:Unix timestamp" json:"timestamp"`
}

func (DonationReceipt) TableName() string {
	return TableDonationReceipt
}

func (self *DonationReceipt) Clone() *DonationReceipt {
	out := *self
	return &out
}
