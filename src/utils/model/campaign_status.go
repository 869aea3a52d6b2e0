package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

var ErrUnknownStatus = errors.New("unknown campaign status")

// CREATE TYPE campaign_status AS ENUM ('ACTIVE', 'FUNDED', 'CANCELLED');
type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "ACTIVE"
	CampaignStatusFunded    CampaignStatus = "FUNDED"
	CampaignStatusCancelled CampaignStatus = "CANCELLED"
)

func ParseCampaignStatus(s string) (out CampaignStatus, err error) {
	out = CampaignStatus(s)
	switch out {
	case CampaignStatusActive, CampaignStatusFunded, CampaignStatusCancelled:
		return
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownStatus, s)
		return
	}
}

func (self *CampaignStatus) Scan(value interface{}) (err error) {
	switch v := value.(type) {
	case string:
		*self, err = ParseCampaignStatus(v)
	case []byte:
		*self, err = ParseCampaignStatus(string(v))
	default:
		err = fmt.Errorf("%w: cannot scan %T", ErrUnknownStatus, value)
	}
	return
}

func (self CampaignStatus) Value() (driver.Value, error) {
	return string(self), nil
}
