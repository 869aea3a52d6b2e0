package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCategory = errors.New("unknown campaign category")

// Filtering metadata only, no behavior depends on it
type CampaignCategory string

const (
	CampaignCategoryHealth         CampaignCategory = "HEALTH"
	CampaignCategoryWater          CampaignCategory = "WATER"
	CampaignCategoryEducation      CampaignCategory = "EDUCATION"
	CampaignCategoryEnergy         CampaignCategory = "ENERGY"
	CampaignCategoryInfrastructure CampaignCategory = "INFRASTRUCTURE"
	CampaignCategoryEmergency      CampaignCategory = "EMERGENCY"
	CampaignCategoryOther          CampaignCategory = "OTHER"
)

var CampaignCategories = []CampaignCategory{
	CampaignCategoryHealth,
	CampaignCategoryWater,
	CampaignCategoryEducation,
	CampaignCategoryEnergy,
	CampaignCategoryInfrastructure,
	CampaignCategoryEmergency,
	CampaignCategoryOther,
}

// ParseCampaignCategory is case insensitive, "health" and "Health" both work
func ParseCampaignCategory(s string) (CampaignCategory, error) {
	upper := CampaignCategory(strings.ToUpper(strings.TrimSpace(s)))
	for _, c := range CampaignCategories {
		if c == upper {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

func (self CampaignCategory) IsValid() bool {
	for _, c := range CampaignCategories {
		if c == self {
			return true
		}
	}
	return false
}

func (self *CampaignCategory) Scan(value interface{}) (err error) {
	switch v := value.(type) {
	case string:
		*self, err = ParseCampaignCategory(v)
	case []byte:
		*self, err = ParseCampaignCategory(string(v))
	default:
		err = fmt.Errorf("%w: cannot scan %T", ErrUnknownCategory, value)
	}
	return
}

func (self CampaignCategory) Value() (driver.Value, error) {
	return string(self), nil
}
