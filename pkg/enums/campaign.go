package enums

import "fmt"

// CampaignType identifies the incentive a campaign grants.
type CampaignType string

const (
	CampaignTypeCashback CampaignType = "CASHBACK"
	CampaignTypeGift     CampaignType = "GIFT"
)

var validCampaignTypes = []CampaignType{
	CampaignTypeCashback,
	CampaignTypeGift,
}

// String implements fmt.Stringer.
func (c CampaignType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CampaignType.
func (c CampaignType) IsValid() bool {
	for _, candidate := range validCampaignTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCampaignType converts raw input into a CampaignType.
func ParseCampaignType(value string) (CampaignType, error) {
	for _, candidate := range validCampaignTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid campaign type %q", value)
}
