package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var DefaultRegions = []string{
	"US",
	"GB",
}

// NormalizePhone formats phone as E.164. Numbers without a country prefix
// are tried against each region in order; the first valid parse wins.
func NormalizePhone(phone string, regions ...string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}
	if len(regions) == 0 {
		regions = DefaultRegions
	}

	for _, region := range regions {
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err == nil && phonenumbers.IsValidNumber(parsedNumber) {
			return phonenumbers.Format(parsedNumber, phonenumbers.E164)
		}
	}
	return ""
}
