package catalog

import (
	"go-shop-manager/internal/apperr"

	"github.com/ttacon/libphonenumber"
)

// NormalizePhone parses a supplier phone number, reading numbers without a
// country prefix in defaultRegion, and returns it in E.164 form.
func NormalizePhone(raw, defaultRegion string) (string, error) {
	num, err := libphonenumber.Parse(raw, defaultRegion)
	if err != nil {
		return "", apperr.Validation("phone %q: %v", raw, err)
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", apperr.Validation("phone %q is not a valid number", raw)
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}
