// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "IN"

// Indian mobile numbers are 10 digits with a leading 6-9.
var mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// IsValidMobile reports whether input is a 10-digit Indian mobile number.
func IsValidMobile(input string) bool {
	return mobilePattern.MatchString(strings.TrimSpace(input))
}

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}
