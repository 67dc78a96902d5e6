package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Phone formats phone as E.164, reading numbers without a country prefix
// in defaultRegion. Unparseable or invalid numbers yield "".
func Phone(phone, defaultRegion string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(phone, strings.ToUpper(defaultRegion))
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return ""
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

// PhoneStrategy binds Phone to a region for use with Slice.
func PhoneStrategy(defaultRegion string) Strategy {
	return func(s string) string { return Phone(s, defaultRegion) }
}
