// Package tracking allocates and parses organization-prefixed tracking numbers.
//
// A tracking number is INITIALS-SUFFIX, where the initials are derived from the
// organization's display name and the suffix is caller supplied. Initials may
// collide across organizations; uniqueness is enforced by the shipment store on
// (org_id, tracking_number), not here.
package tracking

import (
	"errors"
	"strings"
	"unicode"
)

var (
	ErrInvalidName     = errors.New("organization name has no usable letters")
	ErrEmptySuffix     = errors.New("tracking suffix is required")
	ErrMalformedNumber = errors.New("malformed tracking number")
)

// DeriveInitials derives a 1-4 character uppercase prefix from an
// organization name.
func DeriveInitials(orgName string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z':
			return r
		case r >= 'a' && r <= 'z':
			return r - ('a' - 'A')
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, orgName)

	words := strings.Fields(cleaned)
	if len(words) == 0 {
		return "", ErrInvalidName
	}

	if len(words) == 1 {
		word := words[0]
		if len(word) > 3 {
			word = word[:3]
		}
		return word, nil
	}

	var b strings.Builder
	for _, word := range words {
		b.WriteByte(word[0])
		if b.Len() == 4 {
			break
		}
	}
	return b.String(), nil
}

// Compose joins the organization-derived initials with a caller-supplied
// suffix into a full tracking number.
func Compose(orgName, suffix string) (string, error) {
	initials, err := DeriveInitials(orgName)
	if err != nil {
		return "", err
	}

	suffix = strings.TrimSpace(suffix)
	if suffix == "" {
		return "", ErrEmptySuffix
	}

	return initials + "-" + suffix, nil
}

// Parse splits a tracking number into initials and suffix. Everything after
// the first hyphen belongs to the suffix, including further hyphens.
func Parse(trackingNumber string) (initials, suffix string, err error) {
	before, after, found := strings.Cut(trackingNumber, "-")
	if !found {
		return "", "", ErrMalformedNumber
	}
	return before, after, nil
}
