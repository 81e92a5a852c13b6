package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveInitials(t *testing.T) {
	cases := []struct {
		name string
		org  string
		want string
	}{
		{"single word truncated to three", "Acme", "ACM"},
		{"single short word", "Go", "GO"},
		{"two words", "Reus Logistics", "RL"},
		{"three words", "Blue Sky Freight", "BSF"},
		{"five words capped at four", "A Very Long Company Name", "AVLC"},
		{"digits and punctuation stripped", "42 Fast-Freight, Inc.", "FI"},
		{"mixed case", "global parcel EXPRESS", "GPE"},
		{"carriage return separates words", "Acme\rCorp", "AC"},
		{"non-breaking space separates words", "Acme\u00a0Corp", "AC"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DeriveInitials(tc.org)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDeriveInitialsInvalidName(t *testing.T) {
	for _, org := range []string{"", "   ", "1234", "!!! ???"} {
		_, err := DeriveInitials(org)
		assert.ErrorIs(t, err, ErrInvalidName, "org=%q", org)
	}
}

func TestComposeAndParseRoundTrip(t *testing.T) {
	number, err := Compose("Reus Logistics", "001")
	require.NoError(t, err)
	assert.Equal(t, "RL-001", number)

	initials, suffix, err := Parse(number)
	require.NoError(t, err)
	assert.Equal(t, "RL", initials)
	assert.Equal(t, "001", suffix)
}

func TestComposeTrimsSuffix(t *testing.T) {
	number, err := Compose("Acme", "  SHIP001  ")
	require.NoError(t, err)
	assert.Equal(t, "ACM-SHIP001", number)
}

func TestComposeEmptySuffix(t *testing.T) {
	_, err := Compose("Acme", "   ")
	assert.ErrorIs(t, err, ErrEmptySuffix)
}

func TestParseKeepsSuffixHyphens(t *testing.T) {
	initials, suffix, err := Parse("ACM-2024-01-A")
	require.NoError(t, err)
	assert.Equal(t, "ACM", initials)
	assert.Equal(t, "2024-01-A", suffix)
}

func TestParseWithoutHyphen(t *testing.T) {
	_, _, err := Parse("ACM001")
	assert.ErrorIs(t, err, ErrMalformedNumber)
}
