// Package phone extracts and normalizes phone numbers from free text.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// ErrNoMatch is returned when the text holds no valid phone number.
var ErrNoMatch = errors.New("no valid phone number")

const trimChars = ",.;:!?()[]{}\"'«»"

// Normalizer formats phone numbers as E.164.
type Normalizer struct {
	region string // region used for numbers without a country code, e.g. "ES"
}

// NewNormalizer creates a Normalizer for the given default region.
func NewNormalizer(region string) *Normalizer {
	return &Normalizer{region: strings.ToUpper(strings.TrimSpace(region))}
}

// Normalize returns the first valid number found in text, formatted as E.164.
// The whole text is tried first with separators removed, so "+34 600 111 222"
// is accepted; then each whitespace separated token left to right.
func (n *Normalizer) Normalize(text string) (string, error) {
	compact := strings.NewReplacer(" ", "", "-", "", " ", "").Replace(strings.TrimSpace(text))
	if formatted, ok := n.parse(compact); ok {
		return formatted, nil
	}
	for _, token := range strings.Fields(text) {
		if formatted, ok := n.parse(strings.Trim(token, trimChars)); ok {
			return formatted, nil
		}
	}
	return "", ErrNoMatch
}

func (n *Normalizer) parse(candidate string) (string, bool) {
	if candidate == "" {
		return "", false
	}
	num, err := phonenumbers.Parse(candidate, n.region)
	if err != nil {
		return "", false
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}
