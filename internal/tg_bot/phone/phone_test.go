package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer("ES")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"international", "+34600111222", "+34600111222"},
		{"spaced international", "+34 600 111 222", "+34600111222"},
		{"dashed national", "600-111-222", "+34600111222"},
		{"first valid token in prose", "call me at 600111222 or nothing", "+34600111222"},
		{"trailing punctuation", "my number: +48507716338.", "+48507716338"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeNoMatch(t *testing.T) {
	n := NewNormalizer("ES")

	for _, input := range []string{"not a phone at all", "", "12", "tomorrow at 5"} {
		_, err := n.Normalize(input)
		assert.ErrorIs(t, err, ErrNoMatch, input)
	}
}
