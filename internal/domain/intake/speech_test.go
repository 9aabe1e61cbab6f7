package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSpeech(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "fillers stripped and number words converted",
			input:    "uhh invoice John fifty thousand for consulting",
			expected: "invoice John 50000 for consulting",
		},
		{
			name:     "compound number converted as one value",
			input:    "invoice Jane twenty five thousand for design",
			expected: "invoice Jane 25000 for design",
		},
		{
			name:     "hyphenated compound",
			input:    "charge Bob twenty-five thousand for repairs",
			expected: "charge Bob 25000 for repairs",
		},
		{
			name:     "hundred with and",
			input:    "bill Ada one hundred and fifty for airtime",
			expected: "bill Ada 150 for airtime",
		},
		{
			name:     "multiple filler variants",
			input:    "um invoice erm Mary like two thousand",
			expected: "invoice Mary 2000",
		},
		{
			name:     "you know phrase removed",
			input:    "invoice you know Peter five hundred",
			expected: "invoice Peter 500",
		},
		{
			name:     "trailing and kept when not joining numbers",
			input:    "invoice Tunde fifty and send it",
			expected: "invoice Tunde 50 and send it",
		},
		{
			name:     "digits pass through untouched",
			input:    "invoice Jane 50000 naira for logo design",
			expected: "invoice Jane 50000 naira for logo design",
		},
		{
			name:     "million multiplier",
			input:    "invoice Acme two million for the contract",
			expected: "invoice Acme 2000000 for the contract",
		},
		{
			name:     "empty input",
			input:    "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSpeech(tt.input))
		})
	}
}

func TestNormalizeSpeechNeverPartiallySubstitutes(t *testing.T) {
	// A run of number words must collapse to a single value, never a
	// mix of digits and leftover words.
	got := NormalizeSpeech("invoice Jane fifty thousand naira")
	assert.Equal(t, "invoice Jane 50000 naira", got)
	assert.NotContains(t, got, "thousand")
	assert.NotContains(t, got, "fifty")
}
