package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoneyShorthand(t *testing.T) {
	cases := []struct {
		in       string
		expected float64
	}{
		{"$120k", 120000},
		{"120K", 120000},
		{"$3.5M", 3500000},
		{"2m", 2000000},
		{"$1B", 1000000000},
		{"1,200", 1200},
		{"$1,250,000", 1250000},
		{"42", 42},
		{" $500k ", 500000},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMoneyShorthand(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestParseMoneyShorthand_Invalid(t *testing.T) {
	for _, in := range []string{"", "$", "a lot", "Series A", "12x"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseMoneyShorthand(in)
			assert.Error(t, err)
		})
	}
}
