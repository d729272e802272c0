package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseMoneyShorthand parses human money notation into a USD amount:
// "$120k" -> 120000, "2.5M" -> 2500000, "$1B" -> 1000000000, "1,200" -> 1200.
// Plain numeric strings parse as-is.
func ParseMoneyShorthand(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("empty money value %q", s)
	}

	multiplier := 1.0
	switch cleaned[len(cleaned)-1] {
	case 'k', 'K':
		multiplier = 1e3
		cleaned = cleaned[:len(cleaned)-1]
	case 'm', 'M':
		multiplier = 1e6
		cleaned = cleaned[:len(cleaned)-1]
	case 'b', 'B':
		multiplier = 1e9
		cleaned = cleaned[:len(cleaned)-1]
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid money value %q: %w", s, err)
	}
	return value * multiplier, nil
}
