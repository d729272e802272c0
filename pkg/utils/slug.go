package utils

import (
	"strings"
	"time"
	"unicode"
)

// CompanySlug derives a company identifier from its name and an intake date:
// lowercase, non-alphanumerics collapsed to underscores, suffixed with the
// date in ddMMyyyy form ("Tech Innovators", 19 Sep 2025 -> "tech_innovators_19092025").
// Callers that do not supply an explicit company_id get this convention.
func CompanySlug(name string, t time.Time) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "_")
	if slug == "" {
		slug = "company"
	}
	return slug + "_" + t.Format("02012006")
}
