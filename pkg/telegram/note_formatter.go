package telegram

import (
	"fmt"
	"strings"
	"time"
)

// FormatNoteNotification builds the Markdown message sent when a new analyst
// note has been generated for a company.
func FormatNoteNotification(companyName, companyID string, noteVersion, dealScore int, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("📝 *New Analyst Note*\n\n")
	b.WriteString(fmt.Sprintf("🏢 *Company:* %s (`%s`)\n", companyName, companyID))
	b.WriteString(fmt.Sprintf("🔢 *Version:* %d\n", noteVersion))

	var scoreIcon string
	switch {
	case dealScore >= 8:
		scoreIcon = "🟢"
	case dealScore >= 5:
		scoreIcon = "🟡"
	default:
		scoreIcon = "🔴"
	}
	b.WriteString(fmt.Sprintf("%s *Deal Score:* %d/10\n", scoreIcon, dealScore))
	b.WriteString(fmt.Sprintf("🕒 *Generated:* %s\n", generatedAt.Format("2006-01-02 15:04:05 MST")))

	return b.String()
}
