// Package notify delivers the daily summary over the configured
// channels.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/birdwatch/birdwatch/internal/domain"
)

// Notifier delivers a daily summary over one channel.
type Notifier interface {
	// Name identifies the channel in logs.
	Name() string

	// SendSummary delivers the summary. A failure affects only this
	// channel; the caller decides whether to continue with others.
	SendSummary(ctx context.Context, summary *domain.DailySummary) error
}

// FormatReport renders the summary as the plain-text report shared by
// all channels.
func FormatReport(summary *domain.DailySummary) string {
	var b strings.Builder

	b.WriteString("X/Twitter Daily Monitoring Report\n\n")
	fmt.Fprintf(&b, "Date: %s\n", summary.DateKey())
	fmt.Fprintf(&b, "Accounts monitored: %d\n", summary.AccountsMonitored)
	fmt.Fprintf(&b, "Tweets collected: %d\n", summary.TotalTweets)
	fmt.Fprintf(&b, "Generated at: %s\n", summary.GeneratedAt.UTC().Format("2006-01-02 15:04:05"))
	b.WriteString("\n---\n\n")
	b.WriteString(summary.Analysis)
	b.WriteString("\n\n---\n\nKey Insights\n")

	if len(summary.KeyInsights) == 0 {
		b.WriteString("(none)\n")
	} else {
		for i, insight := range summary.KeyInsights {
			fmt.Fprintf(&b, "%d. %s\n", i+1, insight)
		}
	}

	b.WriteString("\n---\n\nGenerated automatically by birdwatch\n")
	return b.String()
}
