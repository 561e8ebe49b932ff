package domain

import "time"

// DailySummary is the LLM-generated digest persisted for one date.
type DailySummary struct {
	Date              time.Time
	AccountsMonitored int
	TotalTweets       int
	SummaryText       string
	Analysis          string
	KeyInsights       []string
	GeneratedAt       time.Time
}

// DateKey formats the summary date as its storage key.
func (s *DailySummary) DateKey() string {
	return s.Date.UTC().Format("2006-01-02")
}
