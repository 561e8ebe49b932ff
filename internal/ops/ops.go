// Package ops implements the operation layer shared by the CLI and
// the MCP server. Each operation validates its input, talks to the
// store and upstream services, and returns a JSON-ready output struct.
package ops

import (
	"context"
	"time"

	"github.com/birdwatch/birdwatch/internal/domain"
)

// Ingestor runs one ingestion cycle.
type Ingestor interface {
	Run(ctx context.Context) (*domain.RunResult, error)
}

// Summarizer generates a daily summary from a set of tweets.
type Summarizer interface {
	Summarize(ctx context.Context, tweets []domain.Tweet, date time.Time) (*domain.DailySummary, error)
}

// SummaryView is the JSON shape of a stored summary.
type SummaryView struct {
	Date              string    `json:"date"`
	AccountsMonitored int       `json:"accounts_monitored"`
	TotalTweets       int       `json:"total_tweets"`
	SummaryText       string    `json:"summary_text"`
	KeyInsights       []string  `json:"key_insights,omitempty"`
	GeneratedAt       time.Time `json:"generated_at"`
}

func summaryView(s *domain.DailySummary) SummaryView {
	return SummaryView{
		Date:              s.DateKey(),
		AccountsMonitored: s.AccountsMonitored,
		TotalTweets:       s.TotalTweets,
		SummaryText:       s.SummaryText,
		KeyInsights:       s.KeyInsights,
		GeneratedAt:       s.GeneratedAt,
	}
}

// TweetView is the JSON shape of a stored tweet.
type TweetView struct {
	ID          string    `json:"id"`
	Author      string    `json:"author"`
	DisplayName string    `json:"display_name,omitempty"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	Likes       int       `json:"likes"`
	Retweets    int       `json:"retweets"`
	Replies     int       `json:"replies"`
	IsRetweet   bool      `json:"is_retweet,omitempty"`
	IsReply     bool      `json:"is_reply,omitempty"`
	URL         string    `json:"url"`
	Engagement  int       `json:"engagement"`
}

func tweetView(t *domain.Tweet) TweetView {
	return TweetView{
		ID:          t.ID,
		Author:      t.AuthorHandle,
		DisplayName: t.AuthorDisplayName,
		Content:     t.Content,
		CreatedAt:   t.CreatedAt,
		Likes:       t.Likes,
		Retweets:    t.Retweets,
		Replies:     t.Replies,
		IsRetweet:   t.IsRetweet,
		IsReply:     t.IsReply,
		URL:         t.URL,
		Engagement:  t.EngagementScore(),
	}
}
