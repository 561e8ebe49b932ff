package ops

import (
	"context"
	"time"

	"github.com/birdwatch/birdwatch/internal/db"
	"github.com/birdwatch/birdwatch/internal/domain"
	"github.com/birdwatch/birdwatch/internal/errors"
)

// RegenerateInput contains parameters for the Regenerate operation.
type RegenerateInput struct {
	Date string // "2006-01-02"; empty means today (UTC)
}

// RegenerateOutput contains the result of the Regenerate operation.
type RegenerateOutput struct {
	Summary SummaryView `json:"summary"`
}

// Regenerate rebuilds the summary for one date from stored tweets and
// replaces the persisted copy. No upstream fetching happens; the
// operation works entirely off the idempotent store.
func Regenerate(ctx context.Context, deps RunDeps, input RegenerateInput) (*RegenerateOutput, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	var date time.Time
	if input.Date == "" {
		today := now().UTC()
		date = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			return nil, errors.NewInvalidRequest("date must be formatted as YYYY-MM-DD")
		}
		date = parsed.UTC()
	}

	stored, err := db.TweetsSince(deps.DB, date, "")
	if err != nil {
		return nil, err
	}

	// TweetsSince has no upper bound; clip to the requested day.
	end := date.AddDate(0, 0, 1)
	var tweets []domain.Tweet
	for i := range stored {
		if stored[i].CreatedAt.Before(end) {
			tweets = append(tweets, stored[i])
		}
	}

	summary, err := deps.Summarizer.Summarize(ctx, tweets, date)
	if err != nil {
		return nil, err
	}
	if err := db.SaveSummary(deps.DB, summary); err != nil {
		return nil, err
	}

	return &RegenerateOutput{Summary: summaryView(summary)}, nil
}
