package ops

import (
	"database/sql"
	"time"

	"github.com/birdwatch/birdwatch/internal/db"
	"github.com/birdwatch/birdwatch/internal/domain"
	"github.com/birdwatch/birdwatch/internal/errors"
)

// QueryInput contains parameters for the Query operation.
type QueryInput struct {
	Handle     string // optional; empty means all accounts
	SinceHours int    // default 24
	Limit      int    // optional cap on returned tweets
}

// QueryOutput contains the result of the Query operation.
type QueryOutput struct {
	Tweets []TweetView `json:"tweets"`
	Total  int         `json:"total"`
}

// Query reads stored tweets from the trailing window, newest first.
func Query(database *sql.DB, input QueryInput) (*QueryOutput, error) {
	if input.SinceHours < 0 {
		return nil, errors.NewInvalidRequest("since_hours must not be negative")
	}
	if input.Limit < 0 {
		return nil, errors.NewInvalidRequest("limit must not be negative")
	}

	hours := input.SinceHours
	if hours == 0 {
		hours = 24
	}
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	handle := domain.NormalizeHandle(input.Handle)

	tweets, err := db.TweetsSince(database, since, handle)
	if err != nil {
		return nil, err
	}

	out := &QueryOutput{Tweets: []TweetView{}, Total: len(tweets)}
	for i := range tweets {
		if input.Limit > 0 && len(out.Tweets) >= input.Limit {
			break
		}
		out.Tweets = append(out.Tweets, tweetView(&tweets[i]))
	}
	return out, nil
}
