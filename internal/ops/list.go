package ops

import (
	"database/sql"
	"time"

	"github.com/birdwatch/birdwatch/internal/db"
)

// AccountInfo is one row of the List output.
type AccountInfo struct {
	Handle              string    `json:"handle"`
	UserID              string    `json:"user_id,omitempty"`
	DisplayName         string    `json:"display_name,omitempty"`
	AddedAt             time.Time `json:"added_at"`
	TweetCount          int       `json:"tweet_count"`
	ConsecutiveFailures int       `json:"consecutive_failures,omitempty"`
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Accounts []AccountInfo `json:"accounts"`
	Total    int           `json:"total"`
}

// List returns all monitored accounts in registration order with
// their stored tweet counts.
func List(database *sql.DB) (*ListOutput, error) {
	accounts, err := db.ListAccounts(database)
	if err != nil {
		return nil, err
	}

	out := &ListOutput{Accounts: []AccountInfo{}, Total: len(accounts)}
	for i := range accounts {
		a := &accounts[i]
		count, err := db.CountTweets(database, a.Handle)
		if err != nil {
			return nil, err
		}

		info := AccountInfo{
			Handle:              a.Handle,
			AddedAt:             a.AddedAt,
			TweetCount:          count,
			ConsecutiveFailures: a.ConsecutiveFailures,
		}
		if a.UserID != nil {
			info.UserID = *a.UserID
		}
		if a.DisplayName != nil {
			info.DisplayName = *a.DisplayName
		}
		out.Accounts = append(out.Accounts, info)
	}
	return out, nil
}
