package ingest

import (
	"database/sql"
	"time"

	"github.com/birdwatch/birdwatch/internal/db"
	"github.com/birdwatch/birdwatch/internal/domain"
)

// ResolveWatermark computes the fetch start for one handle: the
// creation time of its newest persisted tweet, or now minus bootstrap
// when nothing has been persisted yet. The watermark is derived from
// the store, never tracked separately, so it can only move forward as
// tweets land.
func ResolveWatermark(database *sql.DB, handle string, bootstrap time.Duration, now time.Time) (time.Time, error) {
	last, err := db.LastTweetTime(database, handle)
	if err != nil {
		return time.Time{}, err
	}
	if last == nil {
		return now.Add(-bootstrap), nil
	}
	return *last, nil
}

// BuildWatermarks resolves every account's watermark up front, before
// the first upstream request, so a slow paced cycle cannot shift the
// windows mid-run.
func BuildWatermarks(database *sql.DB, accounts []domain.Account, bootstrap time.Duration, now time.Time) (map[string]time.Time, error) {
	marks := make(map[string]time.Time, len(accounts))
	for i := range accounts {
		mark, err := ResolveWatermark(database, accounts[i].Handle, bootstrap, now)
		if err != nil {
			return nil, err
		}
		marks[accounts[i].Handle] = mark
	}
	return marks, nil
}
