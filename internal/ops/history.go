package ops

import (
	"database/sql"

	"github.com/birdwatch/birdwatch/internal/db"
	"github.com/birdwatch/birdwatch/internal/errors"
)

// HistoryInput contains parameters for the History operation.
type HistoryInput struct {
	Limit int // default 7
}

// HistoryOutput contains the result of the History operation.
type HistoryOutput struct {
	Summaries []SummaryView `json:"summaries"`
	Total     int           `json:"total"`
}

// History returns recent daily summaries, newest first.
func History(database *sql.DB, input HistoryInput) (*HistoryOutput, error) {
	if input.Limit < 0 {
		return nil, errors.NewInvalidRequest("limit must not be negative")
	}

	summaries, err := db.RecentSummaries(database, input.Limit)
	if err != nil {
		return nil, err
	}

	out := &HistoryOutput{Summaries: []SummaryView{}, Total: len(summaries)}
	for i := range summaries {
		out.Summaries = append(out.Summaries, summaryView(&summaries[i]))
	}
	return out, nil
}
