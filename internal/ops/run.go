package ops

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/birdwatch/birdwatch/internal/db"
	"github.com/birdwatch/birdwatch/internal/domain"
	"github.com/birdwatch/birdwatch/internal/notify"
)

// RunDeps are the collaborators of the Run operation.
type RunDeps struct {
	DB         *sql.DB
	Ingestor   Ingestor
	Summarizer Summarizer
	Notifiers  []notify.Notifier
	Logger     *slog.Logger

	// Now is overridden by tests; nil means time.Now.
	Now func() time.Time
}

// RunInput contains parameters for the Run operation.
type RunInput struct {
	Summarize bool // generate and persist the daily summary
	Notify    bool // deliver the summary over the configured channels
}

// RunOutput contains the result of the Run operation.
type RunOutput struct {
	RunID        string          `json:"run_id"`
	Stats        domain.RunStats `json:"stats"`
	Starved      []string        `json:"starved,omitempty"`
	WindowSize   int             `json:"window_size"`
	Summary      *SummaryView    `json:"summary,omitempty"`
	SummaryError string          `json:"summary_error,omitempty"`
	NotifyErrors []string        `json:"notify_errors,omitempty"`
}

// Run executes one ingestion cycle and, optionally, the summarize and
// notify stages. Ingestion failure aborts the operation; a failing
// summary or notification channel degrades the output instead, since
// the collected tweets are already durable.
func Run(ctx context.Context, deps RunDeps, input RunInput) (*RunOutput, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	result, err := deps.Ingestor.Run(ctx)
	if err != nil {
		return nil, err
	}

	out := &RunOutput{
		RunID:      result.RunID,
		Stats:      result.Stats,
		Starved:    result.Starved,
		WindowSize: len(result.Tweets),
	}

	if !input.Summarize {
		return out, nil
	}

	today := now().UTC()
	date := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	summary, err := deps.Summarizer.Summarize(ctx, result.Tweets, date)
	if err != nil {
		deps.Logger.Error("summary generation failed", "error", err)
		out.SummaryError = err.Error()
		return out, nil
	}
	if err := db.SaveSummary(deps.DB, summary); err != nil {
		return nil, err
	}

	view := summaryView(summary)
	out.Summary = &view

	if !input.Notify {
		return out, nil
	}
	for _, n := range deps.Notifiers {
		if err := n.SendSummary(ctx, summary); err != nil {
			deps.Logger.Error("notification failed", "channel", n.Name(), "error", err)
			out.NotifyErrors = append(out.NotifyErrors, fmt.Sprintf("%s: %v", n.Name(), err))
		}
	}
	return out, nil
}
