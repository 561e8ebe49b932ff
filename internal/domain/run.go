package domain

import "time"

// RunStats accumulates counters for a single ingestion cycle. It is
// threaded explicitly through the orchestrator and returned in the
// result; there is no cross-run state.
type RunStats struct {
	AccountsAttempted int
	AccountsSucceeded int
	AccountsFailed    int
	TweetsFetched     int
	TweetsNew         int
	FailedHandles     []string
}

// RecordFailure marks one account as failed this cycle.
func (s *RunStats) RecordFailure(handle string) {
	s.AccountsFailed++
	s.FailedHandles = append(s.FailedHandles, handle)
}

// RunResult is the transient outcome of one ingestion cycle. The
// tweet set is the store-backed trailing window, not the raw fetch
// delta, so downstream consumers see a stable view.
type RunResult struct {
	RunID      string
	Tweets     []Tweet
	Stats      RunStats
	Starved    []string
	StartedAt  time.Time
	FinishedAt time.Time
}
