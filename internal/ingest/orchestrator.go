package ingest

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/birdwatch/birdwatch/internal/config"
	"github.com/birdwatch/birdwatch/internal/db"
	"github.com/birdwatch/birdwatch/internal/domain"
	"github.com/birdwatch/birdwatch/internal/errors"
)

// Orchestrator drives one ingestion cycle end to end: list accounts,
// resolve watermarks, fetch under pacing, persist idempotently, then
// read the trailing window back from the store. At most one run is in
// flight per instance; an overlapping Run fails fast with CONFLICT
// instead of queueing.
type Orchestrator struct {
	database *sql.DB
	fetcher  *Fetcher
	cfg      *config.Config
	logger   *slog.Logger

	mu sync.Mutex

	// now is swapped out by tests for deterministic windows.
	now func() time.Time
}

// NewOrchestrator wires an Orchestrator over the store and provider,
// with the quota strategy selected by configuration.
func NewOrchestrator(database *sql.DB, provider Provider, cfg *config.Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		database: database,
		fetcher:  NewFetcher(database, provider, cfg, StrategyFromConfig(cfg), logger),
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes one ingestion cycle and returns its result. The tweet
// set in the result is the store-backed trailing window, so rerunning
// against an unchanged upstream yields the same view with zero new
// rows.
func (o *Orchestrator) Run(ctx context.Context) (*domain.RunResult, error) {
	if !o.mu.TryLock() {
		return nil, errors.NewConflict("ingestion run already in flight")
	}
	defer o.mu.Unlock()

	startedAt := o.now().UTC()
	runID := ulid.Make().String()
	log := o.logger.With("run_id", runID)

	result := &domain.RunResult{RunID: runID, StartedAt: startedAt}

	accounts, err := db.ListAccounts(o.database)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		log.Info("no accounts registered, nothing to do")
		result.FinishedAt = o.now().UTC()
		return result, nil
	}

	// All watermarks are pinned before the first upstream request.
	watermarks, err := BuildWatermarks(o.database, accounts, o.cfg.Bootstrap(), startedAt)
	if err != nil {
		return nil, err
	}

	log.Info("ingestion cycle starting", "accounts", len(accounts))

	fetched, err := o.fetcher.FetchAll(ctx, accounts, watermarks, &result.Stats)
	if err != nil {
		return nil, err
	}

	for i := range fetched {
		inserted, err := db.InsertTweet(o.database, &fetched[i])
		if err != nil {
			return nil, err
		}
		if inserted {
			result.Stats.TweetsNew++
		}
	}

	if err := o.updateFailureCounters(log, accounts, result); err != nil {
		return nil, err
	}

	window, err := db.TweetsSince(o.database, startedAt.Add(-o.cfg.Bootstrap()), "")
	if err != nil {
		return nil, err
	}
	result.Tweets = window
	result.FinishedAt = o.now().UTC()

	log.Info("ingestion cycle finished",
		"attempted", result.Stats.AccountsAttempted,
		"succeeded", result.Stats.AccountsSucceeded,
		"failed", result.Stats.AccountsFailed,
		"fetched", result.Stats.TweetsFetched,
		"new", result.Stats.TweetsNew,
		"window", len(result.Tweets),
		"elapsed", result.FinishedAt.Sub(startedAt))

	return result, nil
}

// updateFailureCounters bumps the consecutive-failure counter for
// accounts that failed this cycle, resets it for the rest, and flags
// accounts past the starvation threshold. Starvation is a visibility
// signal on the result, not a removal: the account stays registered
// and keeps being attempted.
func (o *Orchestrator) updateFailureCounters(log *slog.Logger, accounts []domain.Account, result *domain.RunResult) error {
	failed := make(map[string]bool, len(result.Stats.FailedHandles))
	for _, h := range result.Stats.FailedHandles {
		failed[h] = true
	}

	for i := range accounts {
		handle := accounts[i].Handle
		if !failed[handle] {
			if err := db.ResetFailureCount(o.database, handle); err != nil {
				return err
			}
			continue
		}

		count, err := db.BumpFailureCount(o.database, handle)
		if err != nil {
			return err
		}
		if count >= o.cfg.StarvationThreshold {
			log.Warn("account starved",
				"handle", handle, "consecutive_failures", count)
			result.Starved = append(result.Starved, handle)
		}
	}
	return nil
}
