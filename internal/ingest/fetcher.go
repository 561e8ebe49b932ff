package ingest

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/birdwatch/birdwatch/internal/config"
	"github.com/birdwatch/birdwatch/internal/db"
	"github.com/birdwatch/birdwatch/internal/domain"
	"github.com/birdwatch/birdwatch/internal/errors"
)

// Fetcher walks the monitored set in registration order, pacing
// requests so a full cycle stays inside the provider's rate budget:
// a short delay between consecutive accounts and a longer cool-down
// after every batch.
type Fetcher struct {
	database *sql.DB
	provider Provider
	cfg      *config.Config
	strategy QuotaStrategy
	logger   *slog.Logger

	// sleep is swapped out by tests to observe pacing without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a Fetcher with the given quota strategy.
func NewFetcher(database *sql.DB, provider Provider, cfg *config.Config, strategy QuotaStrategy, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		database: database,
		provider: provider,
		cfg:      cfg,
		strategy: strategy,
		logger:   logger,
		sleep:    sleepCtx,
	}
}

// FetchAccount fetches one account's tweets created after since.
//
// An unresolved account costs one extra request: the identity lookup
// result is written durably before the content call, so even if the
// fetch then fails the lookup is never repeated. A short settle delay
// separates the two requests.
func (f *Fetcher) FetchAccount(ctx context.Context, account *domain.Account, since time.Time) ([]domain.Tweet, error) {
	if !account.Resolved() {
		ident, err := f.provider.LookupUser(ctx, account.Handle)
		if err != nil {
			return nil, err
		}
		if err := db.UpdateAccountIdentity(f.database, account.Handle, *ident); err != nil {
			return nil, err
		}
		account.UserID = &ident.UserID
		account.DisplayName = &ident.DisplayName
		account.Bio = &ident.Bio
		f.logger.Info("resolved account identity",
			"handle", account.Handle, "user_id", ident.UserID)

		if err := f.sleep(ctx, f.cfg.SettleDelay()); err != nil {
			return nil, err
		}
	}

	displayName := ""
	if account.DisplayName != nil {
		displayName = *account.DisplayName
	}

	attempt := 0
	for {
		tweets, err := f.provider.UserTweetsSince(ctx, *account.UserID, account.Handle, displayName, since, f.cfg.PageSize)
		if err == nil {
			return tweets, nil
		}
		if !errors.Is(err, errors.ErrQuotaExceeded) {
			return nil, err
		}

		attempt++
		delay, retry := f.strategy.NextDelay(attempt)
		if !retry {
			return nil, err
		}
		f.logger.Warn("quota exceeded, backing off",
			"handle", account.Handle, "attempt", attempt, "delay", delay)
		if err := f.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// FetchAll fetches every account against its precomputed watermark,
// accumulating counters into stats. The merged result is sorted by
// creation time, newest first. Operational failures (not found,
// quota, upstream 5xx) fail only their account; anything else aborts
// the cycle.
func (f *Fetcher) FetchAll(ctx context.Context, accounts []domain.Account, watermarks map[string]time.Time, stats *domain.RunStats) ([]domain.Tweet, error) {
	var all []domain.Tweet
	for i := range accounts {
		if i > 0 {
			if err := f.sleep(ctx, f.cfg.FetchDelay()); err != nil {
				return nil, err
			}
			if i%f.cfg.BatchSize == 0 {
				f.logger.Info("batch cool-down",
					"completed", i, "remaining", len(accounts)-i)
				if err := f.sleep(ctx, f.cfg.BatchDelay()); err != nil {
					return nil, err
				}
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		acct := &accounts[i]
		stats.AccountsAttempted++

		tweets, err := f.FetchAccount(ctx, acct, watermarks[acct.Handle])
		if err != nil {
			if errors.IsOperational(err) {
				f.logger.Warn("account fetch failed",
					"handle", acct.Handle, "error", err)
				stats.RecordFailure(acct.Handle)
				continue
			}
			return nil, err
		}

		stats.AccountsSucceeded++
		stats.TweetsFetched += len(tweets)
		all = append(all, tweets...)
	}
	domain.SortTweetsDesc(all)
	return all, nil
}

// sleepCtx blocks for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
