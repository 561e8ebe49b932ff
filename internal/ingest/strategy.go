package ingest

import (
	"time"

	"github.com/birdwatch/birdwatch/internal/config"
)

// QuotaStrategy decides what happens when the provider signals quota
// exhaustion mid-cycle.
type QuotaStrategy interface {
	// NextDelay reports the backoff before retry number attempt
	// (1-based) and whether to retry at all.
	NextDelay(attempt int) (time.Duration, bool)
}

// SkipStrategy abandons the account on the first quota signal. The
// watermark is untouched, so the skipped window is recovered on the
// next cycle instead of being lost.
type SkipStrategy struct{}

func (SkipStrategy) NextDelay(int) (time.Duration, bool) { return 0, false }

// RetryStrategy backs off exponentially, doubling from Base, and gives
// up on the account after MaxAttempts retries.
type RetryStrategy struct {
	MaxAttempts int
	Base        time.Duration
}

func (s RetryStrategy) NextDelay(attempt int) (time.Duration, bool) {
	if attempt > s.MaxAttempts {
		return 0, false
	}
	return s.Base << (attempt - 1), true
}

// StrategyFromConfig maps the configured quota policy onto a strategy.
// Unknown values fall back to skip.
func StrategyFromConfig(cfg *config.Config) QuotaStrategy {
	if cfg.QuotaPolicy == "retry" {
		return RetryStrategy{MaxAttempts: cfg.RetryMaxAttempts, Base: cfg.RetryBase()}
	}
	return SkipStrategy{}
}
