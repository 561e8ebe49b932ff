package ops

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/birdwatch/birdwatch/internal/db"
	"github.com/birdwatch/birdwatch/internal/domain"
	"github.com/birdwatch/birdwatch/internal/errors"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubProvider answers identity lookups from a fixed map.
type stubProvider struct {
	identities map[string]*domain.Identity
	lookupErr  error
	lookups    int
}

func (p *stubProvider) LookupUser(_ context.Context, handle string) (*domain.Identity, error) {
	p.lookups++
	if p.lookupErr != nil {
		return nil, p.lookupErr
	}
	if ident, ok := p.identities[handle]; ok {
		return ident, nil
	}
	return nil, errors.NewNotFound(handle)
}

func (p *stubProvider) UserTweetsSince(context.Context, string, string, string, time.Time, int) ([]domain.Tweet, error) {
	return nil, nil
}

// stubIngestor returns a canned run result.
type stubIngestor struct {
	result *domain.RunResult
	err    error
}

func (s *stubIngestor) Run(context.Context) (*domain.RunResult, error) {
	return s.result, s.err
}

// stubSummarizer records its input and returns a canned summary.
type stubSummarizer struct {
	gotTweets []domain.Tweet
	gotDate   time.Time
	summary   *domain.DailySummary
	err       error
}

func (s *stubSummarizer) Summarize(_ context.Context, tweets []domain.Tweet, date time.Time) (*domain.DailySummary, error) {
	s.gotTweets = tweets
	s.gotDate = date
	if s.err != nil {
		return nil, s.err
	}
	if s.summary != nil {
		return s.summary, nil
	}
	return &domain.DailySummary{
		Date:        date,
		TotalTweets: len(tweets),
		SummaryText: "stub summary",
		GeneratedAt: date,
	}, nil
}

// stubNotifier records deliveries.
type stubNotifier struct {
	name string
	sent int
	err  error
}

func (n *stubNotifier) Name() string { return n.name }

func (n *stubNotifier) SendSummary(context.Context, *domain.DailySummary) error {
	n.sent++
	return n.err
}

func insertTweetAt(t *testing.T, database *sql.DB, id, handle string, at time.Time) {
	t.Helper()
	_, err := db.InsertTweet(database, &domain.Tweet{
		ID: id, AuthorHandle: handle, Content: "content " + id,
		CreatedAt: at, FetchedAt: at,
	})
	require.NoError(t, err)
}
