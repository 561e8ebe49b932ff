package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birdwatch/birdwatch/internal/db"
	"github.com/birdwatch/birdwatch/internal/domain"
)

func TestResolveWatermark_Bootstrap(t *testing.T) {
	database := setupIngestDB(t)

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	mark, err := ResolveWatermark(database, "alice", 24*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-24*time.Hour), mark)
}

func TestResolveWatermark_FromStore(t *testing.T) {
	database := setupIngestDB(t)

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	newest := now.Add(-2 * time.Hour)
	for i, at := range []time.Time{now.Add(-10 * time.Hour), newest, now.Add(-5 * time.Hour)} {
		tw := &domain.Tweet{
			ID: string(rune('a' + i)), AuthorHandle: "alice",
			CreatedAt: at, FetchedAt: at,
		}
		_, err := db.InsertTweet(database, tw)
		require.NoError(t, err)
	}

	mark, err := ResolveWatermark(database, "alice", 24*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, newest, mark, "watermark is the max created_at, not the last insert")

	// Another handle's tweets do not move this watermark.
	other, err := ResolveWatermark(database, "bob", 24*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-24*time.Hour), other)
}

func TestBuildWatermarks(t *testing.T) {
	database := setupIngestDB(t)

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	seen := now.Add(-time.Hour)
	_, err := db.InsertTweet(database, &domain.Tweet{
		ID: "1", AuthorHandle: "alice", CreatedAt: seen, FetchedAt: seen,
	})
	require.NoError(t, err)

	accounts := []domain.Account{
		resolvedAccount("alice", "1"),
		resolvedAccount("bob", "2"),
	}
	marks, err := BuildWatermarks(database, accounts, 24*time.Hour, now)
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.Equal(t, seen, marks["alice"])
	assert.Equal(t, now.Add(-24*time.Hour), marks["bob"])
}
