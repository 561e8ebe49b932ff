package ops

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birdwatch/birdwatch/internal/db"
	"github.com/birdwatch/birdwatch/internal/domain"
	"github.com/birdwatch/birdwatch/internal/errors"
)

func TestHistory(t *testing.T) {
	database := setupDB(t)

	base := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		s := &domain.DailySummary{
			Date:        base.AddDate(0, 0, i),
			SummaryText: "day summary",
			GeneratedAt: base,
		}
		require.NoError(t, db.SaveSummary(database, s))
	}

	out, err := History(database, HistoryInput{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 2, out.Total)
	assert.Equal(t, "2026-08-23", out.Summaries[0].Date)
	assert.Equal(t, "2026-08-22", out.Summaries[1].Date)
}

func TestHistory_Empty(t *testing.T) {
	database := setupDB(t)

	out, err := History(database, HistoryInput{})
	require.NoError(t, err)
	assert.Zero(t, out.Total)
	assert.NotNil(t, out.Summaries)
}

func TestHistory_InvalidLimit(t *testing.T) {
	database := setupDB(t)

	_, err := History(database, HistoryInput{Limit: -1})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}
