package ops

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birdwatch/birdwatch/internal/errors"
)

func TestQuery(t *testing.T) {
	database := setupDB(t)
	now := time.Now().UTC()

	insertTweetAt(t, database, "1", "sama", now.Add(-2*time.Hour))
	insertTweetAt(t, database, "2", "karpathy", now.Add(-1*time.Hour))
	insertTweetAt(t, database, "3", "sama", now.Add(-30*time.Hour)) // outside default window

	out, err := Query(database, QueryInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)
	// Newest first.
	assert.Equal(t, "2", out.Tweets[0].ID)
	assert.Equal(t, "1", out.Tweets[1].ID)

	// Wider window picks up the older tweet.
	out, err = Query(database, QueryInput{SinceHours: 48})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Total)
}

func TestQuery_HandleFilter(t *testing.T) {
	database := setupDB(t)
	now := time.Now().UTC()
	insertTweetAt(t, database, "1", "sama", now.Add(-time.Hour))
	insertTweetAt(t, database, "2", "karpathy", now.Add(-time.Hour))

	out, err := Query(database, QueryInput{Handle: "@Sama"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Total)
	assert.Equal(t, "sama", out.Tweets[0].Author)
}

func TestQuery_Limit(t *testing.T) {
	database := setupDB(t)
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		insertTweetAt(t, database, string(rune('a'+i)), "sama", now.Add(-time.Duration(i)*time.Minute))
	}

	out, err := Query(database, QueryInput{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, out.Total, "total reflects the window, not the page")
	assert.Len(t, out.Tweets, 2)
}

func TestQuery_InvalidInput(t *testing.T) {
	database := setupDB(t)

	_, err := Query(database, QueryInput{SinceHours: -1})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Query(database, QueryInput{Limit: -1})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}
