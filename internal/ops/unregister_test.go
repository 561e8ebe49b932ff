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

func TestUnregister(t *testing.T) {
	database := setupDB(t)
	acct := domain.Account{Handle: "sama", AddedAt: time.Now().UTC()}
	require.NoError(t, db.InsertAccount(database, &acct))

	at := time.Now().UTC().Add(-time.Hour)
	insertTweetAt(t, database, "1", "sama", at)

	out, err := Unregister(database, UnregisterInput{Handle: "@Sama"})
	require.NoError(t, err)
	assert.True(t, out.Removed)

	_, err = db.GetAccount(database, "sama")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// Collected tweets survive removal.
	count, err := db.CountTweets(database, "sama")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUnregister_UnknownReportsNotRemoved(t *testing.T) {
	database := setupDB(t)

	out, err := Unregister(database, UnregisterInput{Handle: "ghost"})
	require.NoError(t, err)
	assert.False(t, out.Removed)
	assert.Equal(t, "ghost", out.Handle)
}

func TestUnregister_EmptyHandle(t *testing.T) {
	database := setupDB(t)

	_, err := Unregister(database, UnregisterInput{Handle: ""})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
}
