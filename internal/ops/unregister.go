package ops

import (
	"database/sql"

	"github.com/birdwatch/birdwatch/internal/db"
	"github.com/birdwatch/birdwatch/internal/domain"
	"github.com/birdwatch/birdwatch/internal/errors"
)

// UnregisterInput contains parameters for the Unregister operation.
type UnregisterInput struct {
	Handle string // required
}

// UnregisterOutput contains the result of the Unregister operation.
type UnregisterOutput struct {
	Handle  string `json:"handle"`
	Removed bool   `json:"removed"`
}

// Unregister removes a handle from the monitored set. Collected
// tweets are kept; only future cycles stop fetching the account. A
// handle that was never monitored reports removed=false rather than
// an error.
func Unregister(database *sql.DB, input UnregisterInput) (*UnregisterOutput, error) {
	handle := domain.NormalizeHandle(input.Handle)
	if handle == "" {
		return nil, errors.NewInvalidRequest("handle is required")
	}

	removed, err := db.DeleteAccount(database, handle)
	if err != nil {
		return nil, err
	}
	return &UnregisterOutput{Handle: handle, Removed: removed}, nil
}
