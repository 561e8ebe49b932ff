package ops

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/birdwatch/birdwatch/internal/db"
	"github.com/birdwatch/birdwatch/internal/domain"
	"github.com/birdwatch/birdwatch/internal/errors"
	"github.com/birdwatch/birdwatch/internal/ingest"
)

// RegisterInput contains parameters for the Register operation.
type RegisterInput struct {
	Handle string // required; "@" prefix and case are normalized away
}

// RegisterOutput contains the result of the Register operation.
type RegisterOutput struct {
	Handle      string `json:"handle"`
	UserID      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Resolved    bool   `json:"resolved"`
}

// Register adds a handle to the monitored set. Registering is
// idempotent: an already-monitored handle returns its existing record
// without spending a lookup request. For a new handle the upstream
// identity is resolved eagerly when possible: an unknown handle is
// rejected outright, while quota or upstream trouble registers the
// account unresolved and defers the lookup to the next ingestion
// cycle.
func Register(ctx context.Context, database *sql.DB, provider ingest.Provider, logger *slog.Logger, input RegisterInput) (*RegisterOutput, error) {
	handle := domain.NormalizeHandle(input.Handle)
	if handle == "" {
		return nil, errors.NewInvalidRequest("handle is required")
	}

	existing, err := db.GetAccount(database, handle)
	if err == nil {
		return registerOutput(existing), nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	acct := &domain.Account{Handle: handle, AddedAt: time.Now().UTC()}

	ident, err := provider.LookupUser(ctx, handle)
	switch {
	case err == nil:
		acct.UserID = &ident.UserID
		acct.DisplayName = &ident.DisplayName
		acct.Bio = &ident.Bio
	case errors.Is(err, errors.ErrNotFound):
		return nil, err
	case errors.IsOperational(err):
		logger.Warn("identity lookup deferred", "handle", handle, "error", err)
	default:
		return nil, err
	}

	if err := db.InsertAccount(database, acct); err != nil {
		return nil, err
	}
	return registerOutput(acct), nil
}

func registerOutput(acct *domain.Account) *RegisterOutput {
	out := &RegisterOutput{Handle: acct.Handle, Resolved: acct.Resolved()}
	if acct.Resolved() {
		out.UserID = *acct.UserID
		out.DisplayName = *acct.DisplayName
	}
	return out
}
