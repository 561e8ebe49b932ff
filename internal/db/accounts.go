package db

import (
	"database/sql"
	"strings"
	"time"

	"github.com/birdwatch/birdwatch/internal/domain"
	"github.com/birdwatch/birdwatch/internal/errors"
)

// InsertAccount stores a newly registered account.
func InsertAccount(db *sql.DB, a *domain.Account) error {
	query := `
		INSERT INTO accounts (handle, user_id, display_name, bio, added_at, consecutive_failures)
		VALUES (?, ?, ?, ?, ?, 0)
	`
	_, err := db.Exec(query,
		a.Handle,
		toNullString(a.UserID),
		toNullString(a.DisplayName),
		toNullString(a.Bio),
		a.AddedAt.Unix(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewDuplicate(a.Handle)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetAccount retrieves one account by normalized handle.
func GetAccount(db *sql.DB, handle string) (*domain.Account, error) {
	row := db.QueryRow(`
		SELECT handle, user_id, display_name, bio, added_at, consecutive_failures
		FROM accounts WHERE handle = ?
	`, handle)

	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(handle)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return a, nil
}

// ListAccounts returns all monitored accounts in registration order.
func ListAccounts(db *sql.DB) ([]domain.Account, error) {
	rows, err := db.Query(`
		SELECT handle, user_id, display_name, bio, added_at, consecutive_failures
		FROM accounts ORDER BY added_at, handle
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var (
			a        domain.Account
			userID   sql.NullString
			name     sql.NullString
			bio      sql.NullString
			addedAt  int64
			failures int
		)
		if err := rows.Scan(&a.Handle, &userID, &name, &bio, &addedAt, &failures); err != nil {
			return nil, errors.NewInternal(err)
		}
		a.UserID = fromNullString(userID)
		a.DisplayName = fromNullString(name)
		a.Bio = fromNullString(bio)
		a.AddedAt = time.Unix(addedAt, 0).UTC()
		a.ConsecutiveFailures = failures
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return accounts, nil
}

// UpdateAccountIdentity backfills the cached upstream identifier and
// metadata. The write is durable immediately, independent of whether
// the subsequent fetch succeeds, so the lookup cost is paid at most
// once over the account's lifetime.
func UpdateAccountIdentity(db *sql.DB, handle string, ident domain.Identity) error {
	result, err := db.Exec(`
		UPDATE accounts
		SET user_id = ?, display_name = ?, bio = ?
		WHERE handle = ?
	`, ident.UserID, ident.DisplayName, ident.Bio, handle)
	if err != nil {
		return errors.NewInternal(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound(handle)
	}
	return nil
}

// DeleteAccount removes an account from monitoring. Returns true if a
// row was removed.
func DeleteAccount(db *sql.DB, handle string) (bool, error) {
	result, err := db.Exec(`DELETE FROM accounts WHERE handle = ?`, handle)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return affected > 0, nil
}

// BumpFailureCount increments the consecutive-failure counter and
// returns the new value.
func BumpFailureCount(db *sql.DB, handle string) (int, error) {
	_, err := db.Exec(`
		UPDATE accounts SET consecutive_failures = consecutive_failures + 1
		WHERE handle = ?
	`, handle)
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	var count int
	if err := db.QueryRow(`
		SELECT consecutive_failures FROM accounts WHERE handle = ?
	`, handle).Scan(&count); err != nil {
		if err == sql.ErrNoRows {
			return 0, errors.NewNotFound(handle)
		}
		return 0, errors.NewInternal(err)
	}
	return count, nil
}

// ResetFailureCount clears the consecutive-failure counter after a
// successful fetch.
func ResetFailureCount(db *sql.DB, handle string) error {
	_, err := db.Exec(`
		UPDATE accounts SET consecutive_failures = 0 WHERE handle = ?
	`, handle)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// scanAccount scans a single row into an Account.
func scanAccount(row *sql.Row) (*domain.Account, error) {
	var (
		a        domain.Account
		userID   sql.NullString
		name     sql.NullString
		bio      sql.NullString
		addedAt  int64
		failures int
	)
	if err := row.Scan(&a.Handle, &userID, &name, &bio, &addedAt, &failures); err != nil {
		return nil, err
	}
	a.UserID = fromNullString(userID)
	a.DisplayName = fromNullString(name)
	a.Bio = fromNullString(bio)
	a.AddedAt = time.Unix(addedAt, 0).UTC()
	a.ConsecutiveFailures = failures
	return &a, nil
}

// isUniqueConstraintError checks for a SQLite UNIQUE violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite reports "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
