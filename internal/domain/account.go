// Package domain contains the core entities shared across the application.
package domain

import (
	"strings"
	"time"
)

// Account is a monitored X/Twitter account.
type Account struct {
	// Handle is the username without the leading "@", lowercased.
	// It uniquely identifies the account in the monitored set.
	Handle string

	// UserID is the upstream numeric identifier, cached lazily on the
	// first successful lookup. Once set it never changes; fetching by
	// id costs one quota unit less than fetching by handle.
	UserID *string

	// DisplayName and Bio are snapshots taken when UserID was resolved.
	DisplayName *string
	Bio         *string

	// AddedAt is when monitoring was registered.
	AddedAt time.Time

	// ConsecutiveFailures counts cycles in a row where fetching this
	// account failed (quota or upstream error). Reset on any success.
	ConsecutiveFailures int
}

// Resolved reports whether the upstream identifier has been cached.
func (a *Account) Resolved() bool {
	return a.UserID != nil && *a.UserID != ""
}

// Identity is the result of an upstream user lookup.
type Identity struct {
	UserID      string
	DisplayName string
	Bio         string
}

// NormalizeHandle canonicalizes a user-supplied handle: strips the
// leading "@", trims whitespace, and lowercases.
func NormalizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	handle = strings.TrimPrefix(handle, "@")
	return strings.ToLower(strings.TrimSpace(handle))
}
