// Package common defines the sentinel errors shared across the identity
// core and its transport layer. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Directory errors.
	ErrNotFound        = errors.New("not found")
	ErrDuplicateHandle = errors.New("handle already exists")
	ErrValidation      = errors.New("validation error")

	// ErrInvalidCredential means the supplied password failed the
	// password policy (empty, too short, or missing required classes).
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrAuthenticationFailed deliberately collapses "no such account"
	// and "wrong password" so callers cannot enumerate handles.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// Consensus errors.
	ErrForbidden    = errors.New("actor lacks required role")
	ErrInvalidState = errors.New("operation not valid for current role")

	// ErrQuorumBlockedByMinimumAdmins is a signal, not a failure: the
	// demotion vote was recorded and committed, but executing the
	// demotion would have left the system without an admin.
	ErrQuorumBlockedByMinimumAdmins = errors.New("demotion withheld: would leave no admins")

	// ErrContention surfaces a store-level serialization conflict.
	// The operation had no effect and may be retried safely.
	ErrContention = errors.New("transaction contention")

	// Auth token errors (HTTP session layer).
	ErrInvalidToken = errors.New("invalid token")

	ErrInternal = errors.New("internal error")
)
