// Package votes persists pending demotion confirmations as a set keyed
// by (voter, target). Casting is idempotent: re-casting an existing vote
// changes nothing.
package votes

import "context"

type Repository interface {
	// Cast records the (voter, target) vote if absent. No error on
	// duplicates; the set semantics make retries safe.
	Cast(ctx context.Context, voterID, targetID string) error

	// CountForTarget returns the number of distinct voters against the
	// target.
	CountForTarget(ctx context.Context, targetID string) (int, error)

	// VoterIDs returns the distinct voters against the target, in the
	// order the votes were cast.
	VoterIDs(ctx context.Context, targetID string) ([]string, error)

	// ClearForTarget removes every outstanding vote against the target,
	// so a later re-promotion starts with a clean slate.
	ClearForTarget(ctx context.Context, targetID string) error
}
