package models

import "time"

// EdgeKind names the relationship an edge records.
type EdgeKind string

const (
	// EdgeCreated points from the creating account to the created one.
	EdgeCreated EdgeKind = "created"

	// EdgePromoted points from the acting admin (or the seed, for the
	// bootstrap promotion) to the account that became admin.
	EdgePromoted EdgeKind = "promoted"

	// EdgeDemoted points from each confirming voter to the demoted
	// account. One row per distinct voter.
	EdgeDemoted EdgeKind = "demoted"
)

// Edge is one immutable entry in the directed-edge log. Edges are owned
// by the store, not by either endpoint account, and carry no mutable
// state; they exist for audit and provenance.
type Edge struct {
	ID        string
	Kind      EdgeKind
	SourceID  string
	TargetID  string
	CreatedAt time.Time
}
