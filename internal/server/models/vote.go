package models

import "time"

// DemotionVote is one admin's confirmation that another admin should be
// demoted. Votes form a set keyed by (voter, target): casting the same
// vote twice does not double-count.
type DemotionVote struct {
	VoterID   string
	TargetID  string
	CreatedAt time.Time
}
