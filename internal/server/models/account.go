// Package models holds the persisted data model of the identity core:
// account nodes and the directed edges recorded between them.
package models

import "time"

// Role is the single role an account holds at any point in time.
type Role string

const (
	// RoleSeed is the pre-provisioned bootstrap identity. Exactly one
	// seed account exists and it never transitions to another role.
	RoleSeed Role = "seed"

	// RoleAdmin is the elevated role: create accounts, promote members,
	// vote to demote other admins.
	RoleAdmin Role = "admin"

	// RoleMember is the default role for normally created accounts.
	RoleMember Role = "member"
)

// Valid reports whether r is one of the three enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSeed, RoleAdmin, RoleMember:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// Account is a system user. The handle is immutable and globally unique;
// PasswordHash is the bcrypt form of the credential and is never exposed
// outside the store and the authenticator.
type Account struct {
	ID           string
	Handle       string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
