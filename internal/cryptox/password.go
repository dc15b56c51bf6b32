// Package cryptox provides the credential primitives of the identity
// core: one-way password hashing (bcrypt) and password policy checks.
package cryptox

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Verifier hashes raw passwords and verifies candidates against stored
// hashes. bcrypt is salted and adaptive; Cost below bcrypt.DefaultCost
// is raised to the default so the work factor never drops under the
// library floor.
type Verifier struct {
	cost int
}

// NewVerifier returns a Verifier with the given bcrypt cost.
func NewVerifier(cost int) *Verifier {
	if cost < bcrypt.DefaultCost {
		cost = bcrypt.DefaultCost
	}
	return &Verifier{cost: cost}
}

// Hash returns the bcrypt hash of rawPassword.
func (v *Verifier) Hash(rawPassword string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(rawPassword), v.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether rawPassword matches the stored credential.
// Malformed credentials never panic; they simply do not match.
func (v *Verifier) Verify(rawPassword, credential string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(credential), []byte(rawPassword))
	return err == nil
}

// DummyHash is a valid bcrypt hash of an unguessable value. Authentication
// compares against it when the handle does not exist, so the missing-account
// path costs one bcrypt comparison like the normal path.
const DummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

var errBcryptSelfCheck = errors.New("cryptox: dummy hash failed self-check")

// SelfCheck verifies that DummyHash parses as a bcrypt hash. Called once
// at startup so a bad constant fails loudly instead of silently breaking
// the constant-cost property.
func SelfCheck() error {
	if err := bcrypt.CompareHashAndPassword([]byte(DummyHash), []byte("")); err != nil &&
		!errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return errBcryptSelfCheck
	}
	return nil
}
