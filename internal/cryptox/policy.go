package cryptox

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultMinPasswordLength is the policy floor when no override is set.
const DefaultMinPasswordLength = 8

// Policy describes what a new password must look like. The zero value is
// not useful; use DefaultPolicy or build one from configuration.
//
// RequireComplexity additionally demands one lowercase letter, one
// uppercase letter, one digit and one symbol, matching the stricter
// deployments of the original system. It is off by default.
type Policy struct {
	MinLength         int
	RequireComplexity bool
}

// DefaultPolicy returns the baseline policy: non-empty, at least eight
// characters.
func DefaultPolicy() Policy {
	return Policy{MinLength: DefaultMinPasswordLength}
}

// Validate returns nil if rawPassword satisfies the policy, or an error
// describing every unmet requirement.
func (p Policy) Validate(rawPassword string) error {
	min := p.MinLength
	if min <= 0 {
		min = DefaultMinPasswordLength
	}

	var problems []string
	if rawPassword == "" {
		problems = append(problems, "must not be empty")
	}
	if len(rawPassword) < min {
		problems = append(problems, fmt.Sprintf("must be at least %d characters", min))
	}

	if p.RequireComplexity {
		var lower, upper, digit, symbol bool
		for _, r := range rawPassword {
			switch {
			case unicode.IsLower(r):
				lower = true
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsDigit(r):
				digit = true
			case unicode.IsPunct(r) || unicode.IsSymbol(r):
				symbol = true
			}
		}
		if !lower {
			problems = append(problems, "must contain a lowercase letter")
		}
		if !upper {
			problems = append(problems, "must contain an uppercase letter")
		}
		if !digit {
			problems = append(problems, "must contain a digit")
		}
		if !symbol {
			problems = append(problems, "must contain a symbol")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("password %s", strings.Join(problems, "; "))
	}
	return nil
}
