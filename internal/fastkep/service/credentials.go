package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aussiebroadwan/fastkep/pkg/cryptox"
)

// Rule names one password policy check.
type Rule string

const (
	RuleMinLength Rule = "min_length"
	RuleUppercase Rule = "uppercase"
	RuleLowercase Rule = "lowercase"
	RuleDigit     Rule = "digit"
	RuleSpecial   Rule = "special"
)

// SpecialCharacters satisfy the special-character rule.
const SpecialCharacters = `!@#$%^&*(),.?":{}|<>`

// PasswordPolicy is evaluated in a fixed order (length, upper, lower, digit,
// special) and stops at the first failing rule. MinLength <= 0 disables the
// length rule.
type PasswordPolicy struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireDigit:   true,
		RequireSpecial: true,
	}
}

// PolicyViolation reports the first rule a password failed.
type PolicyViolation struct {
	Rule      Rule
	MinLength int
}

func (v *PolicyViolation) Error() string {
	switch v.Rule {
	case RuleMinLength:
		return fmt.Sprintf("Password must be at least %d characters long", v.MinLength)
	case RuleUppercase:
		return "Password must contain at least one uppercase letter"
	case RuleLowercase:
		return "Password must contain at least one lowercase letter"
	case RuleDigit:
		return "Password must contain at least one digit"
	case RuleSpecial:
		return "Password must contain at least one special character"
	}
	return "Password does not meet the policy"
}

// Validate returns nil or a *PolicyViolation for the first failing rule.
func (p PasswordPolicy) Validate(password string) error {
	if p.MinLength > 0 && utf8.RuneCountInString(password) < p.MinLength {
		return &PolicyViolation{Rule: RuleMinLength, MinLength: p.MinLength}
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
		if strings.ContainsRune(SpecialCharacters, r) {
			special = true
		}
	}

	switch {
	case p.RequireUpper && !upper:
		return &PolicyViolation{Rule: RuleUppercase}
	case p.RequireLower && !lower:
		return &PolicyViolation{Rule: RuleLowercase}
	case p.RequireDigit && !digit:
		return &PolicyViolation{Rule: RuleDigit}
	case p.RequireSpecial && !special:
		return &PolicyViolation{Rule: RuleSpecial}
	}
	return nil
}

// dummyHash is verified against when the user does not exist so that
// unknown emails cost the same argon2 work as wrong passwords.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// VerifyCredential compares password with a stored argon2id hash in constant
// time. A mismatch is (false, nil); a corrupt hash or pepper failure is an
// error.
func VerifyCredential(password, hash string) (bool, error) {
	err := cryptox.VerifyPassword(password, hash)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, cryptox.ErrPasswordMismatch):
		return false, nil
	default:
		return false, err
	}
}
