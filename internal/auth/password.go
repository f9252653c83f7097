package auth

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor used when the store was first seeded.
const bcryptCost = 12

const minPasswordLength = 8

// HashPassword computes a salted bcrypt digest of plaintext. The salt is
// fresh on every call, so two hashes of the same password differ.
func HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether plaintext matches digest. Comparison is
// timing-safe inside bcrypt; any error, including a malformed digest,
// reads as a mismatch.
func VerifyPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// PasswordStrength is the outcome of validating a candidate password.
// Errors lists every violated rule, not just the first.
type PasswordStrength struct {
	Valid  bool
	Errors []string
}

// ValidatePasswordStrength checks length and character-class rules.
func ValidatePasswordStrength(plaintext string) PasswordStrength {
	var errs []string

	if len(plaintext) < minPasswordLength {
		errs = append(errs, "password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range plaintext {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if !hasUpper {
		errs = append(errs, "password must contain at least one uppercase letter")
	}
	if !hasLower {
		errs = append(errs, "password must contain at least one lowercase letter")
	}
	if !hasDigit {
		errs = append(errs, "password must contain at least one digit")
	}
	if !hasSpecial {
		errs = append(errs, "password must contain at least one special character")
	}

	return PasswordStrength{Valid: len(errs) == 0, Errors: errs}
}
