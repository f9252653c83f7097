package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	digest, err := HashPassword("Str0ng!Pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!Pass", digest)

	assert.True(t, VerifyPassword("Str0ng!Pass", digest))
	assert.False(t, VerifyPassword("wrong-password", digest))
}

func TestHashPasswordFreshSalt(t *testing.T) {
	first, err := HashPassword("Str0ng!Pass")
	require.NoError(t, err)
	second, err := HashPassword("Str0ng!Pass")
	require.NoError(t, err)

	// A fresh salt per call means two hashes of the same input differ.
	assert.NotEqual(t, first, second)
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	assert.False(t, VerifyPassword("anything", "not-a-bcrypt-digest"))
	assert.False(t, VerifyPassword("anything", ""))
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
		errCount int
	}{
		{name: "strong password", password: "Str0ng!Pass", valid: true, errCount: 0},
		{name: "too short but otherwise complete", password: "Shor1t!", valid: false, errCount: 1},
		{name: "missing uppercase", password: "str0ng!pass", valid: false, errCount: 1},
		{name: "missing lowercase", password: "STR0NG!PASS", valid: false, errCount: 1},
		{name: "missing digit", password: "Strong!Pass", valid: false, errCount: 1},
		{name: "missing special", password: "Str0ngPass1", valid: false, errCount: 1},
		{name: "empty reports every rule", password: "", valid: false, errCount: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidatePasswordStrength(tt.password)
			assert.Equal(t, tt.valid, result.Valid)
			assert.Len(t, result.Errors, tt.errCount)
		})
	}
}

func TestValidatePasswordStrengthListsLengthViolation(t *testing.T) {
	result := ValidatePasswordStrength("Sh0r!")
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "password must be at least 8 characters long")
}
