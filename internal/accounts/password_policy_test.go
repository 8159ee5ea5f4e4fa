package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordPolicy(t *testing.T) {
	policy := PasswordPolicy{MinLength: 8}
	attrs := userAttributes("marguerite", "marguerite@example.com", "Marguerite", "Okafor")

	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{"strong", "violet-Harbor-42", nil},
		{"too short", "a1-B", []string{"This password is too short. It must contain at least 8 characters."}},
		{"common", "Password123", []string{"This password is too common."}},
		{"numeric", "0192837465", []string{"This password is entirely numeric."}},
		{"similar to username", "Marguerite1", []string{"The password is too similar to the username."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Validate(tt.password, attrs...))
		})
	}
}

func TestSimilarityNeedsContiguousMatches(t *testing.T) {
	policy := PasswordPolicy{MinLength: 8}
	attrs := userAttributes("abcdefgh", "owner@example.com", "", "")

	assert.Empty(t, policy.Validate("hgfedcba71", attrs...), "same letters in reverse share no long block")
	assert.Equal(t, []string{"The password is too similar to the username."}, policy.Validate("abcdefgh71", attrs...))
}

func TestRatios(t *testing.T) {
	r := func(s string) []rune { return []rune(s) }

	assert.InDelta(t, 1.0, overlapRatio(r("abc"), r("cba")), 1e-9)
	assert.InDelta(t, 0.0, overlapRatio(r("abc"), r("xyz")), 1e-9)
	assert.InDelta(t, 0.5, overlapRatio(r("ab"), r("ax")), 1e-9)

	assert.InDelta(t, 1.0/3, similarity(r("abc"), r("cba")), 1e-9)
	assert.InDelta(t, 1.0, similarity(r("abc"), r("abc")), 1e-9)
	assert.InDelta(t, 0.75, similarity(r("abcd"), r("bcde")), 1e-9)
	assert.InDelta(t, 0.0, similarity(r(""), r("")), 1e-9)
}
