package accounts

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// similarityThreshold is the match ratio at which a password counts as too
// close to one of the user's attributes.
const similarityThreshold = 0.7

var attributeSplit = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// commonPasswords is a short deny-list of passwords seen in every breach dump.
var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "passw0rd": {}, "p@ssw0rd": {},
	"12345678": {}, "123456789": {}, "1234567890": {}, "11111111": {}, "00000000": {},
	"qwerty123": {}, "qwertyuiop": {}, "1q2w3e4r": {}, "1qaz2wsx": {}, "zaq12wsx": {},
	"iloveyou": {}, "sunshine": {}, "princess": {}, "football": {}, "baseball": {},
	"superman": {}, "trustno1": {}, "letmein1": {}, "welcome1": {}, "whatever": {},
	"starwars": {}, "computer": {}, "michelle": {}, "jennifer": {}, "master123": {},
	"admin123": {}, "changeme": {}, "abcd1234": {}, "abc12345": {}, "asdfghjkl": {},
	"dragon123": {}, "monkey123": {}, "shadow123": {}, "access14": {}, "mustang1": {},
}

// UserAttribute is a named value the password must not resemble.
type UserAttribute struct {
	Name  string
	Value string
}

// PasswordPolicy validates new passwords.
type PasswordPolicy struct {
	MinLength int
}

// Validate returns every rule the password breaks, in a stable order.
func (p PasswordPolicy) Validate(password string, attrs ...UserAttribute) []string {
	var msgs []string
	lower := strings.ToLower(password)

	for _, attr := range attrs {
		if tooSimilar(lower, strings.ToLower(attr.Value)) {
			msgs = append(msgs, fmt.Sprintf("The password is too similar to the %s.", attr.Name))
			break
		}
	}

	if utf8.RuneCountInString(password) < p.MinLength {
		msgs = append(msgs, fmt.Sprintf("This password is too short. It must contain at least %d characters.", p.MinLength))
	}

	if _, ok := commonPasswords[lower]; ok {
		msgs = append(msgs, "This password is too common.")
	}

	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		msgs = append(msgs, "This password is entirely numeric.")
	}

	return msgs
}

func tooSimilar(password, value string) bool {
	if password == "" || value == "" {
		return false
	}
	parts := append(attributeSplit.Split(value, -1), value)
	for _, part := range parts {
		if part == "" {
			continue
		}
		pw, val := []rune(password), []rune(part)
		if overlapRatio(pw, val) >= similarityThreshold && similarity(pw, val) >= similarityThreshold {
			return true
		}
	}
	return false
}

// overlapRatio is 2*M/T where M counts characters the two strings share
// (as multisets) and T is their combined length. It bounds similarity from
// above and rules most values out without the quadratic match below.
func overlapRatio(a, b []rune) float64 {
	counts := map[rune]int{}
	for _, r := range b {
		counts[r]++
	}
	matches := 0
	for _, r := range a {
		if counts[r] > 0 {
			counts[r]--
			matches++
		}
	}
	return ratio(matches, len(a)+len(b))
}

// similarity is 2*M/T where M is the number of characters in the matching
// blocks found by repeatedly taking the longest common substring and
// recursing on both sides of it.
func similarity(a, b []rune) float64 {
	return ratio(matchedRunes(a, b), len(a)+len(b))
}

func matchedRunes(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bj, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchedRunes(a[:ai], b[:bj]) +
		matchedRunes(a[ai+size:], b[bj+size:])
}

// longestMatch returns the earliest longest common substring of a and b.
func longestMatch(a, b []rune) (ai, bj, size int) {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := range a {
		for j := range b {
			if a[i] != b[j] {
				cur[j+1] = 0
				continue
			}
			cur[j+1] = prev[j] + 1
			if cur[j+1] > size {
				size = cur[j+1]
				ai, bj = i-size+1, j-size+1
			}
		}
		prev, cur = cur, prev
	}
	return ai, bj, size
}

func ratio(matches, total int) float64 {
	if total == 0 {
		return 0
	}
	return 2 * float64(matches) / float64(total)
}
