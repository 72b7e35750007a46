package domain

import "strings"

// Clue is one question on a trail, addressed by its in-group position.
type Clue struct {
	Group    Group
	Position int
	Question string
	Answer   string
	// Hint is the follow-up text revealed after a correct answer. Empty
	// hints fall back to a default "find the next code" message at render
	// time.
	Hint string
}

// NormalizeAnswer prepares an answer for comparison: surrounding
// whitespace is ignored and matching is case-insensitive.
func NormalizeAnswer(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// CheckAnswer compares a submission against the expected answer.
// Blank submissions are not evaluated at all: evaluated reports whether a
// verdict was produced.
func (c Clue) CheckAnswer(submitted string) (correct bool, evaluated bool) {
	normalized := NormalizeAnswer(submitted)
	if normalized == "" {
		return false, false
	}
	return normalized == NormalizeAnswer(c.Answer), true
}

// HintText returns the configured follow-up hint, trimmed.
func (c Clue) HintText() string {
	return strings.TrimSpace(c.Hint)
}
