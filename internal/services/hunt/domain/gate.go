package domain

import (
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/trailhunt/internal/platform/errors"
)

// Decision is the gating outcome for a requested clue position.
type Decision string

const (
	// DecisionBlocked means the team tried to skip ahead of its allowed
	// position.
	DecisionBlocked Decision = "blocked"
	// DecisionReadOnly means the clue was already solved; it renders
	// without answer evaluation.
	DecisionReadOnly Decision = "read_only"
	// DecisionAnswering means the requested position is exactly the next
	// allowed one.
	DecisionAnswering Decision = "answering"
)

// Gate compares the requested in-group position against the allowed
// position derived from durable progress.
func Gate(requested, allowed int) Decision {
	switch {
	case requested > allowed:
		return DecisionBlocked
	case requested < allowed:
		return DecisionReadOnly
	default:
		return DecisionAnswering
	}
}

// ParseLocator extracts the external clue position from the URL parameter.
// Absent, non-numeric, and non-positive values are hard input errors.
func ParseLocator(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, apperrors.New(apperrors.CodeLocatorInvalid, "locator position is missing")
	}
	position, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeLocatorInvalid, "locator position "+trimmed+" is not a number", err)
	}
	if position < 1 {
		return 0, apperrors.New(apperrors.CodeLocatorInvalid, "locator position must be >= 1")
	}
	return position, nil
}
