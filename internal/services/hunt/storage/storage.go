// Package storage defines the persistence contracts for the hunt service.
//
// The progress contract has two durable representations, selectable at
// assembly time: an append-only event log (one row per solved position)
// and a per-team counter. Both derive the allowed position from durable
// state alone; clients never supply it.
package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/trailhunt/internal/services/hunt/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ProgressModel selects the durable representation of team progress.
type ProgressModel string

const (
	// ProgressModelEvents keeps one immutable row per solved position.
	ProgressModelEvents ProgressModel = "events"
	// ProgressModelCounter keeps a single mutable next-position counter.
	ProgressModelCounter ProgressModel = "counter"
)

// ParseProgressModel validates a configured model name.
func ParseProgressModel(value string) (ProgressModel, error) {
	switch ProgressModel(value) {
	case ProgressModelEvents:
		return ProgressModelEvents, nil
	case ProgressModelCounter:
		return ProgressModelCounter, nil
	}
	return "", errors.New("progress model must be \"events\" or \"counter\"")
}

// TeamStore persists team registrations.
type TeamStore interface {
	// TeamByName returns a registered team, or ErrNotFound.
	TeamByName(ctx context.Context, name string) (domain.Team, error)
	// RegisterTeam inserts a team. A concurrent duplicate registration is
	// not an error: the stored team wins and is returned, including its
	// sticky group.
	RegisterTeam(ctx context.Context, team domain.Team) (domain.Team, error)
}

// ClueStore serves authored clue content.
type ClueStore interface {
	// ClueByPosition returns the clue at an in-group position, or
	// ErrNotFound.
	ClueByPosition(ctx context.Context, group domain.Group, position int) (domain.Clue, error)
	// CluesByGroup returns a group's clues ordered by position.
	CluesByGroup(ctx context.Context, group domain.Group) ([]domain.Clue, error)
	// PutClue inserts or replaces authored clue content.
	PutClue(ctx context.Context, clue domain.Clue) error
}

// ProgressStore is the sole authority for a team's allowed position.
type ProgressStore interface {
	// CurrentAllowedPosition returns the next position the team may
	// answer, always >= 1. Teams without durable progress start fresh at
	// 1, which makes a backing-store reset self-healing.
	CurrentAllowedPosition(ctx context.Context, teamName string) (int, error)
	// RecordSolved durably records a solved position. The write is
	// idempotent: duplicates (page refresh, two devices racing) succeed
	// without advancing the allowed position twice.
	RecordSolved(ctx context.Context, teamName string, position int) error
}
