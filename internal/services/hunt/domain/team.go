package domain

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/trailhunt/internal/platform/errors"
)

// Team is the identity unit owning a single progress pointer. Names are
// case-sensitive and chosen by the participants themselves.
type Team struct {
	Name         string
	Group        Group
	RegisteredAt time.Time
}

// NewTeam validates a registration request against the track table.
// The group is sticky after registration: storage wins over whatever the
// form re-submits on a later visit.
func NewTeam(name string, group string, tracks Tracks, now time.Time) (Team, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Team{}, apperrors.New(apperrors.CodeTeamNameEmpty, "team name is required")
	}
	parsed, err := tracks.ParseGroup(group)
	if err != nil {
		return Team{}, err
	}
	return Team{
		Name:         trimmed,
		Group:        parsed,
		RegisteredAt: now.UTC(),
	}, nil
}
