package domain

import (
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/trailhunt/internal/platform/errors"
)

// Group identifies one of the parallel hunt tracks.
type Group string

const (
	GroupUnspecified Group = ""
	GroupRed         Group = "red"
	GroupBlue        Group = "blue"
)

// Tracks maps each group to the fixed offset that translates external
// QR positions into in-group clue positions.
type Tracks struct {
	offsets map[Group]int
}

// DefaultTracks returns the production track layout: the red trail uses
// the external numbering directly and the blue trail starts at code 6.
func DefaultTracks() Tracks {
	return NewTracks(map[Group]int{
		GroupRed:  0,
		GroupBlue: 5,
	})
}

// NewTracks builds a track table from group offsets. Negative offsets are
// clamped to zero.
func NewTracks(offsets map[Group]int) Tracks {
	cloned := make(map[Group]int, len(offsets))
	for group, offset := range offsets {
		if offset < 0 {
			offset = 0
		}
		cloned[group] = offset
	}
	return Tracks{offsets: cloned}
}

// Groups returns the configured group tags.
func (t Tracks) Groups() []Group {
	out := make([]Group, 0, len(t.offsets))
	for group := range t.offsets {
		out = append(out, group)
	}
	return out
}

// ParseGroup canonicalizes a submitted group tag against the track table.
func (t Tracks) ParseGroup(value string) (Group, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return GroupUnspecified, apperrors.New(apperrors.CodeTeamGroupMissing, "group selection is required")
	}
	group := Group(trimmed)
	if _, ok := t.offsets[group]; !ok {
		return GroupUnspecified, apperrors.WithMetadata(apperrors.CodeTeamGroupUnknown,
			"unknown group "+trimmed, map[string]string{"Group": trimmed})
	}
	return group, nil
}

// Has reports whether group is part of the track table.
func (t Tracks) Has(group Group) bool {
	_, ok := t.offsets[group]
	return ok
}

// Translate converts an external locator position into the group's
// in-group clue position. Positions at or below the group's offset belong
// to another trail.
func (t Tracks) Translate(group Group, external int) (int, error) {
	offset, ok := t.offsets[group]
	if !ok {
		return 0, apperrors.WithMetadata(apperrors.CodeTeamGroupUnknown,
			"unknown group "+string(group), map[string]string{"Group": string(group)})
	}
	inGroup := external - offset
	if inGroup < 1 {
		return 0, apperrors.WithMetadata(apperrors.CodeClueOutsideTrack,
			"external position "+strconv.Itoa(external)+" is below the "+string(group)+" trail",
			map[string]string{"Group": string(group), "Position": strconv.Itoa(external)})
	}
	return inGroup, nil
}
