package engine

import (
	"sync"

	apperrors "github.com/louisbranch/trailhunt/internal/platform/errors"
	"github.com/louisbranch/trailhunt/internal/services/hunt/domain"
)

// State is a session's position in the page life cycle.
type State string

const (
	// StateLoading is the initial transient state.
	StateLoading State = "loading"
	// StateRegistering prompts for a team name (and group).
	StateRegistering State = "registering"
	// StateBlocked means the team tried to skip ahead; the message names
	// the exact position to solve first.
	StateBlocked State = "blocked"
	// StateReadOnlySolved renders an already-solved clue without answer
	// evaluation.
	StateReadOnlySolved State = "read_only"
	// StateAnswering accepts answer submissions.
	StateAnswering State = "answering"
	// StateAdvancing reveals the follow-up hint; the next clue is only
	// reachable through a fresh load.
	StateAdvancing State = "advancing"
	// StateFailed is terminal for this load.
	StateFailed State = "failed"
)

// Session is the explicit state object for one page life cycle. Nothing
// survives it: durable state is re-derived on the next load. All
// accessors take the session mutex; Submit mutates state concurrently
// with rendering reads.
type Session struct {
	mu sync.Mutex

	state         State
	staleIdentity bool

	external int
	position int
	allowed  int

	team domain.Team
	clue domain.Clue

	answered bool
	err      *apperrors.Error
}

// State returns the current life-cycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StaleIdentity reports that the locally cached team was not found
// durably; the caller should purge its cache before re-registering.
func (s *Session) StaleIdentity() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staleIdentity
}

// Team returns the resolved team. Zero until identity is resolved.
func (s *Session) Team() domain.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.team
}

// External returns the raw locator position.
func (s *Session) External() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.external
}

// Position returns the translated in-group position. All participant
// facing output uses this value, never the raw external code.
func (s *Session) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Allowed returns the durable allowed position read during gating.
func (s *Session) Allowed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allowed
}

// Clue returns the fetched clue for read-only and answering states.
func (s *Session) Clue() domain.Clue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clue
}

// Err returns the terminal failure, or nil.
func (s *Session) Err() *apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) fail(err error) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
	if domainErr, ok := err.(*apperrors.Error); ok {
		s.err = domainErr
	} else {
		s.err = apperrors.Wrap(apperrors.CodeUnknown, "session failed", err)
	}
	return s
}
