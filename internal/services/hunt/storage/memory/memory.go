// Package memory implements the hunt storage contracts in process memory.
// It backs tests and single-process demos; durable deployments use the
// sqlite store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/louisbranch/trailhunt/internal/services/hunt/domain"
	"github.com/louisbranch/trailhunt/internal/services/hunt/storage"
)

// Store keeps teams, clues, and solved positions behind one mutex. The
// solved set mirrors the event-log model: allowed = len(solved) + 1.
type Store struct {
	mu     sync.Mutex
	teams  map[string]domain.Team
	clues  map[domain.Group]map[int]domain.Clue
	solved map[string]map[int]bool
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		teams:  map[string]domain.Team{},
		clues:  map[domain.Group]map[int]domain.Clue{},
		solved: map[string]map[int]bool{},
	}
}

// TeamByName returns a registered team, or storage.ErrNotFound.
func (s *Store) TeamByName(ctx context.Context, name string) (domain.Team, error) {
	if err := ctx.Err(); err != nil {
		return domain.Team{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.teams[strings.TrimSpace(name)]
	if !ok {
		return domain.Team{}, storage.ErrNotFound
	}
	return team, nil
}

// RegisterTeam inserts a team; an existing row wins, like a uniqueness
// conflict resolved by re-reading.
func (s *Store) RegisterTeam(ctx context.Context, team domain.Team) (domain.Team, error) {
	if err := ctx.Err(); err != nil {
		return domain.Team{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.teams[team.Name]; ok {
		return existing, nil
	}
	s.teams[team.Name] = team
	return team, nil
}

// ClueByPosition returns the clue at an in-group position.
func (s *Store) ClueByPosition(ctx context.Context, group domain.Group, position int) (domain.Clue, error) {
	if err := ctx.Err(); err != nil {
		return domain.Clue{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clue, ok := s.clues[group][position]
	if !ok {
		return domain.Clue{}, storage.ErrNotFound
	}
	return clue, nil
}

// CluesByGroup returns a group's clues ordered by position.
func (s *Store) CluesByGroup(ctx context.Context, group domain.Group) ([]domain.Clue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Clue, 0, len(s.clues[group]))
	for _, clue := range s.clues[group] {
		out = append(out, clue)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// PutClue inserts or replaces clue content.
func (s *Store) PutClue(ctx context.Context, clue domain.Clue) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byPosition, ok := s.clues[clue.Group]
	if !ok {
		byPosition = map[int]domain.Clue{}
		s.clues[clue.Group] = byPosition
	}
	byPosition[clue.Position] = clue
	return nil
}

// CurrentAllowedPosition counts solved positions and adds one.
func (s *Store) CurrentAllowedPosition(ctx context.Context, teamName string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.solved[teamName]) + 1, nil
}

// RecordSolved marks a position solved; duplicates are success.
func (s *Store) RecordSolved(ctx context.Context, teamName string, position int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	positions, ok := s.solved[teamName]
	if !ok {
		positions = map[int]bool{}
		s.solved[teamName] = positions
	}
	positions[position] = true
	return nil
}

var (
	_ storage.TeamStore     = (*Store)(nil)
	_ storage.ClueStore     = (*Store)(nil)
	_ storage.ProgressStore = (*Store)(nil)
)
