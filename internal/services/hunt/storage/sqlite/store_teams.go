package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/louisbranch/trailhunt/internal/services/hunt/domain"
	"github.com/louisbranch/trailhunt/internal/services/hunt/storage"
)

// TeamByName loads a registered team by its exact name.
func (s *Store) TeamByName(ctx context.Context, name string) (domain.Team, error) {
	if s == nil || s.sqlDB == nil {
		return domain.Team{}, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Team{}, fmt.Errorf("team name is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT team_name, group_name, registered_at FROM teams WHERE team_name = ?`,
		name,
	)

	var team domain.Team
	var group string
	var registeredAt int64
	if err := row.Scan(&team.Name, &group, &registeredAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Team{}, storage.ErrNotFound
		}
		return domain.Team{}, fmt.Errorf("get team: %w", err)
	}
	team.Group = domain.Group(group)
	team.RegisteredAt = fromMillis(registeredAt)
	return team, nil
}

// RegisterTeam inserts a team registration. When two tabs race on the
// same name the losing insert re-reads and adopts the stored row, so the
// group stays sticky.
func (s *Store) RegisterTeam(ctx context.Context, team domain.Team) (domain.Team, error) {
	if s == nil || s.sqlDB == nil {
		return domain.Team{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(team.Name) == "" {
		return domain.Team{}, fmt.Errorf("team name is required")
	}
	if team.Group == domain.GroupUnspecified {
		return domain.Team{}, fmt.Errorf("team group is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO teams (team_name, group_name, registered_at) VALUES (?, ?, ?)`,
		team.Name, string(team.Group), toMillis(team.RegisteredAt),
	)
	if err != nil && !isConstraintViolation(err) {
		return domain.Team{}, fmt.Errorf("register team: %w", err)
	}
	return s.TeamByName(ctx, team.Name)
}

var _ storage.TeamStore = (*Store)(nil)
