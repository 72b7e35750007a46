package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/louisbranch/trailhunt/internal/services/hunt/domain"
	"github.com/louisbranch/trailhunt/internal/services/hunt/storage"
)

// ClueByPosition loads one clue by its in-group position.
func (s *Store) ClueByPosition(ctx context.Context, group domain.Group, position int) (domain.Clue, error) {
	if s == nil || s.sqlDB == nil {
		return domain.Clue{}, fmt.Errorf("storage is not configured")
	}
	if position < 1 {
		return domain.Clue{}, fmt.Errorf("clue position must be >= 1")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT group_name, position, question, answer, hint
		 FROM clues
		 WHERE group_name = ? AND position = ?`,
		string(group), position,
	)

	clue, err := scanClue(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Clue{}, storage.ErrNotFound
		}
		return domain.Clue{}, fmt.Errorf("get clue: %w", err)
	}
	return clue, nil
}

// CluesByGroup returns a group's clues ordered by position.
func (s *Store) CluesByGroup(ctx context.Context, group domain.Group) ([]domain.Clue, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT group_name, position, question, answer, hint
		 FROM clues
		 WHERE group_name = ?
		 ORDER BY position`,
		string(group),
	)
	if err != nil {
		return nil, fmt.Errorf("list clues: %w", err)
	}
	defer rows.Close()

	var clues []domain.Clue
	for rows.Next() {
		clue, err := scanClue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clue: %w", err)
		}
		clues = append(clues, clue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clues: %w", err)
	}
	return clues, nil
}

// PutClue upserts authored clue content for seeding.
func (s *Store) PutClue(ctx context.Context, clue domain.Clue) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if clue.Position < 1 {
		return fmt.Errorf("clue position must be >= 1")
	}
	if clue.Group == domain.GroupUnspecified {
		return fmt.Errorf("clue group is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO clues (group_name, position, question, answer, hint)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(group_name, position) DO UPDATE SET
		    question = excluded.question,
		    answer = excluded.answer,
		    hint = excluded.hint`,
		string(clue.Group), clue.Position, clue.Question, clue.Answer, clue.Hint,
	)
	if err != nil {
		return fmt.Errorf("put clue: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClue(row rowScanner) (domain.Clue, error) {
	var clue domain.Clue
	var group string
	if err := row.Scan(&group, &clue.Position, &clue.Question, &clue.Answer, &clue.Hint); err != nil {
		return domain.Clue{}, err
	}
	clue.Group = domain.Group(group)
	return clue, nil
}

var _ storage.ClueStore = (*Store)(nil)
