package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/meikuraledutech/salbp"
)

var _ salbp.Store = (*PGStore)(nil)

// ListInstances returns every instance name in the order they were added.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListInstances(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT name FROM salbp_instances ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("salbp: list instances: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("salbp: scan instance: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("salbp: rows instances: %w", err)
	}

	return names, nil
}

// GetInstance fetches the raw instance text.
// Returns ErrInstanceNotFound if the name is unknown.
func (s *PGStore) GetInstance(ctx context.Context, name string) (string, error) {
	var text string
	err := s.db.QueryRow(ctx,
		`SELECT alb FROM salbp_instances WHERE name = $1`, name,
	).Scan(&text)

	if err != nil {
		if isNoRows(err) {
			return "", fmt.Errorf("%w: %s", salbp.ErrInstanceNotFound, name)
		}
		return "", fmt.Errorf("salbp: get instance: %w", err)
	}

	return text, nil
}

// PutInstance inserts or replaces the instance text. An existing reference
// solution is kept.
func (s *PGStore) PutInstance(ctx context.Context, name, text string) error {
	if err := checkName(name); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO salbp_instances (name, alb) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET alb = EXCLUDED.alb, updated_at = NOW()`,
		name, text,
	)
	if err != nil {
		return fmt.Errorf("salbp: put instance: %w", err)
	}
	return nil
}

// DeleteInstance removes an instance and its solution.
// No error if the name doesn't exist.
func (s *PGStore) DeleteInstance(ctx context.Context, name string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM salbp_instances WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("salbp: delete instance: %w", err)
	}
	return nil
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %q", salbp.ErrInvalidName, name)
	}
	return nil
}
