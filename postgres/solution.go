package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/salbp"
)

// GetSolution fetches the reference solution text of an instance.
// Returns ErrSolutionNotFound if the instance is unknown or has none.
func (s *PGStore) GetSolution(ctx context.Context, name string) (string, error) {
	var text *string
	err := s.db.QueryRow(ctx,
		`SELECT sol FROM salbp_instances WHERE name = $1`, name,
	).Scan(&text)

	if err != nil {
		if isNoRows(err) {
			return "", fmt.Errorf("%w: %s", salbp.ErrSolutionNotFound, name)
		}
		return "", fmt.Errorf("salbp: get solution: %w", err)
	}
	if text == nil {
		return "", fmt.Errorf("%w: %s", salbp.ErrSolutionNotFound, name)
	}

	return *text, nil
}

// PutSolution stores the reference solution of an existing instance.
// Returns ErrInstanceNotFound if the instance doesn't exist.
func (s *PGStore) PutSolution(ctx context.Context, name, text string) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE salbp_instances SET sol = $1, updated_at = NOW() WHERE name = $2`,
		text, name,
	)
	if err != nil {
		return fmt.Errorf("salbp: put solution: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", salbp.ErrInstanceNotFound, name)
	}
	return nil
}
