package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS salbp_instances (
    name       TEXT PRIMARY KEY,
    alb        TEXT NOT NULL,
    sol        TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_salbp_instances_created ON salbp_instances(created_at);
`

// CreateSchema creates the salbp_instances table if it doesn't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the salbp_instances table.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS salbp_instances CASCADE;`)
	return err
}
