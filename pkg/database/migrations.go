package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql"
)

// CreateGINIndexes creates full-text search GIN indexes for PostgreSQL.
// This enables efficient full-text search over node content when history
// listings grow large.
func CreateGINIndexes(ctx context.Context, driver *sql.Driver) error {
	db := driver.DB()

	_, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_nodes_content_gin
		ON nodes USING gin(to_tsvector('english', content))`)
	if err != nil {
		return fmt.Errorf("failed to create content GIN index: %w", err)
	}

	return nil
}
