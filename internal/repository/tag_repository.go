package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/domain"
)

// foreignKeyViolation is the PostgreSQL error code for FK failures.
const foreignKeyViolation = "23503"

// PostgresTagRepository implements domain.TagRepository using PostgreSQL
type PostgresTagRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTagRepository creates a new tag repository
func NewPostgresTagRepository(db *sql.DB, logger *slog.Logger) *PostgresTagRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTagRepository{
		db:     db,
		logger: logger,
	}
}

// Attach creates the tag if it does not exist yet and links it to the
// profile. Both inserts use ON CONFLICT DO NOTHING, so repeating the call
// with the same arguments is a no-op. A color passed for an existing tag is
// ignored; the first creation wins.
func (r *PostgresTagRepository) Attach(ctx context.Context, profileID, name, color string) error {
	if uuid.Validate(profileID) != nil {
		return domain.ErrNotFound
	}
	if color == "" {
		color = domain.DefaultTagColor
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", domain.ErrPersistenceFailed, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO tags (name, color) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		name, color,
	); err != nil {
		return fmt.Errorf("%w: insert tag: %v", domain.ErrPersistenceFailed, err)
	}

	var tagID int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = $1`, name).Scan(&tagID); err != nil {
		return fmt.Errorf("%w: resolve tag id: %v", domain.ErrPersistenceFailed, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO profile_tags (profile_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		profileID, tagID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return domain.ErrNotFound
		}
		r.logger.Error("failed to attach tag",
			slog.String("profile_id", profileID),
			slog.String("tag", name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: attach tag: %v", domain.ErrPersistenceFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrPersistenceFailed, err)
	}

	return nil
}

// ListByProfile returns the tags attached to a profile, sorted by name.
func (r *PostgresTagRepository) ListByProfile(ctx context.Context, profileID string) ([]*domain.Tag, error) {
	if uuid.Validate(profileID) != nil {
		return nil, domain.ErrNotFound
	}

	query := `
		SELECT t.id, t.name, t.color, t.created_at
		FROM tags t
		JOIN profile_tags pt ON pt.tag_id = t.id
		WHERE pt.profile_id = $1
		ORDER BY t.name
	`

	return r.queryTags(ctx, query, profileID)
}

// ListAll returns every tag, sorted by name.
func (r *PostgresTagRepository) ListAll(ctx context.Context) ([]*domain.Tag, error) {
	return r.queryTags(ctx, `SELECT id, name, color, created_at FROM tags ORDER BY name`)
}

// Count returns the number of distinct tags.
func (r *PostgresTagRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count tags: %v", domain.ErrPersistenceFailed, err)
	}
	return count, nil
}

func (r *PostgresTagRepository) queryTags(ctx context.Context, query string, args ...any) ([]*domain.Tag, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query tags: %v", domain.ErrPersistenceFailed, err)
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		tag := &domain.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan tag: %v", domain.ErrPersistenceFailed, err)
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}
