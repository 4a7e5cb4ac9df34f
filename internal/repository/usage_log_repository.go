package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/domain"
)

// PostgresUsageLogRepository implements domain.UsageLogRepository using
// PostgreSQL. The table is append-only; rows only disappear when the parent
// profile cascades away.
type PostgresUsageLogRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresUsageLogRepository creates a new usage log repository
func NewPostgresUsageLogRepository(db *sql.DB, logger *slog.Logger) *PostgresUsageLogRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUsageLogRepository{
		db:     db,
		logger: logger,
	}
}

// Append records one action against a profile.
func (r *PostgresUsageLogRepository) Append(ctx context.Context, entry *domain.UsageLogEntry) error {
	query := `
		INSERT INTO usage_logs (profile_id, user_id, action, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		entry.ProfileID,
		entry.UserID,
		entry.Action,
		entry.Notes,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		r.logger.Error("failed to append usage log",
			slog.String("profile_id", entry.ProfileID),
			slog.String("action", entry.Action),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: append usage log: %v", domain.ErrPersistenceFailed, err)
	}

	return nil
}

// ListByProfile returns a profile's usage log, newest first.
func (r *PostgresUsageLogRepository) ListByProfile(ctx context.Context, profileID string) ([]*domain.UsageLogEntry, error) {
	if uuid.Validate(profileID) != nil {
		return nil, domain.ErrNotFound
	}

	query := `
		SELECT id, profile_id, user_id, action, notes, created_at
		FROM usage_logs
		WHERE profile_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("%w: list usage logs: %v", domain.ErrPersistenceFailed, err)
	}
	defer rows.Close()

	var entries []*domain.UsageLogEntry
	for rows.Next() {
		entry := &domain.UsageLogEntry{}
		if err := rows.Scan(&entry.ID, &entry.ProfileID, &entry.UserID, &entry.Action, &entry.Notes, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan usage log: %v", domain.ErrPersistenceFailed, err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
