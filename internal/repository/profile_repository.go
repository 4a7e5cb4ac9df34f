package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/domain"
)

// PostgresProfileRepository implements domain.ProfileRepository using PostgreSQL
type PostgresProfileRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresProfileRepository creates a new profile repository
func NewPostgresProfileRepository(db *sql.DB, logger *slog.Logger) *PostgresProfileRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProfileRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBundle writes the profile, its social profiles, and the GENERATED
// usage log entry in one transaction. Any failure rolls the whole bundle
// back; readers never observe a partial bundle.
func (r *PostgresProfileRepository) CreateBundle(ctx context.Context, profile *domain.Profile, socials []*domain.SocialProfile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", domain.ErrPersistenceFailed, err)
	}
	defer tx.Rollback()

	profileQuery := `
		INSERT INTO profiles (
			id, first_name, last_name, email, phone, gender, nationality, age,
			photo_url, address, city, state, country, postcode, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(ctx, profileQuery,
		profile.ID,
		profile.FirstName,
		profile.LastName,
		profile.Email,
		profile.Phone,
		string(profile.Gender),
		profile.Nationality,
		profile.Age,
		profile.PhotoURL,
		profile.Address,
		profile.City,
		profile.State,
		profile.Country,
		profile.Postcode,
		profile.CreatedBy,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to insert profile",
			slog.String("profile_id", profile.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: insert profile: %v", domain.ErrPersistenceFailed, err)
	}

	socialQuery := `
		INSERT INTO social_media_profiles (
			profile_id, platform, username, bio, followers, following, posts_count, interests, data
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	for _, social := range socials {
		interests, err := json.Marshal(social.Interests)
		if err != nil {
			return fmt.Errorf("%w: marshal interests: %v", domain.ErrPersistenceFailed, err)
		}
		data, err := json.Marshal(social.Data)
		if err != nil {
			return fmt.Errorf("%w: marshal platform data: %v", domain.ErrPersistenceFailed, err)
		}

		err = tx.QueryRowContext(ctx, socialQuery,
			profile.ID,
			string(social.Platform),
			social.Username,
			social.Bio,
			social.Followers,
			social.Following,
			social.PostsCount,
			interests,
			data,
		).Scan(&social.ID, &social.CreatedAt)
		if err != nil {
			r.logger.Error("failed to insert social profile",
				slog.String("profile_id", profile.ID),
				slog.String("platform", string(social.Platform)),
				slog.String("error", err.Error()),
			)
			return fmt.Errorf("%w: insert social profile: %v", domain.ErrPersistenceFailed, err)
		}
	}

	logQuery := `
		INSERT INTO usage_logs (profile_id, user_id, action, notes)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, logQuery, profile.ID, profile.CreatedBy, domain.ActionGenerated, ""); err != nil {
		return fmt.Errorf("%w: insert usage log: %v", domain.ErrPersistenceFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit bundle: %v", domain.ErrPersistenceFailed, err)
	}

	return nil
}

const profileColumns = `
	id, first_name, last_name, email, phone, gender, nationality, age,
	photo_url, address, city, state, country, postcode, created_by, created_at, updated_at
`

// GetByID returns the profile when it exists and belongs to ownerID. A
// missing row and an ownership mismatch are both domain.ErrNotFound so that
// existence never leaks to a non-owner.
func (r *PostgresProfileRepository) GetByID(ctx context.Context, id string, ownerID int64) (*domain.Profile, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrNotFound
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1 AND created_by = $2`

	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("failed to get profile",
			slog.String("profile_id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: get profile: %v", domain.ErrPersistenceFailed, err)
	}

	return profile, nil
}

// GetSocialProfiles returns the personas of a profile in platform insertion
// order.
func (r *PostgresProfileRepository) GetSocialProfiles(ctx context.Context, profileID string) ([]*domain.SocialProfile, error) {
	if uuid.Validate(profileID) != nil {
		return nil, domain.ErrNotFound
	}

	query := `
		SELECT id, profile_id, platform, username, bio, followers, following, posts_count, interests, data, created_at
		FROM social_media_profiles
		WHERE profile_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("%w: list social profiles: %v", domain.ErrPersistenceFailed, err)
	}
	defer rows.Close()

	var socials []*domain.SocialProfile
	for rows.Next() {
		social := &domain.SocialProfile{}
		var interests, data []byte

		err := rows.Scan(
			&social.ID,
			&social.ProfileID,
			&social.Platform,
			&social.Username,
			&social.Bio,
			&social.Followers,
			&social.Following,
			&social.PostsCount,
			&interests,
			&data,
			&social.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scan social profile: %v", domain.ErrPersistenceFailed, err)
		}

		if err := json.Unmarshal(interests, &social.Interests); err != nil {
			return nil, fmt.Errorf("%w: decode interests: %v", domain.ErrPersistenceFailed, err)
		}
		social.Data, err = decodePlatformData(social.Platform, data)
		if err != nil {
			return nil, fmt.Errorf("%w: decode platform data: %v", domain.ErrPersistenceFailed, err)
		}

		socials = append(socials, social)
	}

	return socials, rows.Err()
}

// List returns the caller's profiles, newest first, with their tag names
// aggregated. Search matches a case-insensitive substring of first name,
// last name, or email; tag filters on an exact tag name.
func (r *PostgresProfileRepository) List(ctx context.Context, ownerID int64, opts domain.ListOptions) ([]*domain.Profile, error) {
	query := `
		SELECT p.id, p.first_name, p.last_name, p.email, p.phone, p.gender, p.nationality, p.age,
			p.photo_url, p.address, p.city, p.state, p.country, p.postcode, p.created_by,
			p.created_at, p.updated_at,
			COALESCE(array_agg(t.name ORDER BY t.name) FILTER (WHERE t.name IS NOT NULL), '{}')
		FROM profiles p
		LEFT JOIN profile_tags pt ON pt.profile_id = p.id
		LEFT JOIN tags t ON t.id = pt.tag_id
		WHERE p.created_by = $1
			AND ($2 = '' OR p.first_name ILIKE '%' || $2 || '%'
				OR p.last_name ILIKE '%' || $2 || '%'
				OR p.email ILIKE '%' || $2 || '%')
			AND ($3 = '' OR EXISTS (
				SELECT 1 FROM profile_tags pt2
				JOIN tags t2 ON t2.id = pt2.tag_id
				WHERE pt2.profile_id = p.id AND t2.name = $3
			))
		GROUP BY p.id
		ORDER BY p.created_at DESC
		LIMIT $4 OFFSET $5
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID, opts.Search, opts.Tag, opts.Limit, opts.Offset)
	if err != nil {
		r.logger.Error("failed to list profiles",
			slog.Int64("owner_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: list profiles: %v", domain.ErrPersistenceFailed, err)
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		profile := &domain.Profile{}
		err := rows.Scan(
			&profile.ID,
			&profile.FirstName,
			&profile.LastName,
			&profile.Email,
			&profile.Phone,
			&profile.Gender,
			&profile.Nationality,
			&profile.Age,
			&profile.PhotoURL,
			&profile.Address,
			&profile.City,
			&profile.State,
			&profile.Country,
			&profile.Postcode,
			&profile.CreatedBy,
			&profile.CreatedAt,
			&profile.UpdatedAt,
			pq.Array(&profile.Tags),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scan profile: %v", domain.ErrPersistenceFailed, err)
		}
		profiles = append(profiles, profile)
	}

	return profiles, rows.Err()
}

// Delete removes the profile when it belongs to ownerID. Social profiles,
// tag associations, and usage logs go with it through ON DELETE CASCADE;
// tags themselves survive.
func (r *PostgresProfileRepository) Delete(ctx context.Context, id string, ownerID int64) error {
	if uuid.Validate(id) != nil {
		return domain.ErrNotFound
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1 AND created_by = $2`, id, ownerID)
	if err != nil {
		r.logger.Error("failed to delete profile",
			slog.String("profile_id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: delete profile: %v", domain.ErrPersistenceFailed, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", domain.ErrPersistenceFailed, err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Count returns the total number of stored profiles across all owners.
func (r *PostgresProfileRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count profiles: %v", domain.ErrPersistenceFailed, err)
	}
	return count, nil
}

func scanProfile(row *sql.Row) (*domain.Profile, error) {
	profile := &domain.Profile{}
	err := row.Scan(
		&profile.ID,
		&profile.FirstName,
		&profile.LastName,
		&profile.Email,
		&profile.Phone,
		&profile.Gender,
		&profile.Nationality,
		&profile.Age,
		&profile.PhotoURL,
		&profile.Address,
		&profile.City,
		&profile.State,
		&profile.Country,
		&profile.Postcode,
		&profile.CreatedBy,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// decodePlatformData unmarshals the stored JSON payload into the concrete
// type for the platform.
func decodePlatformData(platform domain.Platform, data []byte) (domain.PlatformData, error) {
	switch platform {
	case domain.PlatformFacebook:
		var d domain.FacebookData
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return d, nil
	case domain.PlatformInstagram:
		var d domain.InstagramData
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return d, nil
	case domain.PlatformTwitter:
		var d domain.TwitterData
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return d, nil
	case domain.PlatformLinkedIn:
		var d domain.LinkedInData
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown platform %q", platform)
	}
}
