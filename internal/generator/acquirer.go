package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/domain"
)

// DefaultMaxAttempts caps the rejection-sampling loop when age bounds are
// requested. The upstream source cannot filter by age, so out-of-range
// records are discarded and refetched; without a cap a narrow age window
// would loop forever.
const DefaultMaxAttempts = 10

// Acquirer fetches one raw identity from the upstream source and normalizes
// it into a Profile, retrying while the returned age violates the requested
// bounds.
type Acquirer struct {
	source      domain.IdentitySource
	maxAttempts int
	logger      *slog.Logger
}

// NewAcquirer creates an acquirer. maxAttempts <= 0 falls back to
// DefaultMaxAttempts.
func NewAcquirer(source domain.IdentitySource, maxAttempts int, logger *slog.Logger) *Acquirer {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Acquirer{
		source:      source,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Acquire returns a normalized base identity matching the filters, or
// ErrInvalidInput for malformed filters, ErrUpstreamUnavailable when the
// source fails, ErrRetryExhausted when the age bounds cannot be satisfied
// within the attempt cap.
func (a *Acquirer) Acquire(ctx context.Context, filters domain.GenerateFilters) (*domain.Profile, error) {
	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := a.source.FetchOne(ctx, filters.Nationality, filters.Gender)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			if errors.Is(err, domain.ErrUpstreamUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
		}

		profile := normalize(raw)
		if ageInBounds(profile.Age, filters.MinAge, filters.MaxAge) {
			return profile, nil
		}

		a.logger.Debug("discarding identity outside age bounds",
			slog.Int("age", profile.Age),
			slog.Int("min_age", filters.MinAge),
			slog.Int("max_age", filters.MaxAge),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", a.maxAttempts),
		)
	}

	return nil, fmt.Errorf("%w: no identity within age bounds [%d, %d] after %d attempts",
		domain.ErrRetryExhausted, filters.MinAge, filters.MaxAge, a.maxAttempts)
}

func validateFilters(filters domain.GenerateFilters) error {
	if filters.Gender != "" && !filters.Gender.Valid() {
		return fmt.Errorf("%w: gender must be male or female", domain.ErrInvalidInput)
	}
	if filters.Nationality != "" && (len(filters.Nationality) < 2 || len(filters.Nationality) > 10) {
		return fmt.Errorf("%w: nationality must be 2-10 characters", domain.ErrInvalidInput)
	}
	for _, age := range []int{filters.MinAge, filters.MaxAge} {
		if age != 0 && (age < 18 || age > 100) {
			return fmt.Errorf("%w: age bounds must be between 18 and 100", domain.ErrInvalidInput)
		}
	}
	if filters.MinAge != 0 && filters.MaxAge != 0 && filters.MinAge > filters.MaxAge {
		return fmt.Errorf("%w: minAge must not exceed maxAge", domain.ErrInvalidInput)
	}
	return nil
}

func ageInBounds(age, minAge, maxAge int) bool {
	if minAge != 0 && age < minAge {
		return false
	}
	if maxAge != 0 && age > maxAge {
		return false
	}
	return true
}

// normalize maps one upstream record into a Profile, assigning a fresh UUID.
// Age comes from the date of birth when the upstream value parsed; the
// upstream-reported age is the fallback.
func normalize(raw *domain.RawIdentity) *domain.Profile {
	age := raw.Age
	if !raw.DateOfBirth.IsZero() {
		age = yearsSince(raw.DateOfBirth, time.Now())
	}
	return &domain.Profile{
		ID:          uuid.NewString(),
		FirstName:   raw.FirstName,
		LastName:    raw.LastName,
		Email:       raw.Email,
		Phone:       raw.Phone,
		Gender:      domain.Gender(raw.Gender),
		Nationality: raw.Nationality,
		Age:         age,
		PhotoURL:    raw.PhotoURL,
		Address:     fmt.Sprintf("%d %s", raw.StreetNumber, raw.StreetName),
		City:        raw.City,
		State:       raw.State,
		Country:     raw.Country,
		Postcode:    raw.Postcode,
	}
}

// yearsSince counts whole years between birth and now.
func yearsSince(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.YearDay() < birth.YearDay() {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years
}
