package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/domain"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/generator"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/observability/metrics"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/security/audit"
	"github.com/Ch4rC0M1n0U/osintgenerator/pkg/cache"
)

// IdentityAcquirer is what the service needs from the acquisition stage.
type IdentityAcquirer interface {
	Acquire(ctx context.Context, filters domain.GenerateFilters) (*domain.Profile, error)
}

// ActivityEvent is pushed to feed subscribers when a bundle changes.
type ActivityEvent struct {
	Type      string    `json:"type"` // "generated", "viewed", "deleted"
	ProfileID string    `json:"profile_id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivityPublisher fans events out to connected feed clients. Publish must
// not block.
type ActivityPublisher interface {
	Publish(event ActivityEvent)
}

// ProfileDetail is a bundle enriched with its tags and usage log.
type ProfileDetail struct {
	Profile        *domain.Profile
	SocialProfiles []*domain.SocialProfile
	Tags           []*domain.Tag
	UsageLog       []*domain.UsageLogEntry
}

var tagColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

const (
	tagCacheKey = "tags:all"
	tagCacheTTL = 30 * time.Second
)

// ProfileService orchestrates acquisition, derivation, and persistence of
// identity bundles.
type ProfileService struct {
	acquirer    IdentityAcquirer
	profileRepo domain.ProfileRepository
	tagRepo     domain.TagRepository
	usageRepo   domain.UsageLogRepository
	tagCache    *cache.Cache
	activity    ActivityPublisher
	auditLog    *audit.Logger
	newRng      func() *rand.Rand
	logger      *slog.Logger
}

// NewProfileService creates a new profile service. newRng may be nil, in
// which case each generation gets a time-seeded source; tests inject a fixed
// seed for reproducible bundles. activity may be nil when the feed is
// disabled.
func NewProfileService(
	acquirer IdentityAcquirer,
	profileRepo domain.ProfileRepository,
	tagRepo domain.TagRepository,
	usageRepo domain.UsageLogRepository,
	activity ActivityPublisher,
	auditLog *audit.Logger,
	newRng func() *rand.Rand,
	logger *slog.Logger,
) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	if newRng == nil {
		newRng = func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}

	return &ProfileService{
		acquirer:    acquirer,
		profileRepo: profileRepo,
		tagRepo:     tagRepo,
		usageRepo:   usageRepo,
		tagCache:    cache.New(),
		activity:    activity,
		auditLog:    auditLog,
		newRng:      newRng,
		logger:      logger,
	}
}

// Generate produces and persists one identity bundle for the calling
// operator: a base profile, its four platform personas, and the GENERATED
// usage log entry, all committed atomically.
func (s *ProfileService) Generate(ctx context.Context, userID int64, filters domain.GenerateFilters) (*domain.Bundle, error) {
	start := time.Now()

	profile, err := s.acquirer.Acquire(ctx, filters)
	if err != nil {
		metrics.ObserveGeneration("error", time.Since(start))
		return nil, err
	}
	profile.CreatedBy = userID

	personas, err := generator.Derive(profile, s.newRng())
	if err != nil {
		metrics.ObserveGeneration("error", time.Since(start))
		return nil, err
	}

	if err := s.profileRepo.CreateBundle(ctx, profile, personas); err != nil {
		metrics.ObserveGeneration("error", time.Since(start))
		if s.auditLog != nil {
			s.auditLog.LogGeneration(ctx, userID, profile.ID, "error", err.Error())
		}
		return nil, err
	}

	metrics.ObserveGeneration("success", time.Since(start))
	if s.auditLog != nil {
		s.auditLog.LogGeneration(ctx, userID, profile.ID, "success", "")
	}
	s.publish(ActivityEvent{Type: "generated", ProfileID: profile.ID, UserID: userID, Timestamp: time.Now()})

	s.logger.Info("bundle generated",
		slog.String("profile_id", profile.ID),
		slog.Int64("user_id", userID),
		slog.Duration("duration", time.Since(start)),
	)

	return &domain.Bundle{Profile: profile, SocialProfiles: personas}, nil
}

// Get returns a full bundle with tags and usage history. Reading a profile
// appends a VIEWED entry; failure to record the view is logged but never
// fails the read.
func (s *ProfileService) Get(ctx context.Context, userID int64, profileID string) (*ProfileDetail, error) {
	profile, err := s.profileRepo.GetByID(ctx, profileID, userID)
	if err != nil {
		return nil, err
	}

	socials, err := s.profileRepo.GetSocialProfiles(ctx, profileID)
	if err != nil {
		return nil, err
	}

	tags, err := s.tagRepo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	view := &domain.UsageLogEntry{ProfileID: profileID, UserID: userID, Action: domain.ActionViewed}
	if err := s.usageRepo.Append(ctx, view); err != nil {
		s.logger.Warn("failed to record profile view",
			slog.String("profile_id", profileID),
			slog.String("error", err.Error()),
		)
	} else {
		s.publish(ActivityEvent{Type: "viewed", ProfileID: profileID, UserID: userID, Timestamp: time.Now()})
	}

	usageLog, err := s.usageRepo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	return &ProfileDetail{
		Profile:        profile,
		SocialProfiles: socials,
		Tags:           tags,
		UsageLog:       usageLog,
	}, nil
}

// List returns the caller's profiles with aggregated tag names.
func (s *ProfileService) List(ctx context.Context, userID int64, opts domain.ListOptions) ([]*domain.Profile, error) {
	return s.profileRepo.List(ctx, userID, opts.Clamped())
}

// Delete removes a bundle. Personas, tag associations, and usage logs
// cascade away; the tags themselves stay available for other profiles.
func (s *ProfileService) Delete(ctx context.Context, userID int64, profileID string) error {
	if err := s.profileRepo.Delete(ctx, profileID, userID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			metrics.ObserveDeletion("error")
		}
		if s.auditLog != nil {
			s.auditLog.LogDeletion(ctx, userID, profileID, "error", err.Error())
		}
		return err
	}

	metrics.ObserveDeletion("success")
	if s.auditLog != nil {
		s.auditLog.LogDeletion(ctx, userID, profileID, "success", "")
	}
	s.publish(ActivityEvent{Type: "deleted", ProfileID: profileID, UserID: userID, Timestamp: time.Now()})

	s.logger.Info("bundle deleted",
		slog.String("profile_id", profileID),
		slog.Int64("user_id", userID),
	)

	return nil
}

// AttachTag labels a profile. The profile must belong to the caller; the tag
// is created on first use and attaching it twice is a no-op.
func (s *ProfileService) AttachTag(ctx context.Context, userID int64, profileID, name, color string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return fmt.Errorf("%w: tag name must be 1-50 characters", domain.ErrInvalidInput)
	}
	if color != "" && !tagColorPattern.MatchString(color) {
		return fmt.Errorf("%w: tag color must be a #RRGGBB value", domain.ErrInvalidInput)
	}

	if _, err := s.profileRepo.GetByID(ctx, profileID, userID); err != nil {
		return err
	}

	if err := s.tagRepo.Attach(ctx, profileID, name, color); err != nil {
		return err
	}

	s.tagCache.Delete(tagCacheKey)
	return nil
}

// ListTags returns every tag in the system. Results are cached briefly since
// the tag set changes rarely and the list backs a filter dropdown.
func (s *ProfileService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	if cached, ok := s.tagCache.Get(tagCacheKey); ok {
		if tags, ok := cached.([]*domain.Tag); ok {
			return tags, nil
		}
	}

	tags, err := s.tagRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	s.tagCache.Set(tagCacheKey, tags, tagCacheTTL)
	return tags, nil
}

func (s *ProfileService) publish(event ActivityEvent) {
	if s.activity != nil {
		s.activity.Publish(event)
	}
}
