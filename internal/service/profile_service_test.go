package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/domain"
)

type stubAcquirer struct {
	err error
}

func (s *stubAcquirer) Acquire(_ context.Context, filters domain.GenerateFilters) (*domain.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Profile{
		ID:        uuid.NewString(),
		FirstName: "Lena",
		LastName:  "Janssens",
		Email:     "lena.janssens@example.com",
		Gender:    domain.GenderFemale,
		Age:       29,
		City:      "Ghent",
		Country:   "Belgium",
	}, nil
}

type memProfileRepo struct {
	profiles   map[string]*domain.Profile
	socials    map[string][]*domain.SocialProfile
	usage      *memUsageRepo
	failCreate bool
}

func newMemProfileRepo(usage *memUsageRepo) *memProfileRepo {
	return &memProfileRepo{
		profiles: map[string]*domain.Profile{},
		socials:  map[string][]*domain.SocialProfile{},
		usage:    usage,
	}
}

func (m *memProfileRepo) CreateBundle(ctx context.Context, profile *domain.Profile, socials []*domain.SocialProfile) error {
	if m.failCreate {
		return domain.ErrPersistenceFailed
	}
	profile.CreatedAt = time.Now()
	m.profiles[profile.ID] = profile
	m.socials[profile.ID] = socials
	return m.usage.Append(ctx, &domain.UsageLogEntry{
		ProfileID: profile.ID,
		UserID:    profile.CreatedBy,
		Action:    domain.ActionGenerated,
	})
}

func (m *memProfileRepo) GetByID(_ context.Context, id string, ownerID int64) (*domain.Profile, error) {
	p, ok := m.profiles[id]
	if !ok || p.CreatedBy != ownerID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (m *memProfileRepo) GetSocialProfiles(_ context.Context, profileID string) ([]*domain.SocialProfile, error) {
	return m.socials[profileID], nil
}

func (m *memProfileRepo) List(_ context.Context, ownerID int64, opts domain.ListOptions) ([]*domain.Profile, error) {
	var out []*domain.Profile
	for _, p := range m.profiles {
		if p.CreatedBy == ownerID {
			out = append(out, p)
		}
	}
	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memProfileRepo) Delete(_ context.Context, id string, ownerID int64) error {
	p, ok := m.profiles[id]
	if !ok || p.CreatedBy != ownerID {
		return domain.ErrNotFound
	}
	delete(m.profiles, id)
	delete(m.socials, id)
	return nil
}

func (m *memProfileRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.profiles)), nil
}

type memTagRepo struct {
	tags        map[string]*domain.Tag
	assoc       map[string]map[string]bool // profileID -> tag names
	listAllHits int
	nextID      int64
}

func newMemTagRepo() *memTagRepo {
	return &memTagRepo{tags: map[string]*domain.Tag{}, assoc: map[string]map[string]bool{}}
}

func (m *memTagRepo) Attach(_ context.Context, profileID, name, color string) error {
	if _, ok := m.tags[name]; !ok {
		m.nextID++
		if color == "" {
			color = domain.DefaultTagColor
		}
		m.tags[name] = &domain.Tag{ID: m.nextID, Name: name, Color: color}
	}
	if m.assoc[profileID] == nil {
		m.assoc[profileID] = map[string]bool{}
	}
	m.assoc[profileID][name] = true
	return nil
}

func (m *memTagRepo) ListByProfile(_ context.Context, profileID string) ([]*domain.Tag, error) {
	var out []*domain.Tag
	for name := range m.assoc[profileID] {
		out = append(out, m.tags[name])
	}
	return out, nil
}

func (m *memTagRepo) ListAll(_ context.Context) ([]*domain.Tag, error) {
	m.listAllHits++
	var out []*domain.Tag
	for _, tag := range m.tags {
		out = append(out, tag)
	}
	return out, nil
}

func (m *memTagRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.tags)), nil
}

type memUsageRepo struct {
	entries    []*domain.UsageLogEntry
	failAppend bool
}

func (m *memUsageRepo) Append(_ context.Context, entry *domain.UsageLogEntry) error {
	if m.failAppend {
		return domain.ErrPersistenceFailed
	}
	entry.ID = int64(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memUsageRepo) ListByProfile(_ context.Context, profileID string) ([]*domain.UsageLogEntry, error) {
	var out []*domain.UsageLogEntry
	for _, e := range m.entries {
		if e.ProfileID == profileID {
			out = append(out, e)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	events []ActivityEvent
}

func (r *recordingPublisher) Publish(event ActivityEvent) {
	r.events = append(r.events, event)
}

type fixture struct {
	svc       *ProfileService
	profiles  *memProfileRepo
	tags      *memTagRepo
	usage     *memUsageRepo
	acquirer  *stubAcquirer
	publisher *recordingPublisher
}

func newFixture() *fixture {
	usage := &memUsageRepo{}
	profiles := newMemProfileRepo(usage)
	tags := newMemTagRepo()
	acquirer := &stubAcquirer{}
	publisher := &recordingPublisher{}

	svc := NewProfileService(
		acquirer, profiles, tags, usage, publisher, nil,
		func() *rand.Rand { return rand.New(rand.NewSource(42)) },
		nil,
	)

	return &fixture{svc: svc, profiles: profiles, tags: tags, usage: usage, acquirer: acquirer, publisher: publisher}
}

func TestGeneratePersistsFullBundle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	bundle, err := f.svc.Generate(ctx, 7, domain.GenerateFilters{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if len(bundle.SocialProfiles) != 4 {
		t.Fatalf("expected 4 personas, got %d", len(bundle.SocialProfiles))
	}
	if bundle.Profile.CreatedBy != 7 {
		t.Fatalf("expected owner 7, got %d", bundle.Profile.CreatedBy)
	}
	if _, ok := f.profiles.profiles[bundle.Profile.ID]; !ok {
		t.Fatalf("profile not persisted")
	}

	logs, _ := f.usage.ListByProfile(ctx, bundle.Profile.ID)
	if len(logs) != 1 || logs[0].Action != domain.ActionGenerated {
		t.Fatalf("expected one GENERATED log entry, got %+v", logs)
	}

	if len(f.publisher.events) != 1 || f.publisher.events[0].Type != "generated" {
		t.Fatalf("expected generated activity event, got %+v", f.publisher.events)
	}
}

func TestGenerateIsDeterministicWithInjectedRand(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.svc.Generate(ctx, 1, domain.GenerateFilters{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	second, err := f.svc.Generate(ctx, 1, domain.GenerateFilters{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	for i := range first.SocialProfiles {
		if first.SocialProfiles[i].Username != second.SocialProfiles[i].Username {
			t.Fatalf("expected identical usernames for fixed seed")
		}
		if first.SocialProfiles[i].Followers != second.SocialProfiles[i].Followers {
			t.Fatalf("expected identical follower counts for fixed seed")
		}
	}
}

func TestGeneratePersistenceFailureLeavesNothing(t *testing.T) {
	f := newFixture()
	f.profiles.failCreate = true

	_, err := f.svc.Generate(context.Background(), 1, domain.GenerateFilters{})
	if !errors.Is(err, domain.ErrPersistenceFailed) {
		t.Fatalf("expected ErrPersistenceFailed, got %v", err)
	}
	if len(f.profiles.profiles) != 0 || len(f.usage.entries) != 0 {
		t.Fatalf("expected no partial bundle after failed persist")
	}
	if len(f.publisher.events) != 0 {
		t.Fatalf("expected no activity event on failure")
	}
}

func TestGenerateUpstreamErrorPropagates(t *testing.T) {
	f := newFixture()
	f.acquirer.err = domain.ErrUpstreamUnavailable

	_, err := f.svc.Generate(context.Background(), 1, domain.GenerateFilters{})
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestGetRecordsViewAndReturnsDetail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	bundle, err := f.svc.Generate(ctx, 3, domain.GenerateFilters{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	detail, err := f.svc.Get(ctx, 3, bundle.Profile.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(detail.SocialProfiles) != 4 {
		t.Fatalf("expected 4 personas in detail")
	}

	var viewed bool
	for _, entry := range detail.UsageLog {
		if entry.Action == domain.ActionViewed {
			viewed = true
		}
	}
	if !viewed {
		t.Fatalf("expected VIEWED entry in usage log")
	}
}

func TestGetViewRecordingFailureDoesNotFailRead(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	bundle, err := f.svc.Generate(ctx, 3, domain.GenerateFilters{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	f.usage.failAppend = true
	if _, err := f.svc.Get(ctx, 3, bundle.Profile.ID); err != nil {
		t.Fatalf("read should survive a failed view record, got %v", err)
	}
}

func TestGetOwnershipMismatchIsNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	bundle, err := f.svc.Generate(ctx, 3, domain.GenerateFilters{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := f.svc.Get(ctx, 99, bundle.Profile.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner, got %v", err)
	}
}

func TestDeleteThenDeleteAgain(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	bundle, err := f.svc.Generate(ctx, 3, domain.GenerateFilters{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if err := f.svc.Delete(ctx, 3, bundle.Profile.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := f.svc.Delete(ctx, 3, bundle.Profile.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	last := f.publisher.events[len(f.publisher.events)-1]
	if last.Type != "deleted" {
		t.Fatalf("expected deleted event, got %q", last.Type)
	}
}

func TestAttachTag(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	bundle, err := f.svc.Generate(ctx, 3, domain.GenerateFilters{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if err := f.svc.AttachTag(ctx, 3, bundle.Profile.ID, "operation-x", ""); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	// Repeating is a no-op, not an error.
	if err := f.svc.AttachTag(ctx, 3, bundle.Profile.ID, "operation-x", ""); err != nil {
		t.Fatalf("repeat attach failed: %v", err)
	}
	if len(f.tags.assoc[bundle.Profile.ID]) != 1 {
		t.Fatalf("expected single association")
	}
	if f.tags.tags["operation-x"].Color != domain.DefaultTagColor {
		t.Fatalf("expected default color")
	}

	if err := f.svc.AttachTag(ctx, 99, bundle.Profile.ID, "other", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner, got %v", err)
	}
	if err := f.svc.AttachTag(ctx, 3, bundle.Profile.ID, "", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}
	if err := f.svc.AttachTag(ctx, 3, bundle.Profile.ID, "x", "red"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad color, got %v", err)
	}
}

func TestListTagsUsesCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	bundle, err := f.svc.Generate(ctx, 3, domain.GenerateFilters{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if err := f.svc.AttachTag(ctx, 3, bundle.Profile.ID, "case-a", ""); err != nil {
		t.Fatalf("attach failed: %v", err)
	}

	if _, err := f.svc.ListTags(ctx); err != nil {
		t.Fatalf("list tags failed: %v", err)
	}
	if _, err := f.svc.ListTags(ctx); err != nil {
		t.Fatalf("list tags failed: %v", err)
	}
	if f.tags.listAllHits != 1 {
		t.Fatalf("expected one repository hit, got %d", f.tags.listAllHits)
	}

	// Attaching a new tag invalidates the cache.
	if err := f.svc.AttachTag(ctx, 3, bundle.Profile.ID, "case-b", ""); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if _, err := f.svc.ListTags(ctx); err != nil {
		t.Fatalf("list tags failed: %v", err)
	}
	if f.tags.listAllHits != 2 {
		t.Fatalf("expected cache invalidation after attach, got %d hits", f.tags.listAllHits)
	}
}

func TestListClampsPagination(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Generate(ctx, 5, domain.GenerateFilters{}); err != nil {
			t.Fatalf("generate failed: %v", err)
		}
	}

	profiles, err := f.svc.List(ctx, 5, domain.ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}

	// Other owners see nothing.
	other, err := f.svc.List(ctx, 6, domain.ListOptions{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected empty list for other owner")
	}
}
