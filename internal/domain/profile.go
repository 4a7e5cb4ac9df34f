package domain

import (
	"context"
	"time"
)

// Gender values accepted by the upstream identity source.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is one of the supported gender values.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Profile represents a synthesized base identity
type Profile struct {
	ID          string // UUID assigned at acquisition time
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Gender      Gender
	Nationality string
	Age         int
	PhotoURL    string
	Address     string // street number + street name
	City        string
	State       string
	Country     string
	Postcode    string
	CreatedBy   int64 // owning operator account
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Tags        []string // aggregated tag names, populated by list queries
}

// Platform identifies a social network a persona is shaped for.
type Platform string

const (
	PlatformFacebook  Platform = "Facebook"
	PlatformInstagram Platform = "Instagram"
	PlatformTwitter   Platform = "Twitter"
	PlatformLinkedIn  Platform = "LinkedIn"
)

// Platforms is the fixed ordered set every bundle is derived for.
var Platforms = []Platform{PlatformFacebook, PlatformInstagram, PlatformTwitter, PlatformLinkedIn}

// SocialProfile is one platform-specific persona derived from a Profile.
// Exactly one exists per platform per profile; rows cascade-delete with the
// parent profile.
type SocialProfile struct {
	ID         int64
	ProfileID  string
	Platform   Platform
	Username   string
	Bio        string
	Followers  int
	Following  int
	PostsCount int
	Interests  []string
	Data       PlatformData // platform-specific payload, stored as JSON
	CreatedAt  time.Time
}

// PlatformData is the platform-specific payload carried by a persona.
// One concrete type exists per platform so adding a platform forces the
// compiler through every shaping site.
type PlatformData interface {
	PlatformKind() Platform
}

// WorkEntry is a single work-history item.
type WorkEntry struct {
	Company  string `json:"company"`
	Position string `json:"position"`
	Duration string `json:"duration"`
}

// EducationEntry is a single education item.
type EducationEntry struct {
	School         string `json:"school"`
	Degree         string `json:"degree"`
	Field          string `json:"field"`
	GraduationYear int    `json:"graduationYear,omitempty"`
}

// FacebookData carries the Facebook persona payload.
type FacebookData struct {
	WorkHistory  []WorkEntry      `json:"workHistory"`
	Education    []EducationEntry `json:"education"`
	Relationship string           `json:"relationship"`
	Hometown     string           `json:"hometown"`
	Languages    []string         `json:"languages"`
	Groups       []string         `json:"groups"`
}

func (FacebookData) PlatformKind() Platform { return PlatformFacebook }

// InstagramData carries the Instagram persona payload.
type InstagramData struct {
	ContentThemes []string `json:"contentThemes"`
	HashtagsUsed  []string `json:"hashtagsUsed"`
	AvgLikes      int      `json:"avgLikes"`
	AvgComments   int      `json:"avgComments"`
}

func (InstagramData) PlatformKind() Platform { return PlatformInstagram }

// TwitterData carries the Twitter persona payload.
type TwitterData struct {
	TweetTypes      []string `json:"tweetTypes"`
	AvgTweetsPerDay int      `json:"avgTweetsPerDay"`
	TopicsDiscussed []string `json:"topicsDiscussed"`
	PostingTimes    []string `json:"postingTimes"`
}

func (TwitterData) PlatformKind() Platform { return PlatformTwitter }

// Position is a job position in a LinkedIn payload.
type Position struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Duration string `json:"duration"`
	Location string `json:"location,omitempty"`
}

// LinkedInData carries the LinkedIn persona payload.
type LinkedInData struct {
	CurrentPosition Position         `json:"currentPosition"`
	PreviousJobs    []Position       `json:"previousJobs"`
	Education       []EducationEntry `json:"education"`
	Skills          []string         `json:"skills"`
	Endorsements    int              `json:"endorsements"`
	Connections     int              `json:"connections"`
}

func (LinkedInData) PlatformKind() Platform { return PlatformLinkedIn }

// Tag is a label operators attach to profiles. Names are unique and
// case-sensitive; tags are shared across profiles and never cascade-deleted.
type Tag struct {
	ID        int64
	Name      string
	Color     string
	CreatedAt time.Time
}

// DefaultTagColor is applied when a tag is created without a color.
const DefaultTagColor = "#3B82F6"

// Usage log actions.
const (
	ActionGenerated = "GENERATED"
	ActionViewed    = "VIEWED"
)

// UsageLogEntry is an append-only audit record for a profile. Entries are
// never updated or deleted except through cascade when the profile goes.
type UsageLogEntry struct {
	ID        int64
	ProfileID string
	UserID    int64
	Action    string
	Notes     string
	CreatedAt time.Time
}

// GenerateFilters restrict what the upstream identity source returns.
// Nationality and gender are forwarded upstream; age bounds are enforced by
// rejection sampling on our side.
type GenerateFilters struct {
	Nationality string
	Gender      Gender
	MinAge      int // 0 means unbounded
	MaxAge      int // 0 means unbounded
}

// ListOptions control profile listing.
type ListOptions struct {
	Search string // substring match on first name, last name, email
	Tag    string // exact tag name
	Limit  int
	Offset int
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Clamped returns a copy with Limit and Offset forced into bounds. Callers
// that echo paging values back must clamp first so the response reports what
// the store actually applied.
func (o ListOptions) Clamped() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// Bundle is a profile together with its derived personas, created atomically.
type Bundle struct {
	Profile        *Profile
	SocialProfiles []*SocialProfile
}

// ProfileRepository defines data access for profile bundles.
type ProfileRepository interface {
	// CreateBundle persists the profile, its social profiles, and a GENERATED
	// usage log entry as one atomic unit.
	CreateBundle(ctx context.Context, profile *Profile, socials []*SocialProfile) error
	// GetByID returns the profile only when ownerID matches; a missing row and
	// an ownership mismatch are both ErrNotFound.
	GetByID(ctx context.Context, id string, ownerID int64) (*Profile, error)
	GetSocialProfiles(ctx context.Context, profileID string) ([]*SocialProfile, error)
	List(ctx context.Context, ownerID int64, opts ListOptions) ([]*Profile, error)
	Delete(ctx context.Context, id string, ownerID int64) error
	Count(ctx context.Context) (int64, error)
}

// TagRepository defines data access for tags and their associations.
type TagRepository interface {
	// Attach creates the tag if absent and links it to the profile. Both
	// writes are idempotent; repeating the call is a no-op.
	Attach(ctx context.Context, profileID, name, color string) error
	ListByProfile(ctx context.Context, profileID string) ([]*Tag, error)
	ListAll(ctx context.Context) ([]*Tag, error)
	Count(ctx context.Context) (int64, error)
}

// UsageLogRepository defines data access for the usage log.
type UsageLogRepository interface {
	Append(ctx context.Context, entry *UsageLogEntry) error
	ListByProfile(ctx context.Context, profileID string) ([]*UsageLogEntry, error)
}

// UserRepository defines data access for operator accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByMatricule(ctx context.Context, matricule string) (*User, error)
	UpdateLanguage(ctx context.Context, id int64, language string) error
	TouchLastLogin(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// IdentitySource fetches one raw identity from the upstream provider.
type IdentitySource interface {
	FetchOne(ctx context.Context, nationality string, gender Gender) (*RawIdentity, error)
}

// RawIdentity is the normalized shape of one upstream record before it
// becomes a Profile.
type RawIdentity struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Gender       string
	Nationality  string
	Age          int
	DateOfBirth  time.Time // zero when the upstream value did not parse
	PhotoURL     string
	StreetNumber int
	StreetName   string
	City         string
	State        string
	Country      string
	Postcode     string
}
