package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/domain"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/security/middleware"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/service"
)

// ProfilesHandler handles the profile bundle endpoints
type ProfilesHandler struct {
	profileService *service.ProfileService
	logger         *slog.Logger
}

// NewProfilesHandler creates a new profiles handler
func NewProfilesHandler(profileService *service.ProfileService, logger *slog.Logger) *ProfilesHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ProfilesHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// GenerateRequest restricts what the generated identity looks like. All
// fields are optional.
type GenerateRequest struct {
	Nationality string `json:"nationality"`
	Gender      string `json:"gender"`
	MinAge      int    `json:"minAge"`
	MaxAge      int    `json:"maxAge"`
}

// ProfileResponse is the public view of a base identity.
type ProfileResponse struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Gender      string    `json:"gender"`
	Nationality string    `json:"nationality"`
	Age         int       `json:"age"`
	PhotoURL    string    `json:"photoUrl"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Country     string    `json:"country"`
	Postcode    string    `json:"postcode"`
	CreatedAt   time.Time `json:"createdAt"`
	Tags        []string  `json:"tags,omitempty"`
}

// SocialProfileResponse is the public view of one platform persona.
type SocialProfileResponse struct {
	ID         int64               `json:"id"`
	Platform   string              `json:"platform"`
	Username   string              `json:"username"`
	Bio        string              `json:"bio"`
	Followers  int                 `json:"followers"`
	Following  int                 `json:"following"`
	PostsCount int                 `json:"postsCount"`
	Interests  []string            `json:"interests"`
	Data       domain.PlatformData `json:"data"`
}

// TagResponse is the public view of a tag.
type TagResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// UsageLogResponse is one audit entry of a profile's history.
type UsageLogResponse struct {
	Action    string    `json:"action"`
	UserID    int64     `json:"userId"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// BundleResponse is a profile with its personas.
type BundleResponse struct {
	Profile        ProfileResponse         `json:"profile"`
	SocialProfiles []SocialProfileResponse `json:"socialProfiles"`
}

// DetailResponse is a bundle enriched with tags and usage history.
type DetailResponse struct {
	Profile        ProfileResponse         `json:"profile"`
	SocialProfiles []SocialProfileResponse `json:"socialProfiles"`
	Tags           []TagResponse           `json:"tags"`
	UsageLog       []UsageLogResponse      `json:"usageLog"`
}

// ListResponse is a page of profiles.
type ListResponse struct {
	Profiles []ProfileResponse `json:"profiles"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

func toProfileResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		Phone:       p.Phone,
		Gender:      string(p.Gender),
		Nationality: p.Nationality,
		Age:         p.Age,
		PhotoURL:    p.PhotoURL,
		Address:     p.Address,
		City:        p.City,
		State:       p.State,
		Country:     p.Country,
		Postcode:    p.Postcode,
		CreatedAt:   p.CreatedAt,
		Tags:        p.Tags,
	}
}

func toSocialResponses(socials []*domain.SocialProfile) []SocialProfileResponse {
	out := make([]SocialProfileResponse, 0, len(socials))
	for _, s := range socials {
		out = append(out, SocialProfileResponse{
			ID:         s.ID,
			Platform:   string(s.Platform),
			Username:   s.Username,
			Bio:        s.Bio,
			Followers:  s.Followers,
			Following:  s.Following,
			PostsCount: s.PostsCount,
			Interests:  s.Interests,
			Data:       s.Data,
		})
	}
	return out
}

func callerID(r *http.Request, w http.ResponseWriter) (int64, bool) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	return claims.UserID, true
}

// Generate handles POST /api/profiles/generate
func (h *ProfilesHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r, w)
	if !ok {
		return
	}

	var req GenerateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Warn("failed to decode generate request",
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
	}

	bundle, err := h.profileService.Generate(r.Context(), userID, domain.GenerateFilters{
		Nationality: req.Nationality,
		Gender:      domain.Gender(req.Gender),
		MinAge:      req.MinAge,
		MaxAge:      req.MaxAge,
	})
	if err != nil {
		h.logger.Warn("generation failed",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, BundleResponse{
		Profile:        toProfileResponse(bundle.Profile),
		SocialProfiles: toSocialResponses(bundle.SocialProfiles),
	})
}

// List handles GET /api/profiles
func (h *ProfilesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r, w)
	if !ok {
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	opts := domain.ListOptions{
		Search: query.Get("search"),
		Tag:    query.Get("tag"),
		Limit:  limit,
		Offset: offset,
	}.Clamped()

	profiles, err := h.profileService.List(r.Context(), userID, opts)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileResponse(p))
	}

	writeJSON(w, http.StatusOK, ListResponse{Profiles: out, Limit: opts.Limit, Offset: opts.Offset})
}

// Get handles GET /api/profiles/{id}
func (h *ProfilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r, w)
	if !ok {
		return
	}

	detail, err := h.profileService.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	tags := make([]TagResponse, 0, len(detail.Tags))
	for _, t := range detail.Tags {
		tags = append(tags, TagResponse{ID: t.ID, Name: t.Name, Color: t.Color})
	}

	usageLog := make([]UsageLogResponse, 0, len(detail.UsageLog))
	for _, e := range detail.UsageLog {
		usageLog = append(usageLog, UsageLogResponse{
			Action:    e.Action,
			UserID:    e.UserID,
			Notes:     e.Notes,
			CreatedAt: e.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, DetailResponse{
		Profile:        toProfileResponse(detail.Profile),
		SocialProfiles: toSocialResponses(detail.SocialProfiles),
		Tags:           tags,
		UsageLog:       usageLog,
	})
}

// Delete handles DELETE /api/profiles/{id}
func (h *ProfilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r, w)
	if !ok {
		return
	}

	if err := h.profileService.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AttachTagRequest labels a profile.
type AttachTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// AttachTag handles POST /api/profiles/{id}/tags
func (h *ProfilesHandler) AttachTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r, w)
	if !ok {
		return
	}

	var req AttachTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.profileService.AttachTag(r.Context(), userID, r.PathValue("id"), req.Name, req.Color); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "attached"})
}

// ListTags handles GET /api/tags
func (h *ProfilesHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(r, w); !ok {
		return
	}

	tags, err := h.profileService.ListTags(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagResponse{ID: t.ID, Name: t.Name, Color: t.Color})
	}

	writeJSON(w, http.StatusOK, out)
}
