package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/domain"
)

// sharedAttributes is drawn once per bundle and passed by value into every
// platform shaper. This is what keeps the four personas mutually consistent:
// no shaper ever redraws a profession, employer, university, or interest set
// of its own.
type sharedAttributes struct {
	Profession string
	Company    string
	University string
	Interests  []string
}

// shapeFunc builds one platform persona from the base profile, the shared
// attribute draw, and the username already selected for that platform.
type shapeFunc func(p *domain.Profile, attrs sharedAttributes, username string, rng *rand.Rand) *domain.SocialProfile

var platformShapers = map[domain.Platform]shapeFunc{
	domain.PlatformFacebook:  shapeFacebook,
	domain.PlatformInstagram: shapeInstagram,
	domain.PlatformTwitter:   shapeTwitter,
	domain.PlatformLinkedIn:  shapeLinkedIn,
}

// Derive produces the fixed ordered set of platform personas for a base
// identity. It is a pure function of the profile and rng: a fixed seed
// reproduces identical output, which the tests rely on.
func Derive(profile *domain.Profile, rng *rand.Rand) ([]*domain.SocialProfile, error) {
	if profile == nil || strings.TrimSpace(profile.FirstName) == "" || strings.TrimSpace(profile.LastName) == "" {
		return nil, fmt.Errorf("%w: profile must carry first and last name", domain.ErrInvalidInput)
	}

	attrs := sharedAttributes{
		Interests:  sampleWithoutReplacement(rng, interestCatalog, randBetween(rng, 3, 8)),
		Profession: professionCatalog[rng.Intn(len(professionCatalog))],
		Company:    companyCatalog[rng.Intn(len(companyCatalog))],
		University: universityCatalog[rng.Intn(len(universityCatalog))],
	}
	variants := usernameVariants(profile.FirstName, profile.LastName, rng)

	personas := make([]*domain.SocialProfile, 0, len(domain.Platforms))
	for _, platform := range domain.Platforms {
		shape := platformShapers[platform]
		persona := shape(profile, attrs, variants[variantIndex[platform]], rng)
		persona.ProfileID = profile.ID
		personas = append(personas, persona)
	}
	return personas, nil
}

func shapeFacebook(p *domain.Profile, attrs sharedAttributes, username string, rng *rand.Rand) *domain.SocialProfile {
	ranges := platformEngagement[domain.PlatformFacebook]
	return &domain.SocialProfile{
		Platform: domain.PlatformFacebook,
		Username: username,
		Bio: fmt.Sprintf("%s at %s. Love %s. %s, %s",
			attrs.Profession, attrs.Company, strings.Join(attrs.Interests[:3], ", "), p.City, p.Country),
		Followers:  randBetween(rng, ranges.followers.min, ranges.followers.max),
		Following:  randBetween(rng, ranges.following.min, ranges.following.max),
		PostsCount: randBetween(rng, ranges.posts.min, ranges.posts.max),
		Interests:  append([]string(nil), attrs.Interests...),
		Data: domain.FacebookData{
			WorkHistory: []domain.WorkEntry{
				{Company: attrs.Company, Position: attrs.Profession, Duration: fmt.Sprintf("%d years", randBetween(rng, 1, 5))},
			},
			Education: []domain.EducationEntry{
				{School: attrs.University, Degree: "Bachelor's Degree", Field: "Related Field"},
			},
			Relationship: relationshipStatuses[rng.Intn(len(relationshipStatuses))],
			Hometown:     fmt.Sprintf("%s, %s", p.City, p.Country),
			Languages:    []string{"English", "Native Language"},
			Groups:       sampleWithoutReplacement(rng, facebookGroupCatalog, randBetween(rng, 2, 4)),
		},
	}
}

func shapeInstagram(p *domain.Profile, attrs sharedAttributes, username string, rng *rand.Rand) *domain.SocialProfile {
	ranges := platformEngagement[domain.PlatformInstagram]
	return &domain.SocialProfile{
		Platform: domain.PlatformInstagram,
		Username: username,
		Bio: fmt.Sprintf("%s enthusiast \U0001F4F8 %s \U0001F30D %s",
			strings.Join(attrs.Interests[:2], " & "), p.City, attrs.Profession),
		Followers:  randBetween(rng, ranges.followers.min, ranges.followers.max),
		Following:  randBetween(rng, ranges.following.min, ranges.following.max),
		PostsCount: randBetween(rng, ranges.posts.min, ranges.posts.max),
		Interests:  append([]string(nil), attrs.Interests...),
		Data: domain.InstagramData{
			ContentThemes: sampleWithoutReplacement(rng, instagramThemeCatalog, randBetween(rng, 2, 4)),
			HashtagsUsed:  sampleWithoutReplacement(rng, instagramHashtagCatalog, randBetween(rng, 5, 8)),
			AvgLikes:      randBetween(rng, 20, 100),
			AvgComments:   randBetween(rng, 2, 15),
		},
	}
}

func shapeTwitter(p *domain.Profile, attrs sharedAttributes, username string, rng *rand.Rand) *domain.SocialProfile {
	ranges := platformEngagement[domain.PlatformTwitter]
	return &domain.SocialProfile{
		Platform: domain.PlatformTwitter,
		Username: username,
		Bio: fmt.Sprintf("%s | %s | %s | Opinions are my own",
			attrs.Profession, strings.Join(attrs.Interests[:2], " & "), p.City),
		Followers:  randBetween(rng, ranges.followers.min, ranges.followers.max),
		Following:  randBetween(rng, ranges.following.min, ranges.following.max),
		PostsCount: randBetween(rng, ranges.posts.min, ranges.posts.max),
		Interests:  append([]string(nil), attrs.Interests...),
		Data: domain.TwitterData{
			TweetTypes:      []string{"Personal thoughts", "Industry news", "Retweets", "Photos"},
			AvgTweetsPerDay: randBetween(rng, 2, 10),
			TopicsDiscussed: sampleWithoutReplacement(rng, twitterTopicCatalog, randBetween(rng, 3, 5)),
			PostingTimes:    []string{"Morning", "Lunch", "Evening"},
		},
	}
}

func shapeLinkedIn(p *domain.Profile, attrs sharedAttributes, username string, rng *rand.Rand) *domain.SocialProfile {
	ranges := platformEngagement[domain.PlatformLinkedIn]
	location := fmt.Sprintf("%s, %s", p.City, p.Country)
	return &domain.SocialProfile{
		Platform: domain.PlatformLinkedIn,
		Username: username,
		Bio: fmt.Sprintf("%s at %s | %s | %s",
			attrs.Profession, attrs.Company, strings.Join(attrs.Interests[:2], " & "), location),
		Followers:  randBetween(rng, ranges.followers.min, ranges.followers.max),
		Following:  randBetween(rng, ranges.following.min, ranges.following.max),
		PostsCount: randBetween(rng, ranges.posts.min, ranges.posts.max),
		Interests:  filterProfessional(attrs.Interests),
		Data: domain.LinkedInData{
			CurrentPosition: domain.Position{
				Title:    attrs.Profession,
				Company:  attrs.Company,
				Duration: fmt.Sprintf("%d years", randBetween(rng, 1, 5)),
				Location: location,
			},
			PreviousJobs: []domain.Position{
				{Title: "Junior " + attrs.Profession, Company: "Previous Company", Duration: fmt.Sprintf("%d years", randBetween(rng, 1, 3))},
			},
			Education: []domain.EducationEntry{
				{School: attrs.University, Degree: "Bachelor's Degree", Field: "Related Field",
					GraduationYear: time.Now().Year() - randBetween(rng, 5, 15)},
			},
			Skills:       sampleWithoutReplacement(rng, linkedInSkillCatalog, randBetween(rng, 5, 8)),
			Endorsements: randBetween(rng, 10, 50),
			Connections:  randBetween(rng, 200, 800),
		},
	}
}

// filterProfessional keeps only interests on the professional allowlist,
// preserving draw order. The result may be empty.
func filterProfessional(interests []string) []string {
	out := []string{}
	for _, interest := range interests {
		if professionalInterests[interest] {
			out = append(out, interest)
		}
	}
	return out
}
