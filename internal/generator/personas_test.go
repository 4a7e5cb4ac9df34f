package generator

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/domain"
)

func baseProfile() *domain.Profile {
	return &domain.Profile{
		ID:        "3f2c1a9e-0000-0000-0000-000000000001",
		FirstName: "Marie",
		LastName:  "Dubois",
		City:      "Brussels",
		Country:   "Belgium",
	}
}

func TestDeriveProducesOnePersonaPerPlatform(t *testing.T) {
	personas, err := Derive(baseProfile(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, personas, 4)

	for i, platform := range domain.Platforms {
		assert.Equal(t, platform, personas[i].Platform)
		assert.Equal(t, baseProfile().ID, personas[i].ProfileID)
	}
}

func TestDeriveCountsWithinPlatformRanges(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		personas, err := Derive(baseProfile(), rand.New(rand.NewSource(seed)))
		require.NoError(t, err)

		for _, persona := range personas {
			ranges := platformEngagement[persona.Platform]
			assert.GreaterOrEqual(t, persona.Followers, ranges.followers.min, "%s followers", persona.Platform)
			assert.LessOrEqual(t, persona.Followers, ranges.followers.max, "%s followers", persona.Platform)
			assert.GreaterOrEqual(t, persona.Following, ranges.following.min, "%s following", persona.Platform)
			assert.LessOrEqual(t, persona.Following, ranges.following.max, "%s following", persona.Platform)
			assert.GreaterOrEqual(t, persona.PostsCount, ranges.posts.min, "%s posts", persona.Platform)
			assert.LessOrEqual(t, persona.PostsCount, ranges.posts.max, "%s posts", persona.Platform)
		}
	}
}

func TestDeriveSharesOneInterestDraw(t *testing.T) {
	personas, err := Derive(baseProfile(), rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	shared := personas[0].Interests // Facebook carries the draw verbatim
	require.GreaterOrEqual(t, len(shared), 3)
	require.LessOrEqual(t, len(shared), 8)

	// Facebook, Instagram, and Twitter reuse the draw verbatim.
	assert.Equal(t, shared, personas[1].Interests)
	assert.Equal(t, shared, personas[2].Interests)

	// LinkedIn filters it against the professional allowlist; it never draws
	// interests of its own.
	sharedSet := map[string]bool{}
	for _, interest := range shared {
		sharedSet[interest] = true
	}
	for _, interest := range personas[3].Interests {
		assert.True(t, sharedSet[interest], "LinkedIn interest %q not in shared draw", interest)
		assert.True(t, professionalInterests[interest], "LinkedIn interest %q not professional", interest)
	}
}

func TestDeriveUsernameVariantSelection(t *testing.T) {
	personas, err := Derive(baseProfile(), rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	facebook, instagram, twitter, linkedin := personas[0], personas[1], personas[2], personas[3]

	assert.Equal(t, "mariedubois", facebook.Username)
	assert.Equal(t, facebook.Username, linkedin.Username, "Facebook and LinkedIn share variant 0")
	assert.Equal(t, "marie_dubois", twitter.Username)
	assert.True(t, strings.HasPrefix(instagram.Username, "mariedubois"), "Instagram variant is base plus suffix")
	assert.Len(t, instagram.Username, len("mariedubois")+2)
}

func TestDeriveDeterministicForFixedSeed(t *testing.T) {
	first, err := Derive(baseProfile(), rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	second, err := Derive(baseProfile(), rand.New(rand.NewSource(99)))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDerivePersonasStayMutuallyConsistent(t *testing.T) {
	personas, err := Derive(baseProfile(), rand.New(rand.NewSource(11)))
	require.NoError(t, err)

	facebookData := personas[0].Data.(domain.FacebookData)
	linkedInData := personas[3].Data.(domain.LinkedInData)

	assert.Equal(t, facebookData.WorkHistory[0].Company, linkedInData.CurrentPosition.Company)
	assert.Equal(t, facebookData.WorkHistory[0].Position, linkedInData.CurrentPosition.Title)
	assert.Equal(t, facebookData.Education[0].School, linkedInData.Education[0].School)

	for _, persona := range personas {
		assert.Contains(t, persona.Bio, "Brussels")
	}
}

func TestDeriveRejectsMissingName(t *testing.T) {
	profile := baseProfile()
	profile.FirstName = "  "

	_, err := Derive(profile, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Derive(nil, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUsernameVariants(t *testing.T) {
	variants := usernameVariants("Marie", "Dubois", rand.New(rand.NewSource(5)))

	assert.Equal(t, "mariedubois", variants[0])
	assert.Equal(t, "marie_dubois", variants[2])
	assert.Equal(t, "marie.dubois", variants[3])
	assert.Regexp(t, `^mariedubois\d{2}$`, variants[1])
	assert.Regexp(t, `^mariedubois_\d{4}$`, variants[4])

	again := usernameVariants("Marie", "Dubois", rand.New(rand.NewSource(5)))
	assert.Equal(t, variants, again)
}
