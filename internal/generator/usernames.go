package generator

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/domain"
)

// usernameVariants derives the five username candidates shared by a bundle:
// plain concatenation, concatenation with a 2-digit suffix, underscore join,
// dot join, and concatenation with a 4-digit suffix. The numeric suffixes are
// the only randomness, so a fixed seed reproduces the full set.
func usernameVariants(firstName, lastName string, rng *rand.Rand) [5]string {
	first := strings.ToLower(firstName)
	last := strings.ToLower(lastName)
	base := first + last

	return [5]string{
		base,
		fmt.Sprintf("%s%d", base, randBetween(rng, 10, 99)),
		first + "_" + last,
		first + "." + last,
		fmt.Sprintf("%s_%d", base, randBetween(rng, 1000, 9999)),
	}
}

// variantIndex fixes which username variant each platform receives. Facebook
// and LinkedIn share variant 0; cross-platform reuse is accepted behavior.
var variantIndex = map[domain.Platform]int{
	domain.PlatformFacebook:  0,
	domain.PlatformInstagram: 1,
	domain.PlatformTwitter:   2,
	domain.PlatformLinkedIn:  0,
}

// randBetween returns a uniform integer in [min, max].
func randBetween(rng *rand.Rand, min, max int) int {
	return rng.Intn(max-min+1) + min
}

// sampleWithoutReplacement returns count distinct items from list in random
// order. count is clamped to len(list).
func sampleWithoutReplacement(rng *rand.Rand, list []string, count int) []string {
	if count > len(list) {
		count = len(list)
	}
	out := make([]string, 0, count)
	for _, i := range rng.Perm(len(list))[:count] {
		out = append(out, list[i])
	}
	return out
}
