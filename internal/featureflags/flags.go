package featureflags

import (
	"os"
	"strings"
)

// Enabled reports whether FLAG_<NAME> is set to a truthy value
// (1/true/yes/on, case-insensitive). Flags in use: FLAG_ACTIVITY_FEED gates
// the websocket activity feed, FLAG_STATS_WORKER gates the periodic storage
// gauge refresh.
func Enabled(name string) bool {
	v := strings.TrimSpace(os.Getenv("FLAG_" + strings.ToUpper(name)))
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
