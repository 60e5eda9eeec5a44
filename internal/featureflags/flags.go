package featureflags

import (
	"os"
	"strings"
)

// Enabled reports whether a flag is on via environment variable.
// Flags are read as FLAG_<NAME>=1/true/yes/on (case-insensitive).
func Enabled(name string) bool {
	switch strings.ToLower(os.Getenv("FLAG_" + strings.ToUpper(name))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
