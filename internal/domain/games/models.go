package games

import "strings"

// desktopPlatformHints are matched as substrings against platform names.
// The deals catalog is desktop-store-centric, so matching quality drops
// sharply for console-only titles.
var desktopPlatformHints = []string{"pc", "windows", "linux", "mac"}

// Game is the canonical game shape handed to the enrichment core by the
// metadata catalog. It is immutable input; the core never mutates it.
type Game struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	ReleaseDate string   `json:"releaseDate,omitempty"` // YYYY-MM-DD, may be empty
	Platforms   []string `json:"platforms,omitempty"`
}

// HasDesktopPlatform reports whether any of the game's platforms looks like
// a desktop platform.
func (g Game) HasDesktopPlatform() bool {
	for _, p := range g.Platforms {
		lower := strings.ToLower(p)
		for _, hint := range desktopPlatformHints {
			if strings.Contains(lower, hint) {
				return true
			}
		}
	}
	return false
}
