package games

import "testing"

func TestHasDesktopPlatformMatchesHints(t *testing.T) {
	cases := []struct {
		name      string
		platforms []string
		want      bool
	}{
		{"pc", []string{"PC"}, true},
		{"windows", []string{"Xbox One", "Microsoft Windows"}, true},
		{"linux", []string{"Linux"}, true},
		{"macos", []string{"macOS"}, true},
		{"console only", []string{"PlayStation 5", "Nintendo Switch"}, false},
		{"empty", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := Game{ID: "1", Title: "Test", Platforms: tc.platforms}
			if got := g.HasDesktopPlatform(); got != tc.want {
				t.Fatalf("HasDesktopPlatform(%v) = %v, want %v", tc.platforms, got, tc.want)
			}
		})
	}
}
