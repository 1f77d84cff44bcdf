// Package matching implements cross-catalog title matching: normalization,
// similarity scoring, match strategies and best-candidate selection, plus the
// precision/recall evaluation used to compare strategies offline.
package matching

import (
	"regexp"
	"strings"
)

// noiseWords are edition/marketing tokens stripped during normalization.
// Matched as whole words after punctuation removal, so multi-word entries
// must already be punctuation-free.
var noiseWords = []string{
	"goty", "game of the year", "deluxe", "definitive", "complete",
	"edition", "remastered", "remaster", "bundle", "pack", "dlc",
	"add-on", "addon", "expansion", "season pass", "ultimate",
	"gold", "special", "collector", "premium", "standard", "hd",
	"enhanced", "director's cut", "extended", "anniversary",
}

var (
	nonWordRe    = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	noiseRes     = compileNoiseWords()
)

func compileNoiseWords() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(noiseWords))
	for _, w := range noiseWords {
		// Noise entries are normalized the same way titles are, so
		// "director's cut" matches its punctuation-stripped form.
		w = nonWordRe.ReplaceAllString(strings.ToLower(w), "")
		res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return res
}

// Normalize lowercases a title, strips punctuation and edition noise words,
// and collapses whitespace. It is idempotent: Normalize(Normalize(x)) ==
// Normalize(x). Empty or punctuation-only input normalizes to "".
func Normalize(title string) string {
	if title == "" {
		return ""
	}

	normalized := strings.ToLower(title)
	normalized = nonWordRe.ReplaceAllString(normalized, "")
	normalized = whitespaceRe.ReplaceAllString(normalized, " ")
	normalized = strings.TrimSpace(normalized)

	for _, re := range noiseRes {
		normalized = re.ReplaceAllString(normalized, "")
	}

	normalized = whitespaceRe.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}
