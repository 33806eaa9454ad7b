package generate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	filenameStrip    = regexp.MustCompile(`[^a-z0-9\s]`)
	filenameCollapse = regexp.MustCompile(`\s+`)
)

// timestampLayout yields millisecond precision with no characters that are
// illegal in filenames on common filesystems.
const timestampLayout = "2006-01-02T15-04-05.000"

// Filename derives the local filename for one generated image from its prompt,
// its index within the result, and the seed the model used.
//
// The prompt is lower-cased, stripped of everything outside [a-z0-9\s], has
// whitespace runs collapsed to single underscores, and is truncated to 50
// characters before "_{seed}_{index}_{timestamp}.png" is appended.
//
// The timestamp is the only disambiguator between batch prompts that sanitize
// to the same stem with the same seed and index; two such calls within the same
// millisecond can collide. That is a documented limitation of the naming
// scheme, not something this function papers over.
func Filename(prompt string, index int, seed int64) string {
	stem := strings.ToLower(prompt)
	stem = filenameStrip.ReplaceAllString(stem, "")
	stem = strings.TrimSpace(stem)
	stem = filenameCollapse.ReplaceAllString(stem, "_")
	if len(stem) > 50 {
		stem = stem[:50]
	}
	timestamp := time.Now().Format(timestampLayout)
	return fmt.Sprintf("%s_%d_%d_%s.png", stem, seed, index, timestamp)
}
