package generate

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilename_CollapsesPunctuationAndCase(t *testing.T) {
	name := Filename("A Cute! Robot", 1, 42)
	require.Regexp(t, regexp.MustCompile(`^a_cute_robot_42_1_[0-9T.-]+\.png$`), name)
}

func TestFilename_SeedAndIndexOrder(t *testing.T) {
	name := Filename("cat", 3, 99)
	require.True(t, strings.HasPrefix(name, "cat_99_3_"), "got %q", name)
}

func TestFilename_TruncatesLongPrompts(t *testing.T) {
	prompt := strings.Repeat("abcde ", 20)
	name := Filename(prompt, 0, 7)
	stem := name[:strings.Index(name, "_7_0_")]
	require.LessOrEqual(t, len(stem), 50)
}

func TestFilename_WhitespaceRuns(t *testing.T) {
	name := Filename("  a   red\t\tpanda  ", 0, 1)
	require.True(t, strings.HasPrefix(name, "a_red_panda_1_0_"), "got %q", name)
}

func TestFilename_NoIllegalCharacters(t *testing.T) {
	name := Filename(`sl/ash \back "quote" <angle> |pipe| ?q* :colon`, 2, 5)
	require.NotRegexp(t, regexp.MustCompile(`[/\\"<>|?*:]`), name)
	require.True(t, strings.HasSuffix(name, ".png"))
}

func TestFilename_EmptyAfterSanitizing(t *testing.T) {
	// A prompt with no representable characters still yields a usable name.
	name := Filename("!!!", 0, 3)
	require.True(t, strings.HasPrefix(name, "_3_0_"), "got %q", name)
	require.True(t, strings.HasSuffix(name, ".png"))
}
