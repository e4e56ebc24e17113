package soundcloud

import (
	"regexp"
	"strings"
)

// The generation model sometimes decorates otherwise-correct artist names
// with ensemble suffixes; the catalog only knows the plain name.
var (
	theBandPattern    = regexp.MustCompile(`^The\s+(.+)\s+Band$`)
	collectivePattern = regexp.MustCompile(`\s+Collective\b`)
	friendsPattern    = regexp.MustCompile(`\s+& Friends\b`)
	bandPattern       = regexp.MustCompile(`\s+Band\b`)
)

// CleanArtistName strips "Collective", "& Friends" and "Band" suffixes and
// reduces "The X Band" to "X".
func CleanArtistName(artist string) string {
	cleaned := strings.TrimSpace(artist)
	cleaned = theBandPattern.ReplaceAllString(cleaned, "$1")
	cleaned = collectivePattern.ReplaceAllString(cleaned, "")
	cleaned = friendsPattern.ReplaceAllString(cleaned, "")
	cleaned = bandPattern.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}
