// Package dedup canonicalizes track identities so repeated recommendation
// rounds never surface the same song twice, even when the model varies
// spelling or featuring annotations.
package dedup

import (
	"regexp"
	"strings"

	"github.com/kapu/moodtunes-go/internal/domain"
	"github.com/kapu/moodtunes-go/internal/util"
)

// Featuring annotations in titles: "(feat. X)", "(ft. X)", "(featuring X)",
// "(with X)" and bracketed suffixes "[...]" (compiled once).
var titleFeaturePattern = regexp.MustCompile(`(?i)\((?:feat\.|ft\.|featuring|with)[^)]*\)`)

var titleBracketPattern = regexp.MustCompile(`\[[^\]]*\]`)

// Featuring tokens in artist names.
var artistFeaturePattern = regexp.MustCompile(`(?i)feat\.|ft\.|featuring`)

// CanonicalKey derives the normalized identity of a (title, artist) pair.
// It fails closed: an empty title or artist yields the empty key, which
// callers must treat as "cannot deduplicate, pass through".
func CanonicalKey(title, artist string) string {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(artist) == "" {
		return ""
	}

	cleanTitle := util.Normalize(title)
	cleanTitle = titleFeaturePattern.ReplaceAllString(cleanTitle, "")
	cleanTitle = titleBracketPattern.ReplaceAllString(cleanTitle, "")
	cleanTitle = util.CollapseWhitespace(cleanTitle)

	cleanArtist := util.Normalize(artist)
	cleanArtist = artistFeaturePattern.ReplaceAllString(cleanArtist, "")
	cleanArtist = util.CollapseWhitespace(cleanArtist)

	return cleanTitle + " - " + cleanArtist
}

// IsDuplicate reports whether candidate shares a non-empty canonical key with
// any entry of seen.
func IsDuplicate(candidate domain.TrackRequest, seen []domain.TrackRequest) bool {
	key := CanonicalKey(candidate.Title, candidate.Artist)
	if key == "" {
		return false
	}

	for _, s := range seen {
		if CanonicalKey(s.Title, s.Artist) == key {
			return true
		}
	}
	return false
}

// Merge appends the newly surfaced tracks that are not already in seen,
// preserving insertion order. Applying the same batch twice is a no-op.
func Merge(seen []domain.TrackRequest, newly []domain.TrackRequest) []domain.TrackRequest {
	merged := make([]domain.TrackRequest, len(seen), len(seen)+len(newly))
	copy(merged, seen)

	for _, track := range newly {
		if !IsDuplicate(track, merged) {
			merged = append(merged, track)
		}
	}
	return merged
}
