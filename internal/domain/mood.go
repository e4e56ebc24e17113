package domain

// Alignment controls whether recommended music should resonate with the
// detected mood or shift the listener away from it.
type Alignment string

const (
	AlignmentMatch    Alignment = "match"
	AlignmentContrast Alignment = "contrast"
)

// ParseAlignment normalizes a wire value; anything other than "contrast"
// falls back to match.
func ParseAlignment(s string) Alignment {
	if s == string(AlignmentContrast) {
		return AlignmentContrast
	}
	return AlignmentMatch
}

// TrackRequest is a (title, artist) pair as emitted by the model, not yet
// resolved against the catalog.
type TrackRequest struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// RecommendationProfile carries the music side of a mood analysis.
type RecommendationProfile struct {
	Genres       []string       `json:"genres"`
	Tracks       []TrackRequest `json:"tracks"`
	PlaylistMood string         `json:"playlistMood"`
	Tempo        string         `json:"tempo"`
}

// MoodAnalysis is the validated result of one generation call.
type MoodAnalysis struct {
	Narrative      string                `json:"narrative"`
	PrimaryMood    string                `json:"primaryMood"`
	SecondaryMood  string                `json:"secondaryMood,omitempty"`
	Intensity      int                   `json:"intensity"`
	Recommendation RecommendationProfile `json:"recommendation"`
}
