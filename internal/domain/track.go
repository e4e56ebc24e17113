package domain

// TrackOrigin marks whether a track came from the catalog or is a placeholder
// for a request the catalog could not resolve.
type TrackOrigin string

const (
	OriginCatalog    TrackOrigin = "catalog"
	OriginUnresolved TrackOrigin = "unresolved"
)

// ResolvedTrack is the result of a catalog lookup. An unresolved track keeps
// the originally requested title/artist and carries no URLs, so the UI never
// builds a dead link.
type ResolvedTrack struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Artist        string      `json:"artist"`
	AlbumCoverURL string      `json:"albumCoverUrl"`
	PlayableURL   string      `json:"playableUrl,omitempty"`
	ExternalURL   string      `json:"externalUrl"`
	EmbedURL      string      `json:"embedUrl"`
	Origin        TrackOrigin `json:"origin"`
}

// Request converts a resolved track back into the (title, artist) identity
// used for exclusion lists.
func (t ResolvedTrack) Request() TrackRequest {
	return TrackRequest{Title: t.Name, Artist: t.Artist}
}
