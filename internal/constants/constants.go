package constants

import "time"

var CacheTTL = struct {
	TrackSearch time.Duration
}{
	TrackSearch: 10 * time.Minute,
}

var HTTPConfig = struct {
	ClientTimeout   time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}{
	ClientTimeout:   15 * time.Second,
	ReadTimeout:     15 * time.Second,
	WriteTimeout:    60 * time.Second,
	ShutdownTimeout: 10 * time.Second,
}

var AIInputLimits = struct {
	MaxDescriptionLength int
}{
	MaxDescriptionLength: 2000,
}

var AIPrompt = struct {
	RequestedTrackCount int
	// ExcludedFranchise is an ad hoc content filter inherited from product
	// policy. Remove the line from the prompt builder if the policy changes.
	ExcludedFranchise string
}{
	RequestedTrackCount: 9,
	ExcludedFranchise:   "My Hero Academia",
}

var Catalog = struct {
	BaseURL           string
	TokenURL          string
	EmbedPlayerURL    string
	SearchLimit       int
	SearchConcurrency int
}{
	BaseURL:           "https://api.soundcloud.com",
	TokenURL:          "https://secure.soundcloud.com/oauth/token",
	EmbedPlayerURL:    "https://w.soundcloud.com/player/",
	SearchLimit:       5,
	SearchConcurrency: 3,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        2 * time.Minute,
	RateLimitTimeout:    10 * time.Minute,
	HealthCheckInterval: 1 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var SchemaBounds = struct {
	MinTracks    int
	MaxTracks    int
	MinIntensity int
	MaxIntensity int
}{
	MinTracks:    5,
	MaxTracks:    10,
	MinIntensity: 1,
	MaxIntensity: 10,
}
