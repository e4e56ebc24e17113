package ai

import (
	"fmt"
	"math"

	"github.com/kapu/moodtunes-go/internal/constants"
	"github.com/kapu/moodtunes-go/internal/domain"
	"github.com/kapu/moodtunes-go/pkg/errors"
)

// ValidateMoodAnalysis enforces the mood analysis shape on the raw object
// parsed from model output and normalizes nullable-but-absent fields. It is
// pure: no I/O, first violation wins.
func ValidateMoodAnalysis(raw map[string]any) (*domain.MoodAnalysis, error) {
	narrative, err := requireString(raw, "narrative")
	if err != nil {
		return nil, err
	}

	primaryMood, err := requireString(raw, "primaryMood")
	if err != nil {
		return nil, err
	}

	secondaryMood, err := optionalString(raw, "secondaryMood")
	if err != nil {
		return nil, err
	}

	intensity, err := requireIntInRange(raw, "intensity",
		constants.SchemaBounds.MinIntensity, constants.SchemaBounds.MaxIntensity)
	if err != nil {
		return nil, err
	}

	recRaw, ok := raw["recommendation"]
	if !ok || recRaw == nil {
		return nil, errors.NewSchemaViolationError("recommendation", "object", describeValue(recRaw))
	}
	rec, ok := recRaw.(map[string]any)
	if !ok {
		return nil, errors.NewSchemaViolationError("recommendation", "object", describeValue(recRaw))
	}

	// The 3-5 genre count is a prompt convention, not a validated bound.
	genres, err := requireStringSlice(rec, "recommendation.genres", "genres")
	if err != nil {
		return nil, err
	}

	tracks, err := requireTracks(rec)
	if err != nil {
		return nil, err
	}

	playlistMood, err := requireStringField(rec, "recommendation.playlistMood", "playlistMood")
	if err != nil {
		return nil, err
	}

	// Tempo is stored as given; slow/medium/upbeat is a prompt convention,
	// not a validator enum.
	tempo, err := requireStringField(rec, "recommendation.tempo", "tempo")
	if err != nil {
		return nil, err
	}

	return &domain.MoodAnalysis{
		Narrative:     narrative,
		PrimaryMood:   primaryMood,
		SecondaryMood: secondaryMood,
		Intensity:     intensity,
		Recommendation: domain.RecommendationProfile{
			Genres:       genres,
			Tracks:       tracks,
			PlaylistMood: playlistMood,
			Tempo:        tempo,
		},
	}, nil
}

func requireString(obj map[string]any, field string) (string, error) {
	return requireStringField(obj, field, field)
}

func requireStringField(obj map[string]any, path, key string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", errors.NewSchemaViolationError(path, "string", describeValue(v))
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.NewSchemaViolationError(path, "string", describeValue(v))
	}
	return s, nil
}

// optionalString treats a missing key or a literal null as absent.
func optionalString(obj map[string]any, field string) (string, error) {
	v, ok := obj[field]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.NewSchemaViolationError(field, "string or null", describeValue(v))
	}
	return s, nil
}

func requireIntInRange(obj map[string]any, field string, min, max int) (int, error) {
	v, ok := obj[field]
	if !ok || v == nil {
		return 0, errors.NewSchemaViolationError(field, fmt.Sprintf("integer in [%d,%d]", min, max), describeValue(v))
	}
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, errors.NewSchemaViolationError(field, fmt.Sprintf("integer in [%d,%d]", min, max), describeValue(v))
	}
	n := int(f)
	if n < min || n > max {
		return 0, errors.NewSchemaViolationError(field, fmt.Sprintf("integer in [%d,%d]", min, max), fmt.Sprintf("%d", n))
	}
	return n, nil
}

func requireStringSlice(obj map[string]any, path, key string) ([]string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil, errors.NewSchemaViolationError(path, "array of strings", describeValue(v))
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, errors.NewSchemaViolationError(path, "array of strings", describeValue(v))
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, errors.NewSchemaViolationError(path, "array of strings", describeValue(item))
		}
		out = append(out, s)
	}
	return out, nil
}

func requireTracks(rec map[string]any) ([]domain.TrackRequest, error) {
	const path = "recommendation.tracks"

	v, ok := rec["tracks"]
	if !ok || v == nil {
		return nil, errors.NewSchemaViolationError(path, "array of track objects", describeValue(v))
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, errors.NewSchemaViolationError(path, "array of track objects", describeValue(v))
	}

	minTracks := constants.SchemaBounds.MinTracks
	maxTracks := constants.SchemaBounds.MaxTracks
	if len(arr) < minTracks || len(arr) > maxTracks {
		return nil, errors.NewSchemaViolationError(path,
			fmt.Sprintf("between %d and %d tracks", minTracks, maxTracks),
			fmt.Sprintf("%d tracks", len(arr)))
	}

	tracks := make([]domain.TrackRequest, 0, len(arr))
	for i, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, errors.NewSchemaViolationError(
				fmt.Sprintf("%s[%d]", path, i), "object", describeValue(item))
		}
		title, err := requireStringField(obj, fmt.Sprintf("%s[%d].title", path, i), "title")
		if err != nil {
			return nil, err
		}
		artist, err := requireStringField(obj, fmt.Sprintf("%s[%d].artist", path, i), "artist")
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, domain.TrackRequest{Title: title, Artist: artist})
	}

	return tracks, nil
}

func describeValue(v any) string {
	if v == nil {
		return "missing or null"
	}
	return fmt.Sprintf("%T", v)
}
