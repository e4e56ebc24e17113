package prompt

import (
	"strings"
	"testing"

	"github.com/kapu/moodtunes-go/internal/domain"
)

func baseVars() MoodPromptVars {
	return MoodPromptVars{
		MoodDescription:   "I'm overwhelmed but also excited for vacation",
		Alignment:         domain.AlignmentMatch,
		Preferences:       domain.DefaultPreferences(),
		TrackCount:        9,
		ExcludedFranchise: "My Hero Academia",
		Timestamp:         "2026-01-01T00:00:00Z",
	}
}

func TestBuildMoodAnalysisPromptIncludesDescriptionAndTrackCount(t *testing.T) {
	p := BuildMoodAnalysisPrompt(baseVars())

	if !strings.Contains(p, `"I'm overwhelmed but also excited for vacation"`) {
		t.Error("prompt missing mood description")
	}
	if !strings.Contains(p, "Recommend exactly 9 specific music tracks") {
		t.Error("prompt missing track count instruction")
	}
	if !strings.Contains(p, `"narrative"`) || !strings.Contains(p, `"recommendation"`) {
		t.Error("prompt missing JSON response format")
	}
}

func TestBuildMoodAnalysisPromptAlignmentDirectives(t *testing.T) {
	vars := baseVars()

	vars.Alignment = domain.AlignmentMatch
	p := BuildMoodAnalysisPrompt(vars)
	if !strings.Contains(p, "MATCHES their current mood") {
		t.Error("match alignment directive missing")
	}
	if strings.Contains(p, "CONTRASTS with their current mood") {
		t.Error("contrast directive present for match alignment")
	}

	vars.Alignment = domain.AlignmentContrast
	p = BuildMoodAnalysisPrompt(vars)
	if !strings.Contains(p, "CONTRASTS with their current mood") {
		t.Error("contrast alignment directive missing")
	}
}

func TestBuildMoodAnalysisPromptStrictPreferences(t *testing.T) {
	vars := baseVars()
	vars.Preferences = domain.PreferenceSet{
		Style:    []string{"jazz"},
		Language: []string{"any"},
		Source:   []string{"any"},
	}

	p := BuildMoodAnalysisPrompt(vars)

	if !strings.Contains(p, "STRICT USER PREFERENCES") {
		t.Fatal("strict preferences block missing")
	}
	if !strings.Contains(p, "ONLY recommend music in these styles/genres: jazz") {
		t.Error("style constraint missing")
	}
	if strings.Contains(p, "ONLY recommend songs in these languages") {
		t.Error("language constraint present despite any sentinel")
	}
	if strings.Contains(p, "ONLY recommend songs from these sources") {
		t.Error("source constraint present despite any sentinel")
	}
	if !strings.Contains(p, "recommend fewer tracks rather than including tracks that don't match") {
		t.Error("under-fill directive missing when constraints are active")
	}
}

func TestBuildMoodAnalysisPromptNoConstraintsStillExcludesFranchise(t *testing.T) {
	p := BuildMoodAnalysisPrompt(baseVars())

	if !strings.Contains(p, "DO NOT recommend any tracks from My Hero Academia") {
		t.Error("franchise exclusion missing")
	}
	if strings.Contains(p, "recommend fewer tracks rather than") {
		t.Error("under-fill directive present without user constraints")
	}
}

func TestBuildMoodAnalysisPromptExclusions(t *testing.T) {
	vars := baseVars()
	p := BuildMoodAnalysisPrompt(vars)
	if strings.Contains(p, "CRITICAL INSTRUCTION") {
		t.Error("exclusion block present with empty exclusion list")
	}

	vars.ExcludedTracks = []domain.TrackRequest{
		{Title: "Blinding Lights", Artist: "The Weeknd"},
		{Title: "Levitating", Artist: "Dua Lipa"},
	}
	p = BuildMoodAnalysisPrompt(vars)

	if !strings.Contains(p, "CRITICAL INSTRUCTION") {
		t.Fatal("exclusion block missing")
	}
	if !strings.Contains(p, `"Blinding Lights" by The Weeknd`) {
		t.Error("excluded track not listed")
	}
	if !strings.Contains(p, "slightly different in spelling or formatting") {
		t.Error("near-duplicate warning missing")
	}
}
