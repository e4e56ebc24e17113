package ai

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kapu/moodtunes-go/internal/domain"
	apperrors "github.com/kapu/moodtunes-go/pkg/errors"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string, _ ModelPreset, _ *GenerateOptions) (string, *GenerateMetadata, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", nil, f.err
	}
	return f.response, &GenerateMetadata{Provider: "Fake", Model: "fake-1"}, nil
}

func validResponseJSON(t *testing.T) string {
	t.Helper()
	data, err := json.Marshal(validRaw(t))
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return string(data)
}

func TestAnalyzeEmptyInputSkipsGenerator(t *testing.T) {
	gen := &fakeGenerator{}
	analyzer := NewMoodAnalyzer(gen, zap.NewNop())

	for _, input := range []string{"", "   ", "\n\t "} {
		_, err := analyzer.Analyze(context.Background(), input, domain.DefaultPreferences(), nil, domain.AlignmentMatch)
		if _, ok := err.(*apperrors.EmptyInputError); !ok {
			t.Errorf("input %q: expected EmptyInputError, got %v", input, err)
		}
	}

	if gen.calls != 0 {
		t.Errorf("generator called %d times for empty input", gen.calls)
	}
}

func TestAnalyzeValidResponse(t *testing.T) {
	gen := &fakeGenerator{response: validResponseJSON(t)}
	analyzer := NewMoodAnalyzer(gen, zap.NewNop())

	analysis, err := analyzer.Analyze(context.Background(),
		"I'm overwhelmed but also excited for vacation",
		domain.DefaultPreferences(), nil, domain.AlignmentMatch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if analysis.Intensity < 1 || analysis.Intensity > 10 {
		t.Errorf("intensity %d out of range", analysis.Intensity)
	}
	if n := len(analysis.Recommendation.Tracks); n < 5 || n > 10 {
		t.Errorf("track count %d out of range", n)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d", gen.calls)
	}
}

func TestAnalyzeExtractsJSONFromNoisyText(t *testing.T) {
	gen := &fakeGenerator{
		response: "Here is your analysis:\n" + validResponseJSON(t) + "\nHope this helps!",
	}
	analyzer := NewMoodAnalyzer(gen, zap.NewNop())

	analysis, err := analyzer.Analyze(context.Background(), "feeling fine",
		domain.DefaultPreferences(), nil, domain.AlignmentMatch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.PrimaryMood == "" {
		t.Error("expected populated analysis from embedded JSON")
	}
}

func TestAnalyzeMalformedResponse(t *testing.T) {
	gen := &fakeGenerator{response: "I cannot produce JSON today, sorry."}
	analyzer := NewMoodAnalyzer(gen, zap.NewNop())

	_, err := analyzer.Analyze(context.Background(), "feeling fine",
		domain.DefaultPreferences(), nil, domain.AlignmentMatch)
	if _, ok := err.(*apperrors.MalformedResponseError); !ok {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
}

func TestAnalyzeSchemaViolationPropagates(t *testing.T) {
	raw := validRaw(t)
	rec := raw["recommendation"].(map[string]any)
	rec["tracks"] = rec["tracks"].([]any)[:3]
	data, _ := json.Marshal(raw)

	gen := &fakeGenerator{response: string(data)}
	analyzer := NewMoodAnalyzer(gen, zap.NewNop())

	_, err := analyzer.Analyze(context.Background(), "feeling fine",
		domain.DefaultPreferences(), nil, domain.AlignmentMatch)
	if _, ok := err.(*apperrors.SchemaViolationError); !ok {
		t.Fatalf("expected SchemaViolationError, got %v", err)
	}
}

func TestAnalyzePromptCarriesExclusionsAndAlignment(t *testing.T) {
	gen := &fakeGenerator{response: validResponseJSON(t)}
	analyzer := NewMoodAnalyzer(gen, zap.NewNop())

	excluded := []domain.TrackRequest{{Title: "Dynamite", Artist: "BTS"}}
	_, err := analyzer.Analyze(context.Background(), "restless evening",
		domain.DefaultPreferences(), excluded, domain.AlignmentContrast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := gen.prompts[0]
	if !strings.Contains(sent, `"Dynamite" by BTS`) {
		t.Error("prompt missing excluded track")
	}
	if !strings.Contains(sent, "CONTRASTS with their current mood") {
		t.Error("prompt missing contrast directive")
	}
}
