package ai

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/moodtunes-go/internal/constants"
	"github.com/kapu/moodtunes-go/internal/domain"
	"github.com/kapu/moodtunes-go/internal/prompt"
	"github.com/kapu/moodtunes-go/internal/util"
	"github.com/kapu/moodtunes-go/pkg/errors"
)

// TextGenerator is the model surface the analyzer depends on; the model
// manager implements it, tests substitute fakes.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (string, *GenerateMetadata, error)
}

// MoodAnalyzer turns a free-text mood description into a validated
// MoodAnalysis: prompt construction, model call, raw-text recovery,
// schema validation.
type MoodAnalyzer struct {
	generator TextGenerator
	logger    *zap.Logger
	now       func() time.Time
}

func NewMoodAnalyzer(generator TextGenerator, logger *zap.Logger) *MoodAnalyzer {
	return &MoodAnalyzer{
		generator: generator,
		logger:    logger,
		now:       time.Now,
	}
}

// Analyze performs one generation attempt. The empty-input guard runs before
// any upstream call; exclusions grow the prompt's CRITICAL block.
func (ma *MoodAnalyzer) Analyze(
	ctx context.Context,
	description string,
	prefs domain.PreferenceSet,
	excluded []domain.TrackRequest,
	alignment domain.Alignment,
) (*domain.MoodAnalysis, error) {
	sanitized := strings.TrimSpace(description)
	if sanitized == "" {
		return nil, errors.NewEmptyInputError()
	}
	sanitized = util.TruncateString(sanitized, constants.AIInputLimits.MaxDescriptionLength)

	promptText := prompt.BuildMoodAnalysisPrompt(prompt.MoodPromptVars{
		MoodDescription:   sanitized,
		Alignment:         alignment,
		Preferences:       prefs,
		ExcludedTracks:    excluded,
		TrackCount:        constants.AIPrompt.RequestedTrackCount,
		ExcludedFranchise: constants.AIPrompt.ExcludedFranchise,
		Timestamp:         ma.now().UTC().Format(time.RFC3339),
	})

	text, metadata, err := ma.generator.GenerateText(ctx, promptText, PresetCreative, &GenerateOptions{JSONMode: true})
	if err != nil {
		return nil, err
	}

	raw, err := extractJSONObject(text)
	if err != nil {
		ma.logger.Error("Failed to extract JSON from model response",
			zap.String("provider", metadata.Provider),
			zap.Error(err),
		)
		return nil, err
	}

	analysis, err := ValidateMoodAnalysis(raw)
	if err != nil {
		ma.logger.Error("Model response failed schema validation",
			zap.String("provider", metadata.Provider),
			zap.Error(err),
		)
		return nil, err
	}

	ma.logger.Info("Mood analysis generated",
		zap.String("provider", metadata.Provider),
		zap.String("model", metadata.Model),
		zap.Bool("used_fallback", metadata.UsedFallback),
		zap.String("primary_mood", analysis.PrimaryMood),
		zap.Int("intensity", analysis.Intensity),
		zap.Int("tracks", len(analysis.Recommendation.Tracks)),
		zap.Int("excluded", len(excluded)),
	)

	return analysis, nil
}

// extractJSONObject parses model output as JSON; when the full text fails it
// falls back to the outermost {...} span (greedy brace matching) before
// giving up with a MalformedResponseError.
func extractJSONObject(text string) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err == nil {
		return raw, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, errors.NewMalformedResponseError("no JSON object found in model response", nil)
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, errors.NewMalformedResponseError("extracted text is not valid JSON", err)
	}
	return raw, nil
}
