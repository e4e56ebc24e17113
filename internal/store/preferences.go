package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/moodtunes-go/internal/domain"
	"github.com/kapu/moodtunes-go/internal/service/database"
)

type PreferenceStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPreferenceStore(postgres *database.PostgresService, logger *zap.Logger) *PreferenceStore {
	return &PreferenceStore{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

// Get returns the user's preferences, falling back to the unconstrained
// defaults when none are stored.
func (s *PreferenceStore) Get(ctx context.Context, userID string) (domain.PreferenceSet, error) {
	query := `
		SELECT style, language, source, default_alignment
		FROM user_preferences
		WHERE user_id = $1
		LIMIT 1
	`

	var (
		styleJSON    []byte
		languageJSON []byte
		sourceJSON   []byte
		alignment    string
	)

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&styleJSON, &languageJSON, &sourceJSON, &alignment,
	)
	if err == sql.ErrNoRows {
		return domain.DefaultPreferences(), nil
	}
	if err != nil {
		return domain.PreferenceSet{}, fmt.Errorf("failed to query preferences: %w", err)
	}

	prefs := domain.PreferenceSet{DefaultAlignment: domain.ParseAlignment(alignment)}
	for _, field := range []struct {
		raw  []byte
		dest *[]string
	}{
		{styleJSON, &prefs.Style},
		{languageJSON, &prefs.Language},
		{sourceJSON, &prefs.Source},
	} {
		if err := json.Unmarshal(field.raw, field.dest); err != nil {
			return domain.PreferenceSet{}, fmt.Errorf("failed to unmarshal preferences: %w", err)
		}
	}
	return prefs, nil
}

// Upsert stores the full preference set for a user.
func (s *PreferenceStore) Upsert(ctx context.Context, userID string, prefs domain.PreferenceSet) error {
	styleJSON, err := json.Marshal(prefs.Style)
	if err != nil {
		return fmt.Errorf("failed to marshal style: %w", err)
	}
	languageJSON, err := json.Marshal(prefs.Language)
	if err != nil {
		return fmt.Errorf("failed to marshal language: %w", err)
	}
	sourceJSON, err := json.Marshal(prefs.Source)
	if err != nil {
		return fmt.Errorf("failed to marshal source: %w", err)
	}

	query := `
		INSERT INTO user_preferences (user_id, style, language, source, default_alignment, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE
		SET style = EXCLUDED.style,
		    language = EXCLUDED.language,
		    source = EXCLUDED.source,
		    default_alignment = EXCLUDED.default_alignment,
		    updated_at = now()
	`

	if _, err := s.db.ExecContext(ctx, query,
		userID, styleJSON, languageJSON, sourceJSON, string(prefs.DefaultAlignment),
	); err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}

	s.logger.Debug("Preferences updated", zap.String("user_id", userID))
	return nil
}
