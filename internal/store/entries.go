// Package store persists journal entries and user preferences in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kapu/moodtunes-go/internal/domain"
	"github.com/kapu/moodtunes-go/internal/service/database"
)

type EntryStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewEntryStore(postgres *database.PostgresService, logger *zap.Logger) *EntryStore {
	return &EntryStore{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

// Save writes the entry, replacing any earlier entry for the same user and
// day. A missing ID is assigned here.
func (s *EntryStore) Save(ctx context.Context, entry *domain.MoodEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	analysisJSON, err := json.Marshal(entry.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `
		INSERT INTO mood_entries (id, user_id, entry_date, description, analysis, alignment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, entry_date) DO UPDATE
		SET description = EXCLUDED.description,
		    analysis = EXCLUDED.analysis,
		    alignment = EXCLUDED.alignment
	`

	if _, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Date, entry.Description,
		analysisJSON, string(entry.Alignment), entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to save mood entry: %w", err)
	}

	s.logger.Debug("Mood entry saved",
		zap.String("user_id", entry.UserID),
		zap.String("date", entry.Date),
	)
	return nil
}

// GetByDate returns the entry for one user and day, nil when absent.
func (s *EntryStore) GetByDate(ctx context.Context, userID, date string) (*domain.MoodEntry, error) {
	query := `
		SELECT id, user_id, to_char(entry_date, 'YYYY-MM-DD'), description, analysis, alignment, created_at
		FROM mood_entries
		WHERE user_id = $1 AND entry_date = $2
		LIMIT 1
	`

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, userID, date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query mood entry: %w", err)
	}
	return entry, nil
}

// GetByID returns one entry by primary key, nil when absent.
func (s *EntryStore) GetByID(ctx context.Context, id string) (*domain.MoodEntry, error) {
	query := `
		SELECT id, user_id, to_char(entry_date, 'YYYY-MM-DD'), description, analysis, alignment, created_at
		FROM mood_entries
		WHERE id = $1
		LIMIT 1
	`

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query mood entry: %w", err)
	}
	return entry, nil
}

// ListByMonth returns all entries for a user within a month given as YYYY-MM,
// oldest first.
func (s *EntryStore) ListByMonth(ctx context.Context, userID, month string) ([]*domain.MoodEntry, error) {
	query := `
		SELECT id, user_id, to_char(entry_date, 'YYYY-MM-DD'), description, analysis, alignment, created_at
		FROM mood_entries
		WHERE user_id = $1 AND to_char(entry_date, 'YYYY-MM') = $2
		ORDER BY entry_date ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list mood entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.MoodEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mood entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Delete removes one entry by user and day.
func (s *EntryStore) Delete(ctx context.Context, userID, date string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM mood_entries WHERE user_id = $1 AND entry_date = $2`,
		userID, date,
	); err != nil {
		return fmt.Errorf("failed to delete mood entry: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.MoodEntry, error) {
	var (
		entry        domain.MoodEntry
		analysisJSON []byte
		alignment    string
	)

	if err := row.Scan(
		&entry.ID, &entry.UserID, &entry.Date, &entry.Description,
		&analysisJSON, &alignment, &entry.CreatedAt,
	); err != nil {
		return nil, err
	}

	if len(analysisJSON) > 0 {
		if err := json.Unmarshal(analysisJSON, &entry.Analysis); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
		}
	}
	entry.Alignment = domain.ParseAlignment(alignment)
	return &entry, nil
}
