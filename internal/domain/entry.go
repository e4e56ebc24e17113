package domain

import "time"

// MoodEntry is one persisted journal entry: the user's free-text description
// plus the analysis it produced, scoped to a local calendar day.
type MoodEntry struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	Date        string       `json:"date"` // YYYY-MM-DD, local calendar day
	Description string       `json:"description"`
	Analysis    MoodAnalysis `json:"analysis"`
	Alignment   Alignment    `json:"alignment"`
	CreatedAt   time.Time    `json:"createdAt"`
}
