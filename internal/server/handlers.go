package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kapu/moodtunes-go/internal/domain"
	"github.com/kapu/moodtunes-go/internal/service/recommend"
	apperrors "github.com/kapu/moodtunes-go/pkg/errors"
)

// MoodAnalyzer produces a structured analysis from free-text mood input.
type MoodAnalyzer interface {
	Analyze(ctx context.Context, description string, prefs domain.PreferenceSet, excluded []domain.TrackRequest, alignment domain.Alignment) (*domain.MoodAnalysis, error)
}

// Recommender resolves an analysis into deduplicated playable tracks.
type Recommender interface {
	Generate(ctx context.Context, analysis *domain.MoodAnalysis, exclusions []domain.TrackRequest, seed int64) (*recommend.Result, error)
}

// EntryStore persists journal entries.
type EntryStore interface {
	Save(ctx context.Context, entry *domain.MoodEntry) error
	GetByID(ctx context.Context, id string) (*domain.MoodEntry, error)
	GetByDate(ctx context.Context, userID, date string) (*domain.MoodEntry, error)
	ListByMonth(ctx context.Context, userID, month string) ([]*domain.MoodEntry, error)
	Delete(ctx context.Context, userID, date string) error
}

// PreferenceStore persists user preference sets.
type PreferenceStore interface {
	Get(ctx context.Context, userID string) (domain.PreferenceSet, error)
	Upsert(ctx context.Context, userID string, prefs domain.PreferenceSet) error
}

// HealthChecker reports whether a backing service is reachable.
type HealthChecker func(ctx context.Context) error

type Handler struct {
	analyzer    MoodAnalyzer
	recommender Recommender
	entries     EntryStore
	preferences PreferenceStore
	health      map[string]HealthChecker
	logger      *zap.Logger
}

func NewHandler(analyzer MoodAnalyzer, recommender Recommender, entries EntryStore, preferences PreferenceStore, health map[string]HealthChecker, logger *zap.Logger) *Handler {
	return &Handler{
		analyzer:    analyzer,
		recommender: recommender,
		entries:     entries,
		preferences: preferences,
		health:      health,
		logger:      logger,
	}
}

type analyzeRequest struct {
	UserID                      string                `json:"userId"`
	MoodDescription             string                `json:"moodDescription"`
	Preferences                 *domain.PreferenceSet `json:"preferences"`
	PreviouslyRecommendedTracks []domain.TrackRequest `json:"previouslyRecommendedTracks"`
	MoodAlignment               string                `json:"moodAlignment"`
}

// HandleAnalyze runs one mood analysis. Preferences supplied inline take
// precedence over the user's stored set; absent both, the unconstrained
// defaults apply.
func (h *Handler) HandleAnalyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.MoodDescription) == "" {
		return errorResponse(c, apperrors.NewEmptyInputError())
	}

	ctx := c.Request().Context()

	prefs := domain.DefaultPreferences()
	switch {
	case req.Preferences != nil:
		prefs = *req.Preferences
	case req.UserID != "" && h.preferences != nil:
		stored, err := h.preferences.Get(ctx, req.UserID)
		if err != nil {
			h.logger.Warn("Falling back to default preferences",
				zap.String("user_id", req.UserID), zap.Error(err))
		} else {
			prefs = stored
		}
	}

	alignment := prefs.DefaultAlignment
	if alignment == "" {
		alignment = domain.AlignmentMatch
	}
	if req.MoodAlignment != "" {
		alignment = domain.ParseAlignment(req.MoodAlignment)
	}

	analysis, err := h.analyzer.Analyze(ctx, req.MoodDescription, prefs, req.PreviouslyRecommendedTracks, alignment)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, analysis)
}

type recommendRequest struct {
	Analysis       *domain.MoodAnalysis  `json:"analysis"`
	ExcludedTracks []domain.TrackRequest `json:"excludedTracks"`
	Seed           int64                 `json:"seed"`
}

type recommendResponse struct {
	Tracks         []domain.ResolvedTrack `json:"tracks"`
	ExcludedTracks []domain.TrackRequest  `json:"excludedTracks"`
}

// HandleRecommendations resolves an analysis into tracks. The updated
// exclusion set is returned for the client to carry into its next refresh.
func (h *Handler) HandleRecommendations(c echo.Context) error {
	var req recommendRequest
	if err := c.Bind(&req); err != nil || req.Analysis == nil || len(req.Analysis.Recommendation.Tracks) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "analysis with recommended tracks is required",
		})
	}

	result, err := h.recommender.Generate(c.Request().Context(), req.Analysis, req.ExcludedTracks, req.Seed)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, recommendResponse{
		Tracks:         result.Tracks,
		ExcludedTracks: result.Exclusions,
	})
}

func (h *Handler) HandleSaveEntry(c echo.Context) error {
	var entry domain.MoodEntry
	if err := c.Bind(&entry); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid entry payload"})
	}
	if entry.UserID == "" || entry.Date == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "userId and date are required"})
	}

	if err := h.entries.Save(c.Request().Context(), &entry); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *Handler) HandleGetEntry(c echo.Context) error {
	entry, err := h.entries.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	if entry == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "entry not found"})
	}
	return c.JSON(http.StatusOK, entry)
}

// HandleListEntries serves both lookups over the collection: a month listing
// via ?userId=&month=YYYY-MM, or a single day via ?userId=&date=YYYY-MM-DD.
func (h *Handler) HandleListEntries(c echo.Context) error {
	userID := c.QueryParam("userId")
	month := c.QueryParam("month")
	date := c.QueryParam("date")
	if userID == "" || (month == "" && date == "") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "userId and month or date are required"})
	}

	if date != "" {
		entry, err := h.entries.GetByDate(c.Request().Context(), userID, date)
		if err != nil {
			return errorResponse(c, err)
		}
		if entry == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "entry not found"})
		}
		return c.JSON(http.StatusOK, entry)
	}

	entries, err := h.entries.ListByMonth(c.Request().Context(), userID, month)
	if err != nil {
		return errorResponse(c, err)
	}
	if entries == nil {
		entries = []*domain.MoodEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) HandleDeleteEntry(c echo.Context) error {
	userID := c.QueryParam("userId")
	date := c.QueryParam("date")
	if userID == "" || date == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "userId and date are required"})
	}

	if err := h.entries.Delete(c.Request().Context(), userID, date); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) HandleGetPreferences(c echo.Context) error {
	prefs, err := h.preferences.Get(c.Request().Context(), c.Param("userID"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, prefs)
}

func (h *Handler) HandlePutPreferences(c echo.Context) error {
	var prefs domain.PreferenceSet
	if err := c.Bind(&prefs); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid preferences payload"})
	}

	if err := h.preferences.Upsert(c.Request().Context(), c.Param("userID"), prefs); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, prefs)
}

func (h *Handler) HandleHealth(c echo.Context) error {
	ctx := c.Request().Context()
	status := http.StatusOK
	checks := make(map[string]string, len(h.health))

	for name, check := range h.health {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks[name] = "ok"
		}
	}

	return c.JSON(status, map[string]any{
		"status": http.StatusText(status),
		"checks": checks,
	})
}

// errorResponse maps the error taxonomy onto HTTP statuses. Unknown errors
// become opaque 500s.
func errorResponse(c echo.Context, err error) error {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return c.JSON(appErr.StatusCode, map[string]any{
			"error": appErr.Message,
			"code":  appErr.Code,
		})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}
