package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kapu/moodtunes-go/internal/domain"
	"github.com/kapu/moodtunes-go/internal/service/recommend"
	apperrors "github.com/kapu/moodtunes-go/pkg/errors"
)

type fakeAnalyzer struct {
	analysis *domain.MoodAnalysis
	err      error
	calls    int

	gotPrefs     domain.PreferenceSet
	gotExcluded  []domain.TrackRequest
	gotAlignment domain.Alignment
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string, prefs domain.PreferenceSet, excluded []domain.TrackRequest, alignment domain.Alignment) (*domain.MoodAnalysis, error) {
	f.calls++
	f.gotPrefs = prefs
	f.gotExcluded = excluded
	f.gotAlignment = alignment
	return f.analysis, f.err
}

type fakeRecommender struct {
	result *recommend.Result
	err    error
}

func (f *fakeRecommender) Generate(_ context.Context, _ *domain.MoodAnalysis, _ []domain.TrackRequest, _ int64) (*recommend.Result, error) {
	return f.result, f.err
}

type fakeEntryStore struct {
	saved   []*domain.MoodEntry
	byID    map[string]*domain.MoodEntry
	byDate  map[string]*domain.MoodEntry
	byMonth []*domain.MoodEntry
	deleted []string
}

func (f *fakeEntryStore) Save(_ context.Context, entry *domain.MoodEntry) error {
	f.saved = append(f.saved, entry)
	return nil
}

func (f *fakeEntryStore) GetByID(_ context.Context, id string) (*domain.MoodEntry, error) {
	return f.byID[id], nil
}

func (f *fakeEntryStore) GetByDate(_ context.Context, userID, date string) (*domain.MoodEntry, error) {
	return f.byDate[userID+"/"+date], nil
}

func (f *fakeEntryStore) ListByMonth(_ context.Context, _, _ string) ([]*domain.MoodEntry, error) {
	return f.byMonth, nil
}

func (f *fakeEntryStore) Delete(_ context.Context, userID, date string) error {
	f.deleted = append(f.deleted, userID+"/"+date)
	return nil
}

type fakePreferenceStore struct {
	prefs    domain.PreferenceSet
	upserted map[string]domain.PreferenceSet
}

func (f *fakePreferenceStore) Get(_ context.Context, _ string) (domain.PreferenceSet, error) {
	return f.prefs, nil
}

func (f *fakePreferenceStore) Upsert(_ context.Context, userID string, prefs domain.PreferenceSet) error {
	if f.upserted == nil {
		f.upserted = map[string]domain.PreferenceSet{}
	}
	f.upserted[userID] = prefs
	return nil
}

func newTestServer(analyzer MoodAnalyzer, recommender Recommender, entries EntryStore, prefs PreferenceStore) *Server {
	h := NewHandler(analyzer, recommender, entries, prefs, nil, zap.NewNop())
	return New(h, zap.NewNop())
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func testAnalysis() *domain.MoodAnalysis {
	return &domain.MoodAnalysis{
		Narrative:   "a calm evening",
		PrimaryMood: "calm",
		Intensity:   4,
		Recommendation: domain.RecommendationProfile{
			Genres:       []string{"lofi", "jazz", "ambient"},
			Tracks:       []domain.TrackRequest{{Title: "Song", Artist: "Artist"}},
			PlaylistMood: "late night calm",
			Tempo:        "slow",
		},
	}
}

func TestAnalyzeReturnsAnalysis(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: testAnalysis()}
	s := newTestServer(analyzer, &fakeRecommender{}, &fakeEntryStore{}, &fakePreferenceStore{prefs: domain.DefaultPreferences()})

	rec := doJSON(t, s, http.MethodPost, "/api/mood/analyze", `{"moodDescription":"quiet rainy day"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got domain.MoodAnalysis
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.PrimaryMood != "calm" {
		t.Errorf("primaryMood = %q", got.PrimaryMood)
	}
}

func TestAnalyzeHonorsInlinePreferences(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: testAnalysis()}
	stored := domain.PreferenceSet{
		Style:            []string{"metal"},
		Language:         []string{"any"},
		Source:           []string{"any"},
		DefaultAlignment: domain.AlignmentMatch,
	}
	s := newTestServer(analyzer, &fakeRecommender{}, &fakeEntryStore{}, &fakePreferenceStore{prefs: stored})

	rec := doJSON(t, s, http.MethodPost, "/api/mood/analyze",
		`{"userId":"u1","moodDescription":"restless","preferences":{"style":["jazz"],"language":["english"],"source":["any"],"defaultAlignment":"match"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if len(analyzer.gotPrefs.Style) != 1 || analyzer.gotPrefs.Style[0] != "jazz" {
		t.Errorf("inline preferences ignored, analyzer got style %v", analyzer.gotPrefs.Style)
	}
	if len(analyzer.gotPrefs.Language) != 1 || analyzer.gotPrefs.Language[0] != "english" {
		t.Errorf("inline preferences ignored, analyzer got language %v", analyzer.gotPrefs.Language)
	}
}

func TestAnalyzeForwardsExclusionsAndAlignment(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: testAnalysis()}
	s := newTestServer(analyzer, &fakeRecommender{}, &fakeEntryStore{}, &fakePreferenceStore{prefs: domain.DefaultPreferences()})

	rec := doJSON(t, s, http.MethodPost, "/api/mood/analyze",
		`{"moodDescription":"wired after work","previouslyRecommendedTracks":[{"title":"Dynamite","artist":"BTS"}],"moodAlignment":"contrast"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if len(analyzer.gotExcluded) != 1 || analyzer.gotExcluded[0].Title != "Dynamite" {
		t.Errorf("exclusions not forwarded: %+v", analyzer.gotExcluded)
	}
	if analyzer.gotAlignment != domain.AlignmentContrast {
		t.Errorf("alignment = %q, want contrast", analyzer.gotAlignment)
	}
}

func TestAnalyzeMalformedBodyIsBadRequest(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: testAnalysis()}
	s := newTestServer(analyzer, &fakeRecommender{}, &fakeEntryStore{}, &fakePreferenceStore{})

	rec := doJSON(t, s, http.MethodPost, "/api/mood/analyze", `{"moodDescription":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["error"] != "invalid request body" {
		t.Errorf("error = %q, want a parse-failure message", body["error"])
	}
	if analyzer.calls != 0 {
		t.Errorf("analyzer called %d times for malformed body", analyzer.calls)
	}
}

func TestAnalyzeMissingDescriptionIsBadRequest(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: testAnalysis()}
	s := newTestServer(analyzer, &fakeRecommender{}, &fakeEntryStore{}, &fakePreferenceStore{prefs: domain.DefaultPreferences()})

	for _, body := range []string{`{}`, `{"moodDescription":"   "}`} {
		rec := doJSON(t, s, http.MethodPost, "/api/mood/analyze", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
	if analyzer.calls != 0 {
		t.Errorf("analyzer called %d times for invalid input", analyzer.calls)
	}
}

func TestAnalyzeUpstreamFailureIsInternalError(t *testing.T) {
	analyzer := &fakeAnalyzer{err: apperrors.NewMalformedResponseError("model returned prose", nil)}
	s := newTestServer(analyzer, &fakeRecommender{}, &fakeEntryStore{}, &fakePreferenceStore{prefs: domain.DefaultPreferences()})

	rec := doJSON(t, s, http.MethodPost, "/api/mood/analyze", `{"moodDescription":"anything"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["code"] != apperrors.CodeMalformedResponse {
		t.Errorf("code = %v", body["code"])
	}
}

func TestRecommendationsReturnsTracksAndExclusions(t *testing.T) {
	recommender := &fakeRecommender{result: &recommend.Result{
		Tracks: []domain.ResolvedTrack{{
			ID: "1", Name: "Song", Artist: "Artist", Origin: domain.OriginCatalog,
		}},
		Exclusions: []domain.TrackRequest{{Title: "Song", Artist: "Artist"}},
	}}
	s := newTestServer(&fakeAnalyzer{}, recommender, &fakeEntryStore{}, &fakePreferenceStore{})

	payload, _ := json.Marshal(map[string]any{"analysis": testAnalysis(), "seed": 7})
	rec := doJSON(t, s, http.MethodPost, "/api/recommendations", string(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got recommendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Tracks) != 1 || len(got.ExcludedTracks) != 1 {
		t.Errorf("tracks = %d, exclusions = %d", len(got.Tracks), len(got.ExcludedTracks))
	}
}

func TestRecommendationsWithoutAnalysisIsBadRequest(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{}, &fakeRecommender{}, &fakeEntryStore{}, &fakePreferenceStore{})

	rec := doJSON(t, s, http.MethodPost, "/api/recommendations", `{"seed":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRecommendationsNoTracksFoundIsNotFound(t *testing.T) {
	recommender := &fakeRecommender{err: apperrors.NewNoTracksFoundError()}
	s := newTestServer(&fakeAnalyzer{}, recommender, &fakeEntryStore{}, &fakePreferenceStore{})

	payload, _ := json.Marshal(map[string]any{"analysis": testAnalysis()})
	rec := doJSON(t, s, http.MethodPost, "/api/recommendations", string(payload))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSaveEntry(t *testing.T) {
	entries := &fakeEntryStore{}
	s := newTestServer(&fakeAnalyzer{}, &fakeRecommender{}, entries, &fakePreferenceStore{})

	rec := doJSON(t, s, http.MethodPost, "/api/entries",
		`{"userId":"u1","date":"2026-03-14","description":"long week"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(entries.saved) != 1 || entries.saved[0].UserID != "u1" {
		t.Fatalf("saved = %+v", entries.saved)
	}
}

func TestSaveEntryRequiresUserAndDate(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{}, &fakeRecommender{}, &fakeEntryStore{}, &fakePreferenceStore{})

	rec := doJSON(t, s, http.MethodPost, "/api/entries", `{"description":"no owner"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetEntryNotFound(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{}, &fakeRecommender{}, &fakeEntryStore{byID: map[string]*domain.MoodEntry{}}, &fakePreferenceStore{})

	rec := doJSON(t, s, http.MethodGet, "/api/entries/missing-id", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListEntriesRequiresUserAndMonth(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{}, &fakeRecommender{}, &fakeEntryStore{}, &fakePreferenceStore{})

	rec := doJSON(t, s, http.MethodGet, "/api/entries?userId=u1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetEntryByDate(t *testing.T) {
	entries := &fakeEntryStore{byDate: map[string]*domain.MoodEntry{
		"u1/2026-03-14": {ID: "e1", UserID: "u1", Date: "2026-03-14", Description: "long week"},
	}}
	s := newTestServer(&fakeAnalyzer{}, &fakeRecommender{}, entries, &fakePreferenceStore{})

	rec := doJSON(t, s, http.MethodGet, "/api/entries?userId=u1&date=2026-03-14", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got domain.MoodEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "e1" {
		t.Errorf("id = %q", got.ID)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/entries?userId=u1&date=2026-03-15", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing day: status = %d, want 404", rec.Code)
	}
}

func TestDeleteEntry(t *testing.T) {
	entries := &fakeEntryStore{}
	s := newTestServer(&fakeAnalyzer{}, &fakeRecommender{}, entries, &fakePreferenceStore{})

	rec := doJSON(t, s, http.MethodDelete, "/api/entries?userId=u1&date=2026-03-14", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(entries.deleted) != 1 || entries.deleted[0] != "u1/2026-03-14" {
		t.Fatalf("deleted = %v", entries.deleted)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/entries?userId=u1", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing date: status = %d, want 400", rec.Code)
	}
}

func TestPutPreferencesRoundTrips(t *testing.T) {
	prefs := &fakePreferenceStore{prefs: domain.DefaultPreferences()}
	s := newTestServer(&fakeAnalyzer{}, &fakeRecommender{}, &fakeEntryStore{}, prefs)

	rec := doJSON(t, s, http.MethodPut, "/api/preferences/u1",
		`{"style":["jazz"],"language":["any"],"source":["any"],"defaultAlignment":"contrast"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	stored, ok := prefs.upserted["u1"]
	if !ok || len(stored.Style) != 1 || stored.Style[0] != "jazz" {
		t.Fatalf("upserted = %+v", prefs.upserted)
	}
}

func TestHealthReportsFailingCheck(t *testing.T) {
	h := NewHandler(&fakeAnalyzer{}, &fakeRecommender{}, &fakeEntryStore{}, &fakePreferenceStore{},
		map[string]HealthChecker{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return context.DeadlineExceeded },
		}, zap.NewNop())
	s := New(h, zap.NewNop())

	rec := doJSON(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
