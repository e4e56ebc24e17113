// Package recommend turns a mood analysis into playable tracks. It fans the
// model's suggestions out to the catalog, then filters the resolved results
// against everything the caller has already been shown.
package recommend

import (
	"context"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/kapu/moodtunes-go/internal/constants"
	"github.com/kapu/moodtunes-go/internal/domain"
	"github.com/kapu/moodtunes-go/internal/service/dedup"
	"github.com/kapu/moodtunes-go/internal/service/soundcloud"
	"github.com/kapu/moodtunes-go/internal/util"
	"github.com/kapu/moodtunes-go/pkg/errors"
)

// CatalogClient resolves one suggested track against the music catalog.
type CatalogClient interface {
	Search(ctx context.Context, title, artist string) (domain.ResolvedTrack, error)
}

// Result is one refresh's worth of tracks plus the exclusion set the caller
// should carry into the next refresh.
type Result struct {
	Tracks     []domain.ResolvedTrack
	Exclusions []domain.TrackRequest
}

type Orchestrator struct {
	catalog CatalogClient
	logger  *zap.Logger
}

func NewOrchestrator(catalog CatalogClient, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{catalog: catalog, logger: logger}
}

// Generate resolves the analysis's suggested tracks in shuffled order and
// drops anything matching the exclusion list or another track from this same
// call. A zero seed shuffles from the clock; any other value makes the order
// reproducible. Exclusions are returned to the caller, never stored here.
func (o *Orchestrator) Generate(ctx context.Context, analysis *domain.MoodAnalysis, exclusions []domain.TrackRequest, seed int64) (*Result, error) {
	suggestions := make([]domain.TrackRequest, len(analysis.Recommendation.Tracks))
	copy(suggestions, analysis.Recommendation.Tracks)
	util.Shuffle(util.NewShuffleSource(seed), suggestions)

	resolved := make([]domain.ResolvedTrack, len(suggestions))
	lookupErrs := make([]error, len(suggestions))

	p := pool.New().WithMaxGoroutines(constants.Catalog.SearchConcurrency)
	for i, suggestion := range suggestions {
		p.Go(func() {
			artist := soundcloud.CleanArtistName(suggestion.Artist)
			resolved[i], lookupErrs[i] = o.catalog.Search(ctx, suggestion.Title, artist)
		})
	}
	p.Wait()

	for _, err := range lookupErrs {
		if err != nil {
			return nil, err
		}
	}

	// Dedup runs strictly after all lookups so the shuffled order, not
	// goroutine completion order, decides which duplicate survives.
	accepted := make([]domain.ResolvedTrack, 0, len(resolved))
	acceptedReqs := make([]domain.TrackRequest, 0, len(resolved))
	for _, track := range resolved {
		req := track.Request()
		if dedup.IsDuplicate(req, exclusions) || dedup.IsDuplicate(req, acceptedReqs) {
			o.logger.Debug("Dropping duplicate track",
				zap.String("title", track.Name),
				zap.String("artist", track.Artist),
			)
			continue
		}
		accepted = append(accepted, track)
		acceptedReqs = append(acceptedReqs, req)
	}

	if len(accepted) == 0 {
		return nil, errors.NewNoTracksFoundError()
	}

	o.logger.Info("Recommendations generated",
		zap.Int("suggested", len(suggestions)),
		zap.Int("accepted", len(accepted)),
		zap.Int("excluded", len(exclusions)),
	)

	return &Result{
		Tracks:     accepted,
		Exclusions: dedup.Merge(exclusions, acceptedReqs),
	}, nil
}
