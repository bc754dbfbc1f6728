package discovery

import (
	"context"
	"math"

	"github.com/phuslu/log"

	"github.com/dayoung-oh/lunchspin/internal/domain"
	"github.com/dayoung-oh/lunchspin/internal/storage"
)

// fallbackToleranceDegrees bounds how far (per axis) a center may sit
// from DefaultCenter and still receive the sample dataset, roughly 1.1 km.
const fallbackToleranceDegrees = 0.01

// Fetcher loads raw candidates from the points-of-interest provider.
type Fetcher interface {
	Fetch(ctx context.Context, center domain.Location, radiusMeters int) ([]domain.Candidate, error)
}

// Cache stores candidate lists keyed by quantized (radius, center) pairs.
type Cache interface {
	Get(ctx context.Context, key string) ([]domain.Candidate, bool)
	Put(ctx context.Context, key string, candidates []domain.Candidate)
}

// Service turns a center and radius into a ready-to-use candidate list.
// It never fails: every error path degrades to an empty list, leaving
// retry decisions to the caller's next parameter change.
type Service struct {
	fetcher Fetcher
	cache   Cache
}

// Result is the outcome of one discovery run.
type Result struct {
	Candidates []domain.Candidate `json:"candidates"`
	Categories []string           `json:"categories"`
}

// NewService creates a discovery service.
func NewService(fetcher Fetcher, cache Cache) *Service {
	return &Service{fetcher: fetcher, cache: cache}
}

// Load returns candidates around center within radiusMeters, consulting
// the cache first and falling back to the built-in sample dataset when a
// live fetch comes back empty near the default center.
func (s *Service) Load(ctx context.Context, center domain.Location, radiusMeters int) Result {
	key := storage.CacheKey(radiusMeters, center)
	if candidates, ok := s.cache.Get(ctx, key); ok {
		log.Debug().Str("key", key).Int("count", len(candidates)).Msg("discovery served from cache")
		return buildResult(candidates)
	}

	candidates, err := s.fetcher.Fetch(ctx, center, radiusMeters)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("candidate fetch failed, degrading to empty result")
		candidates = nil
	}
	if len(candidates) > 0 {
		s.cache.Put(ctx, key, candidates)
		return buildResult(candidates)
	}

	if nearDefaultCenter(center) {
		log.Debug().Str("key", key).Msg("no live data near default center, using sample dataset")
		return buildResult(sampleWithinRadius(radiusMeters))
	}
	return buildResult(nil)
}

func nearDefaultCenter(center domain.Location) bool {
	return math.Abs(center.Lat-DefaultCenter.Lat) < fallbackToleranceDegrees &&
		math.Abs(center.Lon-DefaultCenter.Lon) < fallbackToleranceDegrees
}

func buildResult(candidates []domain.Candidate) Result {
	if candidates == nil {
		candidates = []domain.Candidate{}
	}
	return Result{
		Candidates: candidates,
		Categories: domain.Categories(candidates),
	}
}
