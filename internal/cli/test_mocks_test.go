package cli

import (
	"context"
	"fmt"

	"github.com/dayoung-oh/lunchspin/internal/config"
	"github.com/dayoung-oh/lunchspin/internal/domain"
	"github.com/dayoung-oh/lunchspin/internal/service/discovery"
	"github.com/dayoung-oh/lunchspin/internal/storage"
)

type testGeocoder struct {
	matches []domain.Location
	err     error
}

func (g *testGeocoder) Search(context.Context, string) ([]domain.Location, error) {
	return g.matches, g.err
}

func (g *testGeocoder) Get(ctx context.Context, address string) (domain.Location, error) {
	matches, err := g.Search(ctx, address)
	if err != nil {
		return domain.Location{}, err
	}
	if len(matches) == 0 {
		return domain.Location{}, fmt.Errorf("no matches for %q", address)
	}
	return matches[0], nil
}

type testDiscoverer struct {
	candidates []domain.Candidate
	calls      int
}

func (d *testDiscoverer) Load(context.Context, domain.Location, int) discovery.Result {
	d.calls++
	return discovery.Result{
		Candidates: d.candidates,
		Categories: domain.Categories(d.candidates),
	}
}

type testSnapshotStore struct {
	snapshot *storage.SessionSnapshot
	saves    int
	clears   int
}

func (s *testSnapshotStore) Load(context.Context) (storage.SessionSnapshot, error) {
	if s.snapshot == nil {
		return storage.SessionSnapshot{}, storage.ErrNoSession
	}
	return *s.snapshot, nil
}

func (s *testSnapshotStore) Save(_ context.Context, snapshot storage.SessionSnapshot) error {
	s.saves++
	s.snapshot = &snapshot
	return nil
}

func (s *testSnapshotStore) Clear(context.Context) error {
	s.clears++
	s.snapshot = nil
	return nil
}

type testConfigManager struct {
	cfg   *config.Config
	saves int
}

func (m *testConfigManager) Path() string {
	return "/tmp/lunchspin-test/config.json"
}

func (m *testConfigManager) Load(context.Context) (config.Config, error) {
	if m.cfg == nil {
		return config.Config{}, config.ErrConfigNotFound
	}
	return *m.cfg, nil
}

func (m *testConfigManager) Save(_ context.Context, cfg config.Config) error {
	m.saves++
	m.cfg = &cfg
	return nil
}

func testCandidates() []domain.Candidate {
	return []domain.Candidate{
		{ID: "1", Name: "Gogi House", Category: "korean", Lat: 37.485, Lon: 127.017, DistanceMeters: 120, WalkMinutes: 2, Rating: 4.4},
		{ID: "2", Name: "Trattoria Sole", Category: "italian", Lat: 37.483, Lon: 127.015, DistanceMeters: 300, WalkMinutes: 4, Rating: 4.1},
		{ID: "3", Name: "Ramen Ichi", Category: "japanese", Lat: 37.486, Lon: 127.018, DistanceMeters: 450, WalkMinutes: 6, Rating: 3.9},
	}
}
