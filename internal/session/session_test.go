package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dayoung-oh/lunchspin/internal/domain"
	"github.com/dayoung-oh/lunchspin/internal/service/discovery"
	"github.com/dayoung-oh/lunchspin/internal/service/roulette"
	"github.com/dayoung-oh/lunchspin/internal/storage"
)

type staticDiscoverer struct {
	result discovery.Result
	calls  int
}

func (d *staticDiscoverer) Load(_ context.Context, _ domain.Location, _ int) discovery.Result {
	d.calls++
	return d.result
}

type memoryStore struct {
	snapshot *storage.SessionSnapshot
}

func (m *memoryStore) Load(_ context.Context) (storage.SessionSnapshot, error) {
	if m.snapshot == nil {
		return storage.SessionSnapshot{}, storage.ErrNoSession
	}
	return *m.snapshot, nil
}

func (m *memoryStore) Save(_ context.Context, snapshot storage.SessionSnapshot) error {
	m.snapshot = &snapshot
	return nil
}

func (m *memoryStore) Clear(_ context.Context) error {
	m.snapshot = nil
	return nil
}

func discoveryResult() discovery.Result {
	candidates := []domain.Candidate{
		{ID: "a", Name: "Bistro A", Category: "french", Rating: 5.0},
		{ID: "b", Name: "Diner B", Category: "american", Rating: 3.0},
		{ID: "c", Name: "Bistro C", Category: "french", Rating: 4.0},
	}
	return discovery.Result{Candidates: candidates, Categories: domain.Categories(candidates)}
}

func fastEngine() *roulette.Engine {
	return roulette.NewEngine(
		roulette.WithTickInterval(2*time.Millisecond),
		roulette.WithSpinDuration(200*time.Millisecond, 201*time.Millisecond),
	)
}

func newTestSession(d Discoverer) *Session {
	return New(d, fastEngine(), &memoryStore{})
}

func TestReloadResetsFilterToFullCategorySet(t *testing.T) {
	s := newTestSession(&staticDiscoverer{result: discoveryResult()})
	s.Reload(context.Background())

	selected := s.SelectedCategories()
	if len(selected) != 2 {
		t.Fatalf("expected full category set after reload, got %v", selected)
	}
	if selected[0] != "american" || selected[1] != "french" {
		t.Fatalf("unexpected filter order: %v", selected)
	}
}

func TestToggleCategoryNarrowsFilteredSubset(t *testing.T) {
	s := newTestSession(&staticDiscoverer{result: discoveryResult()})
	s.Reload(context.Background())

	if err := s.ToggleCategory("american"); err != nil {
		t.Fatalf("unexpected toggle error: %v", err)
	}
	filtered := s.FilteredCandidates()
	if len(filtered) != 2 {
		t.Fatalf("expected only french candidates, got %d", len(filtered))
	}
	for _, c := range filtered {
		if c.Category != "french" {
			t.Fatalf("unexpected candidate %q in filtered subset", c.ID)
		}
	}

	if err := s.ToggleCategory("american"); err != nil {
		t.Fatalf("unexpected re-toggle error: %v", err)
	}
	if len(s.FilteredCandidates()) != 3 {
		t.Fatal("expected re-toggled category back in subset")
	}
}

func TestToggleUnknownCategoryFails(t *testing.T) {
	s := newTestSession(&staticDiscoverer{result: discoveryResult()})
	s.Reload(context.Background())

	if err := s.ToggleCategory("sushi"); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestSelectAndDeselectAll(t *testing.T) {
	s := newTestSession(&staticDiscoverer{result: discoveryResult()})
	s.Reload(context.Background())

	s.DeselectAllCategories()
	if len(s.FilteredCandidates()) != 0 {
		t.Fatal("expected empty subset after deselect all")
	}
	if s.Spin() {
		t.Fatal("expected spin over empty subset to be a no-op")
	}

	s.SelectAllCategories()
	if len(s.FilteredCandidates()) != 3 {
		t.Fatal("expected full subset after select all")
	}
}

func TestSetRadiusValidation(t *testing.T) {
	s := newTestSession(&staticDiscoverer{result: discoveryResult()})
	if err := s.SetRadius(context.Background(), 999); !errors.Is(err, ErrInvalidRadius) {
		t.Fatalf("expected ErrInvalidRadius, got %v", err)
	}
	if err := s.SetWalkMinutes(context.Background(), 15); err != nil {
		t.Fatalf("unexpected error for valid walking budget: %v", err)
	}
	if s.RadiusMeters() != 1200 {
		t.Fatalf("expected 1200m radius, got %d", s.RadiusMeters())
	}
}

func TestFilterEditDuringShuffleCancelsSpin(t *testing.T) {
	s := newTestSession(&staticDiscoverer{result: discoveryResult()})
	s.Reload(context.Background())

	if !s.Spin() {
		t.Fatal("expected spin to start")
	}
	if err := s.ToggleCategory("french"); err != nil {
		t.Fatalf("unexpected toggle error: %v", err)
	}

	if s.Engine().Phase() != roulette.PhaseIdle {
		t.Fatalf("expected idle after filter edit, got %v", s.Engine().Phase())
	}
	time.Sleep(250 * time.Millisecond)
	if _, ok := s.Winner(); ok {
		t.Fatal("stale spin must not settle after filter edit")
	}
}

func TestParameterChangeCancelsActiveSelection(t *testing.T) {
	s := newTestSession(&staticDiscoverer{result: discoveryResult()})
	s.Reload(context.Background())

	if !s.Spin() {
		t.Fatal("expected spin to start")
	}
	if err := s.SetRadius(context.Background(), 400); err != nil {
		t.Fatalf("unexpected radius error: %v", err)
	}
	if s.Engine().Phase() != roulette.PhaseIdle {
		t.Fatalf("expected reload to cancel spin, got %v", s.Engine().Phase())
	}
}

type blockingDiscoverer struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
	first   discovery.Result
	second  discovery.Result
}

func (d *blockingDiscoverer) Load(_ context.Context, _ domain.Location, _ int) discovery.Result {
	d.mu.Lock()
	call := d.calls
	d.calls++
	d.mu.Unlock()
	if call == 0 {
		close(d.started)
		<-d.release
		return d.first
	}
	return d.second
}

func TestSupersededReloadIsDiscarded(t *testing.T) {
	stale := discovery.Result{
		Candidates: []domain.Candidate{{ID: "old", Name: "Old Place", Category: "stale", Rating: 3.0}},
		Categories: []string{"stale"},
	}
	d := &blockingDiscoverer{
		started: make(chan struct{}),
		release: make(chan struct{}),
		first:   stale,
		second:  discoveryResult(),
	}
	s := newTestSession(d)

	done := make(chan struct{})
	go func() {
		s.Reload(context.Background())
		close(done)
	}()

	<-d.started
	s.Reload(context.Background())
	close(d.release)
	<-done

	for _, c := range s.Candidates() {
		if c.ID == "old" {
			t.Fatal("superseded reload result must be discarded")
		}
	}
	if len(s.Candidates()) != 3 {
		t.Fatalf("expected newest reload to win, got %d candidates", len(s.Candidates()))
	}
}

func TestSnapshotRoundTripThroughStore(t *testing.T) {
	store := &memoryStore{}
	s := New(&staticDiscoverer{result: discoveryResult()}, fastEngine(), store)
	ctx := context.Background()
	s.Reload(ctx)

	center := domain.Location{Lat: 37.4841, Lon: 127.0162, Address: "Hyoryeong-ro 256"}
	s.SetCenter(ctx, center)
	if err := s.ToggleCategory("american"); err != nil {
		t.Fatalf("unexpected toggle error: %v", err)
	}
	if err := s.Save(ctx); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	restored := New(&staticDiscoverer{result: discoveryResult()}, fastEngine(), store)
	if err := restored.Restore(ctx); err != nil {
		t.Fatalf("unexpected restore error: %v", err)
	}
	if restored.Center().Address != "Hyoryeong-ro 256" {
		t.Fatalf("center not restored: %+v", restored.Center())
	}
	selected := restored.SelectedCategories()
	if len(selected) != 1 || selected[0] != "french" {
		t.Fatalf("expected persisted filter to survive restore, got %v", selected)
	}
}

func TestRestoredZoomFlagSurvivesResave(t *testing.T) {
	store := &memoryStore{snapshot: &storage.SessionSnapshot{
		RadiusMeters: 400,
		Center:       domain.Location{Lat: 37.4841, Lon: 127.0162},
		Zoomed:       true,
	}}
	s := New(&staticDiscoverer{result: discoveryResult()}, fastEngine(), store)
	ctx := context.Background()

	if err := s.Restore(ctx); err != nil {
		t.Fatalf("unexpected restore error: %v", err)
	}
	if !s.Snapshot().Zoomed {
		t.Fatal("expected restored zoom flag to survive a resave")
	}

	s.ResetSelection()
	if s.Snapshot().Zoomed {
		t.Fatal("expected reset to clear the zoom flag")
	}
}

func TestRestoreWithoutSnapshotKeepsDefaults(t *testing.T) {
	s := newTestSession(&staticDiscoverer{result: discoveryResult()})
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("unexpected restore error: %v", err)
	}
	if s.RadiusMeters() != 800 {
		t.Fatalf("expected default radius, got %d", s.RadiusMeters())
	}
	if s.Center() != discovery.DefaultCenter {
		t.Fatalf("expected default center, got %+v", s.Center())
	}
}
