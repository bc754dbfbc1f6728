package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/phuslu/log"

	"github.com/dayoung-oh/lunchspin/internal/domain"
	"github.com/dayoung-oh/lunchspin/internal/service/discovery"
	"github.com/dayoung-oh/lunchspin/internal/service/roulette"
	"github.com/dayoung-oh/lunchspin/internal/storage"
)

// ValidRadiiMeters are the supported search radii (5/10/15-minute walks).
var ValidRadiiMeters = []int{400, 800, 1200}

var (
	// ErrInvalidRadius is returned for radii outside the fixed set.
	ErrInvalidRadius = errors.New("radius must be one of 400, 800 or 1200 meters")
	// ErrUnknownCategory is returned when toggling a category absent
	// from the current candidate list.
	ErrUnknownCategory = errors.New("category not present in current candidates")
)

// Discoverer loads candidates for a center and radius.
type Discoverer interface {
	Load(ctx context.Context, center domain.Location, radiusMeters int) discovery.Result
}

// Store persists the session snapshot.
type Store interface {
	Load(ctx context.Context) (storage.SessionSnapshot, error)
	Save(ctx context.Context, snapshot storage.SessionSnapshot) error
	Clear(ctx context.Context) error
}

// Session owns the current location, radius preference, category filter
// and selection engine, and re-runs discovery on parameter change. One
// session is active at a time; methods are safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	discovery Discoverer
	engine    *roulette.Engine
	store     Store

	center       domain.Location
	radiusMeters int
	candidates   []domain.Candidate
	categories   []string
	selected     map[string]struct{}

	lastWinner *domain.Candidate
	zoomed     bool

	generation atomic.Uint64
}

// Option adjusts the initial session parameters.
type Option func(*Session)

// WithDefaultCenter overrides the starting center.
func WithDefaultCenter(center domain.Location) Option {
	return func(s *Session) {
		s.center = center
	}
}

// WithDefaultRadius overrides the starting radius. Invalid radii are
// ignored.
func WithDefaultRadius(radiusMeters int) Option {
	return func(s *Session) {
		if validRadius(radiusMeters) {
			s.radiusMeters = radiusMeters
		}
	}
}

// New creates a session around the default center with a 10-minute walk
// radius. Candidates are empty until the first reload.
func New(discoverer Discoverer, engine *roulette.Engine, store Store, opts ...Option) *Session {
	s := &Session{
		discovery:    discoverer,
		engine:       engine,
		store:        store,
		center:       discovery.DefaultCenter,
		radiusMeters: 800,
		selected:     map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine exposes the selection engine for callback wiring.
func (s *Session) Engine() *roulette.Engine {
	return s.engine
}

// Center returns the current location.
func (s *Session) Center() domain.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.center
}

// RadiusMeters returns the current radius preference.
func (s *Session) RadiusMeters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.radiusMeters
}

// Candidates returns the current full candidate list.
func (s *Session) Candidates() []domain.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Candidate(nil), s.candidates...)
}

// Categories returns all categories present in the candidate list.
func (s *Session) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.categories...)
}

// SelectedCategories returns the active category filter in category order.
func (s *Session) SelectedCategories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedLocked()
}

func (s *Session) selectedLocked() []string {
	out := make([]string, 0, len(s.selected))
	for _, category := range s.categories {
		if _, ok := s.selected[category]; ok {
			out = append(out, category)
		}
	}
	return out
}

// FilteredCandidates returns candidates whose category is selected,
// preserving the candidate list order. This is the subset a spin runs over.
func (s *Session) FilteredCandidates() []domain.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filteredLocked()
}

func (s *Session) filteredLocked() []domain.Candidate {
	out := make([]domain.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		if _, ok := s.selected[c.Category]; ok {
			out = append(out, c)
		}
	}
	return out
}

// SetCenter relocates the session and reloads candidates. Any active
// selection is cancelled.
func (s *Session) SetCenter(ctx context.Context, center domain.Location) {
	s.mu.Lock()
	s.center = center
	s.lastWinner = nil
	s.zoomed = false
	s.mu.Unlock()
	s.Reload(ctx)
}

// SetRadius changes the radius preference and reloads candidates.
func (s *Session) SetRadius(ctx context.Context, radiusMeters int) error {
	if !validRadius(radiusMeters) {
		return fmt.Errorf("%w: got %d", ErrInvalidRadius, radiusMeters)
	}
	s.mu.Lock()
	s.radiusMeters = radiusMeters
	s.mu.Unlock()
	s.Reload(ctx)
	return nil
}

// SetWalkMinutes changes the radius via its walking-time equivalent.
func (s *Session) SetWalkMinutes(ctx context.Context, minutes int) error {
	return s.SetRadius(ctx, domain.RadiusForWalkMinutes(minutes))
}

func validRadius(radiusMeters int) bool {
	for _, r := range ValidRadiiMeters {
		if r == radiusMeters {
			return true
		}
	}
	return false
}

// Configure applies optional center and radius overrides in one step,
// then reloads once. A zero radius keeps the current preference.
func (s *Session) Configure(ctx context.Context, center *domain.Location, radiusMeters int) error {
	if radiusMeters != 0 && !validRadius(radiusMeters) {
		return fmt.Errorf("%w: got %d", ErrInvalidRadius, radiusMeters)
	}
	s.mu.Lock()
	if center != nil {
		s.center = *center
		s.lastWinner = nil
		s.zoomed = false
	}
	if radiusMeters != 0 {
		s.radiusMeters = radiusMeters
	}
	s.mu.Unlock()
	s.Reload(ctx)
	return nil
}

// Reload re-runs discovery for the current parameters, replaces the
// candidate list and resets the category filter to the full new set.
// A reload started later always wins: if this load finishes after a
// newer reload has begun, its result is discarded.
func (s *Session) Reload(ctx context.Context) {
	generation := s.generation.Add(1)
	s.engine.Reset()

	s.mu.Lock()
	center := s.center
	radius := s.radiusMeters
	s.mu.Unlock()

	result := s.discovery.Load(ctx, center, radius)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation.Load() != generation {
		log.Debug().Uint64("generation", generation).Msg("discarding superseded reload result")
		return
	}
	s.candidates = result.Candidates
	s.categories = result.Categories
	s.selected = make(map[string]struct{}, len(result.Categories))
	for _, category := range result.Categories {
		s.selected[category] = struct{}{}
	}
}

// ToggleCategory adds or removes one category from the filter. A filter
// edit during a shuffle cancels the spin.
func (s *Session) ToggleCategory(category string) error {
	s.mu.Lock()
	if !containsString(s.categories, category) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if _, ok := s.selected[category]; ok {
		delete(s.selected, category)
	} else {
		s.selected[category] = struct{}{}
	}
	s.mu.Unlock()
	s.cancelIfShuffling()
	return nil
}

// SelectAllCategories sets the filter to the full category set.
func (s *Session) SelectAllCategories() {
	s.mu.Lock()
	for _, category := range s.categories {
		s.selected[category] = struct{}{}
	}
	s.mu.Unlock()
	s.cancelIfShuffling()
}

// DeselectAllCategories empties the filter.
func (s *Session) DeselectAllCategories() {
	s.mu.Lock()
	s.selected = map[string]struct{}{}
	s.mu.Unlock()
	s.cancelIfShuffling()
}

func (s *Session) cancelIfShuffling() {
	if s.engine.Phase() == roulette.PhaseShuffling {
		s.engine.Reset()
	}
}

func containsString(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

// Spin starts the roulette over the filtered subset. Returns false when
// the subset is empty or a spin is already running.
func (s *Session) Spin() bool {
	return s.engine.Start(s.FilteredCandidates())
}

// ResetSelection cancels or clears the current selection.
func (s *Session) ResetSelection() {
	s.engine.Reset()
	s.mu.Lock()
	s.lastWinner = nil
	s.zoomed = false
	s.mu.Unlock()
}

// Winner returns the settled winner from the engine, falling back to the
// restored last winner from a previous run.
func (s *Session) Winner() (domain.Candidate, bool) {
	if winner, ok := s.engine.Winner(); ok {
		return winner, true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastWinner == nil {
		return domain.Candidate{}, false
	}
	return *s.lastWinner, true
}

// Snapshot builds the persisted subset of the session state.
func (s *Session) Snapshot() storage.SessionSnapshot {
	winner, hasWinner := s.Winner()
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := storage.SessionSnapshot{
		RadiusMeters:       s.radiusMeters,
		Center:             s.center,
		SelectedCategories: s.selectedLocked(),
		Zoomed:             s.zoomed || hasWinner,
	}
	if hasWinner {
		snapshot.Winner = &winner
	}
	return snapshot
}

// Save persists the current snapshot.
func (s *Session) Save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Save(ctx, s.Snapshot())
}

// Restore applies a persisted snapshot, reloads candidates for the
// restored parameters and narrows the filter to the persisted selection
// where it still matches available categories.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	snapshot, err := s.store.Load(ctx)
	if errors.Is(err, storage.ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	if snapshot.Center.Lat != 0 || snapshot.Center.Lon != 0 {
		s.center = snapshot.Center
	}
	if validRadius(snapshot.RadiusMeters) {
		s.radiusMeters = snapshot.RadiusMeters
	}
	s.lastWinner = snapshot.Winner
	s.zoomed = snapshot.Zoomed
	s.mu.Unlock()

	s.Reload(ctx)

	if len(snapshot.SelectedCategories) > 0 {
		s.mu.Lock()
		restored := map[string]struct{}{}
		for _, category := range snapshot.SelectedCategories {
			if containsString(s.categories, category) {
				restored[category] = struct{}{}
			}
		}
		if len(restored) > 0 {
			s.selected = restored
		}
		s.mu.Unlock()
	}
	return nil
}
