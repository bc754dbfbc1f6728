package roulette

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/phuslu/log"

	"github.com/dayoung-oh/lunchspin/internal/domain"
)

// Phase is the selection state machine phase.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseShuffling
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseShuffling:
		return "shuffling"
	case PhaseSettled:
		return "settled"
	default:
		return "idle"
	}
}

const (
	defaultTickInterval    = 50 * time.Millisecond
	defaultMinSpinDuration = 2000 * time.Millisecond
	defaultMaxSpinDuration = 3000 * time.Millisecond

	// ratingWeightOffset compresses the weight range: ln(rating+20)
	// makes a 2.0-point rating spread produce only a mild selection
	// bias. Intentional low-variance weighting.
	ratingWeightOffset = 20.0
)

// Engine runs the rating-weighted roulette over a filtered candidate
// subset: shuffle ticks for a randomized duration, then a single
// weighted draw. Every reset or new spin bumps an epoch counter; timer
// callbacks captured under an older epoch become no-ops, so a stale
// in-flight spin can never settle on an outdated subset.
type Engine struct {
	mu     sync.Mutex
	phase  Phase
	winner *domain.Candidate
	subset []domain.Candidate
	epoch  uint64

	rng     *rand.Rand
	tick    time.Duration
	minSpin time.Duration
	maxSpin time.Duration

	onHighlight func(domain.Candidate)
	onSettle    func(domain.Candidate)
	celebrate   func(domain.Candidate)

	highlightQuit chan struct{}
	highlightDone chan struct{}
}

// Option applies Engine options.
type Option func(*Engine)

// WithRand replaces the default random source.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithTickInterval overrides the shuffle highlight interval.
func WithTickInterval(interval time.Duration) Option {
	return func(e *Engine) {
		e.tick = interval
	}
}

// WithSpinDuration overrides the [min, max) shuffle duration bounds.
func WithSpinDuration(min, max time.Duration) Option {
	return func(e *Engine) {
		e.minSpin = min
		e.maxSpin = max
	}
}

// WithHighlightFunc registers the presentation-only shuffle callback.
// It never affects the outcome.
func WithHighlightFunc(fn func(domain.Candidate)) Option {
	return func(e *Engine) {
		e.onHighlight = fn
	}
}

// WithSettleFunc registers the callback fired once a winner settles.
func WithSettleFunc(fn func(domain.Candidate)) Option {
	return func(e *Engine) {
		e.onSettle = fn
	}
}

// WithCelebrateFunc registers a best-effort celebratory hook. It runs on
// its own goroutine and has no effect on engine state.
func WithCelebrateFunc(fn func(domain.Candidate)) Option {
	return func(e *Engine) {
		e.celebrate = fn
	}
}

// NewEngine creates an idle engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		tick:    defaultTickInterval,
		minSpin: defaultMinSpinDuration,
		maxSpin: defaultMaxSpinDuration,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetHighlightFunc replaces the presentation callback after construction.
func (e *Engine) SetHighlightFunc(fn func(domain.Candidate)) {
	e.mu.Lock()
	e.onHighlight = fn
	e.mu.Unlock()
}

// SetSettleFunc replaces the settlement callback after construction.
func (e *Engine) SetSettleFunc(fn func(domain.Candidate)) {
	e.mu.Lock()
	e.onSettle = fn
	e.mu.Unlock()
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Winner returns the settled winner, present only in PhaseSettled.
func (e *Engine) Winner() (domain.Candidate, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.winner == nil {
		return domain.Candidate{}, false
	}
	return *e.winner, true
}

// Start begins a spin over the filtered subset. It is a no-op (returning
// false) when the subset is empty or a spin is already running. Starting
// from Settled implicitly resets first: the previous winner is discarded
// and a fresh spin begins.
func (e *Engine) Start(subset []domain.Candidate) bool {
	e.mu.Lock()
	if len(subset) == 0 || e.phase == PhaseShuffling {
		e.mu.Unlock()
		return false
	}

	e.subset = append([]domain.Candidate(nil), subset...)
	e.phase = PhaseShuffling
	e.winner = nil
	e.epoch++
	epoch := e.epoch
	e.highlightQuit = make(chan struct{})
	e.highlightDone = make(chan struct{})
	quit, done := e.highlightQuit, e.highlightDone

	spread := e.maxSpin - e.minSpin
	duration := e.minSpin
	if spread > 0 {
		duration += time.Duration(e.rng.Int63n(int64(spread)))
	}
	e.mu.Unlock()

	go e.runHighlightTicker(epoch, quit, done)
	time.AfterFunc(duration, func() {
		e.settle(epoch)
	})
	log.Debug().Dur("duration", duration).Int("subset", len(subset)).Msg("spin started")
	return true
}

// Reset cancels any running spin and clears the winner.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.epoch++
	e.phase = PhaseIdle
	e.winner = nil
	e.subset = nil
}

// runHighlightTicker re-randomizes the highlighted candidate on a fixed
// interval until the epoch moves on or settle signals quit. Closing done
// tells settle that no highlight callback is still in flight.
func (e *Engine) runHighlightTicker(epoch uint64, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()
	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
		}
		e.mu.Lock()
		if e.epoch != epoch || e.phase != PhaseShuffling {
			e.mu.Unlock()
			return
		}
		highlighted := e.subset[e.rng.Intn(len(e.subset))]
		cb := e.onHighlight
		e.mu.Unlock()
		if cb != nil {
			cb(highlighted)
		}
	}
}

func (e *Engine) settle(epoch uint64) {
	e.mu.Lock()
	if e.epoch != epoch || e.phase != PhaseShuffling {
		e.mu.Unlock()
		return
	}
	winner := pickWinner(e.subset, e.rng.Float64())
	e.phase = PhaseSettled
	e.winner = &winner
	onSettle := e.onSettle
	celebrate := e.celebrate
	quit, done := e.highlightQuit, e.highlightDone
	e.mu.Unlock()

	// The settle callback must not overlap a highlight callback: both
	// may target the same writer.
	close(quit)
	<-done

	if onSettle != nil {
		onSettle(winner)
	}
	if celebrate != nil {
		go celebrate(winner)
	}
}

// weight returns the roulette weight for a candidate.
func weight(c domain.Candidate) float64 {
	return math.Log(c.Rating + ratingWeightOffset)
}

// pickWinner draws one candidate proportionally to weight, walking the
// subset in its given order. draw is uniform in [0, 1). If floating-point
// drift lets the walk run off the end, the last candidate wins, which
// keeps the function total.
func pickWinner(subset []domain.Candidate, draw float64) domain.Candidate {
	totalWeight := 0.0
	for _, c := range subset {
		totalWeight += weight(c)
	}

	remainder := draw * totalWeight
	for _, c := range subset {
		remainder -= weight(c)
		if remainder <= 0 {
			return c
		}
	}
	return subset[len(subset)-1]
}
