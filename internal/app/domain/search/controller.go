// Package search drives location autocomplete: it debounces keystrokes, keeps
// at most one geocoding request live and never lets a superseded response
// overwrite fresher state.
package search

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/triply/internal/app/domain/geocoding"
	"github.com/FACorreiaa/triply/internal/app/models"
	"github.com/FACorreiaa/triply/internal/app/observability/metrics"
)

const (
	DefaultDebounceDelay  = 300 * time.Millisecond
	DefaultMinQueryLength = 2
	DefaultLimit          = 10
)

// Geocoder is the single outbound call the controller makes.
type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]models.Location, error)
}

type Option func(*Controller)

func WithDebounceDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.debounce = d
		}
	}
}

func WithMinQueryLength(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.minLen = n
		}
	}
}

func WithLimit(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithBaseContext sets the parent of every request context. Cancelling it
// cancels the in-flight request without mutating state.
func WithBaseContext(ctx context.Context) Option {
	return func(c *Controller) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}

// Controller owns one search box worth of state. It is safe for concurrent
// use.
type Controller struct {
	geocoder Geocoder
	logger   *zap.Logger
	debounce time.Duration
	minLen   int
	limit    int
	baseCtx  context.Context

	mu    sync.Mutex
	state State
	// timerSeq identifies the live debounce timer; a timer whose sequence no
	// longer matches fires into a no-op.
	timer    *time.Timer
	timerSeq uint64
	// nextToken only grows. activeToken is the token of the request allowed
	// to mutate state, or zero when none is.
	nextToken    uint64
	activeToken  uint64
	cancelActive context.CancelFunc
	closed       bool

	notifyMu  sync.Mutex
	delivered uint64
	// pending is the newest snapshot not yet handed out; draining is set
	// while one goroutine is calling listeners.
	pending      *State
	draining     bool
	listeners    map[int]func(State)
	nextListener int
}

// New creates an idle controller.
func New(geocoder Geocoder, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		geocoder:  geocoder,
		logger:    logger,
		debounce:  DefaultDebounceDelay,
		minLen:    DefaultMinQueryLength,
		limit:     DefaultLimit,
		baseCtx:   context.Background(),
		state:     State{Status: StatusIdle},
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current search state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn for state changes and returns a function that removes
// it. Listeners run one at a time in version order, and a burst of changes may
// reach them as only its newest snapshot. A listener may call back into the
// controller; the resulting state is delivered after it returns.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.notifyMu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.notifyMu.Unlock()

	return func() {
		c.notifyMu.Lock()
		delete(c.listeners, id)
		c.notifyMu.Unlock()
	}
}

// SetQuery records the raw input and schedules a search. Failures surface in
// State, never here.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.state.Query = text
	trimmed := strings.TrimSpace(text)

	// Any newer keystroke supersedes the pending timer and the live request.
	c.stopTimerLocked()
	c.cancelActiveLocked()
	c.state.Results = nil
	c.state.Error = ""

	if utf8.RuneCountInString(trimmed) < c.minLen {
		c.state.Status = StatusIdle
	} else {
		c.state.Status = StatusDebouncing
		seq := c.timerSeq
		c.timer = time.AfterFunc(c.debounce, func() { c.fire(seq, trimmed) })
	}

	snap := c.publishLocked()
	c.mu.Unlock()
	c.deliver(snap)
}

// Clear cancels pending work and resets to an empty idle state.
func (c *Controller) Clear() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.stopTimerLocked()
	c.cancelActiveLocked()
	c.state.Query = ""
	c.state.Status = StatusIdle
	c.state.Results = nil
	c.state.Error = ""

	snap := c.publishLocked()
	c.mu.Unlock()
	c.deliver(snap)
}

// Close cancels pending work and detaches all listeners. The controller
// ignores every call after Close.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopTimerLocked()
	c.cancelActiveLocked()
	c.mu.Unlock()

	c.notifyMu.Lock()
	clear(c.listeners)
	c.notifyMu.Unlock()
}

// fire runs on the timer goroutine once the input has been quiet for the
// debounce delay.
func (c *Controller) fire(seq uint64, query string) {
	c.mu.Lock()
	if c.closed || seq != c.timerSeq || c.state.Status != StatusDebouncing {
		c.mu.Unlock()
		return
	}
	c.timer = nil

	c.cancelActiveLocked()
	c.nextToken++
	token := c.nextToken
	ctx, cancel := context.WithCancel(c.baseCtx)
	c.activeToken = token
	c.cancelActive = cancel
	c.state.Status = StatusLoading

	snap := c.publishLocked()
	c.mu.Unlock()
	c.deliver(snap)

	c.logger.Debug("Location search issued", zap.String("query", query), zap.Uint64("token", token))
	results, err := c.geocoder.Search(ctx, query, c.limit)
	c.complete(ctx, token, query, results, err)
}

func (c *Controller) complete(ctx context.Context, token uint64, query string, results []models.Location, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	if token != c.activeToken {
		c.mu.Unlock()
		metrics.Get().SearchStaleDiscardsTotal.Add(ctx, 1)
		c.logger.Debug("Discarding stale location search response",
			zap.String("query", query), zap.Uint64("token", token))
		return
	}

	if err != nil && errors.Is(err, models.ErrCancelled) {
		// Expected when the base context goes away; nothing to show.
		c.activeToken = 0
		c.cancelActive = nil
		c.mu.Unlock()
		c.record(ctx, "cancelled")
		return
	}

	c.cancelActiveLocked()
	if err != nil {
		c.state.Status = StatusError
		c.state.Results = nil
		c.state.Error = errorMessage(err)
	} else {
		c.state.Status = StatusSuccess
		c.state.Results = geocoding.SortByImportance(results)
		c.state.Error = ""
	}
	snap := c.publishLocked()
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("Location search failed", zap.String("query", query), zap.Error(err))
		c.record(ctx, "error")
	} else {
		c.logger.Debug("Location search completed",
			zap.String("query", query), zap.Int("results", len(snap.Results)))
		c.record(ctx, "success")
	}
	c.deliver(snap)
}

func (c *Controller) stopTimerLocked() {
	c.timerSeq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) cancelActiveLocked() {
	c.activeToken = 0
	if c.cancelActive != nil {
		c.cancelActive()
		c.cancelActive = nil
	}
}

func (c *Controller) publishLocked() State {
	c.state.Version++
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	s := c.state
	if s.Results != nil {
		s.Results = append([]models.Location(nil), s.Results...)
	} else {
		s.Results = []models.Location{}
	}
	s.IsLoading = s.Status == StatusDebouncing || s.Status == StatusLoading
	s.HasResults = len(s.Results) > 0
	s.IsEmpty = s.Status == StatusSuccess && len(s.Results) == 0
	return s
}

// deliver hands snap to the listeners unless a newer snapshot already went
// out. Listeners are called without notifyMu held; a delivery that arrives
// mid-drain is left in pending for the draining goroutine.
func (c *Controller) deliver(snap State) {
	c.notifyMu.Lock()
	if snap.Version <= c.delivered || (c.pending != nil && snap.Version <= c.pending.Version) {
		c.notifyMu.Unlock()
		return
	}
	c.pending = &snap
	if c.draining {
		c.notifyMu.Unlock()
		return
	}

	c.draining = true
	for c.pending != nil {
		next := *c.pending
		c.pending = nil
		c.delivered = next.Version
		fns := make([]func(State), 0, len(c.listeners))
		for _, id := range slices.Sorted(maps.Keys(c.listeners)) {
			fns = append(fns, c.listeners[id])
		}
		c.notifyMu.Unlock()

		for _, fn := range fns {
			fn(next)
		}
		c.notifyMu.Lock()
	}
	c.draining = false
	c.notifyMu.Unlock()
}

func (c *Controller) record(ctx context.Context, outcome string) {
	metrics.Get().SearchRequestsTotal.Add(context.WithoutCancel(ctx), 1,
		metric.WithAttributes(attribute.String("outcome", outcome)))
}

func errorMessage(err error) string {
	var e *models.Error
	if errors.As(err, &e) && e.Err != nil {
		return "Failed to load locations: " + e.Err.Error()
	}
	if msg := err.Error(); msg != "" {
		return "Failed to load locations: " + msg
	}
	return "Failed to load locations"
}
