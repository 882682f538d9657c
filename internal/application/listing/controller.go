// Package listing drives server-paginated, searchable, filterable lists.
package listing

import (
	"context"
	"strings"
	"sync"

	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// DefaultErrorMessage is shown when a failed fetch carries no message
const DefaultErrorMessage = "failed to load data"

// FetchFunc loads one page for a query
type FetchFunc[T any] func(ctx context.Context, q shared.Query) (shared.PageResult[T], error)

// State is a snapshot of a controller
type State[T any] struct {
	Query      shared.Query
	Data       []T
	TotalCount int
	TotalPages int
	Stats      shared.Stats
	// Loading is true strictly while a request is in flight
	Loading bool
	// Err is the last fetch failure, cleared by the next success
	Err error
}

// ErrorMessage returns the human readable failure, or "" when the last fetch succeeded
func (s State[T]) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	if msg := strings.TrimSpace(s.Err.Error()); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}

type options struct {
	resource string
	query    shared.Query
	logger   *zap.Logger
	metrics  *metrics.Recorder
}

// Option configures a Controller
type Option func(*options)

// WithResource names the list in logs and metrics
func WithResource(name string) Option {
	return func(o *options) {
		o.resource = name
	}
}

// WithQuery sets the initial query
func WithQuery(q shared.Query) Option {
	return func(o *options) {
		o.query = q
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics records fetch and stale-response counters
func WithMetrics(m *metrics.Recorder) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// Controller owns the query of one list and re-fetches whenever it changes.
// Each request carries a sequence number; only the latest one may update state,
// and issuing a new request cancels the previous one.
type Controller[T any] struct {
	fetch    FetchFunc[T]
	resource string
	logger   *zap.Logger
	metrics  *metrics.Recorder

	mu      sync.Mutex
	state   State[T]
	seq     uint64
	cancel  context.CancelFunc
	idle    chan struct{}
	baseCtx context.Context
	started bool
	closed  bool
	wg      sync.WaitGroup

	notifyMu sync.Mutex
	subMu    sync.Mutex
	subs     map[int]func(State[T])
	nextSub  int
}

// NewController creates a controller. Nothing is fetched until Start.
func NewController[T any](fetch FetchFunc[T], opts ...Option) *Controller[T] {
	o := options{
		resource: "list",
		query:    shared.NewQuery(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	idle := make(chan struct{})
	close(idle)

	return &Controller[T]{
		fetch:    fetch,
		resource: o.resource,
		logger:   o.logger.With(zap.String("resource", o.resource)),
		metrics:  o.metrics,
		state:    State[T]{Query: o.query.Normalize(), Data: []T{}},
		idle:     idle,
		baseCtx:  context.Background(),
		subs:     make(map[int]func(State[T])),
	}
}

// Start issues the initial fetch. Requests are children of ctx.
func (c *Controller[T]) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.baseCtx = ctx
	c.issueLocked()
	c.mu.Unlock()
	c.emit()
}

// Close cancels the in-flight request and waits for it to return.
// The controller issues no further requests.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.seq++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.state.Loading {
		c.state.Loading = false
		close(c.idle)
	}
	c.mu.Unlock()

	c.wg.Wait()
}

// State returns a snapshot
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller[T]) snapshotLocked() State[T] {
	s := c.state
	s.Query.Filters = c.state.Query.Filters.Clone()
	return s
}

// Query returns the current query
func (c *Controller[T]) Query() shared.Query {
	return c.State().Query
}

// SetPage moves to page p
func (c *Controller[T]) SetPage(p int) {
	if p < 1 {
		p = 1
	}
	c.update(func(q *shared.Query) { q.Page = p })
}

// SetPageSize changes the page size and returns to page 1
func (c *Controller[T]) SetPageSize(n int) {
	if n < 1 {
		n = shared.DefaultPageSize
	}
	c.update(func(q *shared.Query) {
		q.PageSize = n
		q.Page = 1
	})
}

// SetSearch commits a search term and returns to page 1
func (c *Controller[T]) SetSearch(s string) {
	c.update(func(q *shared.Query) {
		q.Search = s
		q.Page = 1
	})
}

// SetFilter sets one filter and returns to page 1. A nil or empty value removes the filter.
func (c *Controller[T]) SetFilter(key string, value any) {
	c.update(func(q *shared.Query) {
		q.Filters.Set(key, value)
		q.Page = 1
	})
}

// ClearFilters drops all filters and the search term and returns to page 1
func (c *Controller[T]) ClearFilters() {
	c.update(func(q *shared.Query) {
		q.Filters = shared.Filters{}
		q.Search = ""
		q.Page = 1
	})
}

// Refetch re-issues the current query unchanged
func (c *Controller[T]) Refetch() {
	c.mu.Lock()
	if !c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.issueLocked()
	c.mu.Unlock()
	c.emit()
}

// update applies mutate to a copy of the query and fetches only if the result differs
func (c *Controller[T]) update(mutate func(q *shared.Query)) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	next := c.state.Query
	next.Filters = next.Filters.Clone()
	mutate(&next)
	if next.Equal(c.state.Query) {
		c.mu.Unlock()
		return
	}
	c.state.Query = next
	c.issueLocked()
	c.mu.Unlock()
	c.emit()
}

// issueLocked cancels the in-flight request and starts a new one for the current query
func (c *Controller[T]) issueLocked() {
	if !c.started || c.closed {
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq
	q := c.state.Query
	q.Filters = q.Filters.Clone()

	ctx, cancel := context.WithCancel(c.baseCtx)
	c.cancel = cancel
	if !c.state.Loading {
		c.state.Loading = true
		c.idle = make(chan struct{})
	}

	c.logger.Debug("Fetching page",
		zap.Uint64("seq", seq),
		zap.Int("page", q.Page),
		zap.Int("page_size", q.PageSize),
		zap.String("search", q.Search),
		zap.String("filters", q.Filters.Key()),
	)

	c.wg.Add(1)
	go c.run(ctx, cancel, seq, q)
}

func (c *Controller[T]) run(ctx context.Context, cancel context.CancelFunc, seq uint64, q shared.Query) {
	defer c.wg.Done()
	defer cancel()

	res, err := c.fetch(ctx, q)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.logger.Debug("Discarding stale response", zap.Uint64("seq", seq))
		c.metrics.StaleDiscarded(c.resource)
		return
	}
	c.cancel = nil
	c.state.Loading = false
	if err != nil {
		c.state.Err = err
		c.metrics.ListFetched(c.resource, metrics.ResultError)
		c.logger.Debug("Fetch failed", zap.Uint64("seq", seq), zap.Error(err))
	} else {
		c.state.Data = res.Items
		if c.state.Data == nil {
			c.state.Data = []T{}
		}
		c.state.TotalCount = res.TotalCount
		c.state.TotalPages = res.TotalPages
		c.state.Stats = res.Stats
		c.state.Err = nil
		c.metrics.ListFetched(c.resource, metrics.ResultOK)
		c.logger.Debug("Fetch settled",
			zap.Uint64("seq", seq),
			zap.Int("items", len(res.Items)),
			zap.Int("total_count", res.TotalCount),
		)
	}
	close(c.idle)
	c.mu.Unlock()

	c.emit()
}

// Wait blocks until no request is in flight
func (c *Controller[T]) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		if !c.state.Loading {
			c.mu.Unlock()
			return nil
		}
		idle := c.idle
		c.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Subscribe registers fn for every state change and returns a function that removes it.
// fn runs on the goroutine that changed the state and must not call back into the controller.
func (c *Controller[T]) Subscribe(fn func(State[T])) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// emit delivers the current state to subscribers, in order
func (c *Controller[T]) emit() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.subMu.Lock()
	if len(c.subs) == 0 {
		c.subMu.Unlock()
		return
	}
	fns := make([]func(State[T]), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	st := c.State()
	for _, fn := range fns {
		fn(st)
	}
}
