// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package controller owns the state of an interactive book search: the
// query text, page, sort order, loading flag, and the current result set.
//
// Keystrokes schedule a debounced fetch; page and sort changes fetch
// immediately and cancel any pending keystroke fetch. Every fetch carries a
// sequence number and only the most recently issued one may replace the
// result set, so a slow response for an obsolete query cannot overwrite a
// newer one. Failed fetches are logged and leave the previous results in
// place.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pdiddy/book-search/internal/catalog"
	"github.com/pdiddy/book-search/internal/clock"
	"github.com/pdiddy/book-search/pkg/types"
)

// Fetcher retrieves one page of search results. *catalog.Client satisfies it.
type Fetcher interface {
	Search(ctx context.Context, p types.SearchParams) ([]types.Book, error)
}

// State is a point-in-time copy of everything a view needs to render.
type State struct {
	Query   string
	Page    int
	Order   types.SortOrder
	Loading bool
	Results []types.Book
}

// Empty reports whether the "No results" placeholder should be shown.
func (s State) Empty() bool {
	return len(s.Results) == 0 && !s.Loading
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock used for debouncing.
func WithClock(c clock.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithLogger sets the logger for fetch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(ctl *Controller) { ctl.log = l }
}

// WithOnChange registers a callback invoked with a fresh State whenever a
// fetch starts or settles. Calls are serialized. The callback must not call
// the Controller's event methods.
func WithOnChange(fn func(State)) Option {
	return func(ctl *Controller) { ctl.onChange = fn }
}

// Controller is the search state machine. All methods are safe for
// concurrent use.
type Controller struct {
	ctx      context.Context
	fetcher  Fetcher
	clock    clock.Clock
	log      *slog.Logger
	onChange func(State)
	wait     time.Duration
	limit    int

	// emitMu orders state mutations with their onChange notifications.
	emitMu sync.Mutex

	mu       sync.Mutex
	query    string
	page     int
	order    types.SortOrder
	results  []types.Book
	inflight int
	seq      uint64
	closed   bool
	debounce *debouncer

	fetches sync.WaitGroup
	timers  sync.WaitGroup
}

// New returns a Controller at page 1, ascending order, with an empty query
// and no results. Fetches run under ctx; cancelling it aborts them.
func New(ctx context.Context, f Fetcher, cfg types.SearchConfig, opts ...Option) *Controller {
	limit := cfg.Limit
	if limit <= 0 {
		limit = types.DefaultLimit
	}
	wait := cfg.Debounce
	if wait < 0 {
		wait = 0
	}

	c := &Controller{
		ctx:     ctx,
		fetcher: f,
		clock:   clock.Real{},
		log:     slog.Default(),
		wait:    wait,
		limit:   limit,
		page:    1,
		order:   types.SortAsc,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.debounce = c.newDebouncerLocked()
	return c
}

// newDebouncerLocked binds a keystroke debouncer to the current page and
// order. Caller holds mu (or has exclusive access during New).
func (c *Controller) newDebouncerLocked() *debouncer {
	page, order := c.page, c.order
	return newDebouncer(c.clock, c.wait, &c.timers, func(query string) {
		c.FetchResults(c.ctx, query, page, order)
	})
}

// resetDebounceLocked cancels any pending keystroke fetch and binds a new
// debouncer to the current page and order. Caller holds mu.
func (c *Controller) resetDebounceLocked() {
	c.debounce.Cancel()
	c.debounce = c.newDebouncerLocked()
}

// Start issues the initial fetch for the empty query on page 1.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.spawnFetchLocked(c.query, c.page, c.order)
	c.mu.Unlock()
}

// OnQueryChange records text as the current query immediately and
// schedules a debounced fetch for it.
func (c *Controller) OnQueryChange(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.query = text
	d := c.debounce
	c.mu.Unlock()

	d.Call(text)
}

// OnPageChange moves the page by delta, never below 1. When the page
// changes, any pending keystroke fetch is dropped and the new page is
// fetched immediately. It returns the resulting page.
func (c *Controller) OnPageChange(delta int) int {
	c.mu.Lock()
	if c.closed {
		page := c.page
		c.mu.Unlock()
		return page
	}
	next := c.page + delta
	if next < 1 {
		next = 1
	}
	if next == c.page {
		c.mu.Unlock()
		return next
	}
	c.page = next
	c.resetDebounceLocked()
	c.spawnFetchLocked(c.query, next, c.order)
	c.mu.Unlock()
	return next
}

// OnSortToggle flips the sort order, drops any pending keystroke fetch,
// and fetches immediately. It returns the new order.
func (c *Controller) OnSortToggle() types.SortOrder {
	c.mu.Lock()
	if c.closed {
		order := c.order
		c.mu.Unlock()
		return order
	}
	c.order = c.order.Toggle()
	c.resetDebounceLocked()
	order := c.order
	c.spawnFetchLocked(c.query, c.page, order)
	c.mu.Unlock()
	return order
}

// spawnFetchLocked runs FetchResults on its own goroutine. Caller holds mu
// so that Close cannot start waiting before the fetch is counted.
func (c *Controller) spawnFetchLocked(query string, page int, order types.SortOrder) {
	c.fetches.Add(1)
	go func() {
		defer c.fetches.Done()
		c.FetchResults(c.ctx, query, page, order)
	}()
}

// FetchResults requests one page from the Fetcher and, if this is still the
// latest issued fetch when it settles, replaces the result set. Non-200
// responses are logged at debug level, any other failure at error level;
// neither touches the result set.
func (c *Controller) FetchResults(ctx context.Context, query string, page int, order types.SortOrder) {
	params := types.SearchParams{
		Query:  query,
		Limit:  c.limit,
		Page:   page,
		SortBy: types.SortField,
		Order:  order,
	}

	var seq uint64
	c.update(func() {
		c.seq++
		seq = c.seq
		c.inflight++
	})

	books, err := c.fetcher.Search(ctx, params)

	c.update(func() {
		c.inflight--
		attrs := []any{
			slog.String("search", query),
			slog.Int("page", page),
			slog.String("order", string(order)),
		}
		switch {
		case errors.Is(err, catalog.ErrUnexpectedStatus):
			c.log.DebugContext(ctx, "search returned non-success status", append(attrs, slog.Any("error", err))...)
		case err != nil:
			c.log.ErrorContext(ctx, "search failed", append(attrs, slog.Any("error", err))...)
		case seq != c.seq:
			c.log.DebugContext(ctx, "discarding stale search response",
				append(attrs, slog.Uint64("seq", seq), slog.Uint64("latest", c.seq))...)
		default:
			c.results = books
		}
	})
}

// update applies fn under the state lock and then notifies onChange with
// the resulting state.
func (c *Controller) update(fn func()) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	fn()
	st := c.snapshotLocked()
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(st)
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	results := make([]types.Book, len(c.results))
	copy(results, c.results)
	return State{
		Query:   c.query,
		Page:    c.page,
		Order:   c.order,
		Loading: c.inflight > 0,
		Results: results,
	}
}

// KeystrokePending reports whether a debounced fetch is scheduled.
func (c *Controller) KeystrokePending() bool {
	c.mu.Lock()
	d := c.debounce
	c.mu.Unlock()
	return d.Pending()
}

// Wait blocks until every fetch started by Start, OnPageChange, or
// OnSortToggle has settled. It does not wait for pending keystroke fetches.
func (c *Controller) Wait() {
	c.fetches.Wait()
}

// Close drops any pending keystroke fetch, stops accepting events, and
// waits for running fetches to settle.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.debounce.Cancel()
	c.mu.Unlock()

	c.timers.Wait()
	c.fetches.Wait()
}
