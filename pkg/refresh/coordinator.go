// Package refresh runs the background refresh of remote card metadata.
//
// A Coordinator allows at most one fetch at a time. Requests that arrive while
// a fetch is running join it instead of starting another, so manual, scheduled
// and API triggers collapse into a single network call and a single merge.
// Status changes are delivered to observers on a separate goroutine; nothing
// blocks the requester.
package refresh

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/agentstation/inkwell/pkg/catalogs"
	"github.com/agentstation/inkwell/pkg/constants"
	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/logging"
)

// Fetcher loads remote card records.
type Fetcher interface {
	Fetch(ctx context.Context) ([]catalogs.RemoteCard, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]catalogs.RemoteCard, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context) ([]catalogs.RemoteCard, error) {
	return f(ctx)
}

// Applier merges fetched records into the catalog.
type Applier interface {
	ApplyRemoteUpdate(records []catalogs.RemoteCard) catalogs.MergeResult
}

// Observer receives every status change in order.
type Observer func(Status)

// Coordinator owns the refresh state machine.
type Coordinator struct {
	fetcher Fetcher
	applier Applier
	timeout time.Duration
	now     func() time.Time

	mu          sync.Mutex
	status      Status
	last        Status // last terminal status
	lastSuccess time.Time
	flight      *Flight
	cancel      context.CancelFunc
	closed      bool
	observers   []Observer
	pending     []Status
	mergeHooks  []func(catalogs.MergeResult) // set at construction only

	wg           sync.WaitGroup
	wake         chan struct{}
	quit         chan struct{}
	dispatchDone chan struct{}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTimeout bounds each fetch. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock overrides the clock used for status timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithObserver registers an observer at construction.
func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		c.observers = append(c.observers, o)
	}
}

// WithMergeHook registers fn to run after every successful merge, outside the
// coordinator lock and before waiters are released.
func WithMergeHook(fn func(catalogs.MergeResult)) Option {
	return func(c *Coordinator) {
		c.mergeHooks = append(c.mergeHooks, fn)
	}
}

// NewCoordinator creates an idle coordinator. A nil fetcher makes every
// refresh fail with a configuration error.
func NewCoordinator(fetcher Fetcher, applier Applier, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher:      fetcher,
		applier:      applier,
		timeout:      constants.DefaultRefreshTimeout,
		now:          time.Now,
		wake:         make(chan struct{}, 1),
		quit:         make(chan struct{}),
		dispatchDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.status = Status{State: Idle, At: c.now()}
	go c.dispatch()
	return c
}

// Observe registers an observer for future status changes.
func (c *Coordinator) Observe(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// Status returns the current status.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// LastOutcome returns the terminal status of the most recent finished
// flight, or a zero Status if none finished yet.
func (c *Coordinator) LastOutcome() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// LastSuccess returns the time of the last successful refresh, zero if none.
func (c *Coordinator) LastSuccess() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSuccess
}

// Stale reports whether the last success is older than window.
func (c *Coordinator) Stale(window time.Duration) bool {
	last := c.LastSuccess()
	return last.IsZero() || c.now().Sub(last) > window
}

// Request starts a refresh and returns its flight. If a refresh is already
// running the running flight is returned and started is false. The fetch runs
// detached from ctx cancellation; use Cancel to abandon it.
func (c *Coordinator) Request(ctx context.Context) (f *Flight, started bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return finishedFlight(Status{State: Idle, At: c.now()}, errors.ErrCanceled), false
	}

	next, err := Transition(c.status.State, EventRequest)
	if err != nil {
		// only Loading can be observed here, terminal states settle under the lock
		logging.FromContext(ctx).Debug().Msg("Refresh already in flight, joining")
		return c.flight, false
	}

	flightCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	f = &Flight{done: make(chan struct{})}
	c.flight = f
	c.cancel = cancel
	c.setStatusLocked(Status{State: next, At: c.now()})

	c.wg.Add(1)
	go c.run(flightCtx, f)
	return f, true
}

// Cancel abandons the in-flight refresh. The status returns to Idle and no
// merge happens. It returns false when nothing was running.
func (c *Coordinator) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelLocked()
}

func (c *Coordinator) cancelLocked() bool {
	if c.flight == nil || c.flight.canceled {
		return false
	}
	c.flight.canceled = true
	c.cancel()
	return true
}

// Close cancels any running refresh, waits for it, and stops delivering
// status changes after the pending ones were flushed.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.cancelLocked()
	c.mu.Unlock()

	c.wg.Wait()
	close(c.quit)
	<-c.dispatchDone
	return nil
}

type fetchResult struct {
	records []catalogs.RemoteCard
	err     error
}

func (c *Coordinator) run(ctx context.Context, f *Flight) {
	defer c.wg.Done()

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// the fetch runs on its own goroutine so a fetcher that ignores its
	// context still cannot hold the coordinator past the timeout
	results := make(chan fetchResult, 1)
	go func() {
		results <- c.fetch(fetchCtx)
	}()

	var res fetchResult
	select {
	case res = <-results:
	case <-fetchCtx.Done():
		res.err = fetchCtx.Err()
	}

	if c.settle(ctx, f, res) {
		for _, fn := range c.mergeHooks {
			fn(f.result)
		}
	}
	close(f.done)
}

// settle moves the state machine out of Loading and merges on success. It
// reports whether a merge happened.
func (c *Coordinator) settle(ctx context.Context, f *Flight, res fetchResult) bool {
	logger := logging.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		c.flight = nil
		c.cancel = nil
	}()

	if f.canceled {
		next, _ := Transition(c.status.State, EventCancel)
		f.status = Status{State: next, At: c.now()}
		f.err = errors.ErrCanceled
		c.setStatusLocked(f.status)
		logger.Info().Msg("Refresh canceled")
		return false
	}

	if res.err == nil {
		f.result = c.applier.ApplyRemoteUpdate(res.records)
		next, _ := Transition(c.status.State, EventSucceed)
		f.status = Status{State: next, At: c.now()}
		c.lastSuccess = f.status.At
		c.finishLocked(f.status)
		logger.Info().
			Int("records", len(res.records)).
			Int("updated", len(f.result.Updated)).
			Int("added", len(f.result.Added)).
			Msg("Refresh completed")
		return true
	}

	err := res.err
	reason := Reason(err)
	next, _ := Transition(c.status.State, EventFail)
	f.status = Status{State: next, Reason: reason, At: c.now()}
	f.err = &errors.RefreshError{Reason: reason, Err: err}
	c.finishLocked(f.status)
	logger.Warn().Err(err).Str("reason", reason).Msg("Refresh failed")
	return false
}

// finishLocked publishes a terminal status and settles back to Idle.
func (c *Coordinator) finishLocked(terminal Status) {
	c.last = terminal
	c.setStatusLocked(terminal)
	next, _ := Transition(terminal.State, EventSettle)
	c.setStatusLocked(Status{State: next, At: terminal.At})
}

func (c *Coordinator) fetch(ctx context.Context) (res fetchResult) {
	defer func() {
		if r := recover(); r != nil {
			res = fetchResult{err: fmt.Errorf("fetch panicked: %v", r)}
		}
	}()
	if c.fetcher == nil {
		return fetchResult{err: &errors.ConfigError{Component: "refresh", Message: "no remote source configured"}}
	}
	records, err := c.fetcher.Fetch(ctx)
	return fetchResult{records: records, err: err}
}

func (c *Coordinator) setStatusLocked(s Status) {
	c.status = s
	c.pending = append(c.pending, s)
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// dispatch delivers queued status changes in order.
func (c *Coordinator) dispatch() {
	defer close(c.dispatchDone)
	for {
		select {
		case <-c.wake:
			c.drain()
		case <-c.quit:
			c.drain()
			return
		}
	}
}

func (c *Coordinator) drain() {
	for {
		c.mu.Lock()
		batch := c.pending
		c.pending = nil
		observers := slices.Clone(c.observers)
		c.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, s := range batch {
			for _, o := range observers {
				o(s)
			}
		}
	}
}

// Reason maps a fetch error to the short text shown next to a retry action.
func Reason(err error) string {
	var parseErr *errors.ParseError
	var cfgErr *errors.ConfigError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded), errors.IsTimeout(err):
		return "timeout"
	case errors.IsRateLimited(err):
		return "rate limited"
	case errors.IsRemoteUnavailable(err):
		return "remote source unavailable"
	case errors.As(err, &parseErr):
		return "malformed response"
	case errors.As(err, &cfgErr):
		return cfgErr.Message
	default:
		return err.Error()
	}
}
