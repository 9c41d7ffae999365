package permissions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/logger"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/metrics"
)

// ErrResolverClosed is returned by Resolve once the resolver has been torn down.
var ErrResolverClosed = errors.New("permissions: item resolver closed")

// ItemFetcher loads the current user's permissions on a single record.
type ItemFetcher interface {
	FetchItemPermissions(ctx context.Context, collection string, key PrimaryKey) (ItemPermissions, error)
}

// ItemFetcherFunc adapts a function to the ItemFetcher interface.
type ItemFetcherFunc func(ctx context.Context, collection string, key PrimaryKey) (ItemPermissions, error)

// FetchItemPermissions calls f.
func (f ItemFetcherFunc) FetchItemPermissions(ctx context.Context, collection string, key PrimaryKey) (ItemPermissions, error) {
	return f(ctx, collection, key)
}

// ErrorReporter receives fetch failures. Implementations must return promptly.
type ErrorReporter interface {
	Report(err error, context string)
}

// ReporterFunc adapts a function to the ErrorReporter interface.
type ReporterFunc func(err error, context string)

// Report calls f.
func (f ReporterFunc) Report(err error, context string) {
	f(err, context)
}

// Phase describes where an ItemResolver is in its fetch cycle.
type Phase int

const (
	// PhaseIdle means nothing observed the resolver yet; no fetch was issued.
	PhaseIdle Phase = iota
	// PhaseLoading means the most recently triggered fetch is in flight.
	PhaseLoading
	// PhaseResolved means the latest fetch succeeded.
	PhaseResolved
	// PhaseFallback means the latest fetch failed and the optimistic value is exposed.
	PhaseFallback
	// PhaseClosed means the resolver was torn down.
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseResolved:
		return "resolved"
	case PhaseFallback:
		return "fallback"
	case PhaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is a point in time view of an ItemResolver.
type State struct {
	Phase        Phase
	Permissions  ItemPermissions
	RefreshToken uint64
	Generation   uint64
	// Err holds the failure absorbed by the latest fetch, if any.
	Err error
}

// Loading reports whether the most recently triggered fetch is still in flight.
func (s State) Loading() bool {
	return s.Phase == PhaseLoading
}

// ResolverOption customises an ItemResolver.
type ResolverOption func(*ItemResolver)

// WithReporter sets the sink that receives fetch failures.
func WithReporter(reporter ErrorReporter) ResolverOption {
	return func(r *ItemResolver) {
		if reporter != nil {
			r.reporter = reporter
		}
	}
}

// WithLogger overrides the resolver logger.
func WithLogger(log *zap.Logger) ResolverOption {
	return func(r *ItemResolver) {
		if log != nil {
			r.log = log
		}
	}
}

// ItemResolver keeps an up to date ItemPermissions value for one (collection, primary key) pair.
//
// The fetch is lazy: nothing is requested until Permissions or Resolve is first called. After
// that, every Refresh and every change announced by a Notifier input launches a new fetch.
// Each launch is tagged with a generation; completions from older generations are discarded
// so the value always reflects the most recent trigger. Callers never see fetch errors: a
// failed fetch is reported and the optimistic all-granted value is exposed instead.
type ItemResolver struct {
	collection Source[string]
	primaryKey Source[PrimaryKey]
	fetcher    ItemFetcher
	reporter   ErrorReporter
	log        *zap.Logger

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu           sync.Mutex
	observed     bool
	phase        Phase
	current      ItemPermissions
	lastErr      error
	refreshToken uint64
	generation   uint64
	cancel       context.CancelFunc
	changed      chan struct{}
	unsubscribe  []func()
}

// NewItemResolver constructs a resolver for the supplied inputs.
func NewItemResolver(collection Source[string], primaryKey Source[PrimaryKey], fetcher ItemFetcher, opts ...ResolverOption) (*ItemResolver, error) {
	if collection == nil {
		return nil, errors.New("permissions: collection source is required")
	}
	if primaryKey == nil {
		return nil, errors.New("permissions: primary key source is required")
	}
	if fetcher == nil {
		return nil, errors.New("permissions: item fetcher is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &ItemResolver{
		collection: collection,
		primaryKey: primaryKey,
		fetcher:    fetcher,
		reporter:   ReporterFunc(func(error, string) {}),
		log:        logger.WithModule("permissions"),
		baseCtx:    ctx,
		baseCancel: cancel,
		phase:      PhaseIdle,
		current:    DefaultItemPermissions(),
		changed:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	if n, ok := collection.(Notifier); ok {
		r.unsubscribe = append(r.unsubscribe, n.Subscribe(r.invalidate))
	}
	if n, ok := primaryKey.(Notifier); ok {
		r.unsubscribe = append(r.unsubscribe, n.Subscribe(r.invalidate))
	}

	return r, nil
}

// Permissions returns the latest resolved value and marks the resolver as observed,
// triggering the first fetch if none has run yet. It never blocks on the network.
func (r *ItemResolver) Permissions() ItemPermissions {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.observeLocked()
	return r.current
}

// Loading reports whether the most recently triggered fetch is in flight.
func (r *ItemResolver) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.phase == PhaseLoading
}

// Snapshot returns the current state without observing the resolver.
func (r *ItemResolver) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshotLocked()
}

// Refresh forces a new fetch cycle even when the inputs are unchanged. Before the resolver
// is observed it only advances the refresh token; the first observation fetches anyway.
func (r *ItemResolver) Refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase == PhaseClosed {
		return
	}
	r.refreshToken++
	if r.observed {
		r.launchLocked()
	}
}

// Changed returns a channel closed on the next state change.
func (r *ItemResolver) Changed() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.changed
}

// Resolve observes the resolver and waits until the most recently triggered fetch landed.
// Errors only report cancellation of ctx or a closed resolver; fetch failures are absorbed.
func (r *ItemResolver) Resolve(ctx context.Context) (ItemPermissions, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		r.mu.Lock()
		if r.phase == PhaseClosed {
			current := r.current
			r.mu.Unlock()
			return current, ErrResolverClosed
		}
		r.observeLocked()
		if r.phase != PhaseLoading {
			current := r.current
			r.mu.Unlock()
			return current, nil
		}
		changed := r.changed
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return r.Snapshot().Permissions, ctx.Err()
		case <-changed:
		}
	}
}

// Close tears the resolver down: in-flight fetches are cancelled and input subscriptions removed.
func (r *ItemResolver) Close() {
	r.mu.Lock()
	if r.phase == PhaseClosed {
		r.mu.Unlock()
		return
	}
	r.phase = PhaseClosed
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.notifyLocked()
	r.mu.Unlock()

	r.baseCancel()
	for _, fn := range unsubscribe {
		fn()
	}
}

func (r *ItemResolver) invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.observed && r.phase != PhaseClosed {
		r.launchLocked()
	}
}

func (r *ItemResolver) observeLocked() {
	if r.observed || r.phase == PhaseClosed {
		return
	}
	r.observed = true
	r.launchLocked()
}

func (r *ItemResolver) launchLocked() {
	if r.cancel != nil {
		r.cancel()
	}

	r.generation++
	gen := r.generation
	collection := r.collection.Get()
	key := r.primaryKey.Get()

	ctx, cancel := context.WithCancel(r.baseCtx)
	r.cancel = cancel
	r.phase = PhaseLoading
	r.notifyLocked()

	r.log.Debug("fetching item permissions",
		zap.String("collection", collection),
		zap.Stringer("primary_key", key),
		zap.Uint64("generation", gen),
	)

	go r.fetch(ctx, gen, collection, key)
}

func (r *ItemResolver) fetch(ctx context.Context, gen uint64, collection string, key PrimaryKey) {
	start := time.Now()
	perms, err := r.fetcher.FetchItemPermissions(ctx, collection, key)
	metrics.ItemPermissionFetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		perms = OptimisticItemPermissions()
	}
	if !r.land(gen, perms, err) || err == nil {
		return
	}

	// The fallback value is already current; the reporter runs unlocked and may trigger again.
	r.reporter.Report(err, fmt.Sprintf("fetch item permissions for %s/%s", collection, key))
	r.settle(gen)
}

// land stores the outcome of generation gen and reports whether it became current.
// A failed fetch stays in the loading phase until settle runs after its report.
func (r *ItemResolver) land(gen uint64, perms ItemPermissions, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation || r.phase == PhaseClosed {
		metrics.ItemPermissionFetches.WithLabelValues("stale").Inc()
		r.log.Debug("discarding stale item permissions",
			zap.Uint64("generation", gen),
			zap.Uint64("current_generation", r.generation),
			zap.Error(err),
		)
		return false
	}

	r.current = perms
	r.lastErr = err
	result := "fallback"
	if err == nil {
		r.phase = PhaseResolved
		result = "success"
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	metrics.ItemPermissionFetches.WithLabelValues(result).Inc()
	r.notifyLocked()
	return true
}

func (r *ItemResolver) settle(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation || r.phase != PhaseLoading {
		return
	}
	r.phase = PhaseFallback
	r.notifyLocked()
}

func (r *ItemResolver) snapshotLocked() State {
	return State{
		Phase:        r.phase,
		Permissions:  r.current,
		RefreshToken: r.refreshToken,
		Generation:   r.generation,
		Err:          r.lastErr,
	}
}

func (r *ItemResolver) notifyLocked() {
	close(r.changed)
	r.changed = make(chan struct{})
}
