// Package dataloader coalesces independent single-key lookups issued at about
// the same time into one upstream call.
package dataloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront-proxy/internal/model"
)

// =============================================================================
// BATCH WINDOWS
// =============================================================================
//
// Resolvers ask for one thing at a time (one SKU, one product's offers), but
// the upstream APIs accept lists. A Loader collects every Load issued while a
// window is open and hands the whole window to a BatchFunc:
//
//	Load(a) ─┐
//	Load(b) ─┼─► window [a b c] ──► BatchFunc(ctx, [a b c]) ──► [ra rb rc]
//	Load(c) ─┘                                                   │  │  │
//	thunk a ◄────────────────────────────────────────────────────┘  │  │
//	thunk b ◄───────────────────────────────────────────────────────┘  │
//	thunk c ◄──────────────────────────────────────────────────────────┘
//
// A window closes when it reaches the batch ceiling (dispatched immediately)
// or when its wait timer fires. Keys enqueued after a window closes open a
// new one, so no upstream call ever carries more than the ceiling.
//
// Results are positional: the i-th result belongs to the i-th key. A batch
// error is delivered to every key of that window and to no other window.
//
// Loaders are meant to live for a single incoming request. The optional
// cache de-duplicates identical keys for that lifetime only.
// =============================================================================

// DefaultWait is how long a window stays open waiting for more keys.
const DefaultWait = 2 * time.Millisecond

// BatchFunc resolves a window of keys. It must return exactly one value per
// key, in key order, or an error for the whole window.
type BatchFunc[K, V any] func(ctx context.Context, keys []K) ([]V, error)

// Thunk is a deferred result. Calling it blocks until the key's batch has
// been resolved; it may be called any number of times.
type Thunk[V any] func() (V, error)

// Option configures a Loader.
type Option[K any] func(*options[K])

type options[K any] struct {
	maxBatch int
	wait     time.Duration
	cacheKey func(K) string
}

// WithMaxBatch sets the batch ceiling. Zero or negative means unbounded.
func WithMaxBatch[K any](n int) Option[K] {
	return func(o *options[K]) { o.maxBatch = n }
}

// WithWait sets how long a window stays open.
func WithWait[K any](d time.Duration) Option[K] {
	return func(o *options[K]) { o.wait = d }
}

// WithCacheKey enables de-duplication: keys mapping to the same string share
// one slot and one result. Failed keys are evicted so a later Load retries.
func WithCacheKey[K any](fn func(K) string) Option[K] {
	return func(o *options[K]) { o.cacheKey = fn }
}

// Loader batches Load calls into BatchFunc invocations.
type Loader[K, V any] struct {
	fetch    BatchFunc[K, V]
	maxBatch int
	wait     time.Duration
	cacheKey func(K) string

	mu      sync.Mutex
	pending *batch[K, V]
	cache   map[string]slot[K, V]
}

// batch is one window. keys and cacheKeys are only touched under the loader
// lock until the batch is detached; results and err only before done closes.
type batch[K, V any] struct {
	ctx       context.Context
	keys      []K
	cacheKeys []string
	results   []V
	err       error
	done      chan struct{}
	timer     *time.Timer
}

type slot[K, V any] struct {
	b   *batch[K, V]
	pos int
}

// New creates a Loader around fetch.
func New[K, V any](fetch BatchFunc[K, V], opts ...Option[K]) *Loader[K, V] {
	o := options[K]{wait: DefaultWait}
	for _, opt := range opts {
		opt(&o)
	}
	l := &Loader[K, V]{
		fetch:    fetch,
		maxBatch: o.maxBatch,
		wait:     o.wait,
		cacheKey: o.cacheKey,
	}
	if l.cacheKey != nil {
		l.cache = make(map[string]slot[K, V])
	}
	return l
}

// Load enqueues key in the open window and returns its deferred result.
// Load never blocks on the upstream call. The batch runs with ctx's values
// but without its cancellation: once dispatched, a batch always completes.
func (l *Loader[K, V]) Load(ctx context.Context, key K) Thunk[V] {
	var ck string
	if l.cacheKey != nil {
		ck = l.cacheKey(key)
	}

	l.mu.Lock()
	if l.cacheKey != nil {
		if s, ok := l.cache[ck]; ok {
			l.mu.Unlock()
			return s.thunk()
		}
	}

	b := l.pending
	if b == nil {
		b = &batch[K, V]{
			ctx:  context.WithoutCancel(ctx),
			done: make(chan struct{}),
		}
		l.pending = b
		b.timer = time.AfterFunc(l.wait, func() { l.closeWindow(b) })
	}

	s := slot[K, V]{b: b, pos: len(b.keys)}
	b.keys = append(b.keys, key)
	if l.cacheKey != nil {
		b.cacheKeys = append(b.cacheKeys, ck)
		l.cache[ck] = s
	}

	full := l.maxBatch > 0 && len(b.keys) >= l.maxBatch
	if full {
		l.pending = nil
	}
	l.mu.Unlock()

	if full {
		b.timer.Stop()
		go l.dispatch(b)
	}
	return s.thunk()
}

// LoadMany loads every key through the same windows and waits for all of
// them. Values are returned in key order; the first error wins.
func (l *Loader[K, V]) LoadMany(ctx context.Context, keys []K) ([]V, error) {
	thunks := make([]Thunk[V], len(keys))
	for i, key := range keys {
		thunks[i] = l.Load(ctx, key)
	}

	values := make([]V, len(keys))
	for i, thunk := range thunks {
		v, err := thunk()
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// closeWindow runs when a window's timer fires. A window that already filled
// up has been detached and dispatched by Load.
func (l *Loader[K, V]) closeWindow(b *batch[K, V]) {
	l.mu.Lock()
	if l.pending != b {
		l.mu.Unlock()
		return
	}
	l.pending = nil
	l.mu.Unlock()

	l.dispatch(b)
}

func (l *Loader[K, V]) dispatch(b *batch[K, V]) {
	results, err := l.run(b)
	if err == nil && len(results) != len(b.keys) {
		err = model.NewIntegrityError("loader",
			fmt.Sprintf("batch returned %d results for %d keys", len(results), len(b.keys)))
	}

	b.results = results
	b.err = err
	if err != nil && l.cacheKey != nil {
		l.evict(b)
	}
	close(b.done)
}

// run calls the batch function, turning a panic into an error for the
// window's callers instead of taking the process down.
func (l *Loader[K, V]) run(b *batch[K, V]) (results []V, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = model.NewInternalError(fmt.Errorf("batch function panicked: %v", r))
		}
	}()
	return l.fetch(b.ctx, b.keys)
}

func (l *Loader[K, V]) evict(b *batch[K, V]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ck := range b.cacheKeys {
		if s, ok := l.cache[ck]; ok && s.b == b {
			delete(l.cache, ck)
		}
	}
}

func (s slot[K, V]) thunk() Thunk[V] {
	return func() (V, error) {
		<-s.b.done
		if s.b.err != nil {
			var zero V
			return zero, s.b.err
		}
		return s.b.results[s.pos], nil
	}
}
