// Package querystore caches fetch results keyed by query identity and keeps
// subscribers updated. Entries serve from cache while fresh, refetch with
// retries once stale, and fall back to the retained value when a refetch
// fails. There is no request coalescing: concurrent callers for the same key
// each run their own fetch.
package querystore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jellydator/ttlcache/v3"
	"github.com/sourcegraph/conc"

	"github.com/ferryline/wsdot/errs"
	"github.com/ferryline/wsdot/internal/endpoint"
	"github.com/ferryline/wsdot/internal/observability"
	"github.com/ferryline/wsdot/lib/async"
)

const (
	refreshWorkers = 4
	refreshQueue   = 32
)

// FetchFunc produces a fresh value for a query.
type FetchFunc func(ctx context.Context) (any, error)

// Query identifies one cacheable fetch.
type Query struct {
	// Key uniquely identifies the query, typically endpoint ID plus the
	// canonical parameter values.
	Key string
	// Tag groups queries for bulk invalidation, typically the service
	// family name.
	Tag string
	// Profile carries the cache timing tuple.
	Profile endpoint.Profile
	// Fetch produces the value on miss or staleness.
	Fetch FetchFunc
}

type cached struct {
	value     any
	tag       string
	fetchedAt time.Time
}

// SubscribeFunc receives each successfully refreshed value for a key.
type SubscribeFunc func(value any)

type subscription struct {
	id int
	fn SubscribeFunc
}

// Store is the in-memory query cache.
type Store struct {
	cache *ttlcache.Cache[string, cached]

	mu     sync.Mutex
	subs   map[string][]subscription
	byTag  map[string]map[string]Query
	loops  map[string]struct{}
	nextID int

	wg   conc.WaitGroup
	pool *async.Pool
}

// New constructs a store and starts its expiration loop.
func New() *Store {
	pool, _ := async.NewPool(refreshWorkers, refreshQueue)
	store := &Store{
		// Hits must not slide the retention window; an entry's TTL counts
		// from the fetch that stored it.
		cache: ttlcache.New[string, cached](ttlcache.WithDisableTouchOnHit[string, cached]()),
		subs:  make(map[string][]subscription),
		byTag: make(map[string]map[string]Query),
		loops: make(map[string]struct{}),
		pool:  pool,
	}
	store.wg.Go(store.cache.Start)
	return store
}

// Close stops the expiration loop and waits for background refetches.
// Callers that started Run loops must cancel their contexts first.
func (s *Store) Close() {
	s.cache.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.pool.Shutdown(shutdownCtx)
	s.wg.Wait()
}

// Get returns the query's value, serving from cache while the entry is
// younger than StaleFor and refetching otherwise. When a refetch fails but
// a retained entry exists, the retained value is served and the failure
// only logged.
func (s *Store) Get(ctx context.Context, q Query) (any, error) {
	s.remember(q)

	item := s.cache.Get(q.Key)
	if item != nil {
		entry := item.Value()
		if time.Since(entry.fetchedAt) < q.Profile.StaleFor {
			observability.Telemetry().IncCounter("wsdot_cache_hits_total", 1, map[string]string{"key": q.Key})
			return entry.value, nil
		}
	}

	value, err := s.refresh(ctx, q)
	if err != nil {
		if item != nil {
			observability.Log().Info("serving retained value after refetch failure",
				observability.Field{Key: "key", Value: q.Key},
				observability.Field{Key: "error", Value: err},
			)
			return item.Value().value, nil
		}
		return nil, err
	}
	return value, nil
}

// Invalidate drops every entry carrying the tag and refetches the ones with
// active subscribers so they observe the post-flush value.
func (s *Store) Invalidate(ctx context.Context, tag string) {
	s.mu.Lock()
	tagged := make([]Query, 0, len(s.byTag[tag]))
	for _, q := range s.byTag[tag] {
		tagged = append(tagged, q)
	}
	s.mu.Unlock()

	for _, q := range tagged {
		s.cache.Delete(q.Key)
	}
	observability.Telemetry().IncCounter("wsdot_cache_invalidations_total", 1, map[string]string{"tag": tag})

	for _, q := range tagged {
		if !s.hasSubscribers(q.Key) {
			continue
		}
		err := s.pool.Submit(ctx, func(ctx context.Context) error {
			if _, err := s.refresh(ctx, q); err != nil {
				observability.Log().Error("post-invalidation refetch failed",
					observability.Field{Key: "key", Value: q.Key},
					observability.Field{Key: "error", Value: err},
				)
			}
			return nil
		})
		if err != nil {
			observability.Log().Error("post-invalidation refetch not scheduled",
				observability.Field{Key: "key", Value: q.Key},
				observability.Field{Key: "error", Value: err},
			)
		}
	}
}

// Subscribe registers a callback fired on every successful refresh of the
// key. The returned function removes the subscription.
func (s *Store) Subscribe(key string, fn SubscribeFunc) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[key] = append(s.subs[key], subscription{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		kept := s.subs[key][:0]
		for _, sub := range s.subs[key] {
			if sub.id != id {
				kept = append(kept, sub)
			}
		}
		if len(kept) == 0 {
			delete(s.subs, key)
			return
		}
		s.subs[key] = kept
	}
}

// Run drives the query's periodic refetch loop until the context ends.
// Queries whose profile sets no interval get no loop, and a key whose loop
// is already running is not given a second one.
func (s *Store) Run(ctx context.Context, q Query) {
	if q.Profile.RefetchEvery <= 0 {
		return
	}
	s.remember(q)
	s.mu.Lock()
	if _, running := s.loops[q.Key]; running {
		s.mu.Unlock()
		return
	}
	s.loops[q.Key] = struct{}{}
	s.mu.Unlock()
	s.wg.Go(func() {
		defer func() {
			s.mu.Lock()
			delete(s.loops, q.Key)
			s.mu.Unlock()
		}()
		ticker := time.NewTicker(q.Profile.RefetchEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.refresh(ctx, q); err != nil {
					observability.Log().Error("periodic refetch failed",
						observability.Field{Key: "key", Value: q.Key},
						observability.Field{Key: "error", Value: err},
					)
				}
			}
		}
	})
}

// Wake refetches every remembered query whose profile asks for a refresh
// after the process resumes from suspension.
func (s *Store) Wake(ctx context.Context) {
	s.mu.Lock()
	pending := make([]Query, 0)
	for _, keyed := range s.byTag {
		for _, q := range keyed {
			if q.Profile.RefetchOnWake {
				pending = append(pending, q)
			}
		}
	}
	s.mu.Unlock()

	for _, q := range pending {
		err := s.pool.Submit(ctx, func(ctx context.Context) error {
			if _, err := s.refresh(ctx, q); err != nil {
				observability.Log().Error("wake refetch failed",
					observability.Field{Key: "key", Value: q.Key},
					observability.Field{Key: "error", Value: err},
				)
			}
			return nil
		})
		if err != nil {
			observability.Log().Error("wake refetch not scheduled",
				observability.Field{Key: "key", Value: q.Key},
				observability.Field{Key: "error", Value: err},
			)
		}
	}
}

func (s *Store) remember(q Query) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keyed, ok := s.byTag[q.Tag]
	if !ok {
		keyed = make(map[string]Query)
		s.byTag[q.Tag] = keyed
	}
	keyed[q.Key] = q
}

func (s *Store) hasSubscribers(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs[key]) > 0
}

// refresh runs the fetch with the profile's retry budget, stores the result,
// and notifies subscribers. Validation and configuration failures are
// permanent and never retried.
func (s *Store) refresh(ctx context.Context, q Query) (any, error) {
	delay := q.Profile.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}
	tries := q.Profile.RetryCount + 1
	if tries < 1 {
		tries = 1
	}

	operation := func() (any, error) {
		value, err := q.Fetch(ctx)
		if err != nil {
			var e *errs.E
			if errors.As(err, &e) && (e.Code == errs.CodeValidation || e.Code == errs.CodeConfig) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return value, nil
	}

	value, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(delay)),
		backoff.WithMaxTries(uint(tries)),
	)
	if err != nil {
		return nil, err
	}

	s.cache.Set(q.Key, cached{value: value, tag: q.Tag, fetchedAt: time.Now()}, q.Profile.RetainFor)

	s.mu.Lock()
	subs := make([]subscription, len(s.subs[q.Key]))
	copy(subs, s.subs[q.Key])
	s.mu.Unlock()
	for _, sub := range subs {
		sub.fn(value)
	}
	return value, nil
}
