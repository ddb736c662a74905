package ratelimit

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter *rate.Limiter
	last    time.Time
}

// Visitors keeps one token bucket per client key in a bounded LRU table.
// Visitors idle for longer than ttl start over with a full bucket. A ttl <= 0
// disables idle eviction; the LRU bound still applies.
type Visitors struct {
	mu    sync.Mutex
	table *lru.Cache[string, *visitor]
	limit rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time
	done  chan struct{}
}

// NewVisitors starts the idle janitor, which stops when ctx is cancelled.
func NewVisitors(ctx context.Context, limit, burst, cacheSize int, ttl time.Duration) *Visitors {
	table, err := lru.New[string, *visitor](cacheSize)
	if err != nil {
		// размер <= 0, берём минимально рабочий
		table, _ = lru.New[string, *visitor](1)
	}
	v := &Visitors{
		table: table,
		limit: rate.Limit(limit),
		burst: burst,
		ttl:   ttl,
		now:   time.Now,
		done:  make(chan struct{}),
	}
	if ttl <= 0 {
		close(v.done)
		return v
	}
	go v.janitor(ctx)
	return v
}

// Allow reports whether key may proceed right now.
func (v *Visitors) Allow(key string) bool {
	v.mu.Lock()
	now := v.now()
	vis, ok := v.table.Get(key)
	if !ok || (v.ttl > 0 && now.Sub(vis.last) > v.ttl) {
		vis = &visitor{limiter: rate.NewLimiter(v.limit, v.burst)}
		v.table.Add(key, vis)
	}
	vis.last = now
	lim := vis.limiter
	v.mu.Unlock()

	return lim.Allow()
}

// Len is the number of tracked keys.
func (v *Visitors) Len() int {
	return v.table.Len()
}

// Done is closed once the janitor has exited.
func (v *Visitors) Done() <-chan struct{} {
	return v.done
}

func (v *Visitors) janitor(ctx context.Context) {
	defer close(v.done)
	ticker := time.NewTicker(v.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v.evictIdle()
		}
	}
}

func (v *Visitors) evictIdle() {
	v.mu.Lock()
	defer v.mu.Unlock()
	now := v.now()
	for _, key := range v.table.Keys() {
		if vis, ok := v.table.Peek(key); ok && now.Sub(vis.last) > v.ttl {
			v.table.Remove(key)
		}
	}
}
