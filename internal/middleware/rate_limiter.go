package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter gates an action per caller. The login handler uses it to slow
// credential guessing against a single account or from a single address.
type RateLimiter interface {
	Allow(key string) bool
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// gcEvery bounds how often the bucket map is swept for stale entries.
const gcEvery = 64

type ipRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	ticks   int
	now     func() time.Time
}

// NewIPRateLimiter builds a per-key token-bucket limiter allowing `requests`
// events per `window` plus a burst. Keys unseen for ttl are dropped so the map
// does not grow with every address that ever tried to log in.
func NewIPRateLimiter(requests int, window time.Duration, burst int, ttl time.Duration) RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if burst <= 0 {
		burst = 1
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &ipRateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (l *ipRateLimiter) Allow(key string) bool {
	if key == "" {
		key = "unknown"
	}

	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	l.ticks++
	if l.ticks >= gcEvery {
		l.ticks = 0
		for k, v := range l.buckets {
			if now.Sub(v.lastSeen) > l.ttl {
				delete(l.buckets, k)
			}
		}
	}
	l.mu.Unlock()

	return b.limiter.Allow()
}

// WithNowFunc lets tests substitute the clock.
func (l *ipRateLimiter) WithNowFunc(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
