package security

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when a client exceeds its request budget.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitConfig holds the limits applied to summarization requests.
type RateLimitConfig struct {
	// RequestsPerMin is the per-client budget over a sliding minute.
	// Zero disables limiting.
	RequestsPerMin int `yaml:"requests_per_min"`

	// MaxClients caps the number of tracked clients. When full, clients
	// with no event inside the window are evicted first. Default: 10000.
	MaxClients int `yaml:"max_clients"`
}

// RateLimiter implements per-client sliding window rate limiting. Each
// client key tracks timestamps of its recent requests.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	max     int
	clients map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	events []time.Time
}

// NewRateLimiter creates a rate limiter with the given config.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = 10000
	}
	return &RateLimiter{
		window:  time.Minute,
		limit:   cfg.RequestsPerMin,
		max:     cfg.MaxClients,
		clients: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Enabled reports whether any limit is configured.
func (rl *RateLimiter) Enabled() bool { return rl != nil && rl.limit > 0 }

// Allow records one request for key. It returns ErrRateLimited when the
// key already used its budget inside the window. A nil or disabled
// limiter allows everything.
func (rl *RateLimiter) Allow(key string) error {
	if !rl.Enabled() {
		return nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.clients[key]
	if !ok {
		if len(rl.clients) >= rl.max {
			rl.sweepLocked(now)
		}
		if len(rl.clients) >= rl.max {
			return ErrRateLimited
		}
		b = &bucket{}
		rl.clients[key] = b
	}
	b.evict(now.Add(-rl.window))

	if len(b.events) >= rl.limit {
		return ErrRateLimited
	}
	b.events = append(b.events, now)
	return nil
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// sweepLocked drops clients with no event inside the window.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	cutoff := now.Add(-rl.window)
	for key, b := range rl.clients {
		b.evict(cutoff)
		if len(b.events) == 0 {
			delete(rl.clients, key)
		}
	}
}

// evict removes events older than cutoff. Events are chronological.
func (b *bucket) evict(cutoff time.Time) {
	i := 0
	for i < len(b.events) && b.events[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		b.events = b.events[i:]
	}
}
