package provider

import (
	"fmt"
	"sync"
	"time"
)

// HealthState is the availability state of a backend as seen by its callers.
type HealthState int

// Health states, ordered by severity.
const (
	StateHealthy  HealthState = iota
	StateCooldown             // recent failure, backing off
	StateDead                 // too many consecutive failures
)

// String returns a human-readable label for the health state.
func (s HealthState) String() string {
	switch s {
	case StateHealthy:
		return "healthy"
	case StateCooldown:
		return "cooldown"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so states render as labels in JSON.
func (s HealthState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for the labels written
// by MarshalText.
func (s *HealthState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "healthy":
		*s = StateHealthy
	case "cooldown":
		*s = StateCooldown
	case "dead":
		*s = StateDead
	default:
		return fmt.Errorf("provider: unknown health state %q", text)
	}
	return nil
}

// HealthConfig controls health tracking behavior.
type HealthConfig struct {
	// InitialBackoff is the cooldown after the first failure. Default: 1s.
	InitialBackoff time.Duration `yaml:"initial_backoff"`

	// MaxBackoff caps the exponential cooldown. Default: 60s.
	MaxBackoff time.Duration `yaml:"max_backoff"`

	// MaxFailures is the number of consecutive failures before the
	// backend is marked dead. Default: 5.
	MaxFailures int `yaml:"max_failures"`
}

// defaults fills zero-value fields with sensible defaults.
func (c *HealthConfig) defaults() {
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 60 * time.Second
	}
	if c.MaxFailures <= 0 {
		c.MaxFailures = 5
	}
}

// HealthStatus is a point-in-time view of a Health tracker.
type HealthStatus struct {
	State         HealthState `json:"state"`
	Available     bool        `json:"available"`
	Failures      int         `json:"failures"`
	LastError     string      `json:"last_error,omitempty"`
	CooldownUntil *time.Time  `json:"cooldown_until,omitempty"`
}

// Health tracks the availability of one backend. Failures move it into
// cooldown with exponential backoff and, after MaxFailures in a row, to
// dead. Any success restores it. All methods are safe for concurrent use.
type Health struct {
	cfg HealthConfig

	// onStateChange is called outside the lock on every state transition.
	onStateChange func(from, to HealthState)

	mu              sync.Mutex
	state           HealthState
	failures        int
	lastErr         string
	currentBackoff  time.Duration
	cooldownExpires time.Time

	// now is injectable for testing. Defaults to time.Now.
	now func() time.Time
}

// NewHealth creates a healthy tracker. onStateChange may be nil.
func NewHealth(cfg HealthConfig, onStateChange func(from, to HealthState)) *Health {
	cfg.defaults()
	return &Health{
		cfg:           cfg,
		state:         StateHealthy,
		onStateChange: onStateChange,
		now:           time.Now,
	}
}

// IsAvailable reports whether the backend should accept requests.
// A backend in cooldown becomes available again once its backoff expires.
func (h *Health) IsAvailable() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.availableLocked()
}

func (h *Health) availableLocked() bool {
	switch h.state {
	case StateHealthy:
		return true
	case StateCooldown:
		return !h.now().Before(h.cooldownExpires)
	default:
		return false
	}
}

// RecordSuccess resets the tracker to the healthy state.
func (h *Health) RecordSuccess() {
	h.mu.Lock()
	prev := h.state
	h.state = StateHealthy
	h.failures = 0
	h.lastErr = ""
	h.currentBackoff = 0
	h.mu.Unlock()

	if prev != StateHealthy && h.onStateChange != nil {
		h.onStateChange(prev, StateHealthy)
	}
}

// RecordFailure records a failed call and moves the tracker to cooldown,
// or to dead after MaxFailures consecutive failures.
func (h *Health) RecordFailure(err error) {
	h.mu.Lock()
	prev := h.state
	h.failures++
	if err != nil {
		h.lastErr = err.Error()
	}

	if h.failures >= h.cfg.MaxFailures {
		h.state = StateDead
	} else {
		h.state = StateCooldown
		if h.currentBackoff == 0 {
			h.currentBackoff = h.cfg.InitialBackoff
		} else {
			h.currentBackoff *= 2
		}
		h.currentBackoff = min(h.currentBackoff, h.cfg.MaxBackoff)
		h.cooldownExpires = h.now().Add(h.currentBackoff)
	}
	next := h.state
	h.mu.Unlock()

	if prev != next && h.onStateChange != nil {
		h.onStateChange(prev, next)
	}
}

// ShouldHealthCheck reports whether the backend needs an active probe:
// it is dead, or its cooldown has expired.
func (h *Health) ShouldHealthCheck() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case StateDead:
		return true
	case StateCooldown:
		return !h.now().Before(h.cooldownExpires)
	default:
		return false
	}
}

// Status returns a snapshot of the tracker.
func (h *Health) Status() HealthStatus {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := HealthStatus{
		State:     h.state,
		Available: h.availableLocked(),
		Failures:  h.failures,
		LastError: h.lastErr,
	}
	if h.state == StateCooldown {
		until := h.cooldownExpires
		st.CooldownUntil = &until
	}
	return st
}

// CurrentBackoff returns the current cooldown duration.
func (h *Health) CurrentBackoff() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentBackoff
}
