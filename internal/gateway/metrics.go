package gateway

import (
	"sync/atomic"
	"time"
)

// counters tracks gateway-level totals with atomic operations; they are
// reported on /health so a probe sees traffic without scraping /metrics.
type counters struct {
	requests     atomic.Int64
	clientErrors atomic.Int64
	serverErrors atomic.Int64
	summaries    atomic.Int64
	inFlight     atomic.Int64
	totalLatency atomic.Int64 // nanoseconds, summaries only
}

func (c *counters) recordHTTP(status int) {
	c.requests.Add(1)
	switch {
	case status >= 500:
		c.serverErrors.Add(1)
	case status >= 400:
		c.clientErrors.Add(1)
	}
}

// begin marks one summarization in flight and returns its completion
// callback.
func (c *counters) begin() func(ok bool) {
	c.inFlight.Add(1)
	start := time.Now()
	return func(ok bool) {
		c.inFlight.Add(-1)
		if ok {
			c.summaries.Add(1)
			c.totalLatency.Add(int64(time.Since(start)))
		}
	}
}

// Snapshot returns a point-in-time view of the counters.
func (c *counters) Snapshot() CountersSnapshot {
	summaries := c.summaries.Load()
	snap := CountersSnapshot{
		Requests:     c.requests.Load(),
		ClientErrors: c.clientErrors.Load(),
		ServerErrors: c.serverErrors.Load(),
		Summaries:    summaries,
		InFlight:     c.inFlight.Load(),
	}
	if summaries > 0 {
		snap.AvgLatency = time.Duration(c.totalLatency.Load() / summaries)
	}
	return snap
}

// CountersSnapshot is a serializable point-in-time view.
type CountersSnapshot struct {
	Requests     int64         `json:"requests"`
	ClientErrors int64         `json:"client_errors"`
	ServerErrors int64         `json:"server_errors"`
	Summaries    int64         `json:"summaries"`
	InFlight     int64         `json:"in_flight"`
	AvgLatency   time.Duration `json:"avg_latency_ns"`
}
