package security

import (
	"golang.org/x/time/rate"
)

// Default spawn limits for the MCP server. A lint run takes seconds, so these
// only bound bursts from a misbehaving client.
const (
	DefaultToolRate  = 2.0
	DefaultToolBurst = 4
)

// NewToolLimiter creates a token bucket limiter allowing perSecond lint
// processes per second with the given burst. Non-positive values fall back to
// the defaults.
func NewToolLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		perSecond = DefaultToolRate
	}
	if burst <= 0 {
		burst = DefaultToolBurst
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
