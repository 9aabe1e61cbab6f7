package task

import (
	"math/rand"
	"time"
)

// RetryPolicy controls backoff between failed attempts
type RetryPolicy struct {
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	// Jitter is the fraction of the computed delay randomized away,
	// in [0, 1). Zero disables jitter.
	Jitter float64
}

// DefaultRetryPolicy matches the dispatcher defaults: 1s base doubling
// to a 5 minute cap with 20% jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseBackoff: DefaultBaseBackoff,
		MaxBackoff:  5 * time.Minute,
		Jitter:      0.2,
	}
}

// Delay returns the wait before the given attempt number (1-based).
// Exponential: base, 2*base, 4*base, ... capped at MaxBackoff, with
// jitter subtracted so synchronized failures spread out.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := p.BaseBackoff
	if base <= 0 {
		base = DefaultBaseBackoff
	}

	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxBackoff > 0 && delay >= p.MaxBackoff {
			delay = p.MaxBackoff
			break
		}
	}
	if p.MaxBackoff > 0 && delay > p.MaxBackoff {
		delay = p.MaxBackoff
	}

	if p.Jitter > 0 && p.Jitter < 1 {
		delay -= time.Duration(rand.Float64() * p.Jitter * float64(delay))
	}

	return delay
}
