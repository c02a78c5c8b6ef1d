package resilience

import "time"

// RetryPolicy bounds the retry loop around a single call.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// BreakerPolicy configures the per-operation circuit breaker.
type BreakerPolicy struct {
	Enabled          bool
	MinRequests      uint32
	FailureRatio     float64
	OpenTimeout      time.Duration
	HalfOpenMaxCalls uint32
}

type Config struct {
	Retry   RetryPolicy
	Breaker BreakerPolicy
}

// LLMConfig suits chat-completion calls: few attempts with generous backoff
// so a rate-limited upstream gets room to recover, and a single half-open
// call because each request is expensive.
func LLMConfig() Config {
	return Config{
		Retry: RetryPolicy{
			MaxAttempts:    3,
			InitialBackoff: 250 * time.Millisecond,
			MaxBackoff:     2 * time.Second,
			Multiplier:     2.0,
		},
		Breaker: BreakerPolicy{
			Enabled:          true,
			MinRequests:      5,
			FailureRatio:     0.6,
			OpenTimeout:      30 * time.Second,
			HalfOpenMaxCalls: 1,
		},
	}
}

// PublishConfig suits queue publishes: quick cheap retries, and a breaker
// that trips only on a sustained broker outage.
func PublishConfig() Config {
	return Config{
		Retry: RetryPolicy{
			MaxAttempts:    4,
			InitialBackoff: 50 * time.Millisecond,
			MaxBackoff:     500 * time.Millisecond,
			Multiplier:     2.0,
		},
		Breaker: BreakerPolicy{
			Enabled:          true,
			MinRequests:      10,
			FailureRatio:     0.5,
			OpenTimeout:      15 * time.Second,
			HalfOpenMaxCalls: 2,
		},
	}
}

func (c Config) normalize() Config {
	out := c

	if out.Retry.MaxAttempts <= 0 {
		out.Retry.MaxAttempts = 1
	}
	if out.Retry.InitialBackoff <= 0 {
		out.Retry.InitialBackoff = 50 * time.Millisecond
	}
	if out.Retry.MaxBackoff < out.Retry.InitialBackoff {
		out.Retry.MaxBackoff = out.Retry.InitialBackoff
	}
	if out.Retry.Multiplier < 1.0 {
		out.Retry.Multiplier = 1.0
	}

	if out.Breaker.MinRequests == 0 {
		out.Breaker.MinRequests = 1
	}
	if out.Breaker.FailureRatio <= 0 || out.Breaker.FailureRatio > 1 {
		out.Breaker.FailureRatio = 0.5
	}
	if out.Breaker.OpenTimeout <= 0 {
		out.Breaker.OpenTimeout = 15 * time.Second
	}
	if out.Breaker.HalfOpenMaxCalls == 0 {
		out.Breaker.HalfOpenMaxCalls = 1
	}

	return out
}
