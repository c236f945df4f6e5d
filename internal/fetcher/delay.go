package fetcher

import (
	"context"
	"math/rand"
	"time"
)

// Delayer inserts a uniform-random pause between requests. It is purely a
// politeness mechanism; transport-level retry backoff is separate.
type Delayer struct {
	min time.Duration
	max time.Duration
	rng *rand.Rand
}

// NewDelayer creates a Delayer sampling from [min, max].
func NewDelayer(min, max time.Duration) *Delayer {
	if max < min {
		max = min
	}
	return &Delayer{
		min: min,
		max: max,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Sample draws a delay uniformly from [min, max].
func (d *Delayer) Sample() time.Duration {
	if d.max == d.min {
		return d.min
	}
	return d.min + time.Duration(d.rng.Int63n(int64(d.max-d.min)+1))
}

// Wait sleeps for a sampled delay, aborting early on context cancellation.
func (d *Delayer) Wait(ctx context.Context) error {
	delay := d.Sample()
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
