package rate

import (
	"context"

	"golang.org/x/time/rate"
)

// Pacer spaces simulation steps so a run can be followed live.
// A nil limiter means steps are not throttled.
type Pacer struct {
	limiter *rate.Limiter
}

// New returns a pacer allowing perSecond steps per second. Non-positive
// values disable pacing.
func New(perSecond float64) *Pacer {
	if perSecond <= 0 {
		return &Pacer{}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Enabled reports whether the pacer throttles at all.
func (p *Pacer) Enabled() bool {
	return p != nil && p.limiter != nil
}

// Allow reports whether a step may run now without waiting.
func (p *Pacer) Allow() bool {
	if !p.Enabled() {
		return true
	}
	return p.limiter.Allow()
}

// Wait blocks until the next step may run or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if !p.Enabled() {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}
