// Package ratelimit provides a weight-based wrapper around golang.org/x/time/rate.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter spends a per-minute weight budget. Exchanges such as Binance charge
// each endpoint a different weight, so calls wait for their cost, not for 1.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing weightPerMinute units per minute with a
// burst of 10% of the budget. A non-positive budget disables limiting.
func New(weightPerMinute int) *Limiter {
	if weightPerMinute <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}

	burst := max(weightPerMinute/10, 1)
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(float64(weightPerMinute)/60.0), burst),
	}
}

// Wait blocks until cost units are available or ctx is done. Costs larger
// than the burst are clamped to it so a heavy call can still proceed.
func (l *Limiter) Wait(ctx context.Context, cost int) error {
	if l.limiter.Limit() == rate.Inf {
		return ctx.Err()
	}
	if b := l.limiter.Burst(); cost > b {
		cost = b
	}
	if cost < 1 {
		cost = 1
	}
	return l.limiter.WaitN(ctx, cost)
}

// Allow reports whether a call of cost can run right now, spending it if so.
func (l *Limiter) Allow(cost int) bool {
	if l.limiter.Limit() == rate.Inf {
		return true
	}
	return l.limiter.AllowN(time.Now(), min(max(cost, 1), l.limiter.Burst()))
}
