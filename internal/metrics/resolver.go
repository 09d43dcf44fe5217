package metrics

import (
	"context"
	"time"

	"github.com/maauso/gifposter/internal/poster"
)

// Resolver resolves a single image reference.
type Resolver interface {
	Resolve(ctx context.Context, imagePath string) poster.Result
}

// InstrumentedResolver records metrics around another Resolver.
type InstrumentedResolver struct {
	next    Resolver
	metrics *Metrics
}

// Instrument wraps next so every resolution is counted and timed.
func Instrument(next Resolver, m *Metrics) *InstrumentedResolver {
	return &InstrumentedResolver{next: next, metrics: m}
}

// Resolve implements Resolver.
func (r *InstrumentedResolver) Resolve(ctx context.Context, imagePath string) poster.Result {
	start := time.Now()
	res := r.next.Resolve(ctx, imagePath)
	r.metrics.ObserveResolve(res.Outcome(), time.Since(start))
	return res
}
