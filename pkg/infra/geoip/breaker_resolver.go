package geoip

import (
	"context"
	"fmt"
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/domain/profile"
	"github.com/sony/gobreaker"
)

// BreakerResolver shields the engine from a flapping geo provider. Once the
// provider fails repeatedly the breaker opens and lookups fail fast; the
// engine treats any resolver error as "no geo factor".
type BreakerResolver struct {
	inner   Resolver
	breaker *gobreaker.CircuitBreaker
}

func NewBreakerResolver(inner Resolver, timeout time.Duration, maxFailures uint32) *BreakerResolver {
	settings := gobreaker.Settings{
		Name:        "geoip",
		MaxRequests: 5,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}
	return &BreakerResolver{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (r *BreakerResolver) Resolve(ctx context.Context, ip string) (profile.GeoLocation, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.inner.Resolve(ctx, ip)
	})
	if err != nil {
		return profile.GeoLocation{}, fmt.Errorf("breaker (%s): %w", r.breaker.Name(), err)
	}
	loc, ok := result.(profile.GeoLocation)
	if !ok {
		return profile.GeoLocation{}, fmt.Errorf("unexpected resolver result type")
	}
	return loc, nil
}
