package risk_test

import (
	"context"
	"testing"
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/domain/profile"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/SentriLabs/SentriAuth/pkg/infra/geoip"
	"github.com/SentriLabs/SentriAuth/pkg/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	madrid = profile.GeoLocation{Latitude: 40.4168, Longitude: -3.7038, Country: "ES", City: "Madrid"}
	tokyo  = profile.GeoLocation{Latitude: 35.6762, Longitude: 139.6503, Country: "JP", City: "Tokyo"}
)

func newGeoResolver(t *testing.T) geoip.Resolver {
	t.Helper()
	resolver, err := geoip.NewStaticResolver(map[string]profile.GeoLocation{
		"10.1.0.0/16": madrid,
		"10.2.0.0/16": tokyo,
	})
	require.NoError(t, err)
	return resolver
}

func profileLastSeenAt(loc profile.GeoLocation, at time.Time) *profile.UserSecurityProfile {
	p := profile.New("user@example.com", at)
	p.RecordLocation(loc, at)
	return p
}

func TestGeoVelocityEvaluator_ImpossibleTravel(t *testing.T) {
	now := time.Unix(1756710000, 0)
	// Madrid to Tokyo is ~10,700 km; one hour elapsed is far over 1000 km/h.
	prof := profileLastSeenAt(madrid, now.Add(-time.Hour))

	evaluator := risk.NewGeoVelocityEvaluator(newGeoResolver(t), 1000, func() time.Time { return now })
	factor, err := evaluator.Evaluate(context.Background(), &risk.AuthAttempt{IP: "10.2.3.4"}, prof)

	require.NoError(t, err)
	require.NotNil(t, factor)
	assert.Equal(t, security.FactorGeoVelocity, factor.Type)
	assert.Equal(t, security.SeverityHigh, factor.Severity)
	assert.Equal(t, 80, factor.Score)
}

func TestGeoVelocityEvaluator_PlausibleTravel(t *testing.T) {
	now := time.Unix(1756710000, 0)
	// Same distance over 24 hours stays under the threshold.
	prof := profileLastSeenAt(madrid, now.Add(-24*time.Hour))

	evaluator := risk.NewGeoVelocityEvaluator(newGeoResolver(t), 1000, func() time.Time { return now })
	factor, err := evaluator.Evaluate(context.Background(), &risk.AuthAttempt{IP: "10.2.3.4"}, prof)

	require.NoError(t, err)
	assert.Nil(t, factor)
}

func TestGeoVelocityEvaluator_SameLocation(t *testing.T) {
	now := time.Unix(1756710000, 0)
	prof := profileLastSeenAt(madrid, now.Add(-time.Minute))

	evaluator := risk.NewGeoVelocityEvaluator(newGeoResolver(t), 1000, func() time.Time { return now })
	factor, err := evaluator.Evaluate(context.Background(), &risk.AuthAttempt{IP: "10.1.3.4"}, prof)

	require.NoError(t, err)
	assert.Nil(t, factor)
}

func TestGeoVelocityEvaluator_NoKnownLocation(t *testing.T) {
	now := time.Unix(1756710000, 0)
	prof := profile.New("user@example.com", now)

	evaluator := risk.NewGeoVelocityEvaluator(newGeoResolver(t), 1000, func() time.Time { return now })
	factor, err := evaluator.Evaluate(context.Background(), &risk.AuthAttempt{IP: "10.2.3.4"}, prof)

	require.NoError(t, err)
	assert.Nil(t, factor)
}

func TestGeoVelocityEvaluator_ResolverError(t *testing.T) {
	now := time.Unix(1756710000, 0)
	prof := profileLastSeenAt(madrid, now.Add(-time.Hour))

	evaluator := risk.NewGeoVelocityEvaluator(newGeoResolver(t), 1000, func() time.Time { return now })
	factor, err := evaluator.Evaluate(context.Background(), &risk.AuthAttempt{IP: "192.168.1.1"}, prof)

	assert.ErrorIs(t, err, geoip.ErrNotFound)
	assert.Nil(t, factor)
}
