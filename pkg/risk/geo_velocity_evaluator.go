package risk

import (
	"context"
	"math"
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/domain/profile"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/SentriLabs/SentriAuth/pkg/infra/geoip"
)

const (
	earthRadiusKm    = 6371.0
	geoVelocityScore = 80
)

type geoVelocityEvaluator struct {
	resolver     geoip.Resolver
	maxSpeedKmh  float64
	timeProvider func() time.Time
}

// NewGeoVelocityEvaluator flags logins whose implied travel speed from the
// user's last known location exceeds maxSpeedKmh.
func NewGeoVelocityEvaluator(resolver geoip.Resolver, maxSpeedKmh float64, timeProvider func() time.Time) Evaluator {
	if timeProvider == nil {
		timeProvider = time.Now
	}
	return &geoVelocityEvaluator{
		resolver:     resolver,
		maxSpeedKmh:  maxSpeedKmh,
		timeProvider: timeProvider,
	}
}

func (e *geoVelocityEvaluator) Name() string {
	return "geo_velocity"
}

func (e *geoVelocityEvaluator) Evaluate(ctx context.Context, attempt *AuthAttempt, prof *profile.UserSecurityProfile) (*security.RiskFactor, error) {
	last, ok := prof.LastLocation()
	if !ok {
		return nil, nil
	}

	current, err := e.resolver.Resolve(ctx, attempt.IP)
	if err != nil {
		return nil, err
	}

	elapsed := e.timeProvider().Sub(last.LastSeen).Hours()
	if elapsed <= 0 {
		elapsed = 1.0 / 3600 // one second floor, same-instant logins
	}

	distance := haversineKm(last.Location, current)
	speed := distance / elapsed
	if speed <= e.maxSpeedKmh {
		return nil, nil
	}

	return &security.RiskFactor{
		Type:        security.FactorGeoVelocity,
		Severity:    security.SeverityHigh,
		Score:       geoVelocityScore,
		Description: "implied travel speed from last login location is impossible",
		Evidence: map[string]interface{}{
			"distance_km":   math.Round(distance),
			"elapsed_hours": elapsed,
			"speed_kmh":     math.Round(speed),
			"from":          last.Location,
			"to":            current,
		},
	}, nil
}

// haversineKm returns the great-circle distance between two coordinates.
func haversineKm(a, b profile.GeoLocation) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
