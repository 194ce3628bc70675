package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/domain/profile"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/SentriLabs/SentriAuth/pkg/infra/geoip"
	"github.com/SentriLabs/SentriAuth/pkg/infra/prometheus"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	trustRewardDelta  = 2
	trustPenaltyDelta = -10
	lowRiskCeiling    = 20
	highRiskFloor     = 60
)

// Engine assesses authentication attempts and maintains user security
// profiles from their outcomes.
//
//go:generate mockery --name=Engine --dir=. --output=../../mocks --filename=risk_engine_mock.go --case=underscore --with-expecter
type Engine interface {
	EvaluateAuthenticationRisk(ctx context.Context, attempt *AuthAttempt) (*security.SecurityEvent, error)
	UpdateUserProfile(ctx context.Context, email string, event *security.SecurityEvent, fingerprint *profile.DeviceFingerprint) error
}

type engine struct {
	evaluators   []Evaluator
	profiles     profile.Repository
	resolver     geoip.Resolver
	logger       *logrus.Logger
	timeProvider func() time.Time
	uuidProvider func() uuid.UUID
}

type EngineOpts struct {
	TimeProvider func() time.Time
	UuidProvider func() uuid.UUID
}

func NewEngine(
	profiles profile.Repository,
	evaluators []Evaluator,
	resolver geoip.Resolver,
	logger *logrus.Logger,
	opts *EngineOpts,
) Engine {
	timeProvider := time.Now
	uuidProvider := uuid.New
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	if opts != nil && opts.UuidProvider != nil {
		uuidProvider = opts.UuidProvider
	}
	return &engine{
		evaluators:   evaluators,
		profiles:     profiles,
		resolver:     resolver,
		logger:       logger,
		timeProvider: timeProvider,
		uuidProvider: uuidProvider,
	}
}

// EvaluateAuthenticationRisk runs every evaluator against the attempt and
// the user's profile, sums the factor scores and derives the action. An
// evaluator error drops that factor, never the assessment.
func (e *engine) EvaluateAuthenticationRisk(ctx context.Context, attempt *AuthAttempt) (*security.SecurityEvent, error) {
	started := e.timeProvider()

	prof, err := e.profiles.GetOrCreate(ctx, attempt.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to load security profile: %w", err)
	}

	var factors []security.RiskFactor
	rawScore := 0
	for _, evaluator := range e.evaluators {
		factor, err := evaluator.Evaluate(ctx, attempt, prof)
		if err != nil {
			e.logger.WithError(err).
				WithField("evaluator", evaluator.Name()).
				Warn("risk evaluator failed, skipping factor")
			continue
		}
		if factor == nil {
			continue
		}
		factors = append(factors, *factor)
		rawScore += factor.Score
	}

	event := &security.SecurityEvent{
		ID:        e.uuidProvider(),
		Email:     attempt.Email,
		SessionID: attempt.SessionID,
		IP:        attempt.IP,
		UserAgent: attempt.UserAgent,
		Timestamp: e.timeProvider(),
		Factors:   factors,
		RiskScore: security.ClampScore(rawScore),
		RawScore:  rawScore,
		Metadata:  attempt.Metadata,
	}
	event.Action = security.ActionForAssessment(rawScore, event.HasCritical())

	prometheus.AssessmentsTotal.WithLabelValues(string(event.Action)).Inc()
	prometheus.AssessmentRiskScore.Observe(float64(event.RiskScore))
	prometheus.AssessmentLatency.Observe(time.Since(started).Seconds())

	e.logger.WithFields(logrus.Fields{
		"email":      attempt.Email,
		"ip":         attempt.IP,
		"risk_score": event.RiskScore,
		"action":     event.Action,
		"factors":    len(factors),
	}).Info("authentication risk assessed")

	return event, nil
}

// UpdateUserProfile folds an assessment outcome back into the profile:
// device registration, location frequency, trust score and history.
func (e *engine) UpdateUserProfile(ctx context.Context, email string, event *security.SecurityEvent, fingerprint *profile.DeviceFingerprint) error {
	now := e.timeProvider()

	// Resolve outside the profile lock; a failed lookup just skips the
	// location counter.
	var location *profile.GeoLocation
	if e.resolver != nil {
		loc, err := e.resolver.Resolve(ctx, event.IP)
		if err != nil {
			e.logger.WithError(err).WithField("ip", event.IP).Debug("geo lookup failed during profile update")
		} else {
			location = &loc
		}
	}

	return e.profiles.Update(ctx, email, func(p *profile.UserSecurityProfile) {
		if fingerprint != nil && event.Action == security.ActionAllow {
			e.registerDevice(p, *fingerprint, now)
		}

		if location != nil {
			p.RecordLocation(*location, now)
		}

		switch {
		case event.Action == security.ActionAllow && event.RiskScore < lowRiskCeiling:
			p.AdjustTrust(trustRewardDelta)
		case event.RiskScore > highRiskFloor:
			p.AdjustTrust(trustPenaltyDelta)
		}

		p.AppendEvent(*event)
	})
}

func (e *engine) registerDevice(p *profile.UserSecurityProfile, fp profile.DeviceFingerprint, now time.Time) {
	idx, similarity := p.MatchDevice(fp)
	if idx >= 0 && similarity >= profile.KnownDeviceSimilarity {
		p.Devices[idx].LastSeen = now
		return
	}
	fp.FirstSeen = now
	fp.LastSeen = now
	p.Devices = append(p.Devices, fp)
}
