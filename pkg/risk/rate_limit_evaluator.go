package risk

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/config"
	"github.com/SentriLabs/SentriAuth/pkg/domain/profile"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	ipRateLimitScore    = 90
	emailRateLimitScore = 60
)

type rateLimitEvaluator struct {
	redis        *redis.Client
	window       time.Duration
	ipLimit      int
	emailLimit   int
	timeProvider func() time.Time
	uuidProvider func() uuid.UUID
}

type RateLimitOpts struct {
	TimeProvider func() time.Time
	UuidProvider func() uuid.UUID
}

// NewRateLimitEvaluator counts attempts per IP and per email over a sliding
// window backed by redis sorted sets. The attempt is recorded first, so the
// count that trips the threshold includes the current request.
func NewRateLimitEvaluator(redisClient *redis.Client, cfg config.RiskConfig, opts *RateLimitOpts) Evaluator {
	timeProvider := time.Now
	uuidProvider := uuid.New
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	if opts != nil && opts.UuidProvider != nil {
		uuidProvider = opts.UuidProvider
	}
	return &rateLimitEvaluator{
		redis:        redisClient,
		window:       cfg.RateLimitWindow,
		ipLimit:      cfg.IPAttemptLimit,
		emailLimit:   cfg.EmailAttemptLimit,
		timeProvider: timeProvider,
		uuidProvider: uuidProvider,
	}
}

func (e *rateLimitEvaluator) Name() string {
	return "rate_limit"
}

func (e *rateLimitEvaluator) Evaluate(ctx context.Context, attempt *AuthAttempt, _ *profile.UserSecurityProfile) (*security.RiskFactor, error) {
	now := e.timeProvider()

	ipCount, err := e.record(ctx, fmt.Sprintf("authlimit:ip:%s", attempt.IP), now)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts per ip: %w", err)
	}
	emailCount, err := e.record(ctx, fmt.Sprintf("authlimit:email:%s", strings.ToLower(attempt.Email)), now)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts per email: %w", err)
	}

	if ipCount > int64(e.ipLimit) {
		return &security.RiskFactor{
			Type:        security.FactorRateLimit,
			Severity:    security.SeverityHigh,
			Score:       ipRateLimitScore,
			Description: "too many authentication attempts from this IP",
			Evidence: map[string]interface{}{
				"attempts": ipCount,
				"limit":    e.ipLimit,
				"window":   e.window.String(),
			},
		}, nil
	}
	if emailCount > int64(e.emailLimit) {
		return &security.RiskFactor{
			Type:        security.FactorRateLimit,
			Severity:    security.SeverityMedium,
			Score:       emailRateLimitScore,
			Description: "too many authentication attempts for this account",
			Evidence: map[string]interface{}{
				"attempts": emailCount,
				"limit":    e.emailLimit,
				"window":   e.window.String(),
			},
		}, nil
	}
	return nil, nil
}

// record trims expired entries, adds the current attempt and returns the
// in-window count, all in one transaction.
func (e *rateLimitEvaluator) record(ctx context.Context, key string, now time.Time) (int64, error) {
	windowStart := now.Add(-e.window).Unix()
	member := fmt.Sprintf("%d:%s", now.Unix(), e.uuidProvider().String())

	pipe := e.redis.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, key, &redis.Z{
		Score:  float64(now.Unix()),
		Member: member,
	})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, e.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return count.Val(), nil
}
