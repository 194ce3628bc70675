package risk_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/config"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/SentriLabs/SentriAuth/pkg/risk"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectSlidingWindow(mock redismock.ClientMock, key string, fixedTime time.Time, window time.Duration, uid uuid.UUID, count int64) {
	windowStart := fixedTime.Add(-window).Unix()
	mock.ExpectTxPipeline()
	mock.ExpectZRemRangeByScore(key, "0", strconv.FormatInt(windowStart, 10)).SetVal(0)
	mock.ExpectZAdd(key, &redis.Z{
		Score:  float64(fixedTime.Unix()),
		Member: strconv.FormatInt(fixedTime.Unix(), 10) + ":" + uid.String(),
	}).SetVal(1)
	mock.ExpectZCard(key).SetVal(count)
	mock.ExpectExpire(key, window).SetVal(true)
	mock.ExpectTxPipelineExec()
}

func newRateLimitEvaluator(client *redis.Client, fixedTime time.Time, uid uuid.UUID) risk.Evaluator {
	return risk.NewRateLimitEvaluator(client, config.RiskConfig{
		RateLimitWindow:   time.Hour,
		IPAttemptLimit:    20,
		EmailAttemptLimit: 10,
	}, &risk.RateLimitOpts{
		TimeProvider: func() time.Time { return fixedTime },
		UuidProvider: func() uuid.UUID { return uid },
	})
}

func TestRateLimitEvaluator_UnderLimits(t *testing.T) {
	client, mock := redismock.NewClientMock()
	fixedTime := time.Unix(1756710000, 0)
	uid := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	expectSlidingWindow(mock, "authlimit:ip:10.0.0.1", fixedTime, time.Hour, uid, 3)
	expectSlidingWindow(mock, "authlimit:email:user@example.com", fixedTime, time.Hour, uid, 2)

	evaluator := newRateLimitEvaluator(client, fixedTime, uid)
	factor, err := evaluator.Evaluate(context.Background(), &risk.AuthAttempt{
		Email: "user@example.com",
		IP:    "10.0.0.1",
	}, nil)

	require.NoError(t, err)
	assert.Nil(t, factor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitEvaluator_IPLimitExceeded(t *testing.T) {
	client, mock := redismock.NewClientMock()
	fixedTime := time.Unix(1756710000, 0)
	uid := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	expectSlidingWindow(mock, "authlimit:ip:10.0.0.1", fixedTime, time.Hour, uid, 21)
	expectSlidingWindow(mock, "authlimit:email:user@example.com", fixedTime, time.Hour, uid, 2)

	evaluator := newRateLimitEvaluator(client, fixedTime, uid)
	factor, err := evaluator.Evaluate(context.Background(), &risk.AuthAttempt{
		Email: "user@example.com",
		IP:    "10.0.0.1",
	}, nil)

	require.NoError(t, err)
	require.NotNil(t, factor)
	assert.Equal(t, security.FactorRateLimit, factor.Type)
	assert.Equal(t, security.SeverityHigh, factor.Severity)
	assert.Equal(t, 90, factor.Score)
}

func TestRateLimitEvaluator_EmailLimitExceeded(t *testing.T) {
	client, mock := redismock.NewClientMock()
	fixedTime := time.Unix(1756710000, 0)
	uid := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	expectSlidingWindow(mock, "authlimit:ip:10.0.0.1", fixedTime, time.Hour, uid, 5)
	expectSlidingWindow(mock, "authlimit:email:user@example.com", fixedTime, time.Hour, uid, 11)

	evaluator := newRateLimitEvaluator(client, fixedTime, uid)
	factor, err := evaluator.Evaluate(context.Background(), &risk.AuthAttempt{
		Email: "User@Example.com",
		IP:    "10.0.0.1",
	}, nil)

	require.NoError(t, err)
	require.NotNil(t, factor)
	assert.Equal(t, security.SeverityMedium, factor.Severity)
	assert.Equal(t, 60, factor.Score)
}

func TestRateLimitEvaluator_RedisFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	fixedTime := time.Unix(1756710000, 0)
	uid := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	mock.ExpectTxPipeline()
	mock.ExpectZRemRangeByScore("authlimit:ip:10.0.0.1", "0",
		strconv.FormatInt(fixedTime.Add(-time.Hour).Unix(), 10)).SetErr(assert.AnError)

	evaluator := newRateLimitEvaluator(client, fixedTime, uid)
	factor, err := evaluator.Evaluate(context.Background(), &risk.AuthAttempt{
		Email: "user@example.com",
		IP:    "10.0.0.1",
	}, nil)

	assert.Error(t, err)
	assert.Nil(t, factor)
}
