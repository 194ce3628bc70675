package risk_test

import (
	"context"
	"testing"
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/domain/profile"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/SentriLabs/SentriAuth/pkg/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chromeOnMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

func knownFingerprint() profile.DeviceFingerprint {
	return profile.DeviceFingerprint{
		UserAgent: chromeOnMac,
		Timezone:  "Europe/Madrid",
		Language:  "es-ES",
		Platform:  "MacIntel",
	}
}

func TestDeviceEvaluator_KnownDevice(t *testing.T) {
	now := time.Unix(1756710000, 0)
	prof := profile.New("user@example.com", now)
	prof.Devices = append(prof.Devices, knownFingerprint())

	fp := knownFingerprint()
	evaluator := risk.NewDeviceEvaluator()
	factor, err := evaluator.Evaluate(context.Background(), &risk.AuthAttempt{Fingerprint: &fp}, prof)

	require.NoError(t, err)
	assert.Nil(t, factor)
}

func TestDeviceEvaluator_UnrecognizedDevice(t *testing.T) {
	now := time.Unix(1756710000, 0)
	prof := profile.New("user@example.com", now)
	prof.Devices = append(prof.Devices, knownFingerprint())

	fp := profile.DeviceFingerprint{
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		Timezone:  "America/New_York",
		Language:  "en-US",
		Platform:  "Win32",
	}
	evaluator := risk.NewDeviceEvaluator()
	factor, err := evaluator.Evaluate(context.Background(), &risk.AuthAttempt{Fingerprint: &fp}, prof)

	require.NoError(t, err)
	require.NotNil(t, factor)
	assert.Equal(t, security.FactorDeviceChange, factor.Type)
	assert.Equal(t, security.SeverityMedium, factor.Severity)
}

func TestDeviceEvaluator_BrandNewProfile(t *testing.T) {
	now := time.Unix(1756710000, 0)
	prof := profile.New("user@example.com", now)

	fp := knownFingerprint()
	evaluator := risk.NewDeviceEvaluator()
	factor, err := evaluator.Evaluate(context.Background(), &risk.AuthAttempt{Fingerprint: &fp}, prof)

	require.NoError(t, err)
	assert.Nil(t, factor)
}

func TestDeviceEvaluator_NoFingerprint(t *testing.T) {
	now := time.Unix(1756710000, 0)
	prof := profile.New("user@example.com", now)
	prof.Devices = append(prof.Devices, knownFingerprint())

	evaluator := risk.NewDeviceEvaluator()
	factor, err := evaluator.Evaluate(context.Background(), &risk.AuthAttempt{}, prof)

	require.NoError(t, err)
	assert.Nil(t, factor)
}

func TestDeviceEvaluator_MissingUserAgent(t *testing.T) {
	now := time.Unix(1756710000, 0)
	prof := profile.New("user@example.com", now)

	fp := profile.DeviceFingerprint{
		Timezone: "Europe/Madrid",
		Language: "es-ES",
		Platform: "MacIntel",
	}
	evaluator := risk.NewDeviceEvaluator()
	factor, err := evaluator.Evaluate(context.Background(), &risk.AuthAttempt{Fingerprint: &fp}, prof)

	require.NoError(t, err)
	require.NotNil(t, factor)
	assert.Equal(t, security.FactorSuspiciousPattern, factor.Type)
	assert.Equal(t, 25, factor.Score)
}
