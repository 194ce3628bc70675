package risk

import (
	"context"
	"fmt"
	"strings"

	"github.com/SentriLabs/SentriAuth/pkg/domain/profile"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/avct/uasurfer"
)

const (
	deviceChangeScore     = 30
	unparseableAgentScore = 25
)

type deviceEvaluator struct{}

// NewDeviceEvaluator compares the submitted fingerprint against the user's
// known devices. A brand-new profile raises no factor; the first device is
// registered on the update path after the assessment.
func NewDeviceEvaluator() Evaluator {
	return &deviceEvaluator{}
}

func (e *deviceEvaluator) Name() string {
	return "device"
}

func (e *deviceEvaluator) Evaluate(_ context.Context, attempt *AuthAttempt, prof *profile.UserSecurityProfile) (*security.RiskFactor, error) {
	if attempt.Fingerprint == nil {
		return nil, nil
	}

	if factor := checkUserAgent(attempt.Fingerprint.UserAgent); factor != nil {
		return factor, nil
	}

	if len(prof.Devices) == 0 {
		return nil, nil
	}

	_, similarity := prof.MatchDevice(*attempt.Fingerprint)
	if similarity > profile.KnownDeviceSimilarity {
		return nil, nil
	}

	ua := uasurfer.Parse(attempt.Fingerprint.UserAgent)
	return &security.RiskFactor{
		Type:        security.FactorDeviceChange,
		Severity:    security.SeverityMedium,
		Score:       deviceChangeScore,
		Description: "login from an unrecognized device",
		Evidence: map[string]interface{}{
			"best_similarity": similarity,
			"known_devices":   len(prof.Devices),
			"browser":         fmt.Sprintf("%s %d", ua.Browser.Name.String(), ua.Browser.Version.Major),
			"os":              ua.OS.Name.String(),
			"device_type":     ua.DeviceType.String(),
		},
	}, nil
}

// checkUserAgent flags empty or unparseable user agents; scripted clients
// routinely omit or mangle theirs.
func checkUserAgent(userAgent string) *security.RiskFactor {
	trimmed := strings.TrimSpace(userAgent)
	parsed := uasurfer.Parse(trimmed)
	if trimmed != "" && parsed.Browser.Name != uasurfer.BrowserUnknown {
		return nil
	}
	return &security.RiskFactor{
		Type:        security.FactorSuspiciousPattern,
		Severity:    security.SeverityMedium,
		Score:       unparseableAgentScore,
		Description: "missing or unparseable user agent in device fingerprint",
		Evidence: map[string]interface{}{
			"user_agent": userAgent,
		},
	}
}
