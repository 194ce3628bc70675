package monitor

import (
	"regexp"

	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
)

const (
	EventSQLInjection = "sql_injection_attempt"
	EventXSS          = "xss_attempt"
	EventBotAgent     = "bot_user_agent"
)

// Detection is a single pattern hit found while inspecting a request.
type Detection struct {
	Type     string
	Severity security.Severity
	Pattern  string
}

var sqlInjectionPattern = regexp.MustCompile(`(?i)(` +
	`['"]\s*OR\s*['"]?\d+['"]?\s*=\s*['"]?\d+|` +
	`UNION\s+(?:ALL\s+)?SELECT\s+|` +
	`(?:SLEEP|BENCHMARK|WAITFOR\s+DELAY)\s*\(\s*\d+|` +
	`['";]\s*;\s*(?:INSERT|UPDATE|DELETE|DROP|ALTER|TRUNCATE)\s+|` +
	`\b(?:DROP|DELETE|TRUNCATE)\s+(?:TABLE|DATABASE|SCHEMA)\s+\w+|` +
	`(?:['";]|\s)(?:--[^\r\n]*|#[^\r\n]*|\/\*[^*]*\*\/)` +
	`)`)

var xssPattern = regexp.MustCompile(`(?i)(` +
	`<[^>]*script.*?>|` +
	`\bon\w+\s*=|` +
	`javascript:|` +
	`alert\s*\(|eval\s*\(|` +
	`data:text/javascript|` +
	`<[^>]*iframe|<[^>]*object|<[^>]*embed` +
	`)`)

var botAgentPattern = regexp.MustCompile(`(?i)(` +
	`bot\b|crawler|spider|scraper|` +
	`^(?:curl|wget|python-requests|python-urllib|go-http-client|scrapy|java)\b|` +
	`headless` +
	`)`)

// ScanRequest runs the request-time heuristics over the inspectable parts
// of a request. SQL injection outranks XSS outranks bot traffic.
func ScanRequest(userAgent string, values ...string) []Detection {
	var detections []Detection

	for _, v := range values {
		if v == "" {
			continue
		}
		if sqlInjectionPattern.MatchString(v) {
			detections = append(detections, Detection{
				Type:     EventSQLInjection,
				Severity: security.SeverityHigh,
				Pattern:  sqlInjectionPattern.FindString(v),
			})
			continue
		}
		if xssPattern.MatchString(v) {
			detections = append(detections, Detection{
				Type:     EventXSS,
				Severity: security.SeverityMedium,
				Pattern:  xssPattern.FindString(v),
			})
		}
	}

	if userAgent != "" && botAgentPattern.MatchString(userAgent) {
		detections = append(detections, Detection{
			Type:     EventBotAgent,
			Severity: security.SeverityLow,
			Pattern:  botAgentPattern.FindString(userAgent),
		})
	}

	return detections
}
