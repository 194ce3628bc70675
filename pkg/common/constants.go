package common

import "time"

const (
	ProfileCacheTTL  = 5 * time.Minute
	ThreatCacheTTL   = 5 * time.Minute
	BreachSetTTL     = 1 * time.Hour
	GeoLookupTimeout = 2 * time.Second

	RequestIDHeader = "X-Request-Id"

	ProfileTTLName   = "profile"
	ThreatTTLName    = "threat"
	DetectionTTLName = "detection"

	// DetectionDedupeTTL bounds how often one IP's repeated hits on the
	// same pattern are folded into the threat record.
	DetectionDedupeTTL = 30 * time.Second
)

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TLS      bool
}
