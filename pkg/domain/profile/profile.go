package profile

import (
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
)

const (
	// MaxHistory caps the per-user risk event history; the oldest entry is
	// evicted when the cap is reached.
	MaxHistory = 100

	// KnownDeviceSimilarity is the field-match ratio above which a
	// submitted fingerprint is treated as a known device.
	KnownDeviceSimilarity = 0.8

	initialTrustScore = 50
)

// DeviceFingerprint describes a device seen for a user. Similarity between
// fingerprints is an exact-equality field-match ratio over the four fields.
type DeviceFingerprint struct {
	UserAgent string    `json:"user_agent"`
	Timezone  string    `json:"timezone"`
	Language  string    `json:"language"`
	Platform  string    `json:"platform"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// Similarity returns matches/4 over {UserAgent, Timezone, Language, Platform}.
func (d DeviceFingerprint) Similarity(other DeviceFingerprint) float64 {
	matches := 0
	if d.UserAgent == other.UserAgent {
		matches++
	}
	if d.Timezone == other.Timezone {
		matches++
	}
	if d.Language == other.Language {
		matches++
	}
	if d.Platform == other.Platform {
		matches++
	}
	return float64(matches) / 4.0
}

// GeoLocation is a coordinate pair with an optional place label.
type GeoLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country,omitempty"`
	City      string  `json:"city,omitempty"`
}

// LocationFrequency counts how often a user has authenticated from a
// location.
type LocationFrequency struct {
	Location GeoLocation `json:"location"`
	Count    int         `json:"count"`
	LastSeen time.Time   `json:"last_seen"`
}

// UserSecurityProfile is the per-user record consulted and updated by the
// risk evaluators. Created lazily on first evaluation.
type UserSecurityProfile struct {
	Email      string                   `json:"email"`
	Devices    []DeviceFingerprint      `json:"devices"`
	Locations  []LocationFrequency      `json:"locations"`
	TrustScore int                      `json:"trust_score"`
	History    []security.SecurityEvent `json:"history"`
	CreatedAt  time.Time                `json:"created_at"`
	LastSeenAt time.Time                `json:"last_seen_at"`
}

// New returns a fresh profile with the neutral starting trust score.
func New(email string, now time.Time) *UserSecurityProfile {
	return &UserSecurityProfile{
		Email:      email,
		TrustScore: initialTrustScore,
		CreatedAt:  now,
		LastSeenAt: now,
	}
}

// MatchDevice returns the index of the best-matching known device and its
// similarity, or (-1, 0) when no device is known.
func (p *UserSecurityProfile) MatchDevice(fp DeviceFingerprint) (int, float64) {
	best := -1
	bestSim := 0.0
	for i, d := range p.Devices {
		if sim := d.Similarity(fp); sim > bestSim {
			best = i
			bestSim = sim
		}
	}
	return best, bestSim
}

// LastLocation returns the most recently seen location, if any.
func (p *UserSecurityProfile) LastLocation() (LocationFrequency, bool) {
	var latest LocationFrequency
	found := false
	for _, lf := range p.Locations {
		if !found || lf.LastSeen.After(latest.LastSeen) {
			latest = lf
			found = true
		}
	}
	return latest, found
}

// RecordLocation increments the frequency counter for a location, adding it
// on first sight. Locations are matched on coordinates.
func (p *UserSecurityProfile) RecordLocation(loc GeoLocation, now time.Time) {
	for i := range p.Locations {
		if p.Locations[i].Location.Latitude == loc.Latitude &&
			p.Locations[i].Location.Longitude == loc.Longitude {
			p.Locations[i].Count++
			p.Locations[i].LastSeen = now
			return
		}
	}
	p.Locations = append(p.Locations, LocationFrequency{Location: loc, Count: 1, LastSeen: now})
}

// AppendEvent adds an assessment to the history, evicting the oldest entry
// past MaxHistory.
func (p *UserSecurityProfile) AppendEvent(event security.SecurityEvent) {
	p.History = append(p.History, event)
	if len(p.History) > MaxHistory {
		p.History = p.History[len(p.History)-MaxHistory:]
	}
}

// AdjustTrust applies a delta to the trust score, clamped to [0,100].
func (p *UserSecurityProfile) AdjustTrust(delta int) {
	p.TrustScore = security.ClampScore(p.TrustScore + delta)
}
