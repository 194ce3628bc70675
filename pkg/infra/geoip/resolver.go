package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/SentriLabs/SentriAuth/pkg/domain/profile"
)

var (
	ErrInvalidIP = errors.New("invalid ip address")
	ErrNotFound  = errors.New("no location for ip")
)

// Resolver maps an IP address to a coarse geographic location. Production
// deployments plug in a MaxMind-style database; the risk engine only
// depends on this interface.
//
//go:generate mockery --name=Resolver --dir=. --output=../../../mocks --filename=geoip_resolver_mock.go --case=underscore --with-expecter
type Resolver interface {
	Resolve(ctx context.Context, ip string) (profile.GeoLocation, error)
}

// StaticResolver serves lookups from a fixed table keyed by CIDR prefix.
// Suitable for tests and air-gapped deployments.
type StaticResolver struct {
	entries []staticEntry
}

type staticEntry struct {
	network  *net.IPNet
	location profile.GeoLocation
}

// NewStaticResolverFromFile loads a JSON table of CIDR prefix to location.
func NewStaticResolverFromFile(path string) (*StaticResolver, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read geoip table: %w", err)
	}
	var table map[string]profile.GeoLocation
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse geoip table: %w", err)
	}
	return NewStaticResolver(table)
}

func NewStaticResolver(table map[string]profile.GeoLocation) (*StaticResolver, error) {
	r := &StaticResolver{}
	for cidr, loc := range table {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, err
		}
		r.entries = append(r.entries, staticEntry{network: network, location: loc})
	}
	return r, nil
}

func (r *StaticResolver) Resolve(_ context.Context, ip string) (profile.GeoLocation, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return profile.GeoLocation{}, ErrInvalidIP
	}
	for _, e := range r.entries {
		if e.network.Contains(parsed) {
			return e.location, nil
		}
	}
	return profile.GeoLocation{}, ErrNotFound
}
