package threat

import (
	"context"
	"time"
)

// Repository stores per-IP threat intelligence.
type Repository interface {
	Get(ctx context.Context, ip string) (*Intelligence, error)
	Update(ctx context.Context, ip string, fn func(t *Intelligence)) (*Intelligence, error)
	All(ctx context.Context) ([]*Intelligence, error)
	// DecayInactive decays every record whose LastSeen is older than
	// inactiveFor by the given points and returns the updated records.
	DecayInactive(ctx context.Context, inactiveFor time.Duration, points int, now time.Time) ([]*Intelligence, error)
	IsBlocked(ctx context.Context, ip string) (bool, error)
}
