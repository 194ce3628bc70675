package profile

import (
	"context"
	"time"
)

// Repository stores user security profiles. Update runs its mutation under
// the store's per-profile write lock so concurrent assessments of the same
// user cannot interleave their read-modify-write sequences.
type Repository interface {
	Get(ctx context.Context, email string) (*UserSecurityProfile, error)
	GetOrCreate(ctx context.Context, email string) (*UserSecurityProfile, error)
	Update(ctx context.Context, email string, fn func(p *UserSecurityProfile)) error
	Delete(ctx context.Context, email string) error
	// SweepIdle removes profiles with empty history that have been idle
	// longer than maxIdle and returns how many were removed.
	SweepIdle(ctx context.Context, maxIdle time.Duration, now time.Time) (int, error)
}
