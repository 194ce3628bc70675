package repository

import (
	"context"
	"sync"
	"time"

	domain "github.com/SentriLabs/SentriAuth/pkg/domain/errors"
	"github.com/SentriLabs/SentriAuth/pkg/domain/profile"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
)

// MemoryProfileRepository keeps user security profiles in a process-local
// map. A single RWMutex guards the map and every profile mutation runs
// inside Update's critical section, so concurrent assessments of the same
// user serialize their read-modify-write sequences.
type MemoryProfileRepository struct {
	mu           sync.RWMutex
	profiles     map[string]*profile.UserSecurityProfile
	timeProvider func() time.Time
}

func NewMemoryProfileRepository(timeProvider func() time.Time) profile.Repository {
	if timeProvider == nil {
		timeProvider = time.Now
	}
	return &MemoryProfileRepository{
		profiles:     make(map[string]*profile.UserSecurityProfile),
		timeProvider: timeProvider,
	}
}

func (r *MemoryProfileRepository) Get(_ context.Context, email string) (*profile.UserSecurityProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[email]
	if !ok {
		return nil, domain.NewNotFoundError("profile", email)
	}
	return cloneProfile(p), nil
}

func (r *MemoryProfileRepository) GetOrCreate(_ context.Context, email string) (*profile.UserSecurityProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[email]
	if !ok {
		p = profile.New(email, r.timeProvider())
		r.profiles[email] = p
	}
	return cloneProfile(p), nil
}

func (r *MemoryProfileRepository) Update(_ context.Context, email string, fn func(p *profile.UserSecurityProfile)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[email]
	if !ok {
		p = profile.New(email, r.timeProvider())
		r.profiles[email] = p
	}
	fn(p)
	p.LastSeenAt = r.timeProvider()
	return nil
}

func (r *MemoryProfileRepository) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[email]; !ok {
		return domain.NewNotFoundError("profile", email)
	}
	delete(r.profiles, email)
	return nil
}

func (r *MemoryProfileRepository) SweepIdle(_ context.Context, maxIdle time.Duration, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for email, p := range r.profiles {
		if len(p.History) == 0 && now.Sub(p.LastSeenAt) > maxIdle {
			delete(r.profiles, email)
			removed++
		}
	}
	return removed, nil
}

// cloneProfile returns a deep-enough copy so readers never observe a
// profile mid-mutation.
func cloneProfile(p *profile.UserSecurityProfile) *profile.UserSecurityProfile {
	clone := *p
	clone.Devices = append([]profile.DeviceFingerprint(nil), p.Devices...)
	clone.Locations = append([]profile.LocationFrequency(nil), p.Locations...)
	clone.History = append([]security.SecurityEvent(nil), p.History...)
	return &clone
}
