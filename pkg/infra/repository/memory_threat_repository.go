package repository

import (
	"context"
	"sync"
	"time"

	domain "github.com/SentriLabs/SentriAuth/pkg/domain/errors"
	"github.com/SentriLabs/SentriAuth/pkg/domain/threat"
)

// MemoryThreatRepository keeps per-IP threat intelligence in a
// process-local map guarded by a RWMutex. Mutations run inside Update's
// critical section.
type MemoryThreatRepository struct {
	mu           sync.RWMutex
	records      map[string]*threat.Intelligence
	timeProvider func() time.Time
}

func NewMemoryThreatRepository(timeProvider func() time.Time) threat.Repository {
	if timeProvider == nil {
		timeProvider = time.Now
	}
	return &MemoryThreatRepository{
		records:      make(map[string]*threat.Intelligence),
		timeProvider: timeProvider,
	}
}

func (r *MemoryThreatRepository) Get(_ context.Context, ip string) (*threat.Intelligence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[ip]
	if !ok {
		return nil, domain.NewNotFoundError("threat intelligence", ip)
	}
	return cloneThreat(record), nil
}

func (r *MemoryThreatRepository) Update(_ context.Context, ip string, fn func(t *threat.Intelligence)) (*threat.Intelligence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[ip]
	if !ok {
		record = threat.New(ip, r.timeProvider())
		r.records[ip] = record
	}
	fn(record)
	return cloneThreat(record), nil
}

func (r *MemoryThreatRepository) All(_ context.Context) ([]*threat.Intelligence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*threat.Intelligence, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, cloneThreat(record))
	}
	return out, nil
}

func (r *MemoryThreatRepository) DecayInactive(_ context.Context, inactiveFor time.Duration, points int, now time.Time) ([]*threat.Intelligence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var decayed []*threat.Intelligence
	for _, record := range r.records {
		if now.Sub(record.LastSeen) > inactiveFor {
			record.Decay(points)
			decayed = append(decayed, cloneThreat(record))
		}
	}
	return decayed, nil
}

func (r *MemoryThreatRepository) IsBlocked(_ context.Context, ip string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[ip]
	if !ok {
		return false, nil
	}
	return record.Blocked, nil
}

func cloneThreat(t *threat.Intelligence) *threat.Intelligence {
	clone := *t
	clone.Patterns = append([]string(nil), t.Patterns...)
	return &clone
}
