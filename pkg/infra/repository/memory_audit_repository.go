package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/SentriLabs/SentriAuth/pkg/domain/audit"
)

// MemoryAuditRepository is the append-only in-memory audit store. The list
// is capped; appending past the cap drops the oldest event.
type MemoryAuditRepository struct {
	mu        sync.RWMutex
	events    []*audit.Event
	maxEvents int
}

func NewMemoryAuditRepository(maxEvents int) audit.Repository {
	if maxEvents <= 0 {
		maxEvents = 100000
	}
	return &MemoryAuditRepository{
		maxEvents: maxEvents,
	}
}

func (r *MemoryAuditRepository) Append(_ context.Context, event *audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if len(r.events) > r.maxEvents {
		r.events = r.events[len(r.events)-r.maxEvents:]
	}
	return nil
}

func (r *MemoryAuditRepository) Query(_ context.Context, filter audit.Filter) (*audit.QueryResult, error) {
	r.mu.RLock()
	var matched []*audit.Event
	for _, e := range r.events {
		if filter.Matches(e) {
			matched = append(matched, e)
		}
	}
	r.mu.RUnlock()

	sortEvents(matched, filter.SortBy)

	total := len(matched)
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	limit := filter.Limit
	if limit == 0 {
		limit = 50
	}
	if limit < 0 {
		limit = total
	}

	var page []*audit.Event
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = matched[offset:end]
	}

	return &audit.QueryResult{
		Events:  page,
		Total:   total,
		HasMore: offset+limit < total,
	}, nil
}

func (r *MemoryAuditRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events), nil
}

// sortEvents orders newest-first for timestamps and highest-first for
// severity and risk score.
func sortEvents(events []*audit.Event, key audit.SortKey) {
	switch key {
	case audit.SortBySeverity:
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Severity.Rank() > events[j].Severity.Rank()
		})
	case audit.SortByRiskScore:
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Risk.Score > events[j].Risk.Score
		})
	default:
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Timestamp.After(events[j].Timestamp)
		})
	}
}
