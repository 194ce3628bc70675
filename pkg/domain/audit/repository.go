package audit

import "context"

// Repository is the append-only audit event store.
type Repository interface {
	Append(ctx context.Context, event *Event) error
	Query(ctx context.Context, filter Filter) (*QueryResult, error)
	Count(ctx context.Context) (int, error)
}

// Archiver persists events to long-lived storage beyond the in-memory cap.
// Archive failures must never fail the append path.
type Archiver interface {
	Archive(ctx context.Context, event *Event) error
}
