package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/domain/audit"
	"github.com/SentriLabs/SentriAuth/pkg/domain/security"
	"github.com/SentriLabs/SentriAuth/pkg/infra/prometheus"
	"github.com/SentriLabs/SentriAuth/pkg/infra/streaming"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Entry is the caller-supplied part of an audit event; the service fills in
// identity, category, risk and compliance metadata.
type Entry struct {
	Type        string
	Action      string
	Resource    string
	Outcome     audit.Outcome
	UserID      string
	OrgID       string
	IP          string
	UserAgent   string
	Description string
	Metadata    map[string]interface{}
}

// Service records audit events and answers queries, compliance reports and
// exports over them.
//
//go:generate mockery --name=Service --dir=. --output=../../mocks --filename=audit_service_mock.go --case=underscore --with-expecter
type Service interface {
	LogAuth(ctx context.Context, entry Entry) (*audit.Event, error)
	LogAuthz(ctx context.Context, entry Entry) (*audit.Event, error)
	LogUserManagement(ctx context.Context, entry Entry) (*audit.Event, error)
	LogOrganization(ctx context.Context, entry Entry) (*audit.Event, error)
	LogSecurity(ctx context.Context, entry Entry, severity security.Severity) (*audit.Event, error)
	Query(ctx context.Context, filter audit.Filter) (*audit.QueryResult, error)
	ComplianceReport(ctx context.Context, orgID, regulation string, start, end time.Time) (*Report, error)
	Export(ctx context.Context, filter audit.Filter, format ExportFormat) ([]byte, error)
}

type service struct {
	events        audit.Repository
	archiver      audit.Archiver
	exporter      streaming.Exporter
	logger        *logrus.Logger
	retentionDays int
	timeProvider  func() time.Time
	uuidProvider  func() uuid.UUID
}

type ServiceOpts struct {
	TimeProvider func() time.Time
	UuidProvider func() uuid.UUID
}

// NewService wires the in-memory store with the optional archive and
// streaming sinks. Either sink may be nil.
func NewService(
	events audit.Repository,
	archiver audit.Archiver,
	exporter streaming.Exporter,
	logger *logrus.Logger,
	retentionDays int,
	opts *ServiceOpts,
) Service {
	timeProvider := time.Now
	uuidProvider := uuid.New
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	if opts != nil && opts.UuidProvider != nil {
		uuidProvider = opts.UuidProvider
	}
	return &service{
		events:        events,
		archiver:      archiver,
		exporter:      exporter,
		logger:        logger,
		retentionDays: retentionDays,
		timeProvider:  timeProvider,
		uuidProvider:  uuidProvider,
	}
}

// categoryRegulations maps each category to the regulations its events fall
// under by default.
var categoryRegulations = map[audit.Category][]string{
	audit.CategoryAuthentication: {"SOC2", "GDPR"},
	audit.CategoryAuthorization:  {"SOC2"},
	audit.CategoryUserManagement: {"GDPR", "SOC2"},
	audit.CategoryOrganization:   {"SOC2"},
	audit.CategorySecurity:       {"SOC2", "GDPR", "HIPAA"},
}

var categoryClassification = map[audit.Category]string{
	audit.CategoryAuthentication: "internal",
	audit.CategoryAuthorization:  "internal",
	audit.CategoryUserManagement: "confidential",
	audit.CategoryOrganization:   "internal",
	audit.CategorySecurity:       "confidential",
}

func (s *service) LogAuth(ctx context.Context, entry Entry) (*audit.Event, error) {
	return s.log(ctx, audit.CategoryAuthentication, entry, "")
}

func (s *service) LogAuthz(ctx context.Context, entry Entry) (*audit.Event, error) {
	return s.log(ctx, audit.CategoryAuthorization, entry, "")
}

func (s *service) LogUserManagement(ctx context.Context, entry Entry) (*audit.Event, error) {
	return s.log(ctx, audit.CategoryUserManagement, entry, "")
}

func (s *service) LogOrganization(ctx context.Context, entry Entry) (*audit.Event, error) {
	return s.log(ctx, audit.CategoryOrganization, entry, "")
}

// LogSecurity takes an explicit severity; security events carry the
// severity the monitor observed, not one derived from the risk score.
func (s *service) LogSecurity(ctx context.Context, entry Entry, severity security.Severity) (*audit.Event, error) {
	return s.log(ctx, audit.CategorySecurity, entry, severity)
}

func (s *service) log(ctx context.Context, category audit.Category, entry Entry, severity security.Severity) (*audit.Event, error) {
	risk := audit.ScoreEvent(entry.Action, entry.Outcome, entry.UserAgent)
	if severity == "" {
		severity = risk.Verdict
	}

	event := &audit.Event{
		ID:          s.uuidProvider(),
		Timestamp:   s.timeProvider(),
		Type:        entry.Type,
		Category:    category,
		Action:      entry.Action,
		Resource:    entry.Resource,
		Outcome:     entry.Outcome,
		Severity:    severity,
		UserID:      entry.UserID,
		OrgID:       entry.OrgID,
		IP:          entry.IP,
		UserAgent:   entry.UserAgent,
		Description: entry.Description,
		Risk:        risk,
		Compliance: audit.Compliance{
			Regulations:        categoryRegulations[category],
			RetentionDays:      s.retentionDays,
			DataClassification: categoryClassification[category],
		},
		Metadata: entry.Metadata,
	}

	if err := s.events.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to append audit event: %w", err)
	}
	prometheus.AuditEventsTotal.WithLabelValues(string(category), string(entry.Outcome)).Inc()

	if s.archiver != nil {
		go s.archive(event)
	}
	if s.exporter != nil {
		go s.stream(event)
	}

	return event, nil
}

// archive and stream run detached from the request; their failures are
// logged, never surfaced.
func (s *service) archive(event *audit.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.archiver.Archive(ctx, event); err != nil {
		s.logger.WithError(err).WithField("event_id", event.ID).Error("failed to archive audit event")
	}
}

func (s *service) stream(event *audit.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.exporter.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithField("event_id", event.ID).Error("failed to stream audit event")
	}
}

func (s *service) Query(ctx context.Context, filter audit.Filter) (*audit.QueryResult, error) {
	return s.events.Query(ctx, filter)
}
