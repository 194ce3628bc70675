package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/domain/audit"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditEventRow is the relational shape of an archived audit event.
// Structured fields are flattened for filtering; the full event rides along
// as JSON for export fidelity.
type AuditEventRow struct {
	ID        uuid.UUID `gorm:"primarykey;type:uuid"`
	Timestamp time.Time `gorm:"not null;index"`
	Type      string    `gorm:"not null;size:100;index"`
	Category  string    `gorm:"not null;size:50;index"`
	Action    string    `gorm:"not null;size:100"`
	Outcome   string    `gorm:"not null;size:20"`
	Severity  string    `gorm:"not null;size:20"`
	UserID    string    `gorm:"size:255;index"`
	OrgID     string    `gorm:"size:255;index"`
	IP        string    `gorm:"size:64"`
	RiskScore int       `gorm:"not null"`
	Payload   string    `gorm:"type:jsonb"`
}

func (AuditEventRow) TableName() string {
	return "audit_events"
}

// GormAuditArchiver persists audit events to postgres for retention beyond
// the in-memory cap.
type GormAuditArchiver struct {
	db *gorm.DB
}

func NewGormAuditArchiver(db *gorm.DB) audit.Archiver {
	return &GormAuditArchiver{db: db}
}

func (a *GormAuditArchiver) Archive(ctx context.Context, event *audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	row := AuditEventRow{
		ID:        event.ID,
		Timestamp: event.Timestamp,
		Type:      event.Type,
		Category:  string(event.Category),
		Action:    event.Action,
		Outcome:   string(event.Outcome),
		Severity:  string(event.Severity),
		UserID:    event.UserID,
		OrgID:     event.OrgID,
		IP:        event.IP,
		RiskScore: event.Risk.Score,
		Payload:   string(payload),
	}
	return a.db.WithContext(ctx).Create(&row).Error
}
