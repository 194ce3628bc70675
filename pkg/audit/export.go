package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/SentriLabs/SentriAuth/pkg/domain/audit"
)

// ExportFormat selects the serialization for a compliance export.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// ErrUnsupportedExportFormat is returned for formats the service does not
// produce, PDF included.
type ErrUnsupportedExportFormat struct {
	Format ExportFormat
}

func (e *ErrUnsupportedExportFormat) Error() string {
	return fmt.Sprintf("unsupported export format: %s", e.Format)
}

var csvHeader = []string{
	"id", "timestamp", "type", "category", "action", "resource",
	"outcome", "severity", "user_id", "org_id", "ip", "risk_score",
	"description",
}

// Export serializes every event matching the filter. The filter's Limit is
// ignored; an export is always the full match set.
func (s *service) Export(ctx context.Context, filter audit.Filter, format ExportFormat) ([]byte, error) {
	filter.Limit = audit.NoLimit
	filter.Offset = 0

	result, err := s.events.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for export: %w", err)
	}

	switch format {
	case ExportJSON:
		return json.MarshalIndent(result.Events, "", "  ")
	case ExportCSV:
		return exportCSV(result.Events)
	default:
		return nil, &ErrUnsupportedExportFormat{Format: format}
	}
}

func exportCSV(events []*audit.Event) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, e := range events {
		record := []string{
			e.ID.String(),
			e.Timestamp.Format(time.RFC3339),
			e.Type,
			string(e.Category),
			e.Action,
			e.Resource,
			string(e.Outcome),
			string(e.Severity),
			e.UserID,
			e.OrgID,
			e.IP,
			strconv.Itoa(e.Risk.Score),
			e.Description,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
