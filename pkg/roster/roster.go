// Package roster produces the flattened child/guardian/residence export
// consumed by the transport operator.
package roster

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"

	"github.com/Ramsey-B/fern/pkg/grades"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// RosterStore is the read surface the export builds from.
type RosterStore interface {
	List(ctx context.Context) ([]models.RosterEntry, error)
}

// Service assembles export rosters with the derived per-child fields.
type Service struct {
	logger ectologger.Logger
	store  RosterStore
}

// NewService creates a new roster service
func NewService(logger ectologger.Logger, store RosterStore) *Service {
	return &Service{
		logger: logger,
		store:  store,
	}
}

// QRToken derives the scannable token printed on a child's bus card. The
// token is the child id with separators stripped, upper-cased.
func QRToken(childID string) string {
	return strings.ToUpper(strings.ReplaceAll(childID, "-", ""))
}

// Export returns the roster rows in store order with grade labels and QR
// tokens filled in. Children without a grade level get an empty label.
func (s *Service) Export(ctx context.Context) ([]models.RosterRow, error) {
	ctx, span := tracing.StartSpan(ctx, "roster.Service.Export")
	defer span.End()

	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]models.RosterRow, 0, len(entries))
	for _, entry := range entries {
		row := models.RosterRow{
			RosterEntry: entry,
			QRToken:     QRToken(entry.ChildID),
		}
		if entry.ChildGradeLevel != nil {
			label, err := grades.LabelForLevel(*entry.ChildGradeLevel)
			if err != nil {
				s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
					"child": entry.ChildFullName,
				}).Warn("Child has an unknown grade level, leaving label blank")
			} else {
				row.GradeLabel = label
			}
		}
		rows = append(rows, row)
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"rows": len(rows),
	}).Info("Roster export assembled")
	return rows, nil
}

var csvHeader = []string{
	"child_full_name",
	"grade_label",
	"guardian_full_name",
	"guardian_email",
	"guardian_phone",
	"formatted_address",
	"latitude",
	"longitude",
	"qr_token",
}

// WriteCSV renders roster rows as CSV, one record per child-guardian
// pairing, preserving the input order.
func WriteCSV(w io.Writer, rows []models.RosterRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return errors.Wrap(err, "failed to write roster header")
	}

	for _, row := range rows {
		record := []string{
			row.ChildFullName,
			row.GradeLabel,
			row.GuardianFullName,
			stringValue(row.GuardianEmail),
			stringValue(row.GuardianPhone),
			stringValue(row.FormattedAddress),
			floatValue(row.Latitude),
			floatValue(row.Longitude),
			row.QRToken,
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, "failed to write roster record")
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "failed to flush roster")
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatValue(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
