package stagedrow

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

var cols = []string{
	"id", "line_number", "registration_id", "registration_time",
	"child_first_name", "child_last_name", "child_full_name", "child_dob", "child_grade_level", "child_locale",
	"parent1_first_name", "parent1_last_name", "parent1_full_name", "parent1_locale", "parent1_email", "parent1_phone",
	"parent1_formatted_address", "parent1_geocoded_address", "parent1_home_location",
	"parent2_first_name", "parent2_last_name", "parent2_full_name", "parent2_locale", "parent2_email", "parent2_phone",
	"parent2_formatted_address", "parent2_geocoded_address", "parent2_home_location",
	"raw", "created_at",
}

// Repository handles staged registration row persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new staged row repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ListOrdered retrieves every staged row in line order. The reconciler
// depends on this ordering: family context is inherited from the
// preceding row.
func (r *Repository) ListOrdered(ctx context.Context) ([]models.StagedRow, error) {
	ctx, span := tracing.StartSpan(ctx, "stagedrow.Repository.ListOrdered")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(cols...)
	sb.From("staged_rows")
	sb.OrderBy("line_number ASC")

	query, args := sb.Build()
	var rows []models.StagedRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list staged rows")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list staged rows")
	}

	return rows, nil
}

// Upsert inserts a staged row, replacing any previous import of the same
// line number. Re-importing a corrected source file is routine.
func (r *Repository) Upsert(ctx context.Context, row *models.StagedRow) error {
	ctx, span := tracing.StartSpan(ctx, "stagedrow.Repository.Upsert")
	defer span.End()

	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	row.CreatedAt = time.Now().UTC()

	sb := database.NewInsertBuilder()
	sb.InsertInto("staged_rows")
	sb.Cols(cols...)
	sb.Values(
		row.ID, row.LineNumber, row.RegistrationID, row.RegistrationTime,
		row.ChildFirstName, row.ChildLastName, row.ChildFullName, row.ChildDOB, row.ChildGradeLevel, row.ChildLocale,
		row.Parent1FirstName, row.Parent1LastName, row.Parent1FullName, row.Parent1Locale, row.Parent1Email, row.Parent1Phone,
		row.Parent1FormattedAddress, row.Parent1GeocodedAddress, row.Parent1HomeLocation,
		row.Parent2FirstName, row.Parent2LastName, row.Parent2FullName, row.Parent2Locale, row.Parent2Email, row.Parent2Phone,
		row.Parent2FormattedAddress, row.Parent2GeocodedAddress, row.Parent2HomeLocation,
		row.Raw, row.CreatedAt,
	)

	ub := sb.OnConflict("line_number")
	for _, col := range cols[2:] {
		ub.Set(ub.Assign(col, database.Excluded(col)))
	}

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to upsert staged row")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert staged row")
	}

	return nil
}

// Count returns the number of staged rows
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "stagedrow.Repository.Count")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("staged_rows")

	query, args := sb.Build()
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count staged rows")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count staged rows")
	}

	return count, nil
}
