package roster

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Repository reads the flattened child/guardian/residence roster view
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new roster repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// The roster joins each enabled child to its guardians, the residence on
// each link, and the guardian's primary contact values. Ordering is fixed
// so downstream consumers can diff consecutive exports.
const listQuery = `
SELECT
    children.id AS child_id,
    children.full_name AS child_full_name,
    children.grade_level AS child_grade_level,
    guardians.id AS guardian_id,
    guardians.full_name AS guardian_full_name,
    emails.value AS guardian_email,
    phones.value AS guardian_phone,
    places.latitude AS latitude,
    places.longitude AS longitude,
    formatted.value AS formatted_address
FROM accounts children
JOIN guardianships ON guardianships.child_id = children.id
JOIN accounts guardians ON guardians.id = guardianships.guardian_id
LEFT JOIN places ON places.id = guardianships.place_id
LEFT JOIN address_components formatted
    ON formatted.place_id = places.id AND formatted.component = 'formatted_address'
LEFT JOIN contact_information emails
    ON emails.account_id = guardians.id AND emails.property = 'EMAIL'
LEFT JOIN contact_information phones
    ON phones.account_id = guardians.id AND phones.property = 'PHONE'
WHERE children.status = 'enabled'
  AND guardians.status = 'enabled'
ORDER BY children.full_name ASC, children.id ASC, guardianships.created_at ASC
`

// List retrieves the roster entries for every enabled child
func (r *Repository) List(ctx context.Context) ([]models.RosterEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "roster.Repository.List")
	defer span.End()

	var entries []models.RosterEntry
	if err := r.db.SelectContext(ctx, &entries, listQuery); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list roster entries")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list roster entries")
	}

	return entries, nil
}
