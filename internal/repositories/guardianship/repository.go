package guardianship

import (
	"context"
	"fmt"
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

// Repository handles guardian-child link persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new guardianship repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves the link for a (guardian, child) pair
func (r *Repository) Get(ctx context.Context, guardianID, childID string) (*models.Guardianship, error) {
	ctx, span := tracing.StartSpan(ctx, "guardianship.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "guardian_id", "child_id", "role", "place_id", "created_at")
	sb.From("guardianships")
	sb.Where(
		sb.Equal("guardian_id", guardianID),
		sb.Equal("child_id", childID),
	)

	query, args := sb.Build()
	var link models.Guardianship
	if err := r.db.GetContext(ctx, &link, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no guardianship for guardian %s and child %s", guardianID, childID))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get guardianship")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get guardianship")
	}

	return &link, nil
}

// Create inserts a guardian-child link. The (guardian, child) pair is
// unique; a conflicting insert is absorbed and reported as created=false.
func (r *Repository) Create(ctx context.Context, link *models.Guardianship) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "guardianship.Repository.Create")
	defer span.End()

	if link.ID == "" {
		link.ID = uuid.New().String()
	}
	if link.Role == "" {
		link.Role = models.GuardianRoleLegal
	}
	link.CreatedAt = time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("guardianships")
	sb.Cols("id", "guardian_id", "child_id", "role", "place_id", "created_at")
	sb.Values(link.ID, link.GuardianID, link.ChildID, link.Role, link.PlaceID, link.CreatedAt)

	query, args := sb.Build()
	query += " ON CONFLICT (guardian_id, child_id) DO NOTHING"

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create guardianship")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create guardianship")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return false, nil
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"guardian_id": link.GuardianID, "child_id": link.ChildID}).Info("Created guardianship")
	return true, nil
}

// ListByChild retrieves all links for a child
func (r *Repository) ListByChild(ctx context.Context, childID string) ([]models.Guardianship, error) {
	ctx, span := tracing.StartSpan(ctx, "guardianship.Repository.ListByChild")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "guardian_id", "child_id", "role", "place_id", "created_at")
	sb.From("guardianships")
	sb.Where(sb.Equal("child_id", childID))
	sb.OrderBy("created_at ASC")

	query, args := sb.Build()
	var links []models.Guardianship
	if err := r.db.SelectContext(ctx, &links, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list guardianships")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list guardianships")
	}

	return links, nil
}
