package place

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
	"github.com/Ramsey-B/fern/pkg/geo"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Repository handles residence persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new place repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetByAccountAndPoint finds a residence owned by the account at the exact
// coordinates. No distance tolerance: dedup relies on value equality.
func (r *Repository) GetByAccountAndPoint(ctx context.Context, accountID string, point geo.Point) (*models.Place, error) {
	ctx, span := tracing.StartSpan(ctx, "place.Repository.GetByAccountAndPoint")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "account_id", "category", "latitude", "longitude", "srid", "created_at")
	sb.From("places")
	sb.Where(
		sb.Equal("account_id", accountID),
		sb.Equal("latitude", point.Latitude),
		sb.Equal("longitude", point.Longitude),
	)

	query, args := sb.Build()
	var place models.Place
	if err := r.db.GetContext(ctx, &place, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no residence for account %s at %s", accountID, point))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get place by account and point")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get place")
	}

	return &place, nil
}

// Create inserts a residence and its address components in one
// transaction. Components are only ever written here: a pre-existing
// residence never gains new address renderings.
func (r *Repository) Create(ctx context.Context, place *models.Place, components []models.AddressComponent) (*models.Place, error) {
	ctx, span := tracing.StartSpan(ctx, "place.Repository.Create")
	defer span.End()

	if place.ID == "" {
		place.ID = uuid.New().String()
	}
	if place.Category == "" {
		place.Category = models.PlaceCategoryHome
	}
	if place.SRID == 0 {
		place.SRID = geo.SRIDWGS84
	}
	place.CreatedAt = time.Now().UTC()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("places")
	sb.Cols("id", "account_id", "category", "latitude", "longitude", "srid", "created_at")
	sb.Values(place.ID, place.AccountID, place.Category, place.Latitude, place.Longitude, place.SRID, place.CreatedAt)

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create place")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create place")
	}

	for i := range components {
		component := &components[i]
		if component.ID == "" {
			component.ID = uuid.New().String()
		}
		component.PlaceID = place.ID
		component.CreatedAt = place.CreatedAt

		cb := sqlbuilder.PostgreSQL.NewInsertBuilder()
		cb.InsertInto("address_components")
		cb.Cols("id", "place_id", "component", "value", "locale", "created_at")
		cb.Values(component.ID, component.PlaceID, component.Component, component.Value, component.Locale, component.CreatedAt)

		query, args := cb.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to create address component")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create address component")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit place")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": place.ID, "account_id": place.AccountID}).Info("Created place")
	return place, nil
}

// ListComponents retrieves the address components of a place
func (r *Repository) ListComponents(ctx context.Context, placeID string) ([]models.AddressComponent, error) {
	ctx, span := tracing.StartSpan(ctx, "place.Repository.ListComponents")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "place_id", "component", "value", "locale", "created_at")
	sb.From("address_components")
	sb.Where(sb.Equal("place_id", placeID))
	sb.OrderBy("component ASC")

	query, args := sb.Build()
	var components []models.AddressComponent
	if err := r.db.SelectContext(ctx, &components, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list address components")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list address components")
	}

	return components, nil
}
