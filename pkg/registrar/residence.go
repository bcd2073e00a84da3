package registrar

import (
	"context"

	"github.com/Ramsey-B/fern/pkg/geo"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// RegisterResidence finds or creates the residence owned by the account
// at the exact point. Address components are attached only when the
// residence is created; an existing residence is returned untouched.
func (s *Service) RegisterResidence(ctx context.Context, req models.RegisterResidenceRequest) (*ResidenceResult, error) {
	ctx, span := tracing.StartSpan(ctx, "registrar.Service.RegisterResidence")
	defer span.End()

	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	point := geo.Point{Latitude: req.Latitude, Longitude: req.Longitude}

	existingID, err := s.FindResidence(ctx, req.AccountID, point)
	if err != nil {
		return nil, err
	}
	if existingID != nil {
		return &ResidenceResult{ID: *existingID}, nil
	}

	locale := req.Locale
	if locale == "" {
		locale = "eng"
	}

	components := []models.AddressComponent{{
		Component: models.AddressComponentFormatted,
		Value:     req.FormattedAddress,
		Locale:    locale,
	}}
	if req.GeocodedAddress != nil {
		components = append(components, models.AddressComponent{
			Component: models.AddressComponentGeocoded,
			Value:     *req.GeocodedAddress,
			Locale:    locale,
		})
	}

	place := &models.Place{
		AccountID: req.AccountID,
		Category:  models.PlaceCategoryHome,
		Latitude:  point.Latitude,
		Longitude: point.Longitude,
		SRID:      geo.SRIDWGS84,
	}

	created, err := s.places.Create(ctx, place, components)
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"id":         created.ID,
		"account_id": req.AccountID,
	}).Info("Registered residence")
	return &ResidenceResult{ID: created.ID, IsNew: true}, nil
}
