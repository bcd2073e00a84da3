package registrar

import (
	"context"
	"time"

	"github.com/Ramsey-B/fern/pkg/geo"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// FindChild returns the id of the placeholder account matching the exact
// full name and date of birth, or nil when no such child exists. The
// match is case sensitive and has no fuzzy fallback: near-duplicate names
// intentionally produce duplicate children for manual review.
func (s *Service) FindChild(ctx context.Context, fullName string, dob time.Time) (*string, error) {
	ctx, span := tracing.StartSpan(ctx, "registrar.Service.FindChild")
	defer span.End()

	account, err := s.accounts.GetByNameAndDOB(ctx, fullName, dob)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &account.ID, nil
}

// FindParentByContact returns the id of the account matching both the
// full name (case insensitive) and a contact record with the given
// property and value, or nil when no such parent exists. A contact value
// alone never matches: two different people sharing an email each keep
// their own account.
func (s *Service) FindParentByContact(ctx context.Context, fullName string, property models.ContactProperty, value string) (*string, error) {
	ctx, span := tracing.StartSpan(ctx, "registrar.Service.FindParentByContact")
	defer span.End()

	account, err := s.accounts.GetByNameAndContact(ctx, fullName, property, value)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &account.ID, nil
}

// FindResidence returns the id of the residence owned by the account at
// the exact point, or nil when none exists.
func (s *Service) FindResidence(ctx context.Context, accountID string, point geo.Point) (*string, error) {
	ctx, span := tracing.StartSpan(ctx, "registrar.Service.FindResidence")
	defer span.End()

	place, err := s.places.GetByAccountAndPoint(ctx, accountID, point)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &place.ID, nil
}
