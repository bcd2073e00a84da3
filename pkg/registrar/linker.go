package registrar

import (
	"context"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

type linkRequest struct {
	GuardianID string `validate:"required"`
	ChildID    string `validate:"required"`
}

// LinkGuardianChild records that the guardian is legally responsible for
// the child, optionally tied to the residence the guardian houses the
// child at. The link is created at most once per (guardian, child) pair;
// repeat calls are no-ops regardless of the residence argument.
func (s *Service) LinkGuardianChild(ctx context.Context, guardianID, childID string, placeID *string) error {
	ctx, span := tracing.StartSpan(ctx, "registrar.Service.LinkGuardianChild")
	defer span.End()

	if err := validate.Struct(linkRequest{GuardianID: guardianID, ChildID: childID}); err != nil {
		return err
	}

	existing, err := s.links.Get(ctx, guardianID, childID)
	if err != nil && !isNotFound(err) {
		return err
	}
	if existing != nil {
		return nil
	}

	created, err := s.links.Create(ctx, &models.Guardianship{
		GuardianID: guardianID,
		ChildID:    childID,
		Role:       models.GuardianRoleLegal,
		PlaceID:    placeID,
	})
	if err != nil {
		return err
	}
	if !created {
		// Lost a race with another writer; the existing link wins.
		s.logger.WithContext(ctx).WithFields(map[string]any{
			"guardian_id": guardianID,
			"child_id":    childID,
		}).Debug("Guardianship already exists")
	}

	return nil
}
