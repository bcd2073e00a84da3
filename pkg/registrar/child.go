package registrar

import (
	"context"
	"time"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// RegisterChild finds or creates the placeholder account for a child. A
// lookup hit short-circuits creation and surfaces a duplicate warning; no
// fields of the existing account are touched.
func (s *Service) RegisterChild(ctx context.Context, req models.RegisterChildRequest) (*ChildResult, error) {
	ctx, span := tracing.StartSpan(ctx, "registrar.Service.RegisterChild")
	defer span.End()

	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"full_name": req.FullName,
		"dob":       req.DOB.Format("2006-01-02"),
	})

	existingID, err := s.FindChild(ctx, req.FullName, req.DOB)
	if err != nil {
		return nil, err
	}
	if existingID != nil {
		log.WithField("id", *existingID).Warn("Child already registered")
		return &ChildResult{
			ID: *existingID,
			Warnings: []Warning{{
				Kind:   WarningDuplicateChild,
				Name:   req.FullName,
				Detail: "child already registered with the same name and date of birth",
			}},
		}, nil
	}

	dob := req.DOB
	account := &models.Account{
		Kind:              models.AccountKindPlaceholder,
		Status:            models.AccountStatusEnabled,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		FullName:          req.FullName,
		Locale:            req.Locale,
		DOB:               &dob,
		GradeLevel:        req.GradeLevel,
		SchoolID:          req.SchoolID,
		CanDisembarkAlone: UnaccompaniedEligible(req.DOB, s.config.SchoolYearStart, s.config.MinUnaccompaniedAge),
	}

	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	log.WithField("id", created.ID).Info("Registered child")
	return &ChildResult{ID: created.ID, IsNew: true}, nil
}

// UnaccompaniedEligible reports whether a child born on dob will be
// strictly older than minAge at the school year start date. A child
// turning exactly minAge by that date is not eligible.
func UnaccompaniedEligible(dob, schoolYearStart time.Time, minAge int) bool {
	return yearsBetween(schoolYearStart, dob) > minAge
}

// yearsBetween returns the whole number of years from dob to ref.
func yearsBetween(ref, dob time.Time) int {
	years := ref.Year() - dob.Year()
	anniversary := dob.AddDate(years, 0, 0)
	if anniversary.After(ref) {
		years--
	}
	return years
}
