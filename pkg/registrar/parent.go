package registrar

import (
	"context"
	"fmt"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// RegisterParent finds or creates the account for a parent. An existing
// parent is matched by full name plus email contact and returned without
// any mutation: the incoming contact details are discarded rather than
// merged onto an account that may belong to someone else. For a new
// parent, email and phone are attached independently and best-effort; a
// contact value already bound elsewhere is skipped with a warning.
func (s *Service) RegisterParent(ctx context.Context, req models.RegisterParentRequest) (*ParentResult, error) {
	ctx, span := tracing.StartSpan(ctx, "registrar.Service.RegisterParent")
	defer span.End()

	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	log := s.logger.WithContext(ctx).WithField("full_name", req.FullName)

	if req.EmailAddress != nil {
		existingID, err := s.FindParentByContact(ctx, req.FullName, models.ContactPropertyEmail, *req.EmailAddress)
		if err != nil {
			return nil, err
		}
		if existingID != nil {
			log.WithField("id", *existingID).Debug("Parent already registered")
			return &ParentResult{
				ID:       *existingID,
				Contacts: map[models.ContactProperty]ContactOutcome{},
			}, nil
		}
	}

	account := &models.Account{
		Kind:      models.AccountKindStandard,
		Status:    models.AccountStatusEnabled,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		FullName:  req.FullName,
		Locale:    req.Locale,
	}

	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	result := &ParentResult{
		ID:       created.ID,
		IsNew:    true,
		Contacts: map[models.ContactProperty]ContactOutcome{},
	}

	if req.EmailAddress != nil {
		outcome, err := s.attachContact(ctx, created.ID, models.ContactPropertyEmail, *req.EmailAddress, true)
		if err != nil {
			return nil, err
		}
		result.Contacts[models.ContactPropertyEmail] = outcome
		if outcome == ContactSkippedConflict {
			log.WithField("email", *req.EmailAddress).Warn("Email already bound to another account, contact not attached")
			result.Warnings = append(result.Warnings, Warning{
				Kind:   WarningContactConflict,
				Name:   req.FullName,
				Detail: fmt.Sprintf("email %s already used by another account", *req.EmailAddress),
			})
		}
	}

	if req.PhoneNumber != nil {
		outcome, err := s.attachContact(ctx, created.ID, models.ContactPropertyPhone, *req.PhoneNumber, false)
		if err != nil {
			return nil, err
		}
		result.Contacts[models.ContactPropertyPhone] = outcome
		if outcome == ContactSkippedConflict {
			log.WithField("phone", *req.PhoneNumber).Warn("Phone already bound to another account, contact not attached")
			result.Warnings = append(result.Warnings, Warning{
				Kind:   WarningContactConflict,
				Name:   req.FullName,
				Detail: fmt.Sprintf("phone %s already used by another account", *req.PhoneNumber),
			})
		}
	}

	log.WithField("id", created.ID).Info("Registered parent")
	return result, nil
}

func (s *Service) attachContact(ctx context.Context, accountID string, property models.ContactProperty, value string, primary bool) (ContactOutcome, error) {
	attached, err := s.accounts.AttachContact(ctx, &models.ContactInformation{
		AccountID: accountID,
		Property:  property,
		Value:     value,
		IsPrimary: primary,
	})
	if err != nil {
		return "", err
	}
	if !attached {
		return ContactSkippedConflict, nil
	}
	return ContactAttached, nil
}
