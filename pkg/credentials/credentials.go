// Package credentials runs the post-reconciliation pass that issues an
// initial password to parent accounts that do not have one yet.
package credentials

import (
	"context"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// PasswordStore is the account surface the pass writes through.
type PasswordStore interface {
	SetPasswordByEmail(ctx context.Context, email, password string) (int64, error)
}

// Report summarizes one password pass.
type Report struct {
	// Updated counts accounts that received a password.
	Updated int `json:"updated"`
	// Considered counts the distinct (email, registration id) pairs seen.
	Considered int `json:"considered"`
}

// Service derives initial passwords from family registration ids and
// applies them to parent accounts matched by email.
type Service struct {
	logger ectologger.Logger
	store  PasswordStore
}

// NewService creates a new credentials service
func NewService(logger ectologger.Logger, store PasswordStore) *Service {
	return &Service{
		logger: logger,
		store:  store,
	}
}

// PasswordForRegistrationID derives the initial password from a
// registration id by stripping separator characters.
func PasswordForRegistrationID(registrationID string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '.', ' ', '_':
			return -1
		}
		return r
	}, registrationID)
}

// Run walks the staged rows in line order, resolving the family
// registration id the same way the reconciler does, and sets the derived
// password on every parent account matched by email that has none.
// Accounts that already hold a password are never touched.
func (s *Service) Run(ctx context.Context, rows []models.StagedRow) (*Report, error) {
	ctx, span := tracing.StartSpan(ctx, "credentials.Service.Run")
	defer span.End()

	report := &Report{}
	seen := map[string]bool{}
	var registrationID *string

	for i := range rows {
		row := &rows[i]
		if row.RegistrationID != nil {
			registrationID = row.RegistrationID
		}
		if registrationID == nil {
			s.logger.WithContext(ctx).WithFields(map[string]any{
				"line": row.LineNumber,
			}).Warn("Row has no registration id in scope, skipping password assignment")
			continue
		}

		password := PasswordForRegistrationID(*registrationID)
		for _, email := range []*string{row.Parent1Email, row.Parent2Email} {
			if email == nil || *email == "" || seen[*email] {
				continue
			}
			seen[*email] = true
			report.Considered++

			updated, err := s.store.SetPasswordByEmail(ctx, *email, password)
			if err != nil {
				return report, err
			}
			report.Updated += int(updated)
		}
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"considered": report.Considered,
		"updated":    report.Updated,
	}).Info("Password pass complete")
	return report, nil
}
