// Package registrar implements the idempotent create-or-reuse operations
// that turn registration rows into accounts, residences, and
// guardian-child links.
package registrar

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"

	"github.com/Ramsey-B/fern/pkg/geo"
	"github.com/Ramsey-B/fern/pkg/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// WarningKind classifies the non-fatal conditions a registration can hit.
type WarningKind string

const (
	// WarningDuplicateChild means the child was already registered under
	// the same natural key; the existing account was reused.
	WarningDuplicateChild WarningKind = "duplicate_child"
	// WarningContactConflict means a contact value was already bound to a
	// different account and the attachment was skipped.
	WarningContactConflict WarningKind = "contact_conflict"
)

// Warning is a non-fatal condition surfaced to the caller with enough
// context for manual follow-up.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Name   string      `json:"name"`
	Detail string      `json:"detail"`
}

// ContactOutcome is the result of one best-effort contact attachment.
type ContactOutcome string

const (
	ContactAttached        ContactOutcome = "attached"
	ContactSkippedConflict ContactOutcome = "skipped_conflict"
)

// ChildResult reports the account a child registration resolved to.
type ChildResult struct {
	ID       string
	IsNew    bool
	Warnings []Warning
}

// ParentResult reports the account a parent registration resolved to and
// the outcome of each contact attachment attempt.
type ParentResult struct {
	ID       string
	IsNew    bool
	Contacts map[models.ContactProperty]ContactOutcome
	Warnings []Warning
}

// ResidenceResult reports the residence a registration resolved to.
type ResidenceResult struct {
	ID    string
	IsNew bool
}

// AccountStore is the account persistence surface the registrar needs.
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByNameAndDOB(ctx context.Context, fullName string, dob time.Time) (*models.Account, error)
	GetByNameAndContact(ctx context.Context, fullName string, property models.ContactProperty, value string) (*models.Account, error)
	AttachContact(ctx context.Context, contact *models.ContactInformation) (bool, error)
}

// PlaceStore is the residence persistence surface the registrar needs.
type PlaceStore interface {
	GetByAccountAndPoint(ctx context.Context, accountID string, point geo.Point) (*models.Place, error)
	Create(ctx context.Context, place *models.Place, components []models.AddressComponent) (*models.Place, error)
}

// GuardianshipStore is the link persistence surface the registrar needs.
type GuardianshipStore interface {
	Get(ctx context.Context, guardianID, childID string) (*models.Guardianship, error)
	Create(ctx context.Context, link *models.Guardianship) (bool, error)
}

// Config carries the registration policy knobs.
type Config struct {
	// MinUnaccompaniedAge is the age a child must exceed (strictly) at the
	// school year start to disembark the bus unaccompanied.
	MinUnaccompaniedAge int
	// SchoolYearStart is the reference date for the age computation.
	SchoolYearStart time.Time
}

// DefaultConfig returns the default registration policy: children older
// than 12 at September 4th of the current year may disembark alone.
func DefaultConfig() Config {
	now := time.Now().UTC()
	return Config{
		MinUnaccompaniedAge: 12,
		SchoolYearStart:     time.Date(now.Year(), time.September, 4, 0, 0, 0, 0, time.UTC),
	}
}

// Service performs lookups and idempotent registrations against the
// entity store.
type Service struct {
	logger   ectologger.Logger
	accounts AccountStore
	places   PlaceStore
	links    GuardianshipStore
	config   Config
}

// NewService creates a new registrar service
func NewService(logger ectologger.Logger, accounts AccountStore, places PlaceStore, links GuardianshipStore, config Config) *Service {
	return &Service{
		logger:   logger,
		accounts: accounts,
		places:   places,
		links:    links,
		config:   config,
	}
}

// isNotFound distinguishes the designed not-found branch from real store
// failures.
func isNotFound(err error) bool {
	return httperror.IsHTTPError(err) && httperror.GetStatusCode(err) == http.StatusNotFound
}
