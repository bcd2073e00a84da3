package account

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Repository handles account and contact persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new account repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// DB exposes the underlying database handle for transactional operations.
func (r *Repository) DB() database.DB {
	return r.db
}

// Create inserts a new account
func (r *Repository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	ctx, span := tracing.StartSpan(ctx, "account.Repository.Create")
	defer span.End()

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	account.CreatedAt = time.Now().UTC()
	account.UpdatedAt = account.CreatedAt
	if account.Kind == "" {
		account.Kind = models.AccountKindStandard
	}
	if account.Status == "" {
		account.Status = models.AccountStatusEnabled
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("accounts")
	sb.Cols("id", "kind", "status", "first_name", "last_name", "full_name", "locale", "dob", "grade_level", "school_id", "can_disembark_alone", "password", "created_at", "updated_at")
	sb.Values(account.ID, account.Kind, account.Status, account.FirstName, account.LastName, account.FullName, account.Locale, account.DOB, account.GradeLevel, account.SchoolID, account.CanDisembarkAlone, account.Password, account.CreatedAt, account.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create account")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create account")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": account.ID, "kind": account.Kind}).Info("Created account")
	return account, nil
}

// Get retrieves an account by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.Account, error) {
	ctx, span := tracing.StartSpan(ctx, "account.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "kind", "status", "first_name", "last_name", "full_name", "locale", "dob", "grade_level", "school_id", "can_disembark_alone", "password", "created_at", "updated_at")
	sb.From("accounts")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("account %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get account")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get account")
	}

	return &account, nil
}

// GetByNameAndDOB finds a placeholder account by exact full name and date
// of birth. The name comparison is case sensitive on purpose: near
// duplicates are left to manual review rather than silently merged.
func (r *Repository) GetByNameAndDOB(ctx context.Context, fullName string, dob time.Time) (*models.Account, error) {
	ctx, span := tracing.StartSpan(ctx, "account.Repository.GetByNameAndDOB")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "kind", "status", "first_name", "last_name", "full_name", "locale", "dob", "grade_level", "school_id", "can_disembark_alone", "password", "created_at", "updated_at")
	sb.From("accounts")
	sb.Where(
		sb.Equal("kind", models.AccountKindPlaceholder),
		sb.Equal("full_name", fullName),
		sb.Equal("dob", dob),
	)

	query, args := sb.Build()
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no placeholder account for %s", fullName))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get account by name and dob")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get account")
	}

	return &account, nil
}

// GetByNameAndContact finds an account matching both the full name (case
// insensitive) and a contact record with the given property and value
// (value case insensitive). Requiring both prevents two different people
// who typed the same email address from being merged into one account.
func (r *Repository) GetByNameAndContact(ctx context.Context, fullName string, property models.ContactProperty, value string) (*models.Account, error) {
	ctx, span := tracing.StartSpan(ctx, "account.Repository.GetByNameAndContact")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("accounts.id", "accounts.kind", "accounts.status", "accounts.first_name", "accounts.last_name", "accounts.full_name", "accounts.locale", "accounts.dob", "accounts.grade_level", "accounts.school_id", "accounts.can_disembark_alone", "accounts.password", "accounts.created_at", "accounts.updated_at")
	sb.From("accounts")
	sb.Join("contact_information", "contact_information.account_id = accounts.id")
	sb.Where(
		fmt.Sprintf("LOWER(accounts.full_name) = LOWER(%s)", sb.Var(fullName)),
		sb.Equal("contact_information.property", string(property)),
		fmt.Sprintf("LOWER(contact_information.value) = LOWER(%s)", sb.Var(value)),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no account matching %s by %s", fullName, property))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get account by name and contact")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get account")
	}

	return &account, nil
}

// AttachContact inserts a contact record for an account. Returns false
// when the value is already bound elsewhere: the platform-wide uniqueness
// index rejects the insert and the caller decides whether that is worth a
// warning.
func (r *Repository) AttachContact(ctx context.Context, contact *models.ContactInformation) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "account.Repository.AttachContact")
	defer span.End()

	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	contact.CreatedAt = time.Now().UTC()

	sb := database.NewInsertBuilder()
	sb.InsertInto("contact_information")
	sb.Cols("id", "account_id", "property", "value", "is_primary", "is_verified", "created_at")
	sb.Values(contact.ID, contact.AccountID, contact.Property, contact.Value, contact.IsPrimary, contact.IsVerified, contact.CreatedAt)
	sb.OnConflictDoNothing()

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		// Some conflicts still surface as unique violations instead of
		// being absorbed by ON CONFLICT, e.g. expression index races.
		if strings.Contains(err.Error(), "duplicate key value") {
			return false, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to attach contact")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to attach contact")
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// SetPasswordByEmail sets the password on every account that has the given
// email contact and no password yet. Returns the number of updated rows.
func (r *Repository) SetPasswordByEmail(ctx context.Context, email, password string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "account.Repository.SetPasswordByEmail")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("accounts")
	sb.Set(
		sb.Assign("password", password),
		sb.Assign("updated_at", now),
	)
	sb.Where(
		sb.IsNull("password"),
		fmt.Sprintf("id IN (SELECT account_id FROM contact_information WHERE property = '%s' AND LOWER(value) = LOWER(%s))", models.ContactPropertyEmail, sb.Var(email)),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to set password by email")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to set password")
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}

// ListContacts retrieves all contact records for an account, primary first
func (r *Repository) ListContacts(ctx context.Context, accountID string) ([]models.ContactInformation, error) {
	ctx, span := tracing.StartSpan(ctx, "account.Repository.ListContacts")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "account_id", "property", "value", "is_primary", "is_verified", "created_at")
	sb.From("contact_information")
	sb.Where(sb.Equal("account_id", accountID))
	sb.OrderBy("is_primary DESC", "created_at ASC")

	query, args := sb.Build()
	var contacts []models.ContactInformation
	if err := r.db.SelectContext(ctx, &contacts, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list contacts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list contacts")
	}

	return contacts, nil
}
