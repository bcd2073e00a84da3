package models

import (
	"time"
)

// AccountKind distinguishes full login accounts from placeholder records
// pre-created for children who cannot sign in yet.
type AccountKind string

const (
	AccountKindStandard    AccountKind = "standard"
	AccountKindPlaceholder AccountKind = "placeholder"
)

type AccountStatus string

const (
	AccountStatusEnabled  AccountStatus = "enabled"
	AccountStatusDisabled AccountStatus = "disabled"
)

// Account represents a person, either a parent or a child.
type Account struct {
	ID         string        `json:"id" db:"id"`
	Kind       AccountKind   `json:"kind" db:"kind"`
	Status     AccountStatus `json:"status" db:"status"`
	FirstName  string        `json:"first_name" db:"first_name"`
	LastName   string        `json:"last_name" db:"last_name"`
	FullName   string        `json:"full_name" db:"full_name"`
	Locale     string        `json:"locale" db:"locale"`
	DOB        *time.Time    `json:"dob,omitempty" db:"dob"`
	GradeLevel *int          `json:"grade_level,omitempty" db:"grade_level"`
	SchoolID   *string       `json:"school_id,omitempty" db:"school_id"`

	// CanDisembarkAlone records whether the child may leave the school bus
	// without a guardian present.
	CanDisembarkAlone bool `json:"can_disembark_alone" db:"can_disembark_alone"`

	Password  *string   `json:"-" db:"password"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ContactProperty is the kind of a contact record.
type ContactProperty string

const (
	ContactPropertyEmail   ContactProperty = "EMAIL"
	ContactPropertyPhone   ContactProperty = "PHONE"
	ContactPropertyWebsite ContactProperty = "WEBSITE"
)

// ContactInformation is one contact record attached to an account.
// A given (property, value) pair is intended to belong to at most one
// account platform-wide.
type ContactInformation struct {
	ID         string          `json:"id" db:"id"`
	AccountID  string          `json:"account_id" db:"account_id"`
	Property   ContactProperty `json:"property" db:"property"`
	Value      string          `json:"value" db:"value"`
	IsPrimary  bool            `json:"is_primary" db:"is_primary"`
	IsVerified bool            `json:"is_verified" db:"is_verified"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// RegisterChildRequest carries the child fields of one staged row.
type RegisterChildRequest struct {
	FirstName  string    `json:"first_name" validate:"required"`
	LastName   string    `json:"last_name" validate:"required"`
	FullName   string    `json:"full_name" validate:"required"`
	DOB        time.Time `json:"dob" validate:"required"`
	GradeLevel *int      `json:"grade_level,omitempty"`
	Locale     string    `json:"locale"`
	SchoolID   *string   `json:"school_id,omitempty"`
}

// RegisterParentRequest carries the parent fields of one staged row.
type RegisterParentRequest struct {
	FirstName    string  `json:"first_name" validate:"required"`
	LastName     string  `json:"last_name" validate:"required"`
	FullName     string  `json:"full_name" validate:"required"`
	Locale       string  `json:"locale"`
	EmailAddress *string `json:"email_address,omitempty"`
	PhoneNumber  *string `json:"phone_number,omitempty"`
}
