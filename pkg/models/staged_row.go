package models

import (
	"time"

	"github.com/Ramsey-B/fern/pkg/database"
)

// StagedRow is one child application as collected upstream. Rows belong to
// family groups: the registration id and time are present only on the row
// of the family's first listed child, and following rows inherit them from
// the preceding row in line order.
type StagedRow struct {
	ID         string `json:"id" db:"id"`
	LineNumber int    `json:"line_number" db:"line_number"`

	RegistrationID   *string    `json:"registration_id,omitempty" db:"registration_id"`
	RegistrationTime *time.Time `json:"registration_time,omitempty" db:"registration_time"`

	ChildFirstName  string    `json:"child_first_name" db:"child_first_name"`
	ChildLastName   string    `json:"child_last_name" db:"child_last_name"`
	ChildFullName   string    `json:"child_full_name" db:"child_full_name"`
	ChildDOB        time.Time `json:"child_dob" db:"child_dob"`
	ChildGradeLevel *int      `json:"child_grade_level,omitempty" db:"child_grade_level"`
	ChildLocale     string    `json:"child_locale" db:"child_locale"`

	Parent1FirstName        *string `json:"parent1_first_name,omitempty" db:"parent1_first_name"`
	Parent1LastName         *string `json:"parent1_last_name,omitempty" db:"parent1_last_name"`
	Parent1FullName         *string `json:"parent1_full_name,omitempty" db:"parent1_full_name"`
	Parent1Locale           *string `json:"parent1_locale,omitempty" db:"parent1_locale"`
	Parent1Email            *string `json:"parent1_email,omitempty" db:"parent1_email"`
	Parent1Phone            *string `json:"parent1_phone,omitempty" db:"parent1_phone"`
	Parent1FormattedAddress *string `json:"parent1_formatted_address,omitempty" db:"parent1_formatted_address"`
	Parent1GeocodedAddress  *string `json:"parent1_geocoded_address,omitempty" db:"parent1_geocoded_address"`
	Parent1HomeLocation     *string `json:"parent1_home_location,omitempty" db:"parent1_home_location"`

	Parent2FirstName        *string `json:"parent2_first_name,omitempty" db:"parent2_first_name"`
	Parent2LastName         *string `json:"parent2_last_name,omitempty" db:"parent2_last_name"`
	Parent2FullName         *string `json:"parent2_full_name,omitempty" db:"parent2_full_name"`
	Parent2Locale           *string `json:"parent2_locale,omitempty" db:"parent2_locale"`
	Parent2Email            *string `json:"parent2_email,omitempty" db:"parent2_email"`
	Parent2Phone            *string `json:"parent2_phone,omitempty" db:"parent2_phone"`
	Parent2FormattedAddress *string `json:"parent2_formatted_address,omitempty" db:"parent2_formatted_address"`
	Parent2GeocodedAddress  *string `json:"parent2_geocoded_address,omitempty" db:"parent2_geocoded_address"`
	Parent2HomeLocation     *string `json:"parent2_home_location,omitempty" db:"parent2_home_location"`

	// Raw holds the source record as imported, before header mapping.
	Raw database.JSONB[map[string]string] `json:"raw" db:"raw"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Parent extracts the parent fields at position pos (1 or 2) as a
// registration request, or nil when the row carries no full name in that
// position.
func (r *StagedRow) Parent(pos int) *RegisterParentRequest {
	var fullName, firstName, lastName, locale, email, phone *string
	switch pos {
	case 1:
		fullName, firstName, lastName = r.Parent1FullName, r.Parent1FirstName, r.Parent1LastName
		locale, email, phone = r.Parent1Locale, r.Parent1Email, r.Parent1Phone
	case 2:
		fullName, firstName, lastName = r.Parent2FullName, r.Parent2FirstName, r.Parent2LastName
		locale, email, phone = r.Parent2Locale, r.Parent2Email, r.Parent2Phone
	default:
		return nil
	}

	if fullName == nil || *fullName == "" {
		return nil
	}

	req := &RegisterParentRequest{
		FullName:     *fullName,
		EmailAddress: email,
		PhoneNumber:  phone,
	}
	if firstName != nil {
		req.FirstName = *firstName
	}
	if lastName != nil {
		req.LastName = *lastName
	}
	if locale != nil {
		req.Locale = *locale
	}
	return req
}

// HomeLocation returns the textual coordinate pair supplied for the parent
// at position pos, if any.
func (r *StagedRow) HomeLocation(pos int) *string {
	if pos == 1 {
		return r.Parent1HomeLocation
	}
	return r.Parent2HomeLocation
}

// FormattedAddress returns the formatted address supplied for the parent
// at position pos, if any.
func (r *StagedRow) FormattedAddress(pos int) *string {
	if pos == 1 {
		return r.Parent1FormattedAddress
	}
	return r.Parent2FormattedAddress
}

// GeocodedAddress returns the geocoded address supplied for the parent at
// position pos, if any.
func (r *StagedRow) GeocodedAddress(pos int) *string {
	if pos == 1 {
		return r.Parent1GeocodedAddress
	}
	return r.Parent2GeocodedAddress
}
