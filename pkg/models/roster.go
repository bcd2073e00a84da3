package models

// RosterEntry is one child-guardian pairing of the flattened export
// roster, before derived fields are added.
type RosterEntry struct {
	ChildID          string   `json:"child_id" db:"child_id"`
	ChildFullName    string   `json:"child_full_name" db:"child_full_name"`
	ChildGradeLevel  *int     `json:"child_grade_level,omitempty" db:"child_grade_level"`
	GuardianID       string   `json:"guardian_id" db:"guardian_id"`
	GuardianFullName string   `json:"guardian_full_name" db:"guardian_full_name"`
	GuardianEmail    *string  `json:"guardian_email,omitempty" db:"guardian_email"`
	GuardianPhone    *string  `json:"guardian_phone,omitempty" db:"guardian_phone"`
	Latitude         *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude        *float64 `json:"longitude,omitempty" db:"longitude"`
	FormattedAddress *string  `json:"formatted_address,omitempty" db:"formatted_address"`
}

// RosterRow is a roster entry augmented with the derived export fields.
type RosterRow struct {
	RosterEntry
	GradeLabel string `json:"grade_label"`
	QRToken    string `json:"qr_token"`
}
