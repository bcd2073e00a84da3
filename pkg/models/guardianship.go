package models

import "time"

// GuardianRole is the legal relationship recorded on a guardian-child link.
type GuardianRole string

const GuardianRoleLegal GuardianRole = "legal"

// Guardianship links a guardian account to a child account, optionally
// recording which residence the guardian houses the child at. At most one
// link exists per (guardian, child) pair.
type Guardianship struct {
	ID         string       `json:"id" db:"id"`
	GuardianID string       `json:"guardian_id" db:"guardian_id"`
	ChildID    string       `json:"child_id" db:"child_id"`
	Role       GuardianRole `json:"role" db:"role"`
	PlaceID    *string      `json:"place_id,omitempty" db:"place_id"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
}
