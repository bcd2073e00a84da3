package models

import "time"

const PlaceCategoryHome = "home"

// Address component kinds attached to a place at creation time.
const (
	AddressComponentFormatted = "formatted_address"
	AddressComponentGeocoded  = "geocoded_address"
)

// Place is a residence owned by one account, keyed by the exact
// geographic point supplied at registration.
type Place struct {
	ID        string    `json:"id" db:"id"`
	AccountID string    `json:"account_id" db:"account_id"`
	Category  string    `json:"category" db:"category"`
	Latitude  float64   `json:"latitude" db:"latitude"`
	Longitude float64   `json:"longitude" db:"longitude"`
	SRID      int       `json:"srid" db:"srid"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AddressComponent is one locale-tagged address rendering of a place.
type AddressComponent struct {
	ID        string    `json:"id" db:"id"`
	PlaceID   string    `json:"place_id" db:"place_id"`
	Component string    `json:"component" db:"component"`
	Value     string    `json:"value" db:"value"`
	Locale    string    `json:"locale" db:"locale"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RegisterResidenceRequest registers a home location for an account.
type RegisterResidenceRequest struct {
	AccountID        string  `json:"account_id" validate:"required"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address" validate:"required"`
	GeocodedAddress  *string `json:"geocoded_address,omitempty"`
	Locale           string  `json:"locale"`
}
