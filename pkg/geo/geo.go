// Package geo parses and compares the textual coordinate pairs supplied
// on registration rows.
package geo

import (
	"fmt"
	"regexp"
	"strconv"
)

// SRIDWGS84 is the spatial reference of every parsed point (EPSG:4326).
const SRIDWGS84 = 4326

// ParseError reports a location string that does not match the expected
// "(latitude, longitude)" pattern.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed location string: %q", e.Input)
}

var pointPattern = regexp.MustCompile(`^\s*\(\s*([+-]?\d+(?:\.\d+)?)\s*,\s*([+-]?\d+(?:\.\d+)?)\s*\)\s*$`)

// Point is a geographic coordinate in the WGS84 reference frame.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Equal reports exact value equality on both coordinates. Residence
// dedup depends on this exactness: there is intentionally no tolerance
// band, so points one ULP apart are distinct residences.
func (p Point) Equal(other Point) bool {
	return p.Latitude == other.Latitude && p.Longitude == other.Longitude
}

func (p Point) String() string {
	return fmt.Sprintf("(%s, %s)",
		strconv.FormatFloat(p.Latitude, 'f', -1, 64),
		strconv.FormatFloat(p.Longitude, 'f', -1, 64))
}

// ParsePoint parses a "(latitude, longitude)" string with optional
// whitespace and decimal numbers.
func ParsePoint(text string) (Point, error) {
	matches := pointPattern.FindStringSubmatch(text)
	if matches == nil {
		return Point{}, &ParseError{Input: text}
	}

	lat, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return Point{}, &ParseError{Input: text}
	}
	lng, err := strconv.ParseFloat(matches[2], 64)
	if err != nil {
		return Point{}, &ParseError{Input: text}
	}

	return Point{Latitude: lat, Longitude: lng}, nil
}
