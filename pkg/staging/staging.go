// Package staging loads normalized registration rows from CSV into the
// staging store shape and derives family registration ids.
package staging

import (
	"crypto/md5"
	"encoding/csv"
	"fmt"
	"io"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/grades"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/names"
)

// registrationIDDigits is the number of decimal digits in a derived
// registration id.
const registrationIDDigits = 9

var dobLayouts = []string{"2006-01-02", "02/01/2006"}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "02/01/2006 15:04:05"}

// Load reads one staged CSV document. The first record is the header; the
// remaining records become staged rows numbered from 1 in file order.
// Names, emails, and phone numbers are normalized on the way in, and
// grade labels are resolved to levels.
func Load(r io.Reader) ([]models.StagedRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV header")
	}
	index := map[string]int{}
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"child_first_name", "child_last_name", "child_dob"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("CSV is missing required column %q", required)
		}
	}

	var rows []models.StagedRow
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read CSV record %d", line+1)
		}
		line++

		row, err := buildRow(header, index, record, line)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", line)
		}
		rows = append(rows, *row)
	}
	return rows, nil
}

func buildRow(header []string, index map[string]int, record []string, line int) (*models.StagedRow, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	optional := func(name string) *string {
		v := field(name)
		if v == "" {
			return nil
		}
		return &v
	}

	locale := field("child_locale")
	if locale == "" {
		locale = "fra"
	}

	dob, err := parseDate(field("child_dob"))
	if err != nil {
		return nil, err
	}

	firstName := names.FormatFirstName(names.NormalizeName(field("child_first_name")))
	lastName := names.FormatLastName(names.NormalizeName(field("child_last_name")))

	row := &models.StagedRow{
		LineNumber:     line,
		RegistrationID: optional("registration_id"),
		ChildFirstName: firstName,
		ChildLastName:  lastName,
		ChildFullName:  names.FormatFullName(lastName, firstName, locale),
		ChildDOB:       dob,
		ChildLocale:    locale,
	}

	if v := field("registration_time"); v != "" {
		ts, err := parseTime(v)
		if err != nil {
			return nil, err
		}
		row.RegistrationTime = &ts
	}

	if v := field("child_grade"); v != "" {
		level, err := parseGrade(v)
		if err != nil {
			return nil, err
		}
		row.ChildGradeLevel = &level
	}

	if err := buildParent(row, field, optional, 1); err != nil {
		return nil, err
	}
	if err := buildParent(row, field, optional, 2); err != nil {
		return nil, err
	}

	raw := map[string]string{}
	for i, name := range header {
		if i < len(record) {
			raw[strings.ToLower(strings.TrimSpace(name))] = record[i]
		}
	}
	row.Raw = database.JSONB[map[string]string]{Data: raw}

	return row, nil
}

func buildParent(row *models.StagedRow, field func(string) string, optional func(string) *string, pos int) error {
	prefix := fmt.Sprintf("parent%d_", pos)

	first := field(prefix + "first_name")
	last := field(prefix + "last_name")
	if first == "" && last == "" {
		return nil
	}

	locale := field(prefix + "locale")
	if locale == "" {
		locale = row.ChildLocale
	}

	firstName := names.FormatFirstName(names.NormalizeName(first))
	lastName := names.FormatLastName(names.NormalizeName(last))
	fullName := names.FormatFullName(lastName, firstName, locale)

	var email *string
	if v := field(prefix + "email"); v != "" {
		normalized, err := names.NormalizeEmail(v)
		if err != nil {
			return errors.Wrapf(err, "parent %d", pos)
		}
		email = &normalized
	}

	var phone *string
	if v := field(prefix + "phone"); v != "" {
		formatted, err := names.FormatPhoneNumber(v)
		if err != nil {
			return errors.Wrapf(err, "parent %d", pos)
		}
		phone = &formatted
	}

	if pos == 1 {
		row.Parent1FirstName = &firstName
		row.Parent1LastName = &lastName
		row.Parent1FullName = &fullName
		row.Parent1Locale = &locale
		row.Parent1Email = email
		row.Parent1Phone = phone
		row.Parent1FormattedAddress = optional(prefix + "formatted_address")
		row.Parent1GeocodedAddress = optional(prefix + "geocoded_address")
		row.Parent1HomeLocation = optional(prefix + "home_location")
	} else {
		row.Parent2FirstName = &firstName
		row.Parent2LastName = &lastName
		row.Parent2FullName = &fullName
		row.Parent2Locale = &locale
		row.Parent2Email = email
		row.Parent2Phone = phone
		row.Parent2FormattedAddress = optional(prefix + "formatted_address")
		row.Parent2GeocodedAddress = optional(prefix + "geocoded_address")
		row.Parent2HomeLocation = optional(prefix + "home_location")
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func parseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// parseGrade accepts either a numeric level or a grade label.
func parseGrade(value string) (int, error) {
	if level, err := strconv.Atoi(value); err == nil {
		return level, nil
	}
	return grades.LevelForLabel(value)
}

// GenerateRegistrationID derives the decimal registration id of a family
// from its parents' email addresses. The derivation is order-insensitive
// so re-collecting the same family yields the same id.
func GenerateRegistrationID(parentEmails []string) string {
	sorted := make([]string, len(parentEmails))
	copy(sorted, parentEmails)
	sort.Strings(sorted)

	sum := md5.Sum([]byte(strings.Join(sorted, ", ")))
	n := new(big.Int).SetBytes(sum[:])
	n.Mod(n, new(big.Int).Exp(big.NewInt(10), big.NewInt(registrationIDDigits), nil))
	return n.String()
}

// PrettyRegistrationID renders a registration id in dash-separated groups
// of three digits, for humans.
func PrettyRegistrationID(id string) (string, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return "", errors.Wrapf(err, "invalid registration id %q", id)
	}

	var segments []string
	for n > 0 {
		segments = append(segments, fmt.Sprintf("%03d", n%1000))
		n /= 1000
	}
	if len(segments) == 0 {
		segments = append(segments, "000")
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, "-"), nil
}
