package staging

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `registration_id,registration_time,child_first_name,child_last_name,child_dob,child_grade,child_locale,parent1_first_name,parent1_last_name,parent1_email,parent1_phone,parent1_home_location
111222333,2026-08-01T09:30:00Z,leo,nguyen,2015-03-09,CM2,fra,thi minh,nguyen,Thi.Minh@Example.COM,987654321,"(10.5, 106.25)"
,,mia,nguyen,2017-11-21,CE1,fra,,,,,
444555666,2026-08-02T10:00:00Z,june,park,2014-06-30,Sixième,kor,soo-ah,park,soo.ah@example.com,912345678,
`

func TestLoadMapsAndNormalizes(t *testing.T) {
	rows, err := Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, 1, first.LineNumber)
	require.NotNil(t, first.RegistrationID)
	assert.Equal(t, "111222333", *first.RegistrationID)
	require.NotNil(t, first.RegistrationTime)
	assert.Equal(t, time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC), first.RegistrationTime.UTC())

	assert.Equal(t, "Leo", first.ChildFirstName)
	assert.Equal(t, "NGUYEN", first.ChildLastName)
	assert.Equal(t, "Leo NGUYEN", first.ChildFullName)
	assert.Equal(t, time.Date(2015, 3, 9, 0, 0, 0, 0, time.UTC), first.ChildDOB)
	require.NotNil(t, first.ChildGradeLevel)
	assert.Equal(t, 9, *first.ChildGradeLevel)

	require.NotNil(t, first.Parent1FullName)
	assert.Equal(t, "Thi Minh NGUYEN", *first.Parent1FullName)
	require.NotNil(t, first.Parent1Email)
	assert.Equal(t, "thi.minh@example.com", *first.Parent1Email)
	require.NotNil(t, first.Parent1Phone)
	assert.Equal(t, "+84.0987654321", *first.Parent1Phone)
	require.NotNil(t, first.Parent1HomeLocation)
	assert.Equal(t, "(10.5, 106.25)", *first.Parent1HomeLocation)

	// Second child of the family inherits nothing at load time; the blank
	// registration id stays nil for the reconciler to resolve.
	second := rows[1]
	assert.Equal(t, 2, second.LineNumber)
	assert.Nil(t, second.RegistrationID)
	assert.Nil(t, second.Parent1FullName)

	// Korean names are assembled family name first.
	third := rows[2]
	assert.Equal(t, "PARK June", third.ChildFullName)
	assert.Nil(t, third.Parent2FullName)
	assert.Nil(t, third.Parent1HomeLocation)
}

func TestLoadKeepsRawRecord(t *testing.T) {
	rows, err := Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	raw := rows[0].Raw.GetValue()
	assert.Equal(t, "leo", raw["child_first_name"])
	assert.Equal(t, "Thi.Minh@Example.COM", raw["parent1_email"])
}

func TestLoadRejectsMissingColumns(t *testing.T) {
	_, err := Load(strings.NewReader("child_first_name,child_last_name\nleo,nguyen\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "child_dob")
}

func TestLoadRejectsBadDate(t *testing.T) {
	_, err := Load(strings.NewReader("child_first_name,child_last_name,child_dob\nleo,nguyen,not-a-date\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestLoadAcceptsFrenchDates(t *testing.T) {
	rows, err := Load(strings.NewReader("child_first_name,child_last_name,child_dob\nleo,nguyen,09/03/2015\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2015, 3, 9, 0, 0, 0, 0, time.UTC), rows[0].ChildDOB)
}

func TestGenerateRegistrationID(t *testing.T) {
	a := GenerateRegistrationID([]string{"beta@example.com", "alpha@example.com"})
	b := GenerateRegistrationID([]string{"alpha@example.com", "beta@example.com"})
	assert.Equal(t, a, b)
	assert.LessOrEqual(t, len(a), 9)

	c := GenerateRegistrationID([]string{"other@example.com"})
	assert.NotEqual(t, a, c)
}

func TestPrettyRegistrationID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"111222333", "111-222-333"},
		{"1222333", "001-222-333"},
		{"42", "042"},
		{"0", "000"},
	}
	for _, tt := range tests {
		got, err := PrettyRegistrationID(tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := PrettyRegistrationID("abc")
	require.Error(t, err)
}
