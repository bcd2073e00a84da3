package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Nguyen", "Nguyen"},
		{"punctuation becomes space", "Jean-Pierre", "Jean Pierre"},
		{"collapses spaces", "  Van   An ", "Van An"},
		{"mixed", "O'Brien, Jr.", "O Brien Jr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.input))
		})
	}
}

func TestFormatFirstName(t *testing.T) {
	assert.Equal(t, "Jean Pierre", FormatFirstName("jean-pierre"))
	assert.Equal(t, "Émilie", FormatFirstName("émilie"))
	assert.Equal(t, "Thị Mai", FormatFirstName("thị mai"))
	// Hangul has no letter case so the name passes through unchanged.
	assert.Equal(t, "지민", FormatFirstName("지민"))
}

func TestFormatLastName(t *testing.T) {
	assert.Equal(t, "DUPONT", FormatLastName("dupont"))
	assert.Equal(t, "NGUYỄN", FormatLastName("nguyễn"))
}

func TestFormatFullName(t *testing.T) {
	assert.Equal(t, "Claire DUPONT", FormatFullName("DUPONT", "Claire", LocaleFrench))
	assert.Equal(t, "Claire DUPONT", FormatFullName("DUPONT", "Claire", LocaleEnglish))
	assert.Equal(t, "NGUYỄN Mai", FormatFullName("NGUYỄN", "Mai", LocaleVietnamese))
	assert.Equal(t, "김 지민", FormatFullName("김", "지민", LocaleKorean))
}

func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail("  Claire.Dupont@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "claire.dupont@example.com", got)

	_, err = NormalizeEmail("not-an-email")
	assert.Error(t, err)
}

func TestFormatPhoneNumber(t *testing.T) {
	got, err := FormatPhoneNumber("912345678")
	require.NoError(t, err)
	assert.Equal(t, "+84.0912345678", got)

	got, err = FormatPhoneNumber("0912345678")
	require.NoError(t, err)
	assert.Equal(t, "+84.0912345678", got)

	_, err = FormatPhoneNumber("12345")
	assert.Error(t, err)

	_, err = FormatPhoneNumber("09-1234-5678")
	assert.Error(t, err)
}
