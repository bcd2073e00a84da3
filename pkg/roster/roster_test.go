package roster

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

type fakeRosterStore struct {
	entries []models.RosterEntry
}

func (f *fakeRosterStore) List(_ context.Context) ([]models.RosterEntry, error) {
	return f.entries, nil
}

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func intPtr(i int) *int           { return &i }
func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestQRToken(t *testing.T) {
	assert.Equal(t, "A1B2C3D4E5F6", QRToken("a1b2-c3d4-e5f6"))
}

func TestExportDerivesFields(t *testing.T) {
	store := &fakeRosterStore{entries: []models.RosterEntry{
		{
			ChildID:          "11111111-aaaa",
			ChildFullName:    "Alice DOE",
			ChildGradeLevel:  intPtr(9),
			GuardianID:       "22222222-bbbb",
			GuardianFullName: "Paula DOE",
			GuardianEmail:    strPtr("paula@example.com"),
			Latitude:         floatPtr(10.5),
			Longitude:        floatPtr(106.25),
			FormattedAddress: strPtr("12 Rue des Lilas"),
		},
		{
			ChildID:          "33333333-cccc",
			ChildFullName:    "Ben DOE",
			GuardianID:       "22222222-bbbb",
			GuardianFullName: "Paula DOE",
		},
	}}
	svc := NewService(noopLogger(), store)

	rows, err := svc.Export(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "CM2", rows[0].GradeLabel)
	assert.Equal(t, "11111111AAAA", rows[0].QRToken)

	// No grade level on the second child leaves the label blank.
	assert.Equal(t, "", rows[1].GradeLabel)
	assert.Equal(t, "33333333CCCC", rows[1].QRToken)
}

func TestExportUnknownGradeLevel(t *testing.T) {
	store := &fakeRosterStore{entries: []models.RosterEntry{
		{ChildID: "x", ChildFullName: "Alice DOE", ChildGradeLevel: intPtr(99), GuardianFullName: "Paula DOE"},
	}}
	svc := NewService(noopLogger(), store)

	rows, err := svc.Export(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].GradeLabel)
}

func TestWriteCSV(t *testing.T) {
	rows := []models.RosterRow{
		{
			RosterEntry: models.RosterEntry{
				ChildFullName:    "Alice DOE",
				GuardianFullName: "Paula DOE",
				GuardianEmail:    strPtr("paula@example.com"),
				Latitude:         floatPtr(10.5),
				Longitude:        floatPtr(106.25),
			},
			GradeLabel: "CM2",
			QRToken:    "11111111AAAA",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{
		"Alice DOE", "CM2", "Paula DOE", "paula@example.com", "", "", "10.5", "106.25", "11111111AAAA",
	}, records[1])
}
