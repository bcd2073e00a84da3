package reconciler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/registrar"
)

type recordedLink struct {
	GuardianID string
	ChildID    string
	PlaceID    *string
}

type fakeRegistrar struct {
	children map[string]string
	parents  map[string]string
	places   map[string]string
	links    []recordedLink

	placeSeq       int
	childWarnings  []registrar.Warning
	parentWarnings []registrar.Warning
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{
		children: map[string]string{},
		parents:  map[string]string{},
		places:   map[string]string{},
	}
}

func (f *fakeRegistrar) RegisterChild(_ context.Context, req models.RegisterChildRequest) (*registrar.ChildResult, error) {
	id, ok := f.children[req.FullName]
	if !ok {
		id = "child-" + req.FullName
		f.children[req.FullName] = id
	}
	return &registrar.ChildResult{ID: id, IsNew: !ok, Warnings: f.childWarnings}, nil
}

func (f *fakeRegistrar) RegisterParent(_ context.Context, req models.RegisterParentRequest) (*registrar.ParentResult, error) {
	id, ok := f.parents[req.FullName]
	if !ok {
		id = "parent-" + req.FullName
		f.parents[req.FullName] = id
	}
	return &registrar.ParentResult{ID: id, IsNew: !ok, Warnings: f.parentWarnings}, nil
}

func (f *fakeRegistrar) RegisterResidence(_ context.Context, req models.RegisterResidenceRequest) (*registrar.ResidenceResult, error) {
	key := fmt.Sprintf("%s|%v|%v", req.AccountID, req.Latitude, req.Longitude)
	id, ok := f.places[key]
	if !ok {
		f.placeSeq++
		id = fmt.Sprintf("place-%d", f.placeSeq)
		f.places[key] = id
	}
	return &registrar.ResidenceResult{ID: id, IsNew: !ok}, nil
}

func (f *fakeRegistrar) LinkGuardianChild(_ context.Context, guardianID, childID string, placeID *string) error {
	f.links = append(f.links, recordedLink{GuardianID: guardianID, ChildID: childID, PlaceID: placeID})
	return nil
}

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func strPtr(s string) *string { return &s }

func childRow(line int, regID *string, name string) models.StagedRow {
	return models.StagedRow{
		LineNumber:     line,
		RegistrationID: regID,
		ChildFirstName: name,
		ChildLastName:  "DOE",
		ChildFullName:  name + " DOE",
		ChildDOB:       time.Date(2015, 3, 9, 0, 0, 0, 0, time.UTC),
		ChildLocale:    "fra",
	}
}

func withParent1(row models.StagedRow, name string, location *string) models.StagedRow {
	row.Parent1FirstName = strPtr(name)
	row.Parent1LastName = strPtr("DOE")
	row.Parent1FullName = strPtr(name + " DOE")
	row.Parent1Email = strPtr(name + "@example.com")
	row.Parent1HomeLocation = location
	row.Parent1FormattedAddress = strPtr("12 Rue des Lilas, Hanoi")
	return row
}

func withParent2(row models.StagedRow, name string, location *string) models.StagedRow {
	row.Parent2FirstName = strPtr(name)
	row.Parent2LastName = strPtr("DOE")
	row.Parent2FullName = strPtr(name + " DOE")
	row.Parent2Email = strPtr(name + "@example.com")
	row.Parent2HomeLocation = location
	return row
}

func TestRunFamilyContextInheritance(t *testing.T) {
	fake := newFakeRegistrar()
	engine := NewEngine(noopLogger(), fake, DefaultConfig())

	// Family one has two children; only the first row names the parent.
	// Family two starts at the next registration id.
	rows := []models.StagedRow{
		withParent1(childRow(1, strPtr("111222333"), "Alice"), "Paula", strPtr("(10.5, 106.25)")),
		childRow(2, nil, "Ben"),
		withParent1(childRow(3, strPtr("444555666"), "Cleo"), "Quinn", strPtr("(21.0, 105.8)")),
	}

	report, err := engine.Run(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Processed)

	require.Len(t, fake.links, 3)
	assert.Equal(t, "parent-Paula DOE", fake.links[0].GuardianID)
	assert.Equal(t, "child-Alice DOE", fake.links[0].ChildID)
	assert.Equal(t, "parent-Paula DOE", fake.links[1].GuardianID)
	assert.Equal(t, "child-Ben DOE", fake.links[1].ChildID)
	assert.Equal(t, "parent-Quinn DOE", fake.links[2].GuardianID)
	assert.Equal(t, "child-Cleo DOE", fake.links[2].ChildID)

	// Both of family one's children share the residence resolved on row one.
	require.NotNil(t, fake.links[0].PlaceID)
	require.NotNil(t, fake.links[1].PlaceID)
	assert.Equal(t, *fake.links[0].PlaceID, *fake.links[1].PlaceID)
	require.NotNil(t, fake.links[2].PlaceID)
	assert.NotEqual(t, *fake.links[0].PlaceID, *fake.links[2].PlaceID)
}

func TestRunSecondParentSharesResidenceWhenAbsent(t *testing.T) {
	fake := newFakeRegistrar()
	engine := NewEngine(noopLogger(), fake, DefaultConfig())

	row := withParent1(childRow(1, strPtr("111222333"), "Alice"), "Paula", strPtr("(10.5, 106.25)"))
	row = withParent2(row, "Robin", nil)

	_, err := engine.Run(context.Background(), []models.StagedRow{row})
	require.NoError(t, err)

	require.Len(t, fake.links, 2)
	require.NotNil(t, fake.links[0].PlaceID)
	require.NotNil(t, fake.links[1].PlaceID)
	assert.Equal(t, *fake.links[0].PlaceID, *fake.links[1].PlaceID)
	assert.Len(t, fake.places, 1)
}

func TestRunSecondParentSharesResidenceAtSamePoint(t *testing.T) {
	fake := newFakeRegistrar()
	engine := NewEngine(noopLogger(), fake, DefaultConfig())

	row := withParent1(childRow(1, strPtr("111222333"), "Alice"), "Paula", strPtr("(10.5, 106.25)"))
	row = withParent2(row, "Robin", strPtr("(10.5, 106.25)"))

	_, err := engine.Run(context.Background(), []models.StagedRow{row})
	require.NoError(t, err)

	require.Len(t, fake.links, 2)
	assert.Equal(t, *fake.links[0].PlaceID, *fake.links[1].PlaceID)
	assert.Len(t, fake.places, 1)
}

func TestRunSecondParentOwnResidenceAtDifferentPoint(t *testing.T) {
	fake := newFakeRegistrar()
	engine := NewEngine(noopLogger(), fake, DefaultConfig())

	row := withParent1(childRow(1, strPtr("111222333"), "Alice"), "Paula", strPtr("(10.5, 106.25)"))
	row = withParent2(row, "Robin", strPtr("(21.0, 105.8)"))

	_, err := engine.Run(context.Background(), []models.StagedRow{row})
	require.NoError(t, err)

	require.Len(t, fake.links, 2)
	assert.NotEqual(t, *fake.links[0].PlaceID, *fake.links[1].PlaceID)
	assert.Len(t, fake.places, 2)
}

func TestRunMalformedLocationSkipPolicy(t *testing.T) {
	fake := newFakeRegistrar()
	engine := NewEngine(noopLogger(), fake, DefaultConfig())

	row := withParent1(childRow(1, strPtr("111222333"), "Alice"), "Paula", strPtr("10.5;106.25"))

	report, err := engine.Run(context.Background(), []models.StagedRow{row})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.ParseFailures)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, WarningMalformedLocation, report.Warnings[0].Kind)

	// The child is still registered and linked, just without a residence.
	require.Len(t, fake.links, 1)
	assert.Nil(t, fake.links[0].PlaceID)
	assert.Empty(t, fake.places)
}

func TestRunMalformedLocationAbortPolicy(t *testing.T) {
	fake := newFakeRegistrar()
	engine := NewEngine(noopLogger(), fake, EngineConfig{OnParseError: ParseErrorAbort})

	rows := []models.StagedRow{
		withParent1(childRow(1, strPtr("111222333"), "Alice"), "Paula", strPtr("not a point")),
		childRow(2, nil, "Ben"),
	}

	report, err := engine.Run(context.Background(), rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
	assert.Equal(t, 0, report.Processed)
}

func TestRunAccumulatesRegistrarWarnings(t *testing.T) {
	fake := newFakeRegistrar()
	fake.parentWarnings = []registrar.Warning{{
		Kind:   registrar.WarningContactConflict,
		Name:   "Paula DOE",
		Detail: "email already attached elsewhere",
	}}
	engine := NewEngine(noopLogger(), fake, DefaultConfig())

	row := withParent1(childRow(1, strPtr("111222333"), "Alice"), "Paula", nil)

	report, err := engine.Run(context.Background(), []models.StagedRow{row})
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, registrar.WarningContactConflict, report.Warnings[0].Kind)
	assert.Contains(t, report.Warnings[0].Detail, "registration 111222333")
}

func TestRunRowWithoutParentLeavesChildUnlinked(t *testing.T) {
	fake := newFakeRegistrar()
	engine := NewEngine(noopLogger(), fake, DefaultConfig())

	report, err := engine.Run(context.Background(), []models.StagedRow{childRow(1, strPtr("111222333"), "Alice")})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Empty(t, fake.links)
	assert.Len(t, fake.children, 1)
}
