// Package reconciler drives the row-by-row reconciliation of staged
// registration rows into the entity store.
package reconciler

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/geo"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/registrar"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// WarningMalformedLocation is surfaced when a row's location string does
// not parse and the engine is configured to skip rather than abort.
const WarningMalformedLocation = registrar.WarningKind("malformed_location")

// ParseErrorPolicy decides what a malformed location string does to the
// run.
type ParseErrorPolicy string

const (
	// ParseErrorSkip logs a warning and processes the row without its
	// residence step.
	ParseErrorSkip ParseErrorPolicy = "skip"
	// ParseErrorAbort stops the whole run at the offending row.
	ParseErrorAbort ParseErrorPolicy = "abort"
)

// Registrar is the registration surface the engine drives.
type Registrar interface {
	RegisterChild(ctx context.Context, req models.RegisterChildRequest) (*registrar.ChildResult, error)
	RegisterParent(ctx context.Context, req models.RegisterParentRequest) (*registrar.ParentResult, error)
	RegisterResidence(ctx context.Context, req models.RegisterResidenceRequest) (*registrar.ResidenceResult, error)
	LinkGuardianChild(ctx context.Context, guardianID, childID string, placeID *string) error
}

// EngineConfig contains configuration for the reconciliation engine
type EngineConfig struct {
	OnParseError ParseErrorPolicy
}

// DefaultConfig returns the default engine configuration: malformed
// location strings are skipped with a warning.
func DefaultConfig() EngineConfig {
	return EngineConfig{
		OnParseError: ParseErrorSkip,
	}
}

// FamilyContext is the family-scoped state carried from row to row.
// Rows after the family's first one carry no registration id and inherit
// everything here; a row with a registration id starts a new family and
// resets it.
type FamilyContext struct {
	RegistrationID *string
	Parent1ID      *string
	Parent2ID      *string
	Parent1PlaceID *string
	Parent2PlaceID *string
	Parent1Point   *geo.Point
	Parent2Point   *geo.Point
}

// Reset clears all family-scoped state.
func (f *FamilyContext) Reset() {
	*f = FamilyContext{}
}

// Report is the outcome of one reconciliation run. The engine never
// fails a run over duplicates or conflicts; callers inspect Warnings for
// conditions needing manual follow-up.
type Report struct {
	Processed     int                 `json:"processed"`
	ParseFailures int                 `json:"parse_failures"`
	Warnings      []registrar.Warning `json:"warnings,omitempty"`
}

// Engine iterates staged rows in line order, groups them into family
// units, and drives the registrar for each child, parent, and residence.
type Engine struct {
	logger    ectologger.Logger
	registrar Registrar
	config    EngineConfig
}

// NewEngine creates a new reconciliation engine
func NewEngine(logger ectologger.Logger, reg Registrar, config EngineConfig) *Engine {
	return &Engine{
		logger:    logger,
		registrar: reg,
		config:    config,
	}
}

// Run processes every staged row in the given order and returns the
// per-run report. Rows must already be sorted by line number; family
// context inheritance depends on it.
func (e *Engine) Run(ctx context.Context, rows []models.StagedRow) (*Report, error) {
	ctx, span := tracing.StartSpan(ctx, "reconciler.Engine.Run")
	defer span.End()

	report := &Report{}
	fam := &FamilyContext{}

	for i := range rows {
		row := &rows[i]
		if err := e.processRow(ctx, row, fam, report); err != nil {
			return report, fmt.Errorf("row %d: %w", row.LineNumber, err)
		}
		report.Processed++
	}

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"processed":      report.Processed,
		"parse_failures": report.ParseFailures,
		"warnings":       len(report.Warnings),
	}).Info("Reconciliation run complete")
	return report, nil
}

func (e *Engine) processRow(ctx context.Context, row *models.StagedRow, fam *FamilyContext, report *Report) error {
	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"line":  row.LineNumber,
		"child": row.ChildFullName,
	})

	// A row carrying a registration id starts a new family.
	if row.RegistrationID != nil {
		fam.Reset()
		fam.RegistrationID = row.RegistrationID
	}

	child, err := e.registrar.RegisterChild(ctx, models.RegisterChildRequest{
		FirstName:  row.ChildFirstName,
		LastName:   row.ChildLastName,
		FullName:   row.ChildFullName,
		DOB:        row.ChildDOB,
		GradeLevel: row.ChildGradeLevel,
		Locale:     row.ChildLocale,
	})
	if err != nil {
		return err
	}
	e.collectWarnings(report, fam, child.Warnings)

	if err := e.processParent(ctx, row, fam, report, 1); err != nil {
		return err
	}

	if fam.Parent1ID != nil {
		if err := e.registrar.LinkGuardianChild(ctx, *fam.Parent1ID, child.ID, fam.Parent1PlaceID); err != nil {
			return err
		}
	} else {
		log.Warn("Row has no parent 1 in scope, child left unlinked")
	}

	if err := e.processParent(ctx, row, fam, report, 2); err != nil {
		return err
	}

	if fam.Parent2ID != nil {
		if err := e.registrar.LinkGuardianChild(ctx, *fam.Parent2ID, child.ID, fam.Parent2PlaceID); err != nil {
			return err
		}
	}

	return nil
}

// processParent registers the parent at position pos when the row carries
// one, then resolves that parent's residence. Rows later in a family
// leave the cached ids untouched.
func (e *Engine) processParent(ctx context.Context, row *models.StagedRow, fam *FamilyContext, report *Report, pos int) error {
	req := row.Parent(pos)
	if req == nil {
		return nil
	}

	parent, err := e.registrar.RegisterParent(ctx, *req)
	if err != nil {
		return err
	}
	e.collectWarnings(report, fam, parent.Warnings)

	parentID := parent.ID
	if pos == 1 {
		fam.Parent1ID = &parentID
	} else {
		fam.Parent2ID = &parentID
	}

	return e.resolveResidence(ctx, row, fam, report, pos, parentID)
}

func (e *Engine) resolveResidence(ctx context.Context, row *models.StagedRow, fam *FamilyContext, report *Report, pos int, parentID string) error {
	location := row.HomeLocation(pos)

	// Parent 2 without a location shares parent 1's residence.
	if location == nil || *location == "" {
		if pos == 2 {
			fam.Parent2PlaceID = fam.Parent1PlaceID
			fam.Parent2Point = fam.Parent1Point
		}
		return nil
	}

	point, err := geo.ParsePoint(*location)
	if err != nil {
		if e.config.OnParseError == ParseErrorAbort {
			return err
		}
		report.ParseFailures++
		e.collectWarnings(report, fam, []registrar.Warning{{
			Kind:   WarningMalformedLocation,
			Name:   row.ChildFullName,
			Detail: err.Error(),
		}})
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"line":   row.LineNumber,
			"parent": pos,
		}).Warn("Skipping residence step for malformed location string")
		return nil
	}

	// Parent 2 at the same point as parent 1 shares the residence rather
	// than owning a duplicate.
	if pos == 2 && fam.Parent1Point != nil && point.Equal(*fam.Parent1Point) {
		fam.Parent2PlaceID = fam.Parent1PlaceID
		fam.Parent2Point = fam.Parent1Point
		return nil
	}

	formatted := ""
	if addr := row.FormattedAddress(pos); addr != nil {
		formatted = *addr
	}
	if formatted == "" {
		// The upstream geocoder occasionally returns nothing; keep the raw
		// coordinate string so the residence still has an address row.
		formatted = *location
	}

	locale := row.ChildLocale
	if parentLocale := localeOf(row, pos); parentLocale != "" {
		locale = parentLocale
	}

	residence, err := e.registrar.RegisterResidence(ctx, models.RegisterResidenceRequest{
		AccountID:        parentID,
		Latitude:         point.Latitude,
		Longitude:        point.Longitude,
		FormattedAddress: formatted,
		GeocodedAddress:  row.GeocodedAddress(pos),
		Locale:           locale,
	})
	if err != nil {
		return err
	}

	placeID := residence.ID
	if pos == 1 {
		fam.Parent1PlaceID = &placeID
		fam.Parent1Point = &point
	} else {
		fam.Parent2PlaceID = &placeID
		fam.Parent2Point = &point
	}
	return nil
}

func (e *Engine) collectWarnings(report *Report, fam *FamilyContext, warnings []registrar.Warning) {
	for _, w := range warnings {
		if w.Detail != "" && fam.RegistrationID != nil {
			w.Detail = fmt.Sprintf("%s (registration %s)", w.Detail, *fam.RegistrationID)
		}
		report.Warnings = append(report.Warnings, w)
	}
}

func localeOf(row *models.StagedRow, pos int) string {
	if pos == 1 {
		if row.Parent1Locale != nil {
			return *row.Parent1Locale
		}
		return ""
	}
	if row.Parent2Locale != nil {
		return *row.Parent2Locale
	}
	return ""
}
