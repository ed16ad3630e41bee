package engine

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
)

// Parameter names. These back every threshold, cursor, and feature flag the
// engine consumes; an operator edits them directly to override a cursor.
const (
	ParamFailureThreshold = "memrise-failure-threshold"
	ParamFailureDepth     = "memrise-failure-depth"
	ParamTotalsMode       = "memrise-file-totals-mode"
	ParamInputFolder      = "memrise-input-folder-id"
	ParamCSVFileName      = "memrise-file-name"
	ParamIngestCursor     = "memrise-file-last-date"
	ParamStrikeCursor     = "memrise-strike-last-date"
	ParamDeductionCursor  = "strike-deduction-last-date"
	ParamVacationLimit    = "vacation-limit-days"
	ParamExtraDaysOff     = "extra-days-off-per-week"
	ParamEmailEnabled     = "email-enabled"
	ParamEmailTemplateID  = "email-template-file-id"
)

// TotalsModeWeek marks CSV exports whose totals reset every Monday.
const TotalsModeWeek = "week"

// =============================================================================
// TYPED PARAMETER HELPERS
// =============================================================================

// ParamInt reads an integer parameter; an unset or malformed value yields 0.
func ParamInt(ctx context.Context, ps ParameterStore, name string) (int, error) {
	s, err := ps.Get(ctx, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// ParamDate reads a date parameter; unset yields the zero Date.
func ParamDate(ctx context.Context, ps ParameterStore, name string) (Date, error) {
	s, err := ps.Get(ctx, name)
	if err != nil {
		return Date{}, err
	}
	return ParseDate(s), nil
}

// ParamDecimal reads a required decimal parameter.
func ParamDecimal(ctx context.Context, ps ParameterStore, name string) (decimal.Decimal, error) {
	s, err := ps.Get(ctx, name)
	if err != nil {
		return decimal.Zero, err
	}
	if s == "" {
		return decimal.Zero, &ParamError{Name: name, Reason: "no value"}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ParamError{Name: name, Reason: "not a number"}
	}
	return d, nil
}

// ParamBool reads a flag parameter; any non-zero integer is true.
func ParamBool(ctx context.Context, ps ParameterStore, name string) (bool, error) {
	n, err := ParamInt(ctx, ps, name)
	return n != 0, err
}

// SetParamDate writes a date parameter in canonical form.
func SetParamDate(ctx context.Context, ps ParameterStore, name string, d Date) error {
	return ps.Set(ctx, name, d.String())
}
