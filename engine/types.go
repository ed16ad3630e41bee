/*
Package engine implements the attendance and strike accounting core.

PURPOSE:
  This package contains the types and algorithms that reconcile daily point
  exports against attendance rules: merging dated point rows into per-user
  snapshots, allocating capped vacation days, computing weekly strike deltas,
  applying monthly strike decay, and selecting weekly notification recipients.

KEY CONCEPTS IN THIS FILE (types.go):
  - UserRecord: One roster entry per student, mutated in place by schedulers
  - PointSnapshot: Latest cumulative total + failure count for one user
  - DailyPointRow: A typed, validated row from the points journal
  - VacationEntry: A raw personal-day request before expansion and capping

DESIGN PRINCIPLES:
  1. Calendar dates only: every comparison is on Date, never wall-clock time
  2. Typed records at the boundary: raw rows are parsed once, in tabular.go
  3. Explicit injected state: no package-level caches or singletons
  4. Precision: point totals use decimal.Decimal, never float64

SEE ALSO:
  - merge.go: Folding rows into snapshots
  - strikes.go: Weekly strike computation
  - tabular.go: Row parsing at the storage boundary
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// USER RECORD - One roster row per student
// =============================================================================

// UserRecord is the per-student dashboard state. Schedulers mutate records
// in place and persist the whole roster as one snapshot afterwards; the
// engine never writes a partial row.
type UserRecord struct {
	Username  string
	Email     string
	FirstName string
	LastName  string

	// Strike counters, one per engagement channel.
	MemriseStrike int
	AudioStrike   int
	QuizStrike    int

	// Cumulative deduction counters.
	DeductedStrikes  int // by the monthly scheduler
	DeductedManually int // by an operator

	// Enrollment window. Zero Date means open-ended on that side.
	StartDate Date
	EndDate   Date

	// Personal days consumed in the current calendar month.
	VacationsTaken int

	LastNotified        Date
	LastStrikesModified time.Time
}

// TotalStrikes returns the sum of all strike categories.
func (u *UserRecord) TotalStrikes() int {
	return u.MemriseStrike + u.AudioStrike + u.QuizStrike
}

// TotalDeducted returns the sum of automatic and manual deductions.
func (u *UserRecord) TotalDeducted() int {
	return u.DeductedStrikes + u.DeductedManually
}

// EnrolledOn reports whether the student was enrolled on the given date.
// A zero StartDate or EndDate leaves that side of the window open.
func (u *UserRecord) EnrolledOn(date Date) bool {
	if !u.StartDate.IsZero() && date.Before(u.StartDate) {
		return false
	}
	if !u.EndDate.IsZero() && date.After(u.EndDate) {
		return false
	}
	return true
}

// =============================================================================
// POINT SNAPSHOT - Merge state for one user
// =============================================================================

// PointSnapshot is the latest known cumulative point total for a user and
// the number of below-threshold days observed so far in the current
// accounting window.
//
// Invariants: Date only moves forward; Failures only increases within one
// merge pass. StartDate/EndDate are copied from the roster and bound which
// row dates may count a failure.
type PointSnapshot struct {
	Date     Date                // most recent row date observed; zero = none yet
	Latest   decimal.NullDecimal // cumulative total as of Date; invalid = none yet
	Failures int

	StartDate Date
	EndDate   Date
}

func (s *PointSnapshot) enrolledOn(date Date) bool {
	if !s.StartDate.IsZero() && date.Before(s.StartDate) {
		return false
	}
	if !s.EndDate.IsZero() && date.After(s.EndDate) {
		return false
	}
	return true
}

// =============================================================================
// DAILY POINT ROW - Typed journal entry
// =============================================================================

// DailyPointRow is one ingested journal row: a user's cumulative point total
// on a date, the delta against the previous snapshot, and whether that delta
// marks a failure.
//
// Delta is invalid (null) when no prior snapshot existed for the user; such
// rows never carry a failure flag.
type DailyPointRow struct {
	Date        Date
	Username    string
	TotalPoints decimal.Decimal
	ExternalID  string
	Delta       decimal.NullDecimal
	Failure     bool
}

// =============================================================================
// VACATION ENTRY - Raw personal-day request
// =============================================================================

// VacationEntry is a raw request for Days consecutive personal days starting
// at Start. Expansion, weekend/holiday exclusion, and the monthly cap happen
// in the allocator.
type VacationEntry struct {
	Email string
	Start Date
	Days  int
}

// Holiday is one global non-working day.
type Holiday struct {
	Date Date
	Name string
}
