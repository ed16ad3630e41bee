/*
tabular.go - Storage boundary between the engine and tabular persistence

PURPOSE:
  The engine's collaborators persist data as ordered rows of typed scalars
  (date, integer, decimal, string, null). TabularStore is that contract;
  SQLite and in-memory implementations exist. Everything above this file
  operates on named record types only: each table gets a typed adapter that
  parses rows exactly once, here.

DATA GAPS:
  Rows that cannot be attributed (blank username, unparseable date) are
  silently dropped during parsing. This mirrors the ingestion sources, where
  a malformed export line is noise rather than an error.

SNAPSHOT WRITES:
  The roster is always written as a whole snapshot (WriteRows), never as a
  partial-row update. The journal is append-only.

SEE ALSO:
  - store/sqlite: production implementation
  - engine/store: in-memory implementation for tests
*/
package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TABULAR STORE - Ordered rows of typed scalars
// =============================================================================

// Row is an ordered sequence of typed scalar cells. Valid cell types are
// string, int64, decimal.Decimal, Date, time.Time, and nil.
type Row []any

// TabularStore persists named tables of rows.
type TabularStore interface {
	// ReadRows returns all rows of a table in stored order.
	ReadRows(ctx context.Context, table string) ([]Row, error)

	// AppendRows adds rows to the end of a table.
	AppendRows(ctx context.Context, table string, rows []Row) error

	// WriteRows replaces the entire table content atomically.
	WriteRows(ctx context.Context, table string, rows []Row) error
}

// Table names managed by the engine.
const (
	TableDashboard     = "dashboard"
	TablePointsJournal = "points_journal"
	TableHolidays      = "global_holidays"
	TableVacations     = "student_holidays"
)

// ParameterStore backs thresholds, cursors, and feature flags. Get returns
// "" for an unset parameter.
type ParameterStore interface {
	Get(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name, value string) error
}

// =============================================================================
// CELL COERCION - Tolerant scalar conversions
// =============================================================================

func cellString(c any) string {
	switch v := c.(type) {
	case string:
		return v
	case nil:
		return ""
	case Date:
		return v.String()
	default:
		return ""
	}
}

func cellInt(c any) int {
	switch v := c.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case decimal.Decimal:
		return int(v.IntPart())
	default:
		return 0
	}
}

func cellDate(c any) Date {
	switch v := c.(type) {
	case Date:
		return v
	case time.Time:
		return DateOf(v)
	case string:
		return ParseDate(v)
	default:
		return Date{}
	}
}

func cellTime(c any) time.Time {
	switch v := c.(type) {
	case time.Time:
		return v
	case Date:
		return v.Time
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}

func cellDecimal(c any) decimal.NullDecimal {
	switch v := c.(type) {
	case decimal.Decimal:
		return decimal.NullDecimal{Decimal: v, Valid: true}
	case int64:
		return decimal.NullDecimal{Decimal: decimal.NewFromInt(v), Valid: true}
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.NullDecimal{}
		}
		return decimal.NullDecimal{Decimal: d, Valid: true}
	default:
		return decimal.NullDecimal{}
	}
}

func dateCell(d Date) any {
	if d.IsZero() {
		return nil
	}
	return d
}

func timeCell(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullDecimalCell(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal
}

// =============================================================================
// ROSTER - Typed adapter over the dashboard table
// =============================================================================

// Roster reads and writes UserRecords over the dashboard table.
type Roster struct {
	Store TabularStore
}

// Load parses all dashboard rows. Rows without a username are kept (the
// original roster tolerates placeholder lines) but never attributed points.
func (r *Roster) Load(ctx context.Context) ([]UserRecord, error) {
	rows, err := r.Store.ReadRows(ctx, TableDashboard)
	if err != nil {
		return nil, err
	}
	users := make([]UserRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) < 14 {
			continue
		}
		users = append(users, UserRecord{
			Username:            cellString(row[0]),
			Email:               cellString(row[1]),
			FirstName:           cellString(row[2]),
			LastName:            cellString(row[3]),
			MemriseStrike:       cellInt(row[4]),
			AudioStrike:         cellInt(row[5]),
			QuizStrike:          cellInt(row[6]),
			DeductedStrikes:     cellInt(row[7]),
			DeductedManually:    cellInt(row[8]),
			StartDate:           cellDate(row[9]),
			EndDate:             cellDate(row[10]),
			VacationsTaken:      cellInt(row[11]),
			LastNotified:        cellDate(row[12]),
			LastStrikesModified: cellTime(row[13]),
		})
	}
	return users, nil
}

// Save persists the whole roster as one snapshot.
func (r *Roster) Save(ctx context.Context, users []UserRecord) error {
	rows := make([]Row, len(users))
	for i, u := range users {
		rows[i] = Row{
			u.Username,
			u.Email,
			u.FirstName,
			u.LastName,
			int64(u.MemriseStrike),
			int64(u.AudioStrike),
			int64(u.QuizStrike),
			int64(u.DeductedStrikes),
			int64(u.DeductedManually),
			dateCell(u.StartDate),
			dateCell(u.EndDate),
			int64(u.VacationsTaken),
			dateCell(u.LastNotified),
			timeCell(u.LastStrikesModified),
		}
	}
	return r.Store.WriteRows(ctx, TableDashboard, rows)
}

// =============================================================================
// POINTS JOURNAL - Typed adapter over the points_journal table
// =============================================================================

// PointsJournal reads and appends DailyPointRows. Append-only.
type PointsJournal struct {
	Store TabularStore
}

// RowsInRange returns journal rows with a date in [from, to). Rows without
// a valid date are dropped.
func (j *PointsJournal) RowsInRange(ctx context.Context, from, to Date) ([]DailyPointRow, error) {
	raw, err := j.Store.ReadRows(ctx, TablePointsJournal)
	if err != nil {
		return nil, err
	}
	var rows []DailyPointRow
	for _, row := range raw {
		if len(row) < 6 {
			continue
		}
		date := cellDate(row[0])
		if date.IsZero() || date.Before(from) || date.AfterOrEqual(to) {
			continue
		}
		total := cellDecimal(row[2])
		if !total.Valid {
			continue
		}
		rows = append(rows, DailyPointRow{
			Date:        date,
			Username:    cellString(row[1]),
			TotalPoints: total.Decimal,
			ExternalID:  cellString(row[3]),
			Delta:       cellDecimal(row[4]),
			Failure:     cellInt(row[5]) != 0,
		})
	}
	return rows, nil
}

// Append adds ingested rows to the journal.
func (j *PointsJournal) Append(ctx context.Context, rows []DailyPointRow) error {
	if len(rows) == 0 {
		return nil
	}
	raw := make([]Row, len(rows))
	for i, r := range rows {
		failure := int64(0)
		if r.Failure {
			failure = 1
		}
		raw[i] = Row{
			r.Date,
			r.Username,
			r.TotalPoints,
			r.ExternalID,
			nullDecimalCell(r.Delta),
			failure,
		}
	}
	return j.Store.AppendRows(ctx, TablePointsJournal, raw)
}

// =============================================================================
// HOLIDAY TABLE - Typed adapter over the global_holidays table
// =============================================================================

type HolidayTable struct {
	Store TabularStore
}

// Dates returns distinct holiday dates in [from, to).
func (h *HolidayTable) Dates(ctx context.Context, from, to Date) ([]Date, error) {
	if !from.Before(to) {
		return nil, nil
	}
	rows, err := h.Store.ReadRows(ctx, TableHolidays)
	if err != nil {
		return nil, err
	}
	var dates []Date
	for _, row := range rows {
		if len(row) < 1 {
			continue
		}
		d := cellDate(row[0])
		if d.IsZero() || d.Before(from) || d.AfterOrEqual(to) {
			continue
		}
		dates = append(dates, d)
	}
	return DistinctDates(dates), nil
}

// Append adds holidays to the table.
func (h *HolidayTable) Append(ctx context.Context, holidays []Holiday) error {
	rows := make([]Row, len(holidays))
	for i, hd := range holidays {
		rows[i] = Row{hd.Date, hd.Name}
	}
	return h.Store.AppendRows(ctx, TableHolidays, rows)
}

// All returns every holiday on record.
func (h *HolidayTable) All(ctx context.Context) ([]Holiday, error) {
	rows, err := h.Store.ReadRows(ctx, TableHolidays)
	if err != nil {
		return nil, err
	}
	var holidays []Holiday
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		d := cellDate(row[0])
		if d.IsZero() {
			continue
		}
		holidays = append(holidays, Holiday{Date: d, Name: cellString(row[1])})
	}
	return holidays, nil
}

// =============================================================================
// VACATION TABLE - Typed adapter over the student_holidays table
// =============================================================================

type VacationTable struct {
	Store TabularStore
}

// Entries returns all raw vacation requests. Entries without a valid start
// date are dropped.
func (v *VacationTable) Entries(ctx context.Context) ([]VacationEntry, error) {
	rows, err := v.Store.ReadRows(ctx, TableVacations)
	if err != nil {
		return nil, err
	}
	var entries []VacationEntry
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		start := cellDate(row[1])
		if start.IsZero() {
			continue
		}
		entries = append(entries, VacationEntry{
			Email: cellString(row[0]),
			Start: start,
			Days:  cellInt(row[2]),
		})
	}
	return entries, nil
}

// Append adds raw vacation requests.
func (v *VacationTable) Append(ctx context.Context, entries []VacationEntry) error {
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{e.Email, e.Start, int64(e.Days)}
	}
	return v.Store.AppendRows(ctx, TableVacations, rows)
}
