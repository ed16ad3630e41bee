/*
Package ingest loads daily Memrise point exports into the points journal.

PURPOSE:
  A FileSource yields dated CSV exports discovered under a folder-per-day
  hierarchy. For each new export (strictly newer than the ingest cursor),
  the loader computes each user's point delta against a merge baseline,
  derives the failure flag, and appends typed rows to the journal. The
  cursor parameter advances only after at least one file produced rows.

DELTA AND FAILURE RULES:
  - delta = totalPoints - baseline latest; null when the user has no prior
    snapshot. A null delta NEVER counts as a failure: the very first
    observation of a user is unattributable by design.
  - failure = delta != null && delta >= 0 && delta < threshold.
  - In week-totals mode the export resets every Monday, so on Mondays the
    CSV total IS the delta.

PROCESS-ONCE:
  Files are processed in ascending date order and the merge baseline is
  carried forward across files within one run, so each day's delta is
  computed against the freshest preceding total.
*/
package ingest

import (
	"context"
	"encoding/csv"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/linguedo/strike-engine/engine"
)

// DatedFile is one discovered CSV export.
type DatedFile struct {
	Date engine.Date
	Name string

	// Text returns the raw CSV contents.
	Text func() (string, error)
}

// FileSource discovers dated exports newer than a cursor, ascending by date.
type FileSource interface {
	Files(ctx context.Context, after engine.Date) ([]DatedFile, error)
}

// Loader ingests exports into the points journal.
type Loader struct {
	Source  FileSource
	Roster  *engine.Roster
	Journal *engine.PointsJournal
	Params  engine.ParameterStore

	Now func() time.Time
}

// Report summarizes one ingest run.
type Report struct {
	BatchID        string
	FilesProcessed int
	RowsIngested   int
	LastDate       engine.Date
}

// Run ingests every unprocessed export and advances the ingest cursor.
func (l *Loader) Run(ctx context.Context) (Report, error) {
	report := Report{BatchID: uuid.NewString()}

	threshold, err := engine.ParamDecimal(ctx, l.Params, engine.ParamFailureThreshold)
	if err != nil {
		return report, err
	}
	depth, err := engine.ParamInt(ctx, l.Params, engine.ParamFailureDepth)
	if err != nil {
		return report, err
	}
	totalsMode, err := l.Params.Get(ctx, engine.ParamTotalsMode)
	if err != nil {
		return report, err
	}
	weekTotals := totalsMode == engine.TotalsModeWeek

	cursor, err := engine.ParamDate(ctx, l.Params, engine.ParamIngestCursor)
	if err != nil {
		return report, err
	}

	files, err := l.Source.Files(ctx, cursor)
	if err != nil {
		return report, err
	}

	var snapshot map[string]*engine.PointSnapshot
	var newRows []engine.DailyPointRow
	var lastDate engine.Date

	for _, file := range files {
		text, err := file.Text()
		if err != nil {
			return report, err
		}

		// The baseline covers the failure-depth window before the first
		// new export and is carried forward across files within the run.
		if snapshot == nil {
			snapshot, err = engine.PointTotals(ctx, l.Roster, l.Journal, file.Date.AddDays(-depth), file.Date)
			if err != nil {
				return report, err
			}
		}

		rows := parseExport(text, file.Date, snapshot, threshold, weekTotals)
		snapshot = engine.MergePointTotals(snapshot, rows)
		newRows = append(newRows, rows...)
		lastDate = file.Date
		report.FilesProcessed++

		log.Printf("[Ingest] %s: %d rows from %s", file.Date, len(rows), file.Name)
	}

	if !lastDate.IsZero() && len(newRows) > 0 {
		if err := l.Journal.Append(ctx, newRows); err != nil {
			return report, err
		}
		if err := engine.SetParamDate(ctx, l.Params, engine.ParamIngestCursor, lastDate); err != nil {
			return report, err
		}
	}

	report.RowsIngested = len(newRows)
	report.LastDate = lastDate
	return report, nil
}

// parseExport types one CSV export. Expected columns: [ignored, username,
// totalPoints, externalId]. Malformed lines are dropped.
func parseExport(text string, date engine.Date, snapshot map[string]*engine.PointSnapshot, threshold decimal.Decimal, weekTotals bool) []engine.DailyPointRow {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil || len(records) < 2 {
		return nil
	}

	var rows []engine.DailyPointRow
	for _, record := range records[1:] {
		if len(record) < 4 {
			continue
		}
		username := record[1]
		total, err := decimal.NewFromString(strings.TrimSpace(record[2]))
		if err != nil {
			continue
		}

		var delta decimal.NullDecimal
		if weekTotals && date.Weekday() == time.Monday {
			delta = decimal.NullDecimal{Decimal: total, Valid: true}
		} else if snap, ok := snapshot[username]; ok && snap.Latest.Valid {
			delta = decimal.NullDecimal{Decimal: total.Sub(snap.Latest.Decimal), Valid: true}
		}

		failure := delta.Valid &&
			!delta.Decimal.IsNegative() &&
			delta.Decimal.LessThan(threshold)

		rows = append(rows, engine.DailyPointRow{
			Date:        date,
			Username:    username,
			TotalPoints: total,
			ExternalID:  record[3],
			Delta:       delta,
			Failure:     failure,
		})
	}
	return rows
}
