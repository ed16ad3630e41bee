/*
Package sqlite provides the SQLite-backed TabularStore and ParameterStore.

PURPOSE:
  Persists the five engine tables (dashboard, points_journal,
  global_holidays, student_holidays, params) and maps between typed engine
  cells and SQL columns. The engine sees only ordered rows of typed scalars;
  all SQL lives here.

WRITE SEMANTICS:
  - AppendRows: plain inserts inside one transaction (journal, holidays).
  - WriteRows: DELETE + re-insert inside one transaction. The engine
    persists the roster as a whole snapshot, so replace-all is the correct
    primitive; nothing smaller than a snapshot is guaranteed atomic anyway.

ENCODING:
  Dates are stored as YYYY-MM-DD text, timestamps as RFC 3339 text, point
  totals as decimal text (never floats), null cells as SQL NULL.

WAL MODE:
  The database is opened with WAL for better crash recovery; the engine is
  single-writer by design, so reader/writer contention is not a concern.

SEE ALSO:
  - engine/tabular.go: interface definitions and typed adapters
  - engine/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/linguedo/strike-engine/engine"
)

// Store implements engine.TabularStore and engine.ParameterStore.
type Store struct {
	db *sql.DB
}

// New opens (and migrates) the database at dbPath. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS dashboard (
		username TEXT,
		email TEXT,
		first_name TEXT,
		last_name TEXT,
		memrise_strike INTEGER NOT NULL DEFAULT 0,
		audio_strike INTEGER NOT NULL DEFAULT 0,
		quiz_strike INTEGER NOT NULL DEFAULT 0,
		deducted_strikes INTEGER NOT NULL DEFAULT 0,
		deducted_manually INTEGER NOT NULL DEFAULT 0,
		start_date TEXT,
		end_date TEXT,
		vacations_taken INTEGER NOT NULL DEFAULT 0,
		last_notified TEXT,
		last_strikes_modified TEXT
	);

	CREATE TABLE IF NOT EXISTS points_journal (
		date TEXT NOT NULL,
		username TEXT NOT NULL,
		total_points TEXT NOT NULL,
		external_id TEXT,
		delta_points TEXT,
		failure INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_journal_date ON points_journal(date);
	CREATE INDEX IF NOT EXISTS idx_journal_username ON points_journal(username);

	CREATE TABLE IF NOT EXISTS global_holidays (
		date TEXT NOT NULL,
		name TEXT
	);

	CREATE TABLE IF NOT EXISTS student_holidays (
		email TEXT NOT NULL,
		start_date TEXT NOT NULL,
		days INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS params (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TABLE METADATA - Column order and cell kinds per engine table
// =============================================================================

type cellKind int

const (
	kindText cellKind = iota
	kindInt
	kindDate
	kindTime
	kindDecimal
)

type tableSpec struct {
	columns []string
	kinds   []cellKind
}

var tableSpecs = map[string]tableSpec{
	engine.TableDashboard: {
		columns: []string{
			"username", "email", "first_name", "last_name",
			"memrise_strike", "audio_strike", "quiz_strike",
			"deducted_strikes", "deducted_manually",
			"start_date", "end_date", "vacations_taken",
			"last_notified", "last_strikes_modified",
		},
		kinds: []cellKind{
			kindText, kindText, kindText, kindText,
			kindInt, kindInt, kindInt,
			kindInt, kindInt,
			kindDate, kindDate, kindInt,
			kindDate, kindTime,
		},
	},
	engine.TablePointsJournal: {
		columns: []string{"date", "username", "total_points", "external_id", "delta_points", "failure"},
		kinds:   []cellKind{kindDate, kindText, kindDecimal, kindText, kindDecimal, kindInt},
	},
	engine.TableHolidays: {
		columns: []string{"date", "name"},
		kinds:   []cellKind{kindDate, kindText},
	},
	engine.TableVacations: {
		columns: []string{"email", "start_date", "days"},
		kinds:   []cellKind{kindText, kindDate, kindInt},
	},
}

func specFor(table string) (tableSpec, error) {
	spec, ok := tableSpecs[table]
	if !ok {
		return tableSpec{}, fmt.Errorf("%w: %s", engine.ErrUnknownTable, table)
	}
	return spec, nil
}

// =============================================================================
// TABULAR STORE
// =============================================================================

func (s *Store) ReadRows(ctx context.Context, table string) ([]engine.Row, error) {
	spec, err := specFor(table)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + strings.Join(spec.columns, ", ") + " FROM " + table + " ORDER BY rowid"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []engine.Row
	for rows.Next() {
		scanned := make([]sql.NullString, len(spec.columns))
		targets := make([]any, len(spec.columns))
		for i := range scanned {
			targets[i] = &scanned[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		row := make(engine.Row, len(spec.columns))
		for i, ns := range scanned {
			row[i] = decodeCell(ns, spec.kinds[i])
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (s *Store) AppendRows(ctx context.Context, table string, rows []engine.Row) error {
	if len(rows) == 0 {
		return nil
	}
	spec, err := specFor(table)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertRows(ctx, tx, table, spec, rows); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) WriteRows(ctx context.Context, table string, rows []engine.Row) error {
	spec, err := specFor(table)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, table, spec, rows); err != nil {
		return err
	}
	return tx.Commit()
}

func insertRows(ctx context.Context, tx *sql.Tx, table string, spec tableSpec, rows []engine.Row) error {
	query := "INSERT INTO " + table +
		" (" + strings.Join(spec.columns, ", ") + ") VALUES (" + placeholders(len(spec.columns)) + ")"
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		args := make([]any, len(spec.columns))
		for i := range spec.columns {
			var cell any
			if i < len(row) {
				cell = row[i]
			}
			args[i] = encodeCell(cell)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// PARAMETER STORE
// =============================================================================

func (s *Store) Get(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM params WHERE name = ?", name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO params (name, value) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value",
		name, value)
	return err
}

// =============================================================================
// CELL ENCODING
// =============================================================================

func encodeCell(cell any) any {
	switch v := cell.(type) {
	case nil:
		return nil
	case engine.Date:
		if v.IsZero() {
			return nil
		}
		return v.String()
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return v.Format(time.RFC3339)
	case decimal.Decimal:
		return v.String()
	case int64:
		return v
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func decodeCell(ns sql.NullString, kind cellKind) any {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	switch kind {
	case kindInt:
		d, err := decimal.NewFromString(ns.String)
		if err != nil {
			return nil
		}
		return d.IntPart()
	case kindDate:
		d := engine.ParseDate(ns.String)
		if d.IsZero() {
			return nil
		}
		return d
	case kindTime:
		t, err := time.Parse(time.RFC3339, ns.String)
		if err != nil {
			return nil
		}
		return t
	case kindDecimal:
		d, err := decimal.NewFromString(ns.String)
		if err != nil {
			return nil
		}
		return d
	default:
		return ns.String
	}
}

func placeholders(n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = "?"
	}
	return strings.Join(out, ", ")
}
