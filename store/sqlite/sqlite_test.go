package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguedo/strike-engine/engine"
	"github.com/linguedo/strike-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRoster_RoundTripThroughSQLite(t *testing.T) {
	// GIVEN: A roster snapshot with every field populated
	// WHEN: Saved and reloaded through the typed adapter
	// THEN: All fields survive, including dates and the modification stamp

	store := newStore(t)
	ctx := context.Background()
	roster := &engine.Roster{Store: store}

	modified := time.Date(2024, time.January, 3, 17, 30, 0, 0, time.UTC)
	in := []engine.UserRecord{
		{
			Username:            "alice",
			Email:               "alice@example.com",
			FirstName:           "Alice",
			LastName:            "Martin",
			MemriseStrike:       2,
			AudioStrike:         1,
			QuizStrike:          3,
			DeductedStrikes:     4,
			DeductedManually:    1,
			StartDate:           engine.NewDate(2023, time.September, 1),
			EndDate:             engine.NewDate(2024, time.June, 30),
			VacationsTaken:      2,
			LastNotified:        engine.NewDate(2024, time.January, 1),
			LastStrikesModified: modified,
		},
		{Username: "bob"}, // zero dates must stay zero
	}
	require.NoError(t, roster.Save(ctx, in))

	out, err := roster.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[0], out[0])
	assert.True(t, out[1].StartDate.IsZero())
	assert.True(t, out[1].LastStrikesModified.IsZero())
}

func TestRoster_SaveReplacesWholeSnapshot(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	roster := &engine.Roster{Store: store}

	require.NoError(t, roster.Save(ctx, []engine.UserRecord{{Username: "alice"}, {Username: "bob"}}))
	require.NoError(t, roster.Save(ctx, []engine.UserRecord{{Username: "carol"}}))

	out, err := roster.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "carol", out[0].Username)
}

func TestPointsJournal_AppendAndRangeQuery(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	journal := &engine.PointsJournal{Store: store}

	rows := []engine.DailyPointRow{
		{
			Date:        engine.NewDate(2024, time.January, 2),
			Username:    "alice",
			TotalPoints: decimal.RequireFromString("100.5"),
			ExternalID:  "ext-1",
			Delta:       decimal.NullDecimal{}, // first observation
			Failure:     false,
		},
		{
			Date:        engine.NewDate(2024, time.January, 3),
			Username:    "alice",
			TotalPoints: decimal.RequireFromString("130.5"),
			ExternalID:  "ext-1",
			Delta:       decimal.NullDecimal{Decimal: decimal.NewFromInt(30), Valid: true},
			Failure:     true,
		},
	}
	require.NoError(t, journal.Append(ctx, rows))

	// Full range returns both; the null delta stays null.
	out, err := journal.RowsInRange(ctx, engine.NewDate(2024, time.January, 1), engine.NewDate(2024, time.January, 10))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.False(t, out[0].Delta.Valid)
	assert.True(t, out[0].TotalPoints.Equal(decimal.RequireFromString("100.5")), "totals survive as decimal text")
	require.True(t, out[1].Delta.Valid)
	assert.True(t, out[1].Delta.Decimal.Equal(decimal.NewFromInt(30)))
	assert.True(t, out[1].Failure)

	// Half-open range excludes the upper bound.
	out, err = journal.RowsInRange(ctx, engine.NewDate(2024, time.January, 2), engine.NewDate(2024, time.January, 3))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, engine.NewDate(2024, time.January, 2), out[0].Date)
}

func TestHolidaysAndVacations_RoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	holidays := &engine.HolidayTable{Store: store}
	require.NoError(t, holidays.Append(ctx, []engine.Holiday{
		{Date: engine.NewDate(2024, time.May, 1), Name: "Labour Day"},
	}))
	dates, err := holidays.Dates(ctx, engine.NewDate(2024, time.January, 1), engine.NewDate(2025, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, []engine.Date{engine.NewDate(2024, time.May, 1)}, dates)

	all, err := holidays.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Labour Day", all[0].Name)

	vacations := &engine.VacationTable{Store: store}
	require.NoError(t, vacations.Append(ctx, []engine.VacationEntry{
		{Email: "alice@example.com", Start: engine.NewDate(2024, time.March, 4), Days: 3},
	}))
	entries, err := vacations.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice@example.com", entries[0].Email)
	assert.Equal(t, 3, entries[0].Days)
}

func TestParams_UpsertSemantics(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	// Unset reads as empty, not as an error.
	v, err := store.Get(ctx, "memrise-failure-threshold")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, store.Set(ctx, "memrise-failure-threshold", "50"))
	require.NoError(t, store.Set(ctx, "memrise-failure-threshold", "60"))

	v, err = store.Get(ctx, "memrise-failure-threshold")
	require.NoError(t, err)
	assert.Equal(t, "60", v)
}

func TestUnknownTableRejected(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.ReadRows(ctx, "no_such_table")
	assert.ErrorIs(t, err, engine.ErrUnknownTable)

	err = store.AppendRows(ctx, "no_such_table", []engine.Row{{"x"}})
	assert.ErrorIs(t, err, engine.ErrUnknownTable)

	err = store.WriteRows(ctx, "no_such_table", nil)
	assert.ErrorIs(t, err, engine.ErrUnknownTable)
}
