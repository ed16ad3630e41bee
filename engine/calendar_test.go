package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linguedo/strike-engine/engine"
)

func TestWeekSunday_ReturnsClosingSundayOfWeek(t *testing.T) {
	// Monday through Sunday of the same week all map to that week's Sunday.
	sunday := engine.NewDate(2024, time.January, 7)
	for i := 1; i <= 7; i++ {
		d := engine.NewDate(2024, time.January, i)
		assert.Equal(t, sunday, d.WeekSunday(), "day %d", i)
	}

	// A Sunday maps to itself.
	assert.Equal(t, sunday, sunday.WeekSunday())

	// The next Monday starts a new week.
	assert.Equal(t, engine.NewDate(2024, time.January, 14), engine.NewDate(2024, time.January, 8).WeekSunday())
}

func TestMonthsBetween_IgnoresDayComponent(t *testing.T) {
	assert.Equal(t, 0, engine.MonthsBetween(engine.NewDate(2024, time.March, 1), engine.NewDate(2024, time.March, 31)))
	assert.Equal(t, 1, engine.MonthsBetween(engine.NewDate(2024, time.March, 31), engine.NewDate(2024, time.April, 1)))
	assert.Equal(t, 12, engine.MonthsBetween(engine.NewDate(2024, time.March, 15), engine.NewDate(2025, time.March, 15)))
	assert.Equal(t, -1, engine.MonthsBetween(engine.NewDate(2024, time.March, 1), engine.NewDate(2024, time.February, 28)))
}

func TestWeekends_HalfOpenRange(t *testing.T) {
	// [Mon Jan 1, Mon Jan 8) contains exactly Sat Jan 6 and Sun Jan 7.
	weekends := engine.Weekends(engine.NewDate(2024, time.January, 1), engine.NewDate(2024, time.January, 8))
	assert.Equal(t, []engine.Date{
		engine.NewDate(2024, time.January, 6),
		engine.NewDate(2024, time.January, 7),
	}, weekends)

	// Empty and inverted ranges yield nothing.
	assert.Empty(t, engine.Weekends(engine.NewDate(2024, time.January, 8), engine.NewDate(2024, time.January, 8)))
	assert.Empty(t, engine.Weekends(engine.NewDate(2024, time.January, 8), engine.NewDate(2024, time.January, 1)))
}

func TestDistinctDates_DeduplicatesAndSorts(t *testing.T) {
	d1 := engine.NewDate(2024, time.March, 10)
	d2 := engine.NewDate(2024, time.March, 5)
	d3 := engine.NewDate(2024, time.March, 20)

	out := engine.DistinctDates([]engine.Date{d1, d2, d1, d3, d2})
	assert.Equal(t, []engine.Date{d2, d1, d3}, out)
}

func TestStartOfMonth(t *testing.T) {
	assert.Equal(t, engine.NewDate(2024, time.February, 1), engine.NewDate(2024, time.February, 29).StartOfMonth())
	assert.Equal(t, engine.NewDate(2024, time.February, 1), engine.NewDate(2024, time.February, 1).StartOfMonth())
}

func TestParseDate(t *testing.T) {
	assert.Equal(t, engine.NewDate(2024, time.June, 3), engine.ParseDate("2024-06-03"))
	assert.True(t, engine.ParseDate("").IsZero())
	assert.True(t, engine.ParseDate("03-06-2024").IsZero())
}

func TestDateOf_StripsTimeOfDay(t *testing.T) {
	stamp := time.Date(2024, time.June, 3, 14, 30, 12, 999, time.UTC)
	assert.Equal(t, engine.NewDate(2024, time.June, 3), engine.DateOf(stamp))
}
