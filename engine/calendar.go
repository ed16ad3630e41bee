package engine

import (
	"sort"
	"time"
)

// =============================================================================
// DATE - Calendar-day abstraction (the engine never reasons below a day)
// =============================================================================

// Date is a calendar date with time-of-day stripped. All comparisons,
// week/month arithmetic, and map keys in the engine operate on Date, never
// on raw time.Time, so a row stamped 14:30 and a cursor stamped midnight
// can never disagree about "the same day".
//
// The zero Date means "unset" (open enrollment end, no cursor yet).
type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf strips the time-of-day from t.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses the canonical YYYY-MM-DD form. Returns the zero Date on
// failure; callers that treat a blank cell as "unset" rely on this.
func ParseDate(s string) Date {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}
	}
	return DateOf(t)
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }
func (d Date) IsZero() bool                  { return d.Time.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format("2006-01-02")
}

// StartOfMonth returns the first day of d's calendar month.
func (d Date) StartOfMonth() Date {
	return d.AddDays(1 - d.Day())
}

// WeekSunday returns the Sunday that closes the Monday-to-Sunday week
// containing d. For a Sunday it returns d itself.
func (d Date) WeekSunday() Date {
	return d.AddDays(6 - (int(d.Weekday())+6)%7)
}

// MonthsBetween returns the month-number difference between two dates,
// ignoring the day component. MonthsBetween(Jan 31, Feb 1) is 1.
func MonthsBetween(from, to Date) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// =============================================================================
// DAY SETS
// =============================================================================

// Weekends returns every Saturday and Sunday in [from, to).
func Weekends(from, to Date) []Date {
	if !from.Before(to) {
		return nil
	}
	var result []Date
	for d := from; d.Before(to); d = d.AddDays(1) {
		if d.IsWeekend() {
			result = append(result, d)
		}
	}
	return result
}

// DistinctDates deduplicates and sorts dates ascending.
func DistinctDates(dates []Date) []Date {
	seen := make(map[Date]bool, len(dates))
	var result []Date
	for _, d := range dates {
		if !seen[d] {
			seen[d] = true
			result = append(result, d)
		}
	}
	sortDates(result)
	return result
}

func sortDates(dates []Date) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}

func dateSet(dates []Date) map[Date]bool {
	set := make(map[Date]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}
	return set
}
