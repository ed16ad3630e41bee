/*
strikes.go - WeeklyStrikeScheduler: week-by-week strike accrual

PURPOSE:
  Advances a persisted Sunday-aligned cursor one closed week at a time. For
  each week, every user with a point snapshot gets
      strikeDelta = failures - |daysOff ∪ vacationDays| - extraDaysOffPerWeek
  applied to their Memrise strike counter when positive. Deltas of zero or
  less never mutate state: strikes only accrue here.

CRASH SAFETY:
  Each week is one atomic unit: the roster snapshot is persisted, THEN the
  cursor advances. A crash between weeks leaves the cursor at the last
  fully-committed week and a re-run resumes from there. Nothing smaller
  than a week is guaranteed atomic.

RATE LIMIT:
  A run inside the current week is refused with a RateLimitError naming the
  cursor parameter. This is a hard stop; forcing a re-run is a deliberate
  operator edit of that parameter, never an automatic retry.
*/
package engine

import (
	"context"
	"time"
)

// WeeklyStrikeScheduler computes per-user strike deltas week by week.
type WeeklyStrikeScheduler struct {
	Roster    *Roster
	Journal   *PointsJournal
	Allocator *VacationAllocator
	Params    ParameterStore

	// Now is injectable for tests; nil means time.Now.
	Now func() time.Time
}

// WeeklyRunReport summarizes one scheduler invocation.
type WeeklyRunReport struct {
	WeeksProcessed int
	StrikesAdded   int
}

func (s *WeeklyStrikeScheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run advances the cursor over every unprocessed closed week up to today.
func (s *WeeklyStrikeScheduler) Run(ctx context.Context) (WeeklyRunReport, error) {
	var report WeeklyRunReport

	now := s.now()
	today := DateOf(now)

	lastRun, err := ParamDate(ctx, s.Params, ParamStrikeCursor)
	if err != nil {
		return report, err
	}

	if !lastRun.IsZero() && lastRun.AfterOrEqual(today.WeekSunday().AddDays(-7)) {
		return report, &RateLimitError{
			Op:      "strike calculation",
			Window:  "week",
			Param:   ParamStrikeCursor,
			LastRun: lastRun,
		}
	}

	// First ever run processes exactly one full closed week.
	if lastRun.IsZero() {
		lastRun = today.WeekSunday().AddDays(-14)
	} else {
		lastRun = lastRun.WeekSunday()
	}

	extraDaysOff, err := ParamInt(ctx, s.Params, ParamExtraDaysOff)
	if err != nil {
		return report, err
	}

	users, err := s.Roster.Load(ctx)
	if err != nil {
		return report, err
	}

	for lastRun.Before(today) {
		weekStart := lastRun.AddDays(1)
		weekEnd := weekStart.AddDays(7)

		added, err := s.processWeek(ctx, users, weekStart, weekEnd, extraDaysOff, now)
		if err != nil {
			return report, err
		}
		report.StrikesAdded += added
		report.WeeksProcessed++

		// Roster first, cursor second: a crash in between reprocesses only
		// the uncommitted week on resume.
		if err := s.Roster.Save(ctx, users); err != nil {
			return report, err
		}
		if err := SetParamDate(ctx, s.Params, ParamStrikeCursor, lastRun); err != nil {
			return report, err
		}

		lastRun = lastRun.AddDays(7)
	}

	return report, nil
}

func (s *WeeklyStrikeScheduler) processWeek(ctx context.Context, users []UserRecord, weekStart, weekEnd Date, extraDaysOff int, now time.Time) (int, error) {
	daysOff, err := s.Allocator.DaysOff(ctx, weekStart, weekEnd)
	if err != nil {
		return 0, err
	}
	vacations, err := s.Allocator.Allocate(ctx, weekStart, weekEnd)
	if err != nil {
		return 0, err
	}
	points, err := PointTotals(ctx, s.Roster, s.Journal, weekStart, weekEnd)
	if err != nil {
		return 0, err
	}

	added := 0
	for i := range users {
		user := &users[i]

		snap, ok := points[user.Username]
		if !ok {
			continue
		}

		userDaysOff := daysOff
		if vac := vacations[user.Email]; len(vac) > 0 {
			userDaysOff = DistinctDates(append(append([]Date{}, daysOff...), vac...))
		}

		delta := snap.Failures - len(userDaysOff) - extraDaysOff
		if delta > 0 {
			user.MemriseStrike += delta
			user.LastStrikesModified = now
			added += delta
		}
	}
	return added, nil
}
