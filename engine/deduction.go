/*
deduction.go - MonthlyDeductionScheduler: periodic strike decay

PURPOSE:
  At most once per calendar month (month-number difference, not day count),
  every positive strike category loses one unit and the user's automatic
  deduction total grows by the number of categories decremented (0-3).

  DeductOne is the manual counterpart: an operator forgives a single
  Memrise strike for one user, tracked separately in DeductedManually.
*/
package engine

import (
	"context"
	"time"
)

// MonthlyDeductionScheduler applies one unit of strike decay per category.
type MonthlyDeductionScheduler struct {
	Roster *Roster
	Params ParameterStore

	Now func() time.Time
}

// DeductionReport summarizes one deduction run.
type DeductionReport struct {
	UsersProcessed  int
	StrikesDeducted int
}

func (s *MonthlyDeductionScheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run deducts one strike per positive category for every user, guarded to
// once per calendar month.
func (s *MonthlyDeductionScheduler) Run(ctx context.Context) (DeductionReport, error) {
	var report DeductionReport

	today := DateOf(s.now())

	lastRun, err := ParamDate(ctx, s.Params, ParamDeductionCursor)
	if err != nil {
		return report, err
	}
	if !lastRun.IsZero() && MonthsBetween(lastRun, today) < 1 {
		return report, &RateLimitError{
			Op:      "strike deduction",
			Window:  "month",
			Param:   ParamDeductionCursor,
			LastRun: lastRun,
		}
	}

	users, err := s.Roster.Load(ctx)
	if err != nil {
		return report, err
	}
	for i := range users {
		report.StrikesDeducted += DeductStrikes(&users[i])
		report.UsersProcessed++
	}

	if err := s.Roster.Save(ctx, users); err != nil {
		return report, err
	}
	if err := SetParamDate(ctx, s.Params, ParamDeductionCursor, today); err != nil {
		return report, err
	}
	return report, nil
}

// DeductStrikes decrements each positive strike category by one and returns
// the number of categories decremented, which is also added to the user's
// automatic deduction total.
func DeductStrikes(u *UserRecord) int {
	total := 0
	if u.MemriseStrike > 0 {
		u.MemriseStrike--
		total++
	}
	if u.AudioStrike > 0 {
		u.AudioStrike--
		total++
	}
	if u.QuizStrike > 0 {
		u.QuizStrike--
		total++
	}
	u.DeductedStrikes += total
	return total
}

// DeductOne forgives a single Memrise strike for one user and records it as
// a manual deduction. A user with no Memrise strikes is left untouched.
func (s *MonthlyDeductionScheduler) DeductOne(ctx context.Context, username string) error {
	users, err := s.Roster.Load(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].Username != username {
			continue
		}
		if users[i].MemriseStrike == 0 {
			return nil
		}
		users[i].MemriseStrike--
		users[i].DeductedManually++
		return s.Roster.Save(ctx, users)
	}
	return ErrUserNotFound
}
