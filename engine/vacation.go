/*
vacation.go - VacationAllocator: capped personal-day expansion

PURPOSE:
  Expands raw vacation requests into individual dates for a query window,
  excluding weekends and holidays, capped per user per calendar month with
  the earliest qualifying days winning.

CAP-THEN-FILTER ORDERING:
  The window is partitioned into full calendar months FIRST; the cap is
  applied on each full month's candidates, and only then is the result
  filtered back down to the queried window. A partial-month query therefore
  sees the same winners as a month-aligned one. Capping after the window
  filter would let a user's cap reset across partial-month queries.
*/
package engine

import "context"

// VacationAllocator expands and caps personal days.
type VacationAllocator struct {
	Vacations *VacationTable
	Holidays  *HolidayTable
	Params    ParameterStore
}

// DaysOff returns the deduplicated union of weekends and holidays in
// [from, to).
func (a *VacationAllocator) DaysOff(ctx context.Context, from, to Date) ([]Date, error) {
	holidays, err := a.Holidays.Dates(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return DistinctDates(append(Weekends(from, to), holidays...)), nil
}

// Allocate returns, per user email, the ordered personal days granted in
// [from, to). Only users with at least one qualifying day appear.
func (a *VacationAllocator) Allocate(ctx context.Context, from, to Date) (map[string][]Date, error) {
	if !from.Before(to) {
		return map[string][]Date{}, nil
	}

	limit, err := ParamInt(ctx, a.Params, ParamVacationLimit)
	if err != nil {
		return nil, err
	}
	entries, err := a.Vacations.Entries(ctx)
	if err != nil {
		return nil, err
	}

	// Expand and cap month by month over every month touching the window.
	merged := make(map[string][]Date)
	for cur := from.StartOfMonth(); cur.Before(to); cur = cur.AddMonths(1) {
		month, err := a.monthAllocation(ctx, entries, cur, cur.AddMonths(1), limit)
		if err != nil {
			return nil, err
		}
		for email, dates := range month {
			merged[email] = append(merged[email], dates...)
		}
	}

	// Filter back down to the queried window.
	result := make(map[string][]Date)
	for email, dates := range merged {
		var kept []Date
		for _, d := range dates {
			if d.AfterOrEqual(from) && d.Before(to) {
				kept = append(kept, d)
			}
		}
		if len(kept) > 0 {
			result[email] = kept
		}
	}
	return result, nil
}

// monthAllocation expands every request overlapping one calendar month,
// drops weekends/holidays, then caps per user at limit, earliest first.
func (a *VacationAllocator) monthAllocation(ctx context.Context, entries []VacationEntry, from, to Date, limit int) (map[string][]Date, error) {
	daysOff, err := a.DaysOff(ctx, from, to)
	if err != nil {
		return nil, err
	}
	excluded := dateSet(daysOff)

	expanded := make(map[string][]Date)
	for _, e := range entries {
		if e.Start.AfterOrEqual(to) || e.Start.AddDays(e.Days).Before(from) {
			continue
		}
		for i := 0; i < e.Days; i++ {
			d := e.Start.AddDays(i)
			if d.AfterOrEqual(from) && d.Before(to) && !excluded[d] {
				expanded[e.Email] = append(expanded[e.Email], d)
			}
		}
	}

	for email, dates := range expanded {
		dates = DistinctDates(dates)
		if len(dates) > limit {
			dates = dates[:limit]
		}
		expanded[email] = dates
	}
	return expanded, nil
}

// RefreshUsedVacations recomputes every user's VacationsTaken counter from
// the current month's allocation, counting only days strictly before today,
// and persists the roster.
func (a *VacationAllocator) RefreshUsedVacations(ctx context.Context, roster *Roster, today Date) error {
	monthStart := today.StartOfMonth()
	month, err := a.Allocate(ctx, monthStart, monthStart.AddMonths(1))
	if err != nil {
		return err
	}

	users, err := roster.Load(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		taken := 0
		for _, d := range month[users[i].Email] {
			if d.Before(today) {
				taken++
			}
		}
		users[i].VacationsTaken = taken
	}
	return roster.Save(ctx, users)
}
