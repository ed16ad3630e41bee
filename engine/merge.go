/*
merge.go - TimeSeriesMerger: folding journal rows into per-user snapshots

PURPOSE:
  Maintains the running PointSnapshot per user as dated point rows arrive.
  The merge is last-write-wins by row DATE, not arrival order: an older row
  delivered late never regresses Latest, but its failure flag still counts.

IDEMPOTENCE:
  The merge itself does not deduplicate. Idempotence is a property of how
  callers seed state: each analysis window starts from a fresh
  InitPointTotals seed, so re-running a window from the journal yields the
  same snapshot. Re-feeding identical rows into accumulated state is the
  caller's mistake, not a supported mode.
*/
package engine

import "context"

// InitPointTotals seeds merge state from the roster: one empty snapshot per
// user with a username, carrying the enrollment window. Users without a
// username get no snapshot and their rows fall out as data gaps.
func InitPointTotals(users []UserRecord) map[string]*PointSnapshot {
	state := make(map[string]*PointSnapshot, len(users))
	for _, u := range users {
		if u.Username == "" {
			continue
		}
		state[u.Username] = &PointSnapshot{
			StartDate: u.StartDate,
			EndDate:   u.EndDate,
		}
	}
	return state
}

// MergePointTotals folds rows into state and returns it. Rows without a
// date, or naming a user absent from state, are dropped.
//
// Latest/Date advance only when the row date is strictly newer than the
// snapshot date (or the snapshot has none). The failure flag counts
// regardless of whether the row advanced Latest, but only when the row date
// falls inside the user's enrollment window.
func MergePointTotals(state map[string]*PointSnapshot, rows []DailyPointRow) map[string]*PointSnapshot {
	for _, row := range rows {
		if row.Date.IsZero() {
			continue
		}
		snap, ok := state[row.Username]
		if !ok {
			continue
		}

		if snap.Date.IsZero() || row.Date.After(snap.Date) {
			snap.Latest.Decimal = row.TotalPoints
			snap.Latest.Valid = true
			snap.Date = row.Date
		}

		if row.Failure && snap.enrolledOn(row.Date) {
			snap.Failures++
		}
	}
	return state
}

// PointTotals seeds fresh state from the roster and merges every journal
// row dated in [from, to). Used both as the ingest baseline and for
// retrospective weekly analysis.
func PointTotals(ctx context.Context, roster *Roster, journal *PointsJournal, from, to Date) (map[string]*PointSnapshot, error) {
	users, err := roster.Load(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := journal.RowsInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return MergePointTotals(InitPointTotals(users), rows), nil
}
