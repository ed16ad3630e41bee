package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguedo/strike-engine/engine"
	"github.com/linguedo/strike-engine/engine/store"
)

func newDeductionFixture(t *testing.T, now time.Time, users []engine.UserRecord) (*engine.MonthlyDeductionScheduler, *engine.Roster, *store.MemoryParams) {
	t.Helper()
	mem := store.NewMemory()
	params := store.NewMemoryParams()
	roster := &engine.Roster{Store: mem}
	require.NoError(t, roster.Save(context.Background(), users))

	return &engine.MonthlyDeductionScheduler{
		Roster: roster,
		Params: params,
		Now:    func() time.Time { return now },
	}, roster, params
}

func TestDeduction_OneUnitPerPositiveCategory(t *testing.T) {
	// GIVEN: strikes {memrise:2, audio:0, quiz:1}
	// WHEN: One deduction run
	// THEN: {memrise:1, audio:0, quiz:0}, deducted total += 2

	now := time.Date(2025, time.April, 1, 8, 0, 0, 0, time.UTC)
	scheduler, roster, _ := newDeductionFixture(t, now, []engine.UserRecord{
		{Username: "alice", MemriseStrike: 2, AudioStrike: 0, QuizStrike: 1},
	})

	report, err := scheduler.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.StrikesDeducted)

	users, loadErr := roster.Load(context.Background())
	require.NoError(t, loadErr)
	assert.Equal(t, 1, users[0].MemriseStrike)
	assert.Equal(t, 0, users[0].AudioStrike)
	assert.Equal(t, 0, users[0].QuizStrike)
	assert.Equal(t, 2, users[0].DeductedStrikes)
}

func TestDeduction_RateLimitWithinSameMonth(t *testing.T) {
	// The guard compares month numbers, not elapsed days: a run on March 1
	// blocks another on March 28, but a Feb 28 run allows March 1.

	now := time.Date(2025, time.March, 28, 8, 0, 0, 0, time.UTC)
	scheduler, roster, params := newDeductionFixture(t, now, []engine.UserRecord{
		{Username: "alice", MemriseStrike: 3},
	})

	require.NoError(t, engine.SetParamDate(context.Background(), params, engine.ParamDeductionCursor, engine.NewDate(2025, time.March, 1)))

	_, err := scheduler.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrRateLimited))
	var rl *engine.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, engine.ParamDeductionCursor, rl.Param)

	users, loadErr := roster.Load(context.Background())
	require.NoError(t, loadErr)
	assert.Equal(t, 3, users[0].MemriseStrike, "guard violation must not mutate the roster")
}

func TestDeduction_PreviousMonthAllowsRun(t *testing.T) {
	now := time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)
	scheduler, _, params := newDeductionFixture(t, now, []engine.UserRecord{
		{Username: "alice", MemriseStrike: 1},
	})
	require.NoError(t, engine.SetParamDate(context.Background(), params, engine.ParamDeductionCursor, engine.NewDate(2025, time.February, 28)))

	report, err := scheduler.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.StrikesDeducted)

	cursor, err := engine.ParamDate(context.Background(), params, engine.ParamDeductionCursor)
	require.NoError(t, err)
	assert.Equal(t, engine.NewDate(2025, time.March, 1), cursor)
}

func TestDeductStrikes_ZeroCategoriesUntouched(t *testing.T) {
	u := engine.UserRecord{}
	assert.Equal(t, 0, engine.DeductStrikes(&u))
	assert.Equal(t, 0, u.DeductedStrikes)
}

func TestDeductOne_ManualDeduction(t *testing.T) {
	now := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	scheduler, roster, _ := newDeductionFixture(t, now, []engine.UserRecord{
		{Username: "alice", MemriseStrike: 2},
		{Username: "bob"},
	})

	require.NoError(t, scheduler.DeductOne(context.Background(), "alice"))

	users, err := roster.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, users[0].MemriseStrike)
	assert.Equal(t, 1, users[0].DeductedManually)
	assert.Equal(t, 0, users[0].DeductedStrikes, "manual deductions are tracked separately")

	// No strikes to forgive is a no-op, not an error.
	require.NoError(t, scheduler.DeductOne(context.Background(), "bob"))

	// Unknown users are reported.
	err = scheduler.DeductOne(context.Background(), "mallory")
	assert.True(t, errors.Is(err, engine.ErrUserNotFound))
}
