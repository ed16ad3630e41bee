package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguedo/strike-engine/engine"
	"github.com/linguedo/strike-engine/engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type notifyFixture struct {
	store    *store.Memory
	params   *store.MemoryParams
	roster   *engine.Roster
	mailer   *store.MemoryMailer
	selector *engine.NotificationSelector
}

func newNotifyFixture(t *testing.T, now time.Time, quota int) *notifyFixture {
	t.Helper()
	mem := store.NewMemory()
	params := store.NewMemoryParams()
	ctx := context.Background()
	require.NoError(t, params.Set(ctx, engine.ParamEmailEnabled, "1"))
	require.NoError(t, params.Set(ctx, engine.ParamVacationLimit, "5"))
	require.NoError(t, params.Set(ctx, engine.ParamEmailTemplateID, "digest"))

	roster := &engine.Roster{Store: mem}
	mailer := store.NewMemoryMailer(quota)

	return &notifyFixture{
		store:  mem,
		params: params,
		roster: roster,
		mailer: mailer,
		selector: &engine.NotificationSelector{
			Roster: roster,
			Allocator: &engine.VacationAllocator{
				Vacations: &engine.VacationTable{Store: mem},
				Holidays:  &engine.HolidayTable{Store: mem},
				Params:    params,
			},
			Params:    params,
			Mailer:    mailer,
			Templates: &store.MemoryTemplates{Templates: map[string]string{"digest": "Hi ${firstName}, strikes: ${totalStrikes}"}},
			Now:       func() time.Time { return now },
		},
	}
}

// =============================================================================
// NOTIFICATION TESTS
// =============================================================================

func TestNotify_QuotaAbortsMidRoster(t *testing.T) {
	// GIVEN: Run on Monday 2024-01-08, so the prior week is Jan 1 .. Jan 7.
	//   alice: strikes changed Jan 3 (in the prior week)     -> due
	//   bob:   strikes never changed                         -> due
	//   carol: strikes changed Dec 20, no personal days      -> not due
	//   dave:  strikes changed Dec 20, personal day on Jan 2 -> due
	//   erin:  already notified this week                    -> not eligible
	// WHEN: The quota only covers two sends
	// THEN: alice and bob are notified, the run aborts before dave, and
	//       quota exhaustion is reported without an error

	now := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)
	f := newNotifyFixture(t, now, 2)
	ctx := context.Background()

	inPriorWeek := time.Date(2024, time.January, 3, 17, 0, 0, 0, time.UTC)
	longAgo := time.Date(2023, time.December, 20, 17, 0, 0, 0, time.UTC)
	require.NoError(t, f.roster.Save(ctx, []engine.UserRecord{
		{Username: "alice", Email: "alice@example.com", FirstName: "Alice", LastStrikesModified: inPriorWeek},
		{Username: "bob", Email: "bob@example.com", FirstName: "Bob"},
		{Username: "carol", Email: "carol@example.com", LastStrikesModified: longAgo},
		{Username: "dave", Email: "dave@example.com", LastStrikesModified: longAgo},
		{Username: "erin", Email: "erin@example.com", LastNotified: engine.NewDate(2024, time.January, 8)},
	}))
	vacations := &engine.VacationTable{Store: f.store}
	require.NoError(t, vacations.Append(ctx, []engine.VacationEntry{
		{Email: "dave@example.com", Start: engine.NewDate(2024, time.January, 2), Days: 1},
	}))

	report, err := f.selector.Run(ctx)
	require.NoError(t, err)

	assert.True(t, report.Enabled)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Skipped)
	assert.True(t, report.QuotaExhausted)

	require.Len(t, f.mailer.Sent, 2)
	assert.Equal(t, "alice@example.com", f.mailer.Sent[0].To)
	assert.Equal(t, engine.DigestSubject, f.mailer.Sent[0].Subject)
	assert.Equal(t, "Hi Alice, strikes: 0", f.mailer.Sent[0].Body)
	assert.Equal(t, "bob@example.com", f.mailer.Sent[1].To)

	// Stamps survive the early stop; dave stays un-notified for the next run.
	users, loadErr := f.roster.Load(ctx)
	require.NoError(t, loadErr)
	today := engine.NewDate(2024, time.January, 8)
	assert.Equal(t, today, users[0].LastNotified)
	assert.Equal(t, today, users[1].LastNotified)
	assert.True(t, users[3].LastNotified.IsZero())
	assert.Equal(t, engine.NewDate(2024, time.January, 8), users[4].LastNotified)
}

func TestNotify_DisabledFlagShortCircuits(t *testing.T) {
	now := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)
	f := newNotifyFixture(t, now, 10)
	ctx := context.Background()
	require.NoError(t, f.params.Set(ctx, engine.ParamEmailEnabled, "0"))
	require.NoError(t, f.roster.Save(ctx, []engine.UserRecord{
		{Username: "alice", Email: "alice@example.com"},
	}))

	report, err := f.selector.Run(ctx)
	require.NoError(t, err)
	assert.False(t, report.Enabled)
	assert.Empty(t, f.mailer.Sent)
}

func TestNotify_PersonalDayAloneMakesUserDue(t *testing.T) {
	// dave's strikes have not moved in weeks, but a personal day used during
	// the prior week still earns a digest.

	now := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)
	f := newNotifyFixture(t, now, 10)
	ctx := context.Background()

	longAgo := time.Date(2023, time.December, 20, 17, 0, 0, 0, time.UTC)
	require.NoError(t, f.roster.Save(ctx, []engine.UserRecord{
		{Username: "dave", Email: "dave@example.com", LastStrikesModified: longAgo},
	}))
	vacations := &engine.VacationTable{Store: f.store}
	require.NoError(t, vacations.Append(ctx, []engine.VacationEntry{
		{Email: "dave@example.com", Start: engine.NewDate(2024, time.January, 2), Days: 1},
	}))

	report, err := f.selector.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	assert.False(t, report.QuotaExhausted)
}

func TestNotify_MissingEmailNeverConsumesQuota(t *testing.T) {
	now := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)
	f := newNotifyFixture(t, now, 1)
	ctx := context.Background()

	require.NoError(t, f.roster.Save(ctx, []engine.UserRecord{
		{Username: "ghost"}, // roster line without an address
		{Username: "bob", Email: "bob@example.com"},
	}))

	report, err := f.selector.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	require.Len(t, f.mailer.Sent, 1)
	assert.Equal(t, "bob@example.com", f.mailer.Sent[0].To)
}
