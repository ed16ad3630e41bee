/*
notify.go - NotificationSelector: weekly digest eligibility and sending

PURPOSE:
  Walks the roster in order and sends each eligible user a weekly digest.
  A user is due iff either their strikes changed during the prior week (or
  never), or they used a personal day during the prior week. Users already
  notified this week are skipped, as are users failing both conditions;
  neither consumes quota.

QUOTA:
  The mailer's remaining quota is an external budget. The FIRST failed send
  aborts the remaining run: later-eligible users stay un-notified until the
  next invocation. Users notified earlier in the same run keep their
  lastNotified stamp; nothing rolls back. Quota exhaustion is a designed
  early stop, not an error.
*/
package engine

import (
	"context"
	"time"
)

// Mailer is the external send channel with a finite quota.
type Mailer interface {
	// RemainingQuota returns how many sends are left in the budget.
	RemainingQuota(ctx context.Context) (int, error)

	// Send delivers one message. A false return without error means the
	// send was refused (quota) and the run should stop.
	Send(ctx context.Context, to, subject, body string) (bool, error)
}

// TemplateSource resolves a template blob by its configured identifier.
type TemplateSource interface {
	Template(ctx context.Context, id string) (string, error)
}

// DigestSubject is the subject line of every weekly digest.
const DigestSubject = "Linguedo weekly statistics"

// NotificationSelector decides and sends weekly digests.
type NotificationSelector struct {
	Roster    *Roster
	Allocator *VacationAllocator
	Params    ParameterStore
	Mailer    Mailer
	Templates TemplateSource

	Now func() time.Time
}

// NotifyReport summarizes one notification pass.
type NotifyReport struct {
	Enabled        bool
	Sent           int
	Skipped        int
	QuotaExhausted bool
}

func (n *NotificationSelector) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

// Run sends digests in roster order until done or the quota runs out.
func (n *NotificationSelector) Run(ctx context.Context) (NotifyReport, error) {
	var report NotifyReport

	enabled, err := ParamBool(ctx, n.Params, ParamEmailEnabled)
	if err != nil {
		return report, err
	}
	if !enabled {
		return report, nil
	}
	report.Enabled = true

	today := DateOf(n.now())

	// Prior Monday-to-Monday week, closed before the current one.
	weekEnd := today.WeekSunday().AddDays(-6)
	weekStart := weekEnd.AddDays(-7)

	limit, err := ParamInt(ctx, n.Params, ParamVacationLimit)
	if err != nil {
		return report, err
	}
	weekVacations, err := n.Allocator.Allocate(ctx, weekStart, weekEnd)
	if err != nil {
		return report, err
	}

	templateID, err := n.Params.Get(ctx, ParamEmailTemplateID)
	if err != nil {
		return report, err
	}
	template, err := n.Templates.Template(ctx, templateID)
	if err != nil {
		return report, err
	}

	users, err := n.Roster.Load(ctx)
	if err != nil {
		return report, err
	}

	for i := range users {
		user := &users[i]
		if user.Email == "" {
			continue
		}
		if !user.LastNotified.IsZero() && user.LastNotified.WeekSunday().AfterOrEqual(today.WeekSunday()) {
			continue
		}

		daysOffUsed := len(weekVacations[user.Email])
		daysOffLeft := limit - user.VacationsTaken

		strikesModified := user.LastStrikesModified.IsZero() ||
			(DateOf(user.LastStrikesModified).AfterOrEqual(weekStart) &&
				DateOf(user.LastStrikesModified).Before(weekEnd))

		if !strikesModified && daysOffUsed == 0 {
			report.Skipped++
			continue
		}

		quota, err := n.Mailer.RemainingQuota(ctx)
		if err != nil {
			return report, err
		}
		if quota < 1 {
			report.QuotaExhausted = true
			break
		}

		body := EvaluateTemplate(template, TemplateFields(user, daysOffUsed, daysOffLeft))
		sent, err := n.Mailer.Send(ctx, user.Email, DigestSubject, body)
		if err != nil {
			return report, err
		}
		if !sent {
			report.QuotaExhausted = true
			break
		}

		user.LastNotified = today
		report.Sent++
	}

	// Users notified before an early stop keep their stamp.
	if err := n.Roster.Save(ctx, users); err != nil {
		return report, err
	}
	return report, nil
}
