// Package chore evaluates due-date status for recurring chores. The
// evaluation is a pure function of frequency, the last approved completion,
// and a reference "now", so read paths can compute it without touching the
// store again.
package chore

import (
	"time"

	"roomsync/internal/model"
)

type Status string

const (
	StatusDue     Status = "due"
	StatusOverdue Status = "overdue"
	StatusDone    Status = "done"
	StatusNotDue  Status = "not_due"
)

// IsDue reports whether a chore with the given frequency needs doing at now.
// Frequencies outside daily/weekly/monthly carry explicit scheduling
// (day_of_week, timing) and are never computed as due here.
func IsDue(frequency string, lastCompleted *time.Time, now time.Time) bool {
	now = now.UTC()
	switch frequency {
	case model.FrequencyDaily:
		return lastCompleted == nil || lastCompleted.UTC().Before(startOfDay(now))
	case model.FrequencyWeekly:
		return lastCompleted == nil || lastCompleted.UTC().Before(now.AddDate(0, 0, -7))
	case model.FrequencyMonthly:
		return lastCompleted == nil || lastCompleted.UTC().Before(now.AddDate(0, 0, -30))
	default:
		return false
	}
}

// ComputeStatus classifies a chore for listings. A chore that was due in a
// prior period and still has no completion counts as overdue; never-completed
// chores start at due.
func ComputeStatus(frequency string, lastCompleted *time.Time, now time.Time) Status {
	if !IsDue(frequency, lastCompleted, now) {
		if frequency == model.FrequencyDaily || frequency == model.FrequencyWeekly || frequency == model.FrequencyMonthly {
			return StatusDone
		}
		return StatusNotDue
	}
	if lastCompleted == nil {
		return StatusDue
	}

	// Due and previously completed: overdue once a full extra period has
	// elapsed since the completion that should have been followed up.
	now = now.UTC()
	last := lastCompleted.UTC()
	switch frequency {
	case model.FrequencyDaily:
		if last.Before(startOfDay(now).AddDate(0, 0, -1)) {
			return StatusOverdue
		}
	case model.FrequencyWeekly:
		if last.Before(now.AddDate(0, 0, -14)) {
			return StatusOverdue
		}
	case model.FrequencyMonthly:
		if last.Before(now.AddDate(0, 0, -60)) {
			return StatusOverdue
		}
	}
	return StatusDue
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
