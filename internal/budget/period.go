// Package budget computes the current period window for a budget and the
// derived over/under/alert status against recorded spending.
package budget

import (
	"time"

	"github.com/spendsense/spendsense/internal/model"
)

// PeriodWindow returns the half-open [start, end) range the budget's
// spending is measured against for the cycle containing now. The window is
// clamped to the budget's own start date and, when set, its end date.
func PeriodWindow(b model.Budget, now time.Time) (start, end time.Time) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch b.Period {
	case model.PeriodDaily:
		start = midnight
		end = start.AddDate(0, 0, 1)
	case model.PeriodWeekly:
		// Weeks run Monday through Monday.
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = midnight.AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)
	case model.PeriodYearly:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(1, 0, 0)
	case model.PeriodMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)
	default:
		// Unrecognized period kinds fall back to monthly.
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)
	}

	if b.StartDate.After(start) {
		start = b.StartDate
	}
	if b.EndDate != nil && b.EndDate.Before(end) {
		end = *b.EndDate
	}

	return start, end
}

// DaysRemaining returns the whole days between now and the period end,
// floored at zero once the period has passed.
func DaysRemaining(end, now time.Time) int {
	if !end.After(now) {
		return 0
	}
	return int(end.Sub(now).Hours() / 24)
}
