package advisor

import (
	"time"

	"github.com/spendsense/spendsense/internal/model"
)

// resolveWindow converts an extracted time range into a half-open [start,
// end) date window. A nil or empty range yields nil bounds, which storage
// treats as "no time filter, aggregate all history". Missing year or month
// fields default to the current one.
func resolveWindow(tr *model.TimeRange, now time.Time) (start, end *time.Time) {
	if tr.IsEmpty() {
		return nil, nil
	}

	year := tr.Year
	if year == 0 {
		year = now.Year()
	}

	var s, e time.Time
	switch {
	case tr.Day != 0:
		month := tr.Month
		if month == 0 {
			month = int(now.Month())
		}
		s = time.Date(year, time.Month(month), tr.Day, 0, 0, 0, 0, now.Location())
		e = s.AddDate(0, 0, 1)
	case tr.Month != 0:
		s = time.Date(year, time.Month(tr.Month), 1, 0, 0, 0, 0, now.Location())
		e = s.AddDate(0, 1, 0)
	case tr.Week != 0:
		// Week 1 starts on the Monday of the week containing Jan 1.
		jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
		weekday := int(jan1.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		s = jan1.AddDate(0, 0, -(weekday-1)+(tr.Week-1)*7)
		e = s.AddDate(0, 0, 7)
	default:
		s = time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
		e = s.AddDate(1, 0, 0)
	}

	return &s, &e
}
