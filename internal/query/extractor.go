package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/spendsense/spendsense/internal/model"
)

var (
	monthNames = []string{
		"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december",
	}

	yearRegex = regexp.MustCompile(`\b(20\d{2})\b`)
	weekRegex = regexp.MustCompile(`\bweek\s+(\d{1,2})\b`)
	dayRegex  = regexp.MustCompile(`\b(\d{1,2})\b`)
)

// ExtractTime pulls month/year/week/day out of a normalized query. It
// returns nil when nothing time-related was found, so callers can tell
// "no time filter" apart from an empty match.
//
// A bare 1-2 digit number is only read as a day when no month name matched;
// otherwise "march 5" would compete with the month for the digit.
func ExtractTime(normalized string) *model.TimeRange {
	tr := &model.TimeRange{}

	for i, name := range monthNames {
		if strings.Contains(normalized, name) {
			tr.Month = i + 1
			break
		}
	}

	if m := yearRegex.FindStringSubmatch(normalized); m != nil {
		year, _ := strconv.Atoi(m[1])
		tr.Year = year
	}

	if m := weekRegex.FindStringSubmatch(normalized); m != nil {
		week, _ := strconv.Atoi(m[1])
		if week >= 1 && week <= 53 {
			tr.Week = week
		}
	}

	if tr.Month == 0 {
		stripped := normalized
		if tr.Week != 0 {
			stripped = weekRegex.ReplaceAllString(stripped, " ")
		}
		if m := dayRegex.FindStringSubmatch(stripped); m != nil {
			day, _ := strconv.Atoi(m[1])
			if day >= 1 && day <= 31 {
				tr.Day = day
			}
		}
	}

	if tr.IsEmpty() {
		return nil
	}
	return tr
}

// ExtractCategory returns the first known category mentioned in the
// normalized query, or empty when none matches. Matching is literal
// substring only; there is no fuzzy matching or synonym table here.
func ExtractCategory(normalized string, categories []string) string {
	for _, category := range categories {
		if strings.Contains(normalized, category) {
			return category
		}
	}
	return ""
}
