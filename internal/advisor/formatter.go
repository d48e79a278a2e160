package advisor

import (
	"fmt"
	"time"

	"github.com/spendsense/spendsense/internal/model"
)

// successResponse wraps handler output in the standard envelope.
func successResponse(text string, data map[string]any) model.AIResponse {
	return model.AIResponse{
		Response:        text,
		Data:            data,
		ExecutionStatus: model.StatusSuccess,
		Timestamp:       time.Now().UTC(),
	}
}

// failureResponse builds a failed envelope carrying a human-readable reason.
func failureResponse(text string) model.AIResponse {
	return model.AIResponse{
		Response:        text,
		ExecutionStatus: model.StatusFailed,
		Timestamp:       time.Now().UTC(),
	}
}

// formatAmount renders a money value the way responses show it.
func formatAmount(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// monthLabel renders "March 2024" style labels.
func monthLabel(month, year int) string {
	return fmt.Sprintf("%s %d", time.Month(month).String(), year)
}

// windowLabel describes the extracted time range for response text. An
// absent range reads as all recorded history.
func windowLabel(tr *model.TimeRange, now time.Time) string {
	if tr.IsEmpty() {
		return "across all recorded history"
	}

	year := tr.Year
	if year == 0 {
		year = now.Year()
	}

	switch {
	case tr.Day != 0:
		month := tr.Month
		if month == 0 {
			month = int(now.Month())
		}
		return fmt.Sprintf("on %s %d, %d", time.Month(month).String(), tr.Day, year)
	case tr.Month != 0:
		return "in " + monthLabel(tr.Month, year)
	case tr.Week != 0:
		return fmt.Sprintf("in week %d of %d", tr.Week, year)
	default:
		return fmt.Sprintf("in %d", year)
	}
}
