package model

import "time"

// Execution statuses carried by an AIResponse.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// AIResponse is the uniform envelope every query handler returns. Failures
// travel in the same shape with ExecutionStatus set to "failed"; handlers
// never surface raw errors across the core boundary.
type AIResponse struct {
	Response        string         `json:"response"`
	Data            map[string]any `json:"data,omitempty"`
	Confidence      *float64       `json:"confidence,omitempty"`
	Suggestions     []string       `json:"suggestions,omitempty"`
	NextAction      string         `json:"next_action,omitempty"`
	ExecutionStatus string         `json:"execution_status"`
	Timestamp       time.Time      `json:"timestamp"`
}

// Succeeded reports whether the response carries a successful result.
func (r *AIResponse) Succeeded() bool {
	return r.ExecutionStatus == StatusSuccess
}
