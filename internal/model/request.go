package model

import (
	"errors"
	"strings"
)

// ErrEmptyQuery rejects requests with no query text.
var ErrEmptyQuery = errors.New("query must not be empty")

// AIRequest is the inbound envelope for the natural-language query
// endpoint. Filters carry structured values the query text cannot, such as
// the month pair for a comparison.
type AIRequest struct {
	UserID  int64          `json:"user_id"`
	Query   string         `json:"query"`
	Filters map[string]any `json:"filters,omitempty"`
}

// Validate reports whether the request can be processed.
func (r *AIRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrEmptyQuery
	}
	return nil
}
