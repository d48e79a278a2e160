package model

// Intent enumerates the kinds of question the query pipeline can answer.
type Intent string

// Supported intents. The classifier's rule ordering, not this list, decides
// which intent wins when keyword sets overlap.
const (
	IntentMonthlyTotal         Intent = "monthly_total"
	IntentCategoryBreakdown    Intent = "category_breakdown"
	IntentSpendingTrend        Intent = "spending_trend"
	IntentHighestSpendCategory Intent = "highest_spend_category"
	IntentCompareMonths        Intent = "compare_months"
	IntentForecast             Intent = "forecast"
	IntentDetectAnomalies      Intent = "detect_anomalies"
	IntentBudgetSuggestions    Intent = "budget_suggestions"
	IntentHighestExpense       Intent = "highest_expense"
	IntentBudgetCheck          Intent = "budget_check"
	IntentSuggestBudget        Intent = "suggest_budget"
	IntentAdvice               Intent = "advice"
)

// QueryType is a secondary classification used for response shaping,
// independent of the intent.
type QueryType string

// Supported query types.
const (
	QueryTypeSummary  QueryType = "summary"
	QueryTypeAdvice   QueryType = "advice"
	QueryTypeForecast QueryType = "forecast"
)

// TimeRange holds whichever time fields were extracted from a query. A zero
// field means the field was not present in the text. A nil *TimeRange means
// no time information was found at all, which handlers must treat as "no
// time filter".
type TimeRange struct {
	Month int `json:"month,omitempty"`
	Year  int `json:"year,omitempty"`
	Week  int `json:"week,omitempty"`
	Day   int `json:"day,omitempty"`
}

// IsEmpty reports whether no time fields were extracted.
func (t *TimeRange) IsEmpty() bool {
	return t == nil || (t.Month == 0 && t.Year == 0 && t.Week == 0 && t.Day == 0)
}

// ParsedIntent is the structured form of a natural-language query. It is
// constructed fresh for each request and never persisted.
type ParsedIntent struct {
	Intent    Intent         `json:"intent"`
	Time      *TimeRange     `json:"time,omitempty"`
	Category  string         `json:"category,omitempty"`
	Filters   map[string]any `json:"filters,omitempty"`
	RawQuery  string         `json:"raw_query"`
	QueryType QueryType      `json:"query_type"`
}
