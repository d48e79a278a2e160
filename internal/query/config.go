// Package query turns a user's natural-language question into a structured
// intent. It does not touch the database, build responses, or know anything
// about users; it only decides what is being asked and pulls out useful
// pieces like time and category.
package query

import "github.com/spendsense/spendsense/internal/model"

// IntentRule maps trigger phrases to an intent. A rule matches when any of
// its phrases appears as a substring of the normalized query.
type IntentRule struct {
	Intent   model.Intent
	Keywords []string
}

// QueryTypeRule maps trigger phrases to a query type.
type QueryTypeRule struct {
	Type     model.QueryType
	Keywords []string
}

// Config carries the classifier and extractor vocabularies. Rules are
// evaluated in slice order with first-match-wins semantics; that ordering is
// a contract, because several keyword sets overlap (a query containing both
// "forecast" and "breakdown" must resolve to the breakdown rule, which
// comes first).
type Config struct {
	IntentRules     []IntentRule
	QueryTypeRules  []QueryTypeRule
	KnownCategories []string
	DefaultIntent   model.Intent
	DefaultType     model.QueryType
}

// DefaultConfig returns the production vocabularies. Tests may build their
// own Config to exercise the pipeline with swapped rules.
func DefaultConfig() Config {
	return Config{
		IntentRules: []IntentRule{
			{Intent: model.IntentMonthlyTotal, Keywords: []string{
				"total spend", "monthly total", "how much did i spend", "total spending",
			}},
			{Intent: model.IntentCategoryBreakdown, Keywords: []string{
				"category breakdown", "spending by category", "how is my spending divided", "breakdown",
			}},
			{Intent: model.IntentSpendingTrend, Keywords: []string{
				"spending trend", "spending over time", "how has my spending changed", "pattern",
			}},
			{Intent: model.IntentHighestSpendCategory, Keywords: []string{
				"highest spend category", "top spending category", "where do i spend the most",
			}},
			{Intent: model.IntentCompareMonths, Keywords: []string{
				"compare months", "month comparison", "spending comparison", "compare",
			}},
			{Intent: model.IntentForecast, Keywords: []string{
				"forecast", "predict", "spending forecast",
			}},
			{Intent: model.IntentDetectAnomalies, Keywords: []string{
				"detect anomalies", "unusual spending", "anomaly", "anomalies",
			}},
			{Intent: model.IntentBudgetSuggestions, Keywords: []string{
				"budget suggestions", "spending advice", "budget tips",
			}},
			{Intent: model.IntentHighestExpense, Keywords: []string{
				"highest expense", "biggest expense", "largest spending",
			}},
			{Intent: model.IntentBudgetCheck, Keywords: []string{
				"budget check", "budget status", "am i over budget", "over budget",
			}},
			{Intent: model.IntentSuggestBudget, Keywords: []string{
				"suggest budget", "suggest a budget", "recommend a budget", "what should my budget be",
			}},
			{Intent: model.IntentAdvice, Keywords: []string{
				"advice", "tips", "help me save",
			}},
		},
		QueryTypeRules: []QueryTypeRule{
			{Type: model.QueryTypeSummary, Keywords: []string{"summary", "overview", "report"}},
			{Type: model.QueryTypeAdvice, Keywords: []string{"advice", "tips", "suggestions"}},
			{Type: model.QueryTypeForecast, Keywords: []string{"forecast", "predict", "projection"}},
		},
		KnownCategories: []string{
			"food", "entertainment", "utilities", "transportation", "health", "shopping",
		},
		DefaultIntent: model.IntentMonthlyTotal,
		DefaultType:   model.QueryTypeSummary,
	}
}
