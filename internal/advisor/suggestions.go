package advisor

import (
	"context"
	"fmt"
	"sort"

	"github.com/spendsense/spendsense/internal/model"
	"github.com/spendsense/spendsense/internal/service"
)

const (
	suggestionWindowDays    = 180
	suggestionMinPoints     = 3
	suggestionTrendFraction = 0.15
	suggestionVolFraction   = 0.30
	suggestionRecentRatio   = 1.20
	historyWindowDays       = 90
)

type budgetSuggestion struct {
	Category         string   `json:"category"`
	Priority         string   `json:"priority"`
	Advice           []string `json:"advice"`
	Tips             []string `json:"tips,omitempty"`
	PotentialSavings float64  `json:"potential_savings"`
	MonthlyAverage   float64  `json:"monthly_average"`
}

// categoryTip is a fixed advice rule keyed on average monthly spend.
type categoryTip struct {
	Tip       string
	Threshold float64
}

var categoryTips = map[string]categoryTip{
	"food":           {Threshold: 400, Tip: "Consider meal planning to bring food costs down."},
	"entertainment":  {Threshold: 200, Tip: "Review streaming and subscription services you rarely use."},
	"shopping":       {Threshold: 300, Tip: "Try a 24-hour waiting rule before non-essential purchases."},
	"transportation": {Threshold: 150, Tip: "Check whether transit passes or carpooling could replace some trips."},
	"utilities":      {Threshold: 250, Tip: "An energy audit often pays for itself within a few months."},
}

func priorityRank(priority string) int {
	switch priority {
	case "high":
		return 0
	case "medium":
		return 1
	default:
		return 2
	}
}

// raisePriority bumps a priority upward, never downward.
func raisePriority(current, candidate string) string {
	if priorityRank(candidate) < priorityRank(current) {
		return candidate
	}
	return current
}

// budgetSuggestions looks at the trailing six months of per-category
// spending and flags categories with rising, volatile, or above-average
// recent spending. Categories with fewer than three monthly data points are
// not evaluated. No qualifying categories is a success.
func (a *Advisor) budgetSuggestions(ctx context.Context, _ model.ParsedIntent, userID int64) (model.AIResponse, error) {
	now := a.now()
	start := now.AddDate(0, 0, -suggestionWindowDays)

	expenses, err := a.store.ListExpenses(ctx, userID, service.ExpenseFilter{Start: &start, End: &now})
	if err != nil {
		return model.AIResponse{}, fmt.Errorf("list expenses: %w", err)
	}

	categoryNames, err := a.categoryNameIndex(ctx)
	if err != nil {
		return model.AIResponse{}, err
	}

	// Per category, per (year, month) sums in chronological order.
	type monthPoint struct {
		key   int
		total float64
	}
	byCategory := make(map[int64]map[int]float64)
	for _, expense := range expenses {
		key := expense.ExpenseDate.Year()*100 + int(expense.ExpenseDate.Month())
		if byCategory[expense.CategoryID] == nil {
			byCategory[expense.CategoryID] = make(map[int]float64)
		}
		byCategory[expense.CategoryID][key] += expense.Amount
	}

	var suggestions []budgetSuggestion
	for categoryID, months := range byCategory {
		if len(months) < suggestionMinPoints {
			continue
		}

		points := make([]monthPoint, 0, len(months))
		for key, total := range months {
			points = append(points, monthPoint{key: key, total: total})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].key < points[j].key })

		values := make([]float64, len(points))
		for i, point := range points {
			values[i] = point.total
		}

		avg := mean(values)
		recentAvg := mean(values[len(values)-2:])
		preRecentAvg := mean(values[:len(values)-2])
		trend := recentAvg - preRecentAvg
		volatility := sampleStdDev(values)

		name := categoryNames[categoryID]
		if name == "" {
			name = fmt.Sprintf("category %d", categoryID)
		}

		suggestion := budgetSuggestion{
			Category:       name,
			Priority:       "low",
			MonthlyAverage: avg,
		}
		flagged := false

		if trend > suggestionTrendFraction*avg {
			suggestion.Advice = append(suggestion.Advice,
				fmt.Sprintf("Your %s spending is trending up by about %s a month.", name, formatAmount(trend)))
			suggestion.PotentialSavings += trend * 0.5
			suggestion.Priority = raisePriority(suggestion.Priority, "high")
			flagged = true
		}

		if volatility > suggestionVolFraction*avg {
			suggestion.Advice = append(suggestion.Advice,
				fmt.Sprintf("Your %s spending swings a lot month to month; a fixed budget would smooth it out.", name))
			suggestion.Priority = raisePriority(suggestion.Priority, "medium")
			flagged = true
		}

		if recentAvg > suggestionRecentRatio*avg {
			excess := recentAvg - avg
			suggestion.Advice = append(suggestion.Advice,
				fmt.Sprintf("Recent %s spending is well above your historical average.", name))
			suggestion.PotentialSavings += excess * 0.3
			suggestion.Priority = raisePriority(suggestion.Priority, "high")
			flagged = true
		}

		if rule, ok := categoryTips[name]; ok && avg > rule.Threshold {
			suggestion.Tips = append(suggestion.Tips, rule.Tip)
			flagged = true
		}

		if flagged {
			suggestions = append(suggestions, suggestion)
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		ri, rj := priorityRank(suggestions[i].Priority), priorityRank(suggestions[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return suggestions[i].PotentialSavings > suggestions[j].PotentialSavings
	})

	data := map[string]any{"suggestions": suggestions}
	if len(suggestions) == 0 {
		return successResponse("Your spending looks consistent. I don't see any budget changes worth suggesting right now.", data), nil
	}

	text := fmt.Sprintf("I have %d budget suggestion(s); start with %s.",
		len(suggestions), suggestions[0].Category)
	return successResponse(text, data), nil
}

// suggestBudget derives a budget from the trailing 90 days of spending,
// optionally narrowed to one category by fuzzy name match. Zero history is
// a success with guidance, not a failure.
func (a *Advisor) suggestBudget(ctx context.Context, parsed model.ParsedIntent, userID int64) (model.AIResponse, error) {
	now := a.now()
	start := now.AddDate(0, 0, -historyWindowDays)

	var categoryID *int64
	categoryLabel := "overall"
	if parsed.Category != "" {
		category, err := a.store.FindCategoryByName(ctx, parsed.Category)
		if err != nil {
			return model.AIResponse{}, fmt.Errorf("find category %q: %w", parsed.Category, err)
		}
		if category != nil {
			categoryID = &category.ID
			categoryLabel = category.Name
		}
	}

	total, err := a.store.SumExpenses(ctx, userID, service.ExpenseFilter{
		CategoryID: categoryID,
		Start:      &start,
		End:        &now,
	})
	if err != nil {
		return model.AIResponse{}, fmt.Errorf("sum expenses: %w", err)
	}

	monthlyAvg := total / 3
	suggested := monthlyAvg * 1.1
	stretch := monthlyAvg * 0.9

	confidence := "medium"
	if monthlyAvg > 100 {
		confidence = "high"
	}

	data := map[string]any{
		"category":         categoryLabel,
		"monthly_average":  monthlyAvg,
		"suggested_budget": suggested,
		"stretch_goal":     stretch,
		"confidence_level": confidence,
	}

	if total == 0 {
		resp := successResponse(fmt.Sprintf(
			"I don't see any %s spending in the last 90 days, so start with a small budget and adjust as data comes in.",
			categoryLabel), data)
		resp.NextAction = "create_budget"
		return resp, nil
	}

	text := fmt.Sprintf(
		"Your %s spending averages %s a month over the last 90 days. A comfortable budget is %s; %s would be a stretch goal.",
		categoryLabel, formatAmount(monthlyAvg), formatAmount(suggested), formatAmount(stretch))

	resp := successResponse(text, data)
	resp.NextAction = "create_budget"
	return resp, nil
}

// personalizedAdvice summarizes the trailing 90 days and tacks on general
// guidance.
func (a *Advisor) personalizedAdvice(ctx context.Context, _ model.ParsedIntent, userID int64) (model.AIResponse, error) {
	now := a.now()
	start := now.AddDate(0, 0, -historyWindowDays)

	expenses, err := a.store.ListExpenses(ctx, userID, service.ExpenseFilter{Start: &start, End: &now})
	if err != nil {
		return model.AIResponse{}, fmt.Errorf("list expenses: %w", err)
	}

	var total float64
	for _, expense := range expenses {
		total += expense.Amount
	}
	count := len(expenses)

	monthlyAvg := total / 3
	perTransaction := 0.0
	if count > 0 {
		perTransaction = total / float64(count)
	}

	text := fmt.Sprintf(
		"Over the last 90 days you made %d transaction(s) totalling %s, about %s a month, averaging %s per transaction.",
		count, formatAmount(total), formatAmount(monthlyAvg), formatAmount(perTransaction))

	data := map[string]any{
		"total_90_days":           total,
		"transaction_count":       count,
		"monthly_average":         monthlyAvg,
		"average_per_transaction": perTransaction,
	}

	resp := successResponse(text, data)
	resp.Suggestions = []string{
		"Track every expense, even the small ones; they add up quickly.",
		"Review subscriptions and recurring charges once a quarter.",
		"Set budgets for your top three categories first.",
		"Build a one-month buffer before optimizing individual categories.",
	}
	return resp, nil
}
