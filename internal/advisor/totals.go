package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spendsense/spendsense/internal/model"
	"github.com/spendsense/spendsense/internal/service"
)

// monthlyTotal sums non-deleted expenses inside the extracted window. A
// window with no expenses is a valid zero, not a failure.
func (a *Advisor) monthlyTotal(ctx context.Context, parsed model.ParsedIntent, userID int64) (model.AIResponse, error) {
	now := a.now()
	start, end := resolveWindow(parsed.Time, now)

	categoryID, err := a.categoryFilter(ctx, parsed.Category)
	if err != nil {
		return model.AIResponse{}, err
	}

	total, err := a.store.SumExpenses(ctx, userID, service.ExpenseFilter{
		CategoryID: categoryID,
		Start:      start,
		End:        end,
	})
	if err != nil {
		return model.AIResponse{}, fmt.Errorf("sum expenses: %w", err)
	}

	scope := windowLabel(parsed.Time, now)
	text := fmt.Sprintf("You spent %s %s.", formatAmount(total), scope)
	if parsed.Category != "" {
		text = fmt.Sprintf("You spent %s on %s %s.", formatAmount(total), parsed.Category, scope)
	}

	data := map[string]any{"total": total}
	if parsed.Time != nil {
		if parsed.Time.Month != 0 {
			data["month"] = parsed.Time.Month
		}
		if parsed.Time.Year != 0 {
			data["year"] = parsed.Time.Year
		}
		if parsed.Time.Day != 0 {
			data["day"] = parsed.Time.Day
		}
	}
	if parsed.Category != "" {
		data["category"] = parsed.Category
	}

	return successResponse(text, data), nil
}

// highestExpense finds the single largest expense in the window. No rows in
// the window is a failure: there is nothing to rank.
func (a *Advisor) highestExpense(ctx context.Context, parsed model.ParsedIntent, userID int64) (model.AIResponse, error) {
	now := a.now()
	start, end := resolveWindow(parsed.Time, now)

	categoryID, err := a.categoryFilter(ctx, parsed.Category)
	if err != nil {
		return model.AIResponse{}, err
	}

	expense, err := a.store.MaxExpense(ctx, userID, service.ExpenseFilter{
		CategoryID: categoryID,
		Start:      start,
		End:        end,
	})
	if err != nil {
		return model.AIResponse{}, fmt.Errorf("max expense: %w", err)
	}
	if expense == nil {
		return failureResponse(fmt.Sprintf("I couldn't find any expenses %s, so there is no highest expense to report.", windowLabel(parsed.Time, now))), nil
	}

	categoryName := ""
	if category, catErr := a.store.GetCategoryByID(ctx, expense.CategoryID); catErr == nil && category != nil {
		categoryName = category.Name
	}

	description := expense.Description
	if description == "" {
		description = "an expense"
	}

	text := fmt.Sprintf("Your highest expense %s was %s for %s.",
		windowLabel(parsed.Time, now), formatAmount(expense.Amount), description)

	data := map[string]any{
		"amount":      expense.Amount,
		"description": expense.Description,
		"date":        expense.ExpenseDate.Format("2006-01-02"),
	}
	if categoryName != "" {
		data["category"] = categoryName
	}

	return successResponse(text, data), nil
}

// compareMonths needs all four comparison fields supplied out-of-band in the
// filter map; it never guesses a missing one.
func (a *Advisor) compareMonths(ctx context.Context, parsed model.ParsedIntent, userID int64) (model.AIResponse, error) {
	required := []string{"month1", "year1", "month2", "year2"}
	values := make(map[string]int, len(required))
	var missing []string
	for _, key := range required {
		v, ok := intFilter(parsed.Filters, key)
		if !ok {
			missing = append(missing, key)
			continue
		}
		values[key] = v
	}
	if len(missing) > 0 {
		return failureResponse(fmt.Sprintf(
			"To compare months I need month1, year1, month2 and year2. Missing: %s.",
			strings.Join(missing, ", "))), nil
	}

	sumMonth := func(month, year int) (float64, error) {
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, a.now().Location())
		end := start.AddDate(0, 1, 0)
		return a.store.SumExpenses(ctx, userID, service.ExpenseFilter{Start: &start, End: &end})
	}

	total1, err := sumMonth(values["month1"], values["year1"])
	if err != nil {
		return model.AIResponse{}, fmt.Errorf("sum first month: %w", err)
	}
	total2, err := sumMonth(values["month2"], values["year2"])
	if err != nil {
		return model.AIResponse{}, fmt.Errorf("sum second month: %w", err)
	}

	label1 := monthLabel(values["month1"], values["year1"])
	label2 := monthLabel(values["month2"], values["year2"])
	difference := total2 - total1

	var comparison string
	switch {
	case difference > 0:
		comparison = fmt.Sprintf("%s more than", formatAmount(difference))
	case difference < 0:
		comparison = fmt.Sprintf("%s less than", formatAmount(-difference))
	default:
		comparison = "exactly the same as"
	}

	text := fmt.Sprintf("You spent %s in %s and %s in %s. That's %s %s.",
		formatAmount(total1), label1, formatAmount(total2), label2, comparison, label1)

	data := map[string]any{
		"month1_total": total1,
		"month2_total": total2,
		"difference":   difference,
	}
	if total1 > 0 {
		data["percent_change"] = difference / total1 * 100
	}

	return successResponse(text, data), nil
}
