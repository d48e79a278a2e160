package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spendsense/spendsense/internal/model"
)

// CategoryNamer resolves a category ID to its display name. Implementations
// should return a stable fallback for unknown IDs.
type CategoryNamer func(categoryID int64) string

// RenderResponse renders an assistant response envelope for the terminal.
func RenderResponse(resp *model.AIResponse) string {
	var b strings.Builder

	if resp.ExecutionStatus == model.StatusFailed {
		b.WriteString(FormatError(resp.Response))
	} else {
		b.WriteString(FormatSuccess(resp.Response))
	}
	b.WriteString("\n")

	if breakdown, ok := resp.Data["breakdown"].(map[string]float64); ok && len(breakdown) > 0 {
		b.WriteString("\n")
		b.WriteString(renderBreakdown(breakdown))
	}

	if resp.Confidence != nil {
		b.WriteString("\n")
		b.WriteString(SubtleStyle.Render(fmt.Sprintf("confidence: %.0f%%", *resp.Confidence*100)))
		b.WriteString("\n")
	}

	if len(resp.Suggestions) > 0 {
		b.WriteString("\n")
		b.WriteString(SubtitleStyle.Render("You could also ask:"))
		b.WriteString("\n")
		for _, s := range resp.Suggestions {
			b.WriteString(SubtleStyle.Render("  • " + s))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderBreakdown renders category totals largest first.
func renderBreakdown(breakdown map[string]float64) string {
	type row struct {
		name   string
		amount float64
	}

	rows := make([]row, 0, len(breakdown))
	width := 0
	for name, amount := range breakdown {
		rows = append(rows, row{name: name, amount: amount})
		if len(name) > width {
			width = len(name)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].amount != rows[j].amount {
			return rows[i].amount > rows[j].amount
		}
		return rows[i].name < rows[j].name
	})

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %-*s  %s\n", width, r.name, FormatMoney(r.amount)))
	}
	return b.String()
}

// RenderBudgetStatuses renders one line per budget with spend progress.
func RenderBudgetStatuses(statuses []model.BudgetStatus, namer CategoryNamer) string {
	if len(statuses) == 0 {
		return FormatInfo("No active budgets. Create one with 'spendsense budgets create'.") + "\n"
	}

	var b strings.Builder
	b.WriteString(FormatTitle("Budget Status"))
	b.WriteString("\n")

	for _, status := range statuses {
		label := "overall"
		if status.Budget.CategoryID != nil {
			label = namer(*status.Budget.CategoryID)
		}

		line := fmt.Sprintf("%s (%s): %s of %s spent (%.0f%%), %d days left",
			label,
			status.Budget.Period,
			FormatMoney(status.Spent),
			FormatMoney(status.Budget.Amount),
			status.PercentageUsed,
			status.DaysRemaining)

		switch {
		case status.IsOverBudget:
			b.WriteString(ErrorStyle.Render(ErrorIcon + " " + line))
		case status.ShouldAlert:
			b.WriteString(WarningStyle.Render(WarningIcon + " " + line))
		default:
			b.WriteString(SuccessStyle.Render(SuccessIcon + " " + line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderExpenses renders expenses as an aligned table, most recent first.
func RenderExpenses(expenses []model.Expense, namer CategoryNamer) string {
	if len(expenses) == 0 {
		return FormatInfo("No expenses found.") + "\n"
	}

	var b strings.Builder
	header := fmt.Sprintf("%-6s  %-12s  %-10s  %-16s  %s", "ID", "Date", "Amount", "Category", "Description")
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")

	for _, e := range expenses {
		b.WriteString(fmt.Sprintf("%-6d  %-12s  %-10s  %-16s  %s\n",
			e.ID,
			e.ExpenseDate.Format("2006-01-02"),
			FormatMoney(e.Amount),
			namer(e.CategoryID),
			e.Description))
	}

	return b.String()
}

// RenderCategories renders the known category names.
func RenderCategories(categories []model.Category) string {
	if len(categories) == 0 {
		return FormatInfo("No categories defined.") + "\n"
	}

	var b strings.Builder
	b.WriteString(FormatTitle("Categories"))
	b.WriteString("\n")
	for _, c := range categories {
		b.WriteString(fmt.Sprintf("  %-4d %s\n", c.ID, c.Name))
	}
	return b.String()
}

// FormatMoney formats an amount as dollars and cents.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
