package budget

import (
	"context"
	"fmt"
	"sort"

	"bilancio/internal/core"
)

// Aggregator joins resolved limits with ledger sums into one BudgetRow per
// active category. It is read-only; callers resolve the month first.
type Aggregator struct {
	registry CategoryRegistry
	budgets  BudgetStore
	ledger   TransactionLedger
}

func NewAggregator(registry CategoryRegistry, budgets BudgetStore, ledger TransactionLedger) *Aggregator {
	return &Aggregator{
		registry: registry,
		budgets:  budgets,
		ledger:   ledger,
	}
}

// ComputeSummary builds the month's budget rows. Every active category
// yields a row even with no transactions and no budget entry (both default
// to zero). Rows are ordered by category name, ties broken by id, so
// consumers can diff successive summaries.
func (a *Aggregator) ComputeSummary(ctx context.Context, month core.Month) ([]core.BudgetRow, error) {
	if err := month.Validate(); err != nil {
		return nil, err
	}

	categories, err := a.registry.ListActiveCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active categories: %w", err)
	}

	budgets, err := a.budgets.GetBudgetsForMonth(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("get budgets for month %s: %w", month, err)
	}
	limits := make(map[int64]core.Money, len(budgets))
	for _, b := range budgets {
		limits[b.CategoryID] = b.Limit
	}

	totals, err := a.ledger.SumSignedByCategory(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("sum transactions for month %s: %w", month, err)
	}

	rows := make([]core.BudgetRow, 0, len(categories))
	for _, cat := range categories {
		t := totals[cat.ID]
		limit := limits[cat.ID] // zero when the resolver has not run; defensive
		rows = append(rows, core.BudgetRow{
			CategoryID: cat.ID,
			Name:       cat.Name,
			Color:      cat.Color,
			IsIncome:   cat.IsIncome,
			Limit:      limit,
			Spent:      t.Expense,
			Income:     t.Income,
			Remaining:  core.Money{Cents: limit.Cents - t.Expense.Cents},
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].CategoryID < rows[j].CategoryID
	})

	return rows, nil
}
