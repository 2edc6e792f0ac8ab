// Package budget implements the monthly budget resolution and aggregation
// engine: lazy per-category rollover of spending limits, exact integer
// aggregation of the signed transaction ledger, and the synthetic virtual
// reporting rows layered on top.
package budget

import (
	"context"

	"bilancio/internal/core"
)

// Engine bundles the three stages behind one façade. A month view runs
// them in order: resolve, then aggregate, then apply the virtual rules.
type Engine struct {
	resolver   *Resolver
	aggregator *Aggregator
	rules      Rules
}

func NewEngine(registry CategoryRegistry, budgets BudgetStore, ledger TransactionLedger, rules Rules, maxLookbackMonths int) *Engine {
	return &Engine{
		resolver:   NewResolver(registry, budgets, maxLookbackMonths),
		aggregator: NewAggregator(registry, budgets, ledger),
		rules:      rules,
	}
}

// ResolveMonth fills in missing budget rows for the month. See Resolver.
func (e *Engine) ResolveMonth(ctx context.Context, month core.Month) error {
	return e.resolver.ResolveMonth(ctx, month)
}

// ComputeSummary returns one row per active category. See Aggregator.
func (e *Engine) ComputeSummary(ctx context.Context, month core.Month) ([]core.BudgetRow, error) {
	return e.aggregator.ComputeSummary(ctx, month)
}

// ApplyVirtualRules adds the synthetic reporting rows to a summary.
func (e *Engine) ApplyVirtualRules(rows []core.BudgetRow) []core.BudgetRow {
	return ApplyVirtualRules(rows, e.rules)
}

// MonthView is the full read path: resolution must be durably applied
// before aggregation reads the month's limits.
func (e *Engine) MonthView(ctx context.Context, month core.Month) ([]core.BudgetRow, error) {
	if err := e.ResolveMonth(ctx, month); err != nil {
		return nil, err
	}
	rows, err := e.ComputeSummary(ctx, month)
	if err != nil {
		return nil, err
	}
	return e.ApplyVirtualRules(rows), nil
}
