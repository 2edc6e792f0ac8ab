package budget

import (
	"context"
	"sync"

	"bilancio/internal/core"
)

// fakeStore is an in-memory implementation of all three engine ports.
type fakeStore struct {
	mu         sync.Mutex
	categories []core.Category
	budgets    []core.MonthlyBudget
	totals     map[string]map[int64]CategoryTotals
	nextID     int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{totals: make(map[string]map[int64]CategoryTotals)}
}

func (f *fakeStore) addCategory(c core.Category) core.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = f.nextID
	if c.Color == "" {
		c.Color = "#BAE1FF"
	}
	c.IsActive = true
	f.categories = append(f.categories, c)
	return c
}

func (f *fakeStore) setBudget(categoryID int64, month core.Month, limitCents int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range f.budgets {
		if b.CategoryID == categoryID && b.Month == month {
			f.budgets[i].Limit = core.Money{Cents: limitCents}
			return
		}
	}
	f.nextID++
	f.budgets = append(f.budgets, core.MonthlyBudget{
		ID:         f.nextID,
		CategoryID: categoryID,
		Month:      month,
		Limit:      core.Money{Cents: limitCents},
	})
}

func (f *fakeStore) setTotals(month core.Month, categoryID int64, income, expense int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.totals[month.String()]
	if !ok {
		m = make(map[int64]CategoryTotals)
		f.totals[month.String()] = m
	}
	m[categoryID] = CategoryTotals{
		Income:  core.Money{Cents: income},
		Expense: core.Money{Cents: expense},
	}
}

func (f *fakeStore) ListActiveCategories(context.Context) ([]core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Category, 0, len(f.categories))
	for _, c := range f.categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetBudgetsForMonth(_ context.Context, month core.Month) ([]core.MonthlyBudget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.MonthlyBudget
	for _, b := range f.budgets {
		if b.Month == month {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) GetLatestBudgetBefore(_ context.Context, categoryID int64, month core.Month) (*core.MonthlyBudget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *core.MonthlyBudget
	for i := range f.budgets {
		b := f.budgets[i]
		if b.CategoryID != categoryID || !b.Month.Before(month) {
			continue
		}
		if best == nil || best.Month.Before(b.Month) {
			copied := b
			best = &copied
		}
	}
	return best, nil
}

func (f *fakeStore) InsertBudgetIfAbsent(_ context.Context, categoryID int64, month core.Month, limit core.Money) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.budgets {
		if b.CategoryID == categoryID && b.Month == month {
			return false, nil
		}
	}
	f.nextID++
	f.budgets = append(f.budgets, core.MonthlyBudget{
		ID:         f.nextID,
		CategoryID: categoryID,
		Month:      month,
		Limit:      limit,
	})
	return true, nil
}

func (f *fakeStore) SumSignedByCategory(_ context.Context, month core.Month) (map[int64]CategoryTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64]CategoryTotals)
	for id, t := range f.totals[month.String()] {
		out[id] = t
	}
	return out, nil
}

func (f *fakeStore) budgetFor(categoryID int64, month core.Month) (core.MonthlyBudget, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.budgets {
		if b.CategoryID == categoryID && b.Month == month {
			return b, true
		}
	}
	return core.MonthlyBudget{}, false
}

func (f *fakeStore) budgetCount(month core.Month) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.budgets {
		if b.Month == month {
			n++
		}
	}
	return n
}
