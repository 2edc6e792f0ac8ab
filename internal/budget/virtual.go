package budget

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"bilancio/internal/core"
)

// Names of the synthetic reporting rows.
const (
	TotalIncomeRowName = "Total Income"
	TitheRowName       = "Tithe"
)

// basisPoints is the ratio denominator: 10000 bps = 100%. Ratios are kept
// as integers so the monetary path never touches floating point.
const basisPoints = 10000

type (
	// SplitBucket is one named share of a split source category.
	SplitBucket struct {
		Name     string `json:"name"`
		RatioBps int64  `json:"ratio_bps"`
	}

	// SplitRule replaces one physical category's row with fixed-ratio
	// sub-buckets. Bucket ratios must sum to exactly 10000 bps.
	SplitRule struct {
		SourceCategory string        `json:"source_category"`
		Buckets        []SplitBucket `json:"buckets"`
	}

	// Rules is the static virtual-category configuration, loaded once at
	// startup and immutable afterwards.
	Rules struct {
		TitheBps int64       `json:"tithe_bps"`
		Splits   []SplitRule `json:"splits"`
	}
)

// DefaultRules mirrors the production deployment: a 10% tithe and the
// "Car Insurance" category split evenly across the two cars.
func DefaultRules() Rules {
	return Rules{
		TitheBps: 1000,
		Splits: []SplitRule{
			{
				SourceCategory: "Car Insurance",
				Buckets: []SplitBucket{
					{Name: "Auto (Mazda)", RatioBps: 5000},
					{Name: "Auto (Elantra)", RatioBps: 5000},
				},
			},
		},
	}
}

// LoadRules reads rules from a JSON file, falling back to DefaultRules when
// path is empty. The result is validated here, once, so ApplyVirtualRules
// can stay infallible per request.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read virtual rules file: %w", err)
	}

	var rules Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse virtual rules file %s: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, fmt.Errorf("invalid virtual rules in %s: %w", path, err)
	}
	return rules, nil
}

// Validate checks the rule table for configuration mistakes. Called at
// load time, not per request.
func (r Rules) Validate() error {
	if r.TitheBps < 0 || r.TitheBps > basisPoints {
		return fmt.Errorf("tithe_bps %d out of range [0, %d]", r.TitheBps, basisPoints)
	}

	seen := make(map[string]bool, len(r.Splits))
	for _, split := range r.Splits {
		if strings.TrimSpace(split.SourceCategory) == "" {
			return errors.New("split rule with empty source category")
		}
		if seen[split.SourceCategory] {
			return fmt.Errorf("duplicate split rule for category %q", split.SourceCategory)
		}
		seen[split.SourceCategory] = true

		if len(split.Buckets) == 0 {
			return fmt.Errorf("split rule for %q has no buckets", split.SourceCategory)
		}
		var sum int64
		for _, b := range split.Buckets {
			if strings.TrimSpace(b.Name) == "" {
				return fmt.Errorf("split rule for %q has a bucket with no name", split.SourceCategory)
			}
			if b.RatioBps <= 0 {
				return fmt.Errorf("split rule for %q: bucket %q ratio must be positive", split.SourceCategory, b.Name)
			}
			sum += b.RatioBps
		}
		if sum != basisPoints {
			return fmt.Errorf("split rule for %q: bucket ratios sum to %d bps, want %d", split.SourceCategory, sum, basisPoints)
		}
	}
	return nil
}

// ApplyVirtualRules post-processes aggregation output with the synthetic
// reporting rows. Pure function, no I/O.
//
// Output order is fixed: Total Income first, then Tithe, then the real rows
// in their input order, with split sub-buckets occupying their source
// category's position. A split rule whose source category is absent from
// rows is skipped.
func ApplyVirtualRules(rows []core.BudgetRow, rules Rules) []core.BudgetRow {
	var totalIncome int64
	for _, row := range rows {
		totalIncome += row.Income.Cents
	}

	out := make([]core.BudgetRow, 0, len(rows)+2)
	out = append(out, core.BudgetRow{
		Name:     TotalIncomeRowName,
		IsIncome: true,
		Virtual:  true,
		Income:   core.Money{Cents: totalIncome},
	})
	out = append(out, core.BudgetRow{
		Name:     TitheRowName,
		IsIncome: true,
		Virtual:  true,
		Income:   core.Money{Cents: roundHalfUpBps(totalIncome, rules.TitheBps)},
	})

	splits := make(map[string]SplitRule, len(rules.Splits))
	for _, s := range rules.Splits {
		splits[s.SourceCategory] = s
	}

	for _, row := range rows {
		rule, ok := splits[row.Name]
		if !ok {
			out = append(out, row)
			continue
		}
		out = append(out, splitRow(row, rule)...)
	}

	return out
}

// splitRow divides a source row across its buckets. All buckets but the
// last round half-up; the last takes the residual so the bucket sums equal
// the source values to the cent.
func splitRow(source core.BudgetRow, rule SplitRule) []core.BudgetRow {
	n := len(rule.Buckets)
	buckets := make([]core.BudgetRow, 0, n)

	var spentUsed, limitUsed int64
	for i, b := range rule.Buckets {
		var spent, limit int64
		if i == n-1 {
			spent = source.Spent.Cents - spentUsed
			limit = source.Limit.Cents - limitUsed
		} else {
			spent = roundHalfUpBps(source.Spent.Cents, b.RatioBps)
			limit = roundHalfUpBps(source.Limit.Cents, b.RatioBps)
			spentUsed += spent
			limitUsed += limit
		}
		buckets = append(buckets, core.BudgetRow{
			Name:      b.Name,
			Color:     source.Color,
			Virtual:   true,
			Limit:     core.Money{Cents: limit},
			Spent:     core.Money{Cents: spent},
			Remaining: core.Money{Cents: limit - spent},
		})
	}

	return buckets
}

// roundHalfUpBps computes round(v * bps/10000) with half-up rounding on the
// cent. v is a non-negative cent amount.
func roundHalfUpBps(v, bps int64) int64 {
	return (v*bps + basisPoints/2) / basisPoints
}
