// Package stats reduces a set of interpreted transactions into the summary
// figures the report and the chat context are built from.
package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-analyser/internal/pipeline"
)

// CategoryTotal is the per-category slice of the summary. Sum is signed:
// debits negative, credits positive, so the per-category sums add up to Net.
type CategoryTotal struct {
	Count int
	Sum   decimal.Decimal
}

// Summary is a read-only snapshot computed from the full transaction set.
// Rows marked failed are excluded from every total; they are only counted.
type Summary struct {
	TotalRows   int
	Interpreted int
	FailedRows  int

	TotalDebit  decimal.Decimal // sum of withdrawals, negative or zero
	TotalCredit decimal.Decimal // sum of deposits, positive or zero
	Net         decimal.Decimal // TotalDebit + TotalCredit, exactly

	ByCategory    map[string]CategoryTotal
	BySubcategory map[string]CategoryTotal

	DateFrom time.Time
	DateTo   time.Time
}

// Compute reduces the rows into a Summary. An empty input yields zero totals
// and empty maps.
func Compute(rows []*pipeline.InterpretedTransaction) Summary {
	s := Summary{
		TotalRows:     len(rows),
		TotalDebit:    decimal.Zero,
		TotalCredit:   decimal.Zero,
		Net:           decimal.Zero,
		ByCategory:    make(map[string]CategoryTotal),
		BySubcategory: make(map[string]CategoryTotal),
	}

	for _, row := range rows {
		if row.Failed {
			s.FailedRows++
			continue
		}
		s.Interpreted++

		amount := row.SignedAmount()
		if row.IsDebit() {
			s.TotalDebit = s.TotalDebit.Add(amount)
		} else {
			s.TotalCredit = s.TotalCredit.Add(amount)
		}
		s.Net = s.Net.Add(amount)

		cat := s.ByCategory[row.Category]
		cat.Count++
		cat.Sum = cat.Sum.Add(amount)
		s.ByCategory[row.Category] = cat

		if row.Subcategory != "" {
			sub := s.BySubcategory[row.Subcategory]
			sub.Count++
			sub.Sum = sub.Sum.Add(amount)
			s.BySubcategory[row.Subcategory] = sub
		}

		if !row.Date.IsZero() {
			if s.DateFrom.IsZero() || row.Date.Before(s.DateFrom) {
				s.DateFrom = row.Date
			}
			if s.DateTo.IsZero() || row.Date.After(s.DateTo) {
				s.DateTo = row.Date
			}
		}
	}

	return s
}

// CategoriesBySpend returns category names ordered by absolute sum,
// largest first, ties broken alphabetically.
func (s Summary) CategoriesBySpend() []string {
	names := make([]string, 0, len(s.ByCategory))
	for name := range s.ByCategory {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a := s.ByCategory[names[i]].Sum.Abs()
		b := s.ByCategory[names[j]].Sum.Abs()
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return names[i] < names[j]
	})
	return names
}
