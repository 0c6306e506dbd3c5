package stats

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/statement-analyser/internal/pipeline"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func debit(seq int, amount, category string) *pipeline.InterpretedTransaction {
	return &pipeline.InterpretedTransaction{
		RawTransaction: pipeline.RawTransaction{Seq: seq, Withdrawal: dec(amount)},
		Category:       category,
		Confidence:     pipeline.ConfidenceHigh,
	}
}

func credit(seq int, amount, category string) *pipeline.InterpretedTransaction {
	return &pipeline.InterpretedTransaction{
		RawTransaction: pipeline.RawTransaction{Seq: seq, Deposit: dec(amount)},
		Category:       category,
		Confidence:     pipeline.ConfidenceHigh,
	}
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil)

	assert.Equal(t, 0, s.TotalRows)
	assert.True(t, s.TotalDebit.IsZero())
	assert.True(t, s.TotalCredit.IsZero())
	assert.True(t, s.Net.IsZero())
	assert.Empty(t, s.ByCategory)
	assert.True(t, s.DateFrom.IsZero())
}

func TestComputeSignIdentity(t *testing.T) {
	rows := []*pipeline.InterpretedTransaction{
		debit(1, "500.00", "Transfers"),
		debit(2, "123.45", "Groceries"),
		credit(3, "16500.00", "Salary"),
		debit(4, "76.55", "Groceries"),
	}

	s := Compute(rows)

	require.Equal(t, 4, s.Interpreted)
	assert.True(t, s.TotalDebit.Equal(decimal.RequireFromString("-700.00")), "TotalDebit = %s", s.TotalDebit)
	assert.True(t, s.TotalCredit.Equal(decimal.RequireFromString("16500.00")))

	// total debit + total credit == net, exactly.
	assert.True(t, s.Net.Equal(s.TotalDebit.Add(s.TotalCredit)))

	// sum of per-category sums == net, exactly.
	perCategory := decimal.Zero
	for _, ct := range s.ByCategory {
		perCategory = perCategory.Add(ct.Sum)
	}
	assert.True(t, perCategory.Equal(s.Net), "per-category %s != net %s", perCategory, s.Net)

	groceries := s.ByCategory["Groceries"]
	assert.Equal(t, 2, groceries.Count)
	assert.True(t, groceries.Sum.Equal(decimal.RequireFromString("-200.00")))
}

func TestComputeSingleDebitScenario(t *testing.T) {
	row := debit(1, "500.00", "Transfers")
	row.CleanedRemark = "Payment to John Doe"

	s := Compute([]*pipeline.InterpretedTransaction{row})

	assert.True(t, s.TotalDebit.Equal(decimal.RequireFromString("-500.00")))
	assert.True(t, s.TotalCredit.IsZero())
	assert.True(t, s.Net.Equal(decimal.RequireFromString("-500.00")))

	require.Len(t, s.ByCategory, 1)
	ct := s.ByCategory["Transfers"]
	assert.Equal(t, 1, ct.Count)
	assert.True(t, ct.Sum.Equal(decimal.RequireFromString("-500.00")))
}

func TestComputeExcludesFailedRows(t *testing.T) {
	failed := debit(2, "9999.00", "")
	failed.Fail("completion service failure: complete")

	s := Compute([]*pipeline.InterpretedTransaction{
		debit(1, "100.00", "Fuel"),
		failed,
	})

	assert.Equal(t, 2, s.TotalRows)
	assert.Equal(t, 1, s.Interpreted)
	assert.Equal(t, 1, s.FailedRows)
	assert.True(t, s.TotalDebit.Equal(decimal.RequireFromString("-100.00")),
		"failed row amount leaked into totals: %s", s.TotalDebit)
	assert.NotContains(t, s.ByCategory, "")
}

func TestComputeSubcategoryBreakdown(t *testing.T) {
	a := debit(1, "50.00", "Travel")
	a.Subcategory = "Train"
	b := debit(2, "70.00", "Travel")
	b.Subcategory = "Cab"
	c := debit(3, "20.00", "Travel") // no subcategory

	s := Compute([]*pipeline.InterpretedTransaction{a, b, c})

	assert.Len(t, s.BySubcategory, 2)
	assert.Equal(t, 1, s.BySubcategory["Train"].Count)
	assert.True(t, s.ByCategory["Travel"].Sum.Equal(decimal.RequireFromString("-140.00")))
}

func TestCategoriesBySpend(t *testing.T) {
	s := Compute([]*pipeline.InterpretedTransaction{
		debit(1, "10.00", "Snacks"),
		debit(2, "900.00", "Rent"),
		credit(3, "500.00", "Salary"),
	})

	got := s.CategoriesBySpend()
	assert.Equal(t, []string{"Rent", "Salary", "Snacks"}, got)
}
