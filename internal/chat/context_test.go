package chat

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dvloznov/statement-analyser/internal/pipeline"
	"github.com/dvloznov/statement-analyser/internal/stats"
)

func row(seq int, amount, category, cleaned string) *pipeline.InterpretedTransaction {
	d := decimal.RequireFromString(amount)
	return &pipeline.InterpretedTransaction{
		RawTransaction: pipeline.RawTransaction{Seq: seq, DateRaw: "01/04/2024", Withdrawal: &d},
		CleanedRemark:  cleaned,
		Category:       category,
		Confidence:     pipeline.ConfidenceHigh,
	}
}

func TestBuildDigestIncludesStatistics(t *testing.T) {
	rows := []*pipeline.InterpretedTransaction{
		row(1, "500.00", "Transfers", "Payment to John Doe"),
		row(2, "120.00", "Groceries", "Vegetable purchase"),
	}
	digest := BuildDigest(stats.Compute(rows), rows)

	assert.Contains(t, digest, "Total debits: -620.00")
	assert.Contains(t, digest, "Net: -620.00")
	assert.Contains(t, digest, "Transfers: -500.00")
	assert.Contains(t, digest, "Payment to John Doe")
}

func TestBuildDigestRespectsCeiling(t *testing.T) {
	var rows []*pipeline.InterpretedTransaction
	for i := 0; i < 500; i++ {
		rows = append(rows, row(i+1, "10.00", fmt.Sprintf("Category %d", i%40),
			strings.Repeat("very long cleaned remark ", 4)))
	}
	digest := BuildDigest(stats.Compute(rows), rows)

	// The statistics block itself may be large with 40 categories, but the
	// transaction listing must not push it far past the ceiling.
	assert.LessOrEqual(t, len(digest), maxDigestChars+maxDigestChars/2)

	// Newest rows win the budget.
	assert.Contains(t, digest, "Statement summary")
}

func TestBuildDigestSkipsFailedRows(t *testing.T) {
	ok := row(1, "50.00", "Fuel", "Petrol")
	bad := row(2, "70.00", "", "")
	bad.Fail("completion service failure: complete")

	digest := BuildDigest(stats.Compute([]*pipeline.InterpretedTransaction{ok, bad}),
		[]*pipeline.InterpretedTransaction{ok, bad})

	assert.Contains(t, digest, "Petrol")
	assert.Contains(t, digest, "1 failed")
}
