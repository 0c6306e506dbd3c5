package chat

import (
	"fmt"
	"strings"

	"github.com/dvloznov/statement-analyser/internal/pipeline"
	"github.com/dvloznov/statement-analyser/internal/stats"
)

const (
	// maxDigestChars bounds the context block injected into every turn.
	// Statistics are small and always included in full; the transaction
	// listing is what gets truncated to fit.
	maxDigestChars = 4000

	// maxRecentRows caps the representative transaction listing.
	maxRecentRows = 25
)

// BuildDigest renders the bounded snapshot of the analysed statement that
// fronts every chat prompt: the full summary statistics plus the most recent
// interpreted transactions that fit under the size ceiling.
func BuildDigest(summary stats.Summary, rows []*pipeline.InterpretedTransaction) string {
	var b strings.Builder

	b.WriteString("You are a helpful financial assistant analysing one bank statement.\n")
	b.WriteString("Answer questions about spending patterns, give insights, and suggest\n")
	b.WriteString("ways to save money. Be concise. Amounts are in INR.\n\n")

	b.WriteString("Statement summary:\n")
	fmt.Fprintf(&b, "- Transactions: %d (%d interpreted, %d failed)\n",
		summary.TotalRows, summary.Interpreted, summary.FailedRows)
	if !summary.DateFrom.IsZero() {
		fmt.Fprintf(&b, "- Date range: %s to %s\n",
			summary.DateFrom.Format("2006-01-02"), summary.DateTo.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "- Total debits: %s\n", summary.TotalDebit.StringFixed(2))
	fmt.Fprintf(&b, "- Total credits: %s\n", summary.TotalCredit.StringFixed(2))
	fmt.Fprintf(&b, "- Net: %s\n", summary.Net.StringFixed(2))

	if len(summary.ByCategory) > 0 {
		b.WriteString("\nSpending by category (signed, debits negative):\n")
		for _, name := range summary.CategoriesBySpend() {
			ct := summary.ByCategory[name]
			fmt.Fprintf(&b, "- %s: %s across %d transaction(s)\n", name, ct.Sum.StringFixed(2), ct.Count)
		}
	}

	listing := recentListing(rows, maxDigestChars-b.Len())
	if listing != "" {
		b.WriteString("\nMost recent transactions:\n")
		b.WriteString(listing)
	}

	return b.String()
}

// recentListing renders up to maxRecentRows of the most recent interpreted
// rows, newest last, dropping oldest entries until the result fits budget.
func recentListing(rows []*pipeline.InterpretedTransaction, budget int) string {
	if budget <= 0 {
		return ""
	}

	var lines []string
	for _, it := range rows {
		if it.Failed {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s | %s | %s | %s",
			it.DateRaw, it.SignedAmount().StringFixed(2), it.Category, it.CleanedRemark))
	}
	if len(lines) > maxRecentRows {
		lines = lines[len(lines)-maxRecentRows:]
	}

	for len(lines) > 0 {
		out := strings.Join(lines, "\n") + "\n"
		if len(out) <= budget {
			return out
		}
		lines = lines[1:]
	}
	return ""
}
