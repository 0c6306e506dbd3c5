package pipeline

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Prompt construction is pure: identical inputs and taxonomy state produce an
// identical prompt. Both stages demand a fixed labeled-line reply layout so
// the parser has something to hold on to.

func normalizationPrompt(tx RawTransaction) string {
	var b strings.Builder

	b.WriteString("You are a transaction remark interpretation specialist for bank statements.\n\n")
	b.WriteString("The remark below is a UPI / NEFT / IMPS payment reference, often abbreviated,\n")
	b.WriteString("shorthand, or truncated. Reconstruct the likely counterparty and purpose.\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- Ignore IDs, long numbers, and bank codes (e.g. 563842971184, ICIf635d23e...).\n")
	b.WriteString("- Look for meaningful tokens: names (SHAIK NIYA, APOLLO PHA), purpose words\n")
	b.WriteString("  (rent, milk, grocery, ticket), abbreviations (oc = October, rever = reversal,\n")
	b.WriteString("  bik = bike), platforms (Google Pay, Paytm, IRCTC), verbs (Payment fr, refund).\n")
	b.WriteString("- Priority when interpreting: purpose > person > platform > reference number.\n")
	b.WriteString("- State the real-life meaning: what was paid for or received.\n\n")

	b.WriteString("Transaction:\n")
	b.WriteString("- Remark: " + tx.Remark + "\n")
	b.WriteString("- Direction: " + directionWord(&tx) + "\n")
	b.WriteString("- Amount: " + amountString(&tx) + "\n\n")

	b.WriteString("Reply with EXACTLY two labeled lines and nothing else:\n")
	b.WriteString("CLEANED: <short natural-language interpretation of the transaction>\n")
	b.WriteString("NOTES: <doubts or reasoning if uncertain, otherwise a single dash ->\n")

	return b.String()
}

func categorizationPrompt(cleanedRemark string, tx RawTransaction, taxonomy *Taxonomy) string {
	var b strings.Builder

	b.WriteString("You are a financial categorisation agent for personal bank statements.\n\n")
	b.WriteString("Assign a short, meaningful spending category (1-3 words) to the transaction\n")
	b.WriteString("below, based on its purpose or intent.\n\n")

	labels := taxonomy.Labels()
	if len(labels) > 0 {
		b.WriteString("Categories already in use in this statement:\n")
		for _, l := range labels {
			b.WriteString("  - " + l + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("CATEGORY ASSIGNMENT RULES:\n")
	b.WriteString("1. If an existing category fits semantically, reuse it with EXACTLY the same spelling.\n")
	b.WriteString("2. Otherwise coin a new concise category name (e.g. \"Groceries\", \"Fuel\",\n")
	b.WriteString("   \"Transfers\", \"Medical\", \"Travel\", \"Subscriptions\", \"Salary\").\n")
	b.WriteString("3. Use consistent naming for similar transactions: always \"Fuel\", never\n")
	b.WriteString("   sometimes \"Petrol\" and sometimes \"Gas\".\n")
	b.WriteString("4. Add a more specific SUBCATEGORY when one applies (Travel -> Train, Medical ->\n")
	b.WriteString("   Pharmacy); otherwise leave it as a single dash -.\n")
	b.WriteString("5. If the remark is truly ambiguous, use category \"" + UncategorizedLabel + "\" with LOW confidence.\n")
	b.WriteString("6. State your confidence as High, Medium or Low.\n\n")

	b.WriteString("Transaction:\n")
	b.WriteString("- Description: " + cleanedRemark + "\n")
	b.WriteString("- Direction: " + directionWord(&tx) + "\n")
	b.WriteString("- Amount: " + amountString(&tx) + "\n\n")

	b.WriteString("Reply with EXACTLY three labeled lines and nothing else:\n")
	b.WriteString("CATEGORY: <category name>\n")
	b.WriteString("SUBCATEGORY: <subcategory name, or a single dash ->\n")
	b.WriteString("CONFIDENCE: <High | Medium | Low>\n")

	return b.String()
}

func directionWord(tx *RawTransaction) string {
	if tx.IsDebit() {
		return "DEBIT (money out)"
	}
	return "CREDIT (money in)"
}

func amountString(tx *RawTransaction) string {
	var amt decimal.Decimal
	switch {
	case tx.Withdrawal != nil:
		amt = *tx.Withdrawal
	case tx.Deposit != nil:
		amt = *tx.Deposit
	}
	return "INR " + amt.StringFixed(2)
}
