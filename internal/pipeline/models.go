package pipeline

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawTransaction is one row of the bank statement as loaded from the input
// file, before any interpretation. Exactly one of Withdrawal/Deposit must be
// non-nil and positive; ValidateRow reports violations.
type RawTransaction struct {
	Seq     int       // from "S No."
	Date    time.Time // parsed from "Transaction Date"; zero if unparseable
	DateRaw string    // original date cell, written back verbatim on save
	Remark  string    // from "Transaction Remarks"

	Withdrawal *decimal.Decimal // nil when the cell is empty
	Deposit    *decimal.Decimal // nil when the cell is empty
	Balance    decimal.Decimal  // running balance after this row

	// Extras holds values of input columns beyond the required set, aligned
	// with the extra-header list returned by the store. They pass through to
	// the output untouched.
	Extras []string
}

// SignedAmount returns the row amount under the pipeline's sign convention:
// debits (withdrawals) are negative, credits (deposits) are positive.
func (t *RawTransaction) SignedAmount() decimal.Decimal {
	if t.Withdrawal != nil {
		return t.Withdrawal.Neg()
	}
	if t.Deposit != nil {
		return *t.Deposit
	}
	return decimal.Zero
}

// IsDebit reports whether the row is a withdrawal.
func (t *RawTransaction) IsDebit() bool {
	return t.Withdrawal != nil
}

// Confidence is the coarse reliability signal attached to a categorization.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// ParseConfidence maps free text onto the three levels. Anything
// unrecognized degrades to Low; this function never fails.
func ParseConfidence(s string) Confidence {
	switch normalizeToken(s) {
	case "HIGH":
		return ConfidenceHigh
	case "MEDIUM":
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// UncategorizedLabel is the sentinel category used when the model reply
// carries no usable category.
const UncategorizedLabel = "Uncategorized"

// ErrorMarker is written in place of the cleaned remark and category for
// rows whose external call failed.
const ErrorMarker = "!ERROR"

// InterpretedTransaction is a RawTransaction plus everything the two model
// stages produced for it. Field ownership is strict: the normalizer writes
// CleanedRemark/Notes, the categorizer writes Category/Subcategory/Confidence,
// and either stage may mark the row failed. Frozen once the pipeline is done.
type InterpretedTransaction struct {
	RawTransaction

	CleanedRemark string
	Notes         string
	Category      string
	Subcategory   string
	Confidence    Confidence

	Failed        bool
	FailureReason string
}

// Fail marks the row failed with the given reason. The first reason wins.
func (t *InterpretedTransaction) Fail(reason string) {
	if t.Failed {
		return
	}
	t.Failed = true
	t.FailureReason = reason
}
