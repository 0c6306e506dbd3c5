package pipeline

import "strings"

// ValidateRow checks the statement-schema invariant: exactly one of
// withdrawal/deposit is populated, and the populated one is positive.
// A transaction is either a debit or a credit, never both, never neither.
// Violations are reported, not repaired.
func ValidateRow(tx *RawTransaction) *SchemaViolation {
	hasWithdrawal := tx.Withdrawal != nil
	hasDeposit := tx.Deposit != nil

	switch {
	case hasWithdrawal && hasDeposit:
		return &SchemaViolation{Seq: tx.Seq, Reason: "both withdrawal and deposit populated"}
	case !hasWithdrawal && !hasDeposit:
		return &SchemaViolation{Seq: tx.Seq, Reason: "neither withdrawal nor deposit populated"}
	case hasWithdrawal && !tx.Withdrawal.IsPositive():
		return &SchemaViolation{Seq: tx.Seq, Reason: "withdrawal amount must be positive, got " + tx.Withdrawal.String()}
	case hasDeposit && !tx.Deposit.IsPositive():
		return &SchemaViolation{Seq: tx.Seq, Reason: "deposit amount must be positive, got " + tx.Deposit.String()}
	}

	if strings.TrimSpace(tx.DateRaw) == "" {
		return &SchemaViolation{Seq: tx.Seq, Reason: "missing transaction date"}
	}

	return nil
}
