package pipeline

import "fmt"

// SchemaViolation reports an input row that breaks the statement schema:
// a required field is missing, or the withdrawal/deposit pair is not
// exactly-one-populated. The row is excluded from the model stages but still
// appears in the output, marked failed.
type SchemaViolation struct {
	Seq    int
	Reason string
}

func (e *SchemaViolation) Error() string {
	return fmt.Sprintf("row %d: schema violation: %s", e.Seq, e.Reason)
}
