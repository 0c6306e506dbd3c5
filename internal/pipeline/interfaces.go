package pipeline

import "context"

// TabularStore abstracts the statement file format away from the pipeline.
// Load returns the rows in file order plus the names of any extra columns
// (beyond the required set) that should be carried through to the output.
type TabularStore interface {
	Load(ctx context.Context, path string) ([]RawTransaction, []string, error)
	Save(ctx context.Context, path string, extraHeaders []string, rows []*InterpretedTransaction) error
}
