package pipeline

import "sync/atomic"

// Metrics counts pipeline events that are interesting but are not errors.
// Malformed model replies in particular are a designed fallback path, so they
// are counted here instead of being propagated. Safe for concurrent use;
// normalization runs on multiple workers.
type Metrics struct {
	MalformedNormalizations  atomic.Int64
	MalformedCategorizations atomic.Int64
	SchemaViolations         atomic.Int64
	FailedRows               atomic.Int64
}

// Snapshot is a plain-value copy for logging and reporting.
type Snapshot struct {
	MalformedNormalizations  int64
	MalformedCategorizations int64
	SchemaViolations         int64
	FailedRows               int64
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		MalformedNormalizations:  m.MalformedNormalizations.Load(),
		MalformedCategorizations: m.MalformedCategorizations.Load(),
		SchemaViolations:         m.SchemaViolations.Load(),
		FailedRows:               m.FailedRows.Load(),
	}
}
