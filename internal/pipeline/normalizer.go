package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/statement-analyser/internal/llm"
	"github.com/dvloznov/statement-analyser/internal/logger"
)

// Normalizer rewrites one raw payment-rail remark into a human-readable
// description plus uncertainty notes. It owns no shared state, so rows may
// be normalized concurrently.
type Normalizer struct {
	completer llm.Completer
	metrics   *Metrics
}

func NewNormalizer(completer llm.Completer, metrics *Metrics) *Normalizer {
	return &Normalizer{completer: completer, metrics: metrics}
}

// Normalize runs the normalization stage for one row. A service failure
// surfaces as an error; a malformed reply does not, it degrades to the
// parser defaults and bumps the malformed counter.
func (n *Normalizer) Normalize(ctx context.Context, tx RawTransaction) (NormalizationResult, error) {
	reply, err := n.completer.Complete(ctx, normalizationPrompt(tx))
	if err != nil {
		return NormalizationResult{}, fmt.Errorf("Normalize: row %d: %w", tx.Seq, err)
	}

	res, ok := ParseNormalization(reply, tx.Remark)
	if !ok {
		n.metrics.MalformedNormalizations.Add(1)
		log := logger.FromContext(ctx)
		log.Warn().
			Int("row", tx.Seq).
			Str("reply", truncateForLog(reply)).
			Msg("normalization reply missing expected labels, using defaults")
	}
	return res, nil
}

func truncateForLog(s string) string {
	const max = 160
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
