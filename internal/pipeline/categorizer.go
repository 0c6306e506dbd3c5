package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/statement-analyser/internal/llm"
	"github.com/dvloznov/statement-analyser/internal/logger"
)

// Categorizer assigns a spending category and confidence to one cleaned
// remark. Every call reads the shared taxonomy (to bias the prompt toward
// label reuse) and proposes the returned category back into it, so
// categorization must run serialized in row order relative to that mutation.
// The external call itself happens outside any lock; the Taxonomy guards its
// own state.
type Categorizer struct {
	completer llm.Completer
	taxonomy  *Taxonomy
	metrics   *Metrics
}

func NewCategorizer(completer llm.Completer, taxonomy *Taxonomy, metrics *Metrics) *Categorizer {
	return &Categorizer{completer: completer, taxonomy: taxonomy, metrics: metrics}
}

// Categorize runs the categorization stage for one row. Service failures
// surface as errors; malformed replies degrade to the sentinel category with
// Low confidence and bump the malformed counter.
func (c *Categorizer) Categorize(ctx context.Context, cleanedRemark string, tx RawTransaction) (CategorizationResult, error) {
	reply, err := c.completer.Complete(ctx, categorizationPrompt(cleanedRemark, tx, c.taxonomy))
	if err != nil {
		return CategorizationResult{}, fmt.Errorf("Categorize: row %d: %w", tx.Seq, err)
	}

	res, ok := ParseCategorization(reply)
	if !ok {
		c.metrics.MalformedCategorizations.Add(1)
		log := logger.FromContext(ctx)
		log.Warn().
			Int("row", tx.Seq).
			Str("reply", truncateForLog(reply)).
			Msg("categorization reply missing expected labels, using defaults")
	}

	if c.taxonomy.Add(res.Category) {
		log := logger.FromContext(ctx)
		log.Debug().
			Str("category", res.Category).
			Int("taxonomy_size", c.taxonomy.Len()).
			Msg("new category discovered")
	}
	return res, nil
}
