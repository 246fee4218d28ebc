package rank

import "time"

// Config bundles every ranking-phase knob for one collection (spec §4.8).
type Config struct {
	Rerank       RerankConfig
	Decay        *DecayConfig
	ContextBoost ContextBoost
	FieldWeights FieldWeights
	ScoreExpr    *ScoreExpr
}

// ScoredCandidate is one document flowing through the ranking pipeline.
type ScoredCandidate struct {
	ID        string
	Score     float32
	Fields    map[string]any
	Timestamp time.Time
	Context   map[string]string
	// Field is the single dominant matched field, used for FieldWeights;
	// callers that don't track per-hit matched fields may leave this empty
	// (weight then defaults to 1.0).
	Field string
}

// Finalize computes final = base * recency * context * field_weight for
// one candidate, optionally overridden by the score expression (spec
// §4.8's "Final score" formula). searchCtx is the query-time context
// matched against c.Context for the context-boost term.
func Finalize(cfg Config, now time.Time, searchCtx map[string]string, c ScoredCandidate) float32 {
	base := float64(c.Score)
	recency := 1.0
	if cfg.Decay != nil {
		recency = Decay(*cfg.Decay, now.Sub(c.Timestamp))
	}
	context := cfg.ContextBoost.Apply(searchCtx, c.Context)
	fieldWeight := cfg.FieldWeights.Weight(c.Field)

	final := base * recency * context * fieldWeight

	if cfg.ScoreExpr != nil {
		numericFields := make(map[string]float64, len(c.Fields))
		for k, v := range c.Fields {
			switch n := v.(type) {
			case float64:
				numericFields[k] = n
			case float32:
				numericFields[k] = float64(n)
			case int:
				numericFields[k] = float64(n)
			}
		}
		final = cfg.ScoreExpr.Eval(final, numericFields)
	}

	return float32(final)
}
