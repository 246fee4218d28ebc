package rank

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecay_ExponentialScenario(t *testing.T) {
	cfg := DecayConfig{Func: DecayExponential, Scale: 24 * time.Hour, Rate: 0.5}
	assert.InDelta(t, 1.0, Decay(cfg, 0), 1e-3)
	assert.InDelta(t, 0.5, Decay(cfg, 24*time.Hour), 1e-3)
	assert.InDelta(t, 0.25, Decay(cfg, 48*time.Hour), 1e-3)
}

func TestDecay_WithinOffsetIsOne(t *testing.T) {
	cfg := DecayConfig{Func: DecayLinear, Scale: time.Hour, Offset: 10 * time.Minute, Rate: 0.5}
	assert.Equal(t, 1.0, Decay(cfg, 5*time.Minute))
}

func TestDecay_Bounds(t *testing.T) {
	for _, fn := range []DecayFunc{DecayExponential, DecayLinear, DecayGaussian} {
		cfg := DecayConfig{Func: fn, Scale: time.Hour, Rate: 0.5}
		for _, age := range []time.Duration{0, time.Minute, time.Hour, 10 * time.Hour, 1000 * time.Hour} {
			v := Decay(cfg, age)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestContextBoost(t *testing.T) {
	b := ContextBoost{Boosts: map[string]float64{"lang=go": 2.0}}
	assert.Equal(t, 2.0, b.Apply(map[string]string{"lang": "go"}, map[string]string{"lang": "go"}))
	assert.Equal(t, 1.0, b.Apply(map[string]string{"lang": "go"}, map[string]string{"lang": "rust"}))
}

func TestFieldWeights_DefaultsToOne(t *testing.T) {
	w := FieldWeights{"title": 2.0}
	assert.Equal(t, 2.0, w.Weight("title"))
	assert.Equal(t, 1.0, w.Weight("body"))
}

func TestScoreExpr_Arithmetic(t *testing.T) {
	e, err := ParseScoreExpr("(_score + views) * 2 - log(10)")
	require.NoError(t, err)
	got := e.Eval(1.0, map[string]float64{"views": 3.0})
	want := (1.0+3.0)*2 - 2.302585092994046
	assert.InDelta(t, want, got, 1e-9)
}

func TestScoreExpr_NonFiniteFallsBackToScore(t *testing.T) {
	e, err := ParseScoreExpr("_score / zero")
	require.NoError(t, err)
	got := e.Eval(5.0, map[string]float64{"zero": 0.0})
	assert.Equal(t, 5.0, got)
}

func TestConcatRerank_EmptyQueryKeepsPhase1Scores(t *testing.T) {
	docs := []Doc{{ID: "a", Score: 1, Text: "unrelated"}, {ID: "b", Score: 2, Text: "unrelated"}}
	scores, err := ConcatRerank{}.Rerank(context.Background(), "", docs)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, scores)
}

func TestApply_Rerank(t *testing.T) {
	docs := []Doc{
		{ID: "a", Score: 0.9, Text: "golang concurrency patterns"},
		{ID: "b", Score: 0.8, Text: "python web framework"},
	}
	cfg := RerankConfig{Enabled: true, TopN: 2, BlendWeight: 1.0}
	out, err := Apply(context.Background(), ConcatRerank{}, cfg, "golang concurrency", docs)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
}
