// Package rank implements the phase-2 ranking pipeline (spec §4.8): rerank,
// recency decay, context boost, field weights, and score expressions.
package rank

import (
	"math"
	"time"
)

// DecayFunc names one of the three recency-decay shapes (spec §4.8).
type DecayFunc string

const (
	DecayExponential DecayFunc = "exponential"
	DecayLinear      DecayFunc = "linear"
	DecayGaussian    DecayFunc = "gaussian"
)

// DecayConfig parameterizes a decay multiplier: ages within Offset yield
// 1.0; Scale sets the age unit. At one Scale past Offset the exponential
// shape returns Rate and the gaussian shape returns sqrt(Rate); the linear
// shape ignores Rate and reaches 0 there (spec §4.8, P6, scenario 3).
type DecayConfig struct {
	Func   DecayFunc
	Scale  time.Duration
	Offset time.Duration
	Rate   float64
}

// Decay computes the [0,1] recency multiplier for age = now - timestamp
// (spec §4.8, P6: every decay function returns values in [0,1] and equals 1
// at age <= offset).
func Decay(cfg DecayConfig, age time.Duration) float64 {
	if age <= cfg.Offset {
		return 1.0
	}
	if cfg.Scale <= 0 {
		return 1.0
	}
	adjusted := float64(age-cfg.Offset) / float64(cfg.Scale)

	var v float64
	switch cfg.Func {
	case DecayLinear:
		v = 1 - adjusted
		if v < 0 {
			v = 0
		}
	case DecayGaussian:
		lnRate := math.Log(cfg.Rate)
		v = math.Exp(-0.5 * adjusted * adjusted * math.Abs(lnRate))
	case DecayExponential:
		fallthrough
	default:
		v = math.Pow(cfg.Rate, adjusted)
	}

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}
