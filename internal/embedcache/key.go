// Package embedcache implements the embedding cache (spec §4.9): a
// map (model, text) -> vector with LRU eviction and two interchangeable
// backends.
package embedcache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Strategy selects which inputs feed the cache key derivation.
type Strategy string

const (
	StrategyTextOnly         Strategy = "text_only"
	StrategyModelText        Strategy = "model_text"
	StrategyModelVersionText Strategy = "model_version_text"
)

// Key derives a deterministic cache key per spec §4.2's embedding-cache key
// definition: a SHA-256 hex digest of the inputs the strategy selects.
func Key(strategy Strategy, model, version, text string) string {
	h := sha256.New()
	switch strategy {
	case StrategyTextOnly:
		h.Write([]byte(text))
	case StrategyModelVersionText:
		h.Write([]byte(model))
		h.Write([]byte{0})
		h.Write([]byte(version))
		h.Write([]byte{0})
		h.Write([]byte(text))
	case StrategyModelText:
		fallthrough
	default:
		h.Write([]byte(model))
		h.Write([]byte{0})
		h.Write([]byte(text))
	}
	return hex.EncodeToString(h.Sum(nil))
}
