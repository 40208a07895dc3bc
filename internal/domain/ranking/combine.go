// Package ranking blends requirement fit with a candidate's base evaluation
// score and orders candidates or jobs by the result.
package ranking

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Fixed blend weights: requirement alignment outweighs the generic score.
const (
	FitWeight  = 0.6
	BaseWeight = 0.4
)

const (
	maxScore = 100
	// smallScaleMax is the largest value assumed to be on a 0-10 scale.
	smallScaleMax = 10
)

// NormalizeScore maps a raw evaluation score to 0..100. Numbers and numeric
// strings are accepted; anything else is 0. Values up to 10 are treated as a
// 0-10 scale and multiplied by 10. The result is clamped and rounded.
func NormalizeScore(raw any) int {
	n, ok := toNumber(raw)
	if !ok {
		return 0
	}
	if n <= smallScaleMax {
		n *= 10
	}
	return int(math.Round(math.Max(0, math.Min(maxScore, n))))
}

func toNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil, bool:
		return 0, false
	case string:
		raw = strings.TrimSpace(v)
		if raw == "" {
			return 0, false
		}
	}
	n, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// Combine returns round(0.6*fit + 0.4*NormalizeScore(raw)), always in 0..100.
func Combine(fit int, raw any) int {
	return blend(fit, NormalizeScore(raw))
}

func blend(fit, normalized int) int {
	f := math.Max(0, math.Min(maxScore, float64(fit)))
	// Explicit conversions keep the two products from being fused.
	v := float64(FitWeight*f) + float64(BaseWeight*float64(normalized))
	return int(math.Round(v))
}
