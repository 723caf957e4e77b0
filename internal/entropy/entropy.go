// Package entropy scores yes/no questions by information gain over a
// uniformly weighted candidate set.
package entropy

import (
	"math"
	"sort"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/question"
)

// log2 treats sizes 0 and 1 as carrying no entropy.
func log2(n int) float64 {
	if n <= 1 {
		return 0
	}
	return math.Log2(float64(n))
}

// CurrentEntropy is log2(n) for n equally likely candidates.
func CurrentEntropy(n int) float64 {
	return log2(n)
}

// SplitGain returns the gain of splitting n candidates into k yes and n-k no.
func SplitGain(n, k int) float64 {
	if n <= 1 || k <= 0 || k >= n {
		return 0
	}
	total := float64(n)
	weighted := float64(k)/total*log2(k) + float64(n-k)/total*log2(n-k)
	return nonNegative(CurrentEntropy(n) - weighted)
}

// DistributionGain returns the gain of learning which group a candidate
// belongs to, given per-group counts. Groups are summed in sorted key order.
func DistributionGain(counts map[string]int) float64 {
	keys := make([]string, 0, len(counts))
	total := 0
	for k, c := range counts {
		if c > 0 {
			keys = append(keys, k)
			total += c
		}
	}
	if len(keys) < 2 {
		return 0
	}
	sort.Strings(keys)

	var weighted float64
	for _, k := range keys {
		c := counts[k]
		weighted += float64(c) / float64(total) * log2(c)
	}
	return nonNegative(CurrentEntropy(total) - weighted)
}

// Gain scores q against items before any popularity adjustment.
func Gain(items []catalog.Item, q question.Question) (float64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}
	if q.Kind == question.KindAttribute {
		counts := make(map[string]int, 2)
		for _, it := range items {
			counts[it.Flag(q.Attribute)]++
		}
		return DistributionGain(counts), nil
	}
	k := 0
	for _, it := range items {
		if q.Matches(it) {
			k++
		}
	}
	return SplitGain(len(items), k), nil
}

// rounding can leave a tiny negative residue on degenerate splits
func nonNegative(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}
