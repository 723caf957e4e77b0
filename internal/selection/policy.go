// Package selection enumerates unasked questions and picks the one with the
// highest popularity-adjusted information gain.
package selection

import (
	"sort"
	"strconv"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/entropy"
	"github.com/danielpatrickdp/adaptive-guess/internal/question"
)

// #region bias
// ApplyPopularityBias raises gain for questions whose better branch keeps the
// most popular remaining item reachable. It never lowers gain.
func ApplyPopularityBias(gain float64, q question.Question, items []catalog.Item) float64 {
	if len(items) == 0 {
		return gain
	}
	var maxYes, maxNo, maxAll float64
	matched := 0
	for _, it := range items {
		p := it.Popularity
		if p > maxAll {
			maxAll = p
		}
		if q.Matches(it) {
			matched++
			if p > maxYes {
				maxYes = p
			}
		} else if p > maxNo {
			maxNo = p
		}
	}
	if matched == 0 || maxAll <= 0 {
		return gain
	}
	ratio := max(maxYes, maxNo) / maxAll
	boost := gain * (ratio - 0.5) * 2.0
	if boost < 0 {
		boost = 0
	}
	return gain + boost
}

// #endregion bias

// #region candidates
// Candidates lists the askable questions in enumeration order: flags not in
// the filter, then unasked types, colors, regions and generations seen in the
// remaining set.
func Candidates(in Input) []question.Question {
	var out []question.Question
	for _, f := range catalog.FlagAttributes {
		if !in.Filter.Has(f) {
			out = append(out, question.Attribute(f))
		}
	}

	types := map[string]bool{}
	colors := map[string]bool{}
	regions := map[string]bool{}
	gens := map[int]bool{}
	for _, it := range in.Remaining {
		if it.Type1 != "" {
			types[it.Type1] = true
		}
		if it.Type2 != "" {
			types[it.Type2] = true
		}
		if it.Color != "" {
			colors[it.Color] = true
		}
		if it.Region != "" {
			regions[it.Region] = true
		}
		if it.Generation != 0 {
			gens[it.Generation] = true
		}
	}

	for _, v := range sortedKeys(types) {
		if !in.Asked.Has(question.CategoryType, v) {
			out = append(out, question.Categorical(question.CategoryType, v))
		}
	}
	for _, v := range sortedKeys(colors) {
		if !in.Asked.Has(question.CategoryColor, v) {
			out = append(out, question.Categorical(question.CategoryColor, v))
		}
	}
	for _, v := range sortedKeys(regions) {
		if !in.Asked.Has(question.CategoryRegion, v) {
			out = append(out, question.Categorical(question.CategoryRegion, v))
		}
	}

	genList := make([]int, 0, len(gens))
	for g := range gens {
		genList = append(genList, g)
	}
	sort.Ints(genList)
	for _, g := range genList {
		v := strconv.Itoa(g)
		if !in.Asked.Has(question.CategoryGeneration, v) {
			out = append(out, question.Categorical(question.CategoryGeneration, v))
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// #endregion candidates

// #region policy
// Policy scores candidates. A nil Booster adds nothing.
type Policy struct {
	Booster Booster
}

// Score rates a single question against the remaining set. The booster only
// applies to questions with positive gain.
func (p Policy) Score(items []catalog.Item, q question.Question) (Choice, error) {
	gain, err := entropy.Gain(items, q)
	if err != nil {
		return Choice{}, err
	}
	score := ApplyPopularityBias(gain, q, items)
	if p.Booster != nil && gain > 0 {
		score += p.Booster.Boost(q)
	}
	return Choice{Question: q, Gain: gain, Score: score}, nil
}

// Rank scores every candidate in enumeration order.
func (p Policy) Rank(in Input) []Choice {
	qs := Candidates(in)
	out := make([]Choice, 0, len(qs))
	for _, q := range qs {
		c, err := p.Score(in.Remaining, q)
		if err != nil {
			// candidates come from the schema, so this is unreachable
			continue
		}
		out = append(out, c)
	}
	return out
}

// Best returns the highest-scoring candidate. A distinguishing candidate
// always beats one that is not. Ties keep the earlier candidate. ok is false
// when the remaining set is empty or nothing is left to ask.
func (p Policy) Best(in Input) (Choice, bool) {
	if len(in.Remaining) == 0 {
		return Choice{}, false
	}
	var best Choice
	found := false
	for _, c := range p.Rank(in) {
		if !found || better(c, best) {
			best = c
			found = true
		}
	}
	return best, found
}

func better(c, best Choice) bool {
	if c.Distinguishing() != best.Distinguishing() {
		return c.Distinguishing()
	}
	return c.Score > best.Score
}

// #endregion policy
