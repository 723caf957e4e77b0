package selection

import (
	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/question"
)

// #region input
// Input is the session view the policy scores against.
type Input struct {
	Remaining []catalog.Item
	Filter    catalog.Filter
	Asked     question.AskedValues
}

// #endregion input

// #region choice
// Choice is a scored question.
type Choice struct {
	Question question.Question
	Gain     float64 // raw information gain
	Score    float64 // gain after popularity bias and boost
}

// Distinguishing reports whether the question splits the remaining set.
func (c Choice) Distinguishing() bool {
	return c.Gain > 0
}

// #endregion choice

// #region booster
// Booster supplies an additive score term per question.
type Booster interface {
	Boost(q question.Question) float64
}

// #endregion booster
