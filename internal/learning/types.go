package learning

import "github.com/danielpatrickdp/adaptive-guess/internal/catalog"

// #region config
// Config holds the reward, penalty and decay parameters of the learner.
type Config struct {
	LearningRate float64 `yaml:"learning_rate"` // reward added to the revealed item (default 0.1)
	Penalty      float64 `yaml:"penalty"`       // multiplier of LearningRate for other finalists (default -0.2)
	DecayRate    float64 `yaml:"decay_rate"`    // multiplicative decay for all other items (default 0.995)
	MinScore     float64 `yaml:"min_score"`     // clamp floor (default 0)
	MaxScore     float64 `yaml:"max_score"`     // clamp ceiling (default 100)
}

// DefaultConfig returns the reference learning parameters.
func DefaultConfig() Config {
	return Config{
		LearningRate: 0.1,
		Penalty:      -0.2,
		DecayRate:    0.995,
		MinScore:     0,
		MaxScore:     100,
	}
}
// #endregion config

// #region store
// Store is the popularity surface of the catalog the learner writes to.
// UpdatePopularity applies everything fn writes or nothing.
type Store interface {
	UpdatePopularity(fn func(catalog.PopularityWriter) error) error
	PopularityStats(topN int) (catalog.PopularityStats, error)
	ResetPopularity() error
}
// #endregion store

// #region result
// Result reports what one Update changed.
type Result struct {
	TargetFound bool            // false when the target id is not in the catalog
	Target      float64         // target score after the reward
	Penalized   map[int]float64 // other finalists and their new scores
	Excluded    []int           // ids spared from decay
}
// #endregion result
