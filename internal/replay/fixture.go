package replay

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/game"
)

// #region fixture-types

// Fixture is the top-level YAML structure for a simulation fixture.
type Fixture struct {
	Description string             `yaml:"description"`
	Config      game.Config        `yaml:"config"`
	Items       []catalog.SeedItem `yaml:"items"`
	Cases       []FixtureCase      `yaml:"cases"`
}

// FixtureCase is one target and its expected result.
type FixtureCase struct {
	Target       string      `yaml:"target"`
	Expect       game.Result `yaml:"expect"`
	MaxQuestions int         `yaml:"max_questions,omitempty"` // 0 = no bound
}

// CaseResult captures the outcome of one fixture case.
type CaseResult struct {
	Case       FixtureCase
	Got        game.Result
	Questions  int
	Pass       bool
	Reason     string
	Transcript Transcript
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// CatalogItems converts the fixture's seed items.
func (f *Fixture) CatalogItems() ([]catalog.Item, error) {
	items := make([]catalog.Item, 0, len(f.Items))
	seen := make(map[int]bool, len(f.Items))
	for _, si := range f.Items {
		it, err := si.ToItem()
		if err != nil {
			return nil, err
		}
		if seen[it.ID] {
			return nil, fmt.Errorf("fixture item %d: duplicate id", it.ID)
		}
		seen[it.ID] = true
		items = append(items, it)
	}
	return items, nil
}

// #endregion fixture-loader

// #region run-fixture

// RunFixture simulates every case against e, in order, so learning from
// earlier cases carries into later ones.
func RunFixture(e *game.Engine, f *Fixture) ([]CaseResult, error) {
	results := make([]CaseResult, 0, len(f.Cases))
	for _, c := range f.Cases {
		target, ok, err := e.ResolveName(c.Target)
		if err != nil {
			return results, err
		}
		if !ok {
			results = append(results, CaseResult{Case: c, Reason: fmt.Sprintf("target %q not in catalog", c.Target)})
			continue
		}
		tr, err := Simulate(e, target)
		if err != nil {
			return results, err
		}
		res := CaseResult{
			Case:       c,
			Got:        tr.Outcome.Result,
			Questions:  tr.Questions,
			Pass:       true,
			Transcript: tr,
		}
		expect := c.Expect
		if expect == "" {
			expect = game.ResultGuessed
		}
		switch {
		case res.Got != expect:
			res.Pass = false
			res.Reason = fmt.Sprintf("expected %s, got %s", expect, res.Got)
		case c.MaxQuestions > 0 && res.Questions > c.MaxQuestions:
			res.Pass = false
			res.Reason = fmt.Sprintf("took %d questions, limit %d", res.Questions, c.MaxQuestions)
		}
		results = append(results, res)
	}
	return results, nil
}

// #endregion run-fixture
