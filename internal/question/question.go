// Package question defines the yes/no questions the engine can ask.
package question

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
)

// #region kinds
// Kind separates boolean-flag questions from categorical value questions.
type Kind string

const (
	KindAttribute   Kind = "attribute"
	KindCategorical Kind = "categorical"
)

// Category names a multi-valued attribute asked one value at a time.
type Category string

const (
	CategoryType       Category = "type"
	CategoryColor      Category = "color"
	CategoryRegion     Category = "region"
	CategoryGeneration Category = "generation"
)

// Categories lists the categories in enumeration order.
var Categories = []Category{CategoryType, CategoryColor, CategoryRegion, CategoryGeneration}

// #endregion kinds

// #region question
// Question is either an attribute question (Attribute set) or a categorical
// question (Category and Value set).
type Question struct {
	Kind      Kind     `json:"kind" yaml:"kind"`
	Attribute string   `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Category  Category `json:"category,omitempty" yaml:"category,omitempty"`
	Value     string   `json:"value,omitempty" yaml:"value,omitempty"`
}

// Attribute builds a boolean-flag question.
func Attribute(name string) Question {
	return Question{Kind: KindAttribute, Attribute: name}
}

// Categorical builds a single-value partition question.
func Categorical(cat Category, value string) Question {
	return Question{Kind: KindCategorical, Category: cat, Value: value}
}

// IsZero reports whether q is the empty question.
func (q Question) IsZero() bool {
	return q.Kind == ""
}

// Key returns "<type>:<detail>", e.g. "attribute:legendary" or "type:Fire".
func (q Question) Key() string {
	if q.Kind == KindAttribute {
		return string(KindAttribute) + ":" + q.Attribute
	}
	return string(q.Category) + ":" + q.Value
}

// ParseKey is the inverse of Key. The result is validated.
func ParseKey(key string) (Question, error) {
	prefix, value, ok := strings.Cut(key, ":")
	if !ok || value == "" {
		return Question{}, fmt.Errorf("question key %q: missing value", key)
	}
	q := Categorical(Category(prefix), value)
	if Kind(prefix) == KindAttribute {
		q = Attribute(value)
	}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// Matches reports whether the answer for it would be yes.
func (q Question) Matches(it catalog.Item) bool {
	if q.Kind == KindAttribute {
		return it.Flag(q.Attribute) == catalog.True
	}
	switch q.Category {
	case CategoryType:
		return it.HasType(q.Value)
	case CategoryColor:
		return it.Color == q.Value
	case CategoryRegion:
		return it.Region == q.Value
	case CategoryGeneration:
		return it.Generation != 0 && strconv.Itoa(it.Generation) == q.Value
	}
	return false
}

// Validate checks that the question refers to a known attribute or category.
func (q Question) Validate() error {
	switch q.Kind {
	case KindAttribute:
		if !catalog.IsFlag(q.Attribute) {
			return fmt.Errorf("question %q: %w", q.Attribute, catalog.ErrUnknownAttribute)
		}
		return nil
	case KindCategorical:
		for _, c := range Categories {
			if c == q.Category {
				return nil
			}
		}
		return fmt.Errorf("question category %q: %w", q.Category, catalog.ErrUnknownAttribute)
	}
	return fmt.Errorf("question kind %q: %w", q.Kind, catalog.ErrUnknownAttribute)
}

// String implements fmt.Stringer.
func (q Question) String() string {
	return q.Key()
}

// #endregion question

// #region text
var attributeText = map[string]string{
	"legendary":            "Is it a legendary Pokemon?",
	"mythical":             "Is it a mythical Pokemon?",
	"baby":                 "Is it a baby Pokemon?",
	"fossil":               "Is it a fossil Pokemon?",
	"starter":              "Is it a starter Pokemon?",
	"mega_evolve":          "Can it mega evolve?",
	"gigantamax":           "Can it Gigantamax?",
	"evolves":              "Does it evolve into another Pokemon?",
	"evolves_from_stone":   "Is it evolved from a stone? (e.g. Raichu = yes)",
	"evolves_from_trading": "Does it evolve through trading? (e.g. Gengar = yes)",
}

// Text renders the question for display.
func (q Question) Text() string {
	if q.Kind == KindAttribute {
		if s, ok := attributeText[q.Attribute]; ok {
			return s
		}
		return fmt.Sprintf("Is the %s true?", q.Attribute)
	}
	switch q.Category {
	case CategoryType:
		return fmt.Sprintf("Is it a %s-type Pokemon?", q.Value)
	case CategoryColor:
		return fmt.Sprintf("Is it %s in color? (Pokedex color)", q.Value)
	case CategoryRegion:
		return fmt.Sprintf("Is it from the %s region?", q.Value)
	case CategoryGeneration:
		return fmt.Sprintf("Is it from Generation %s?", q.Value)
	}
	return "Unknown question"
}

// #endregion text

// #region asked
// AskedValues holds the categorical values already asked in a session,
// one set per category.
type AskedValues map[Category]map[string]bool

// NewAskedValues returns empty sets for every category.
func NewAskedValues() AskedValues {
	a := make(AskedValues, len(Categories))
	for _, c := range Categories {
		a[c] = make(map[string]bool)
	}
	return a
}

// Add records value as asked for cat.
func (a AskedValues) Add(cat Category, value string) {
	set, ok := a[cat]
	if !ok {
		set = make(map[string]bool)
		a[cat] = set
	}
	set[value] = true
}

// Has reports whether value was already asked for cat.
func (a AskedValues) Has(cat Category, value string) bool {
	return a[cat][value]
}

// Reset clears every set.
func (a AskedValues) Reset() {
	for _, c := range Categories {
		a[c] = make(map[string]bool)
	}
}

// Clone returns an independent copy.
func (a AskedValues) Clone() AskedValues {
	out := make(AskedValues, len(a))
	for c, set := range a {
		cp := make(map[string]bool, len(set))
		for v := range set {
			cp[v] = true
		}
		out[c] = cp
	}
	return out
}

// #endregion asked
