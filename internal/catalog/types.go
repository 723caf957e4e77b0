package catalog

import (
	"errors"
	"sort"
	"strconv"
)

// #region tokens
// Boolean flags are stored and compared as these literal text tokens.
const (
	True  = "true"
	False = "false"
)

// #endregion tokens

// #region attributes
const (
	AttrID         = "id"
	AttrName       = "name"
	AttrType1      = "type_1"
	AttrType2      = "type_2"
	AttrColor      = "primary_color"
	AttrRegion     = "region"
	AttrGeneration = "generation"
	AttrPopularity = "popularity"
)

// FlagAttributes lists the yes/no flags in question enumeration order.
var FlagAttributes = []string{
	"legendary",
	"mythical",
	"baby",
	"fossil",
	"starter",
	"mega_evolve",
	"gigantamax",
	"evolves",
	"evolves_from_stone",
	"evolves_from_trading",
}

var (
	flagSet = func() map[string]bool {
		m := make(map[string]bool, len(FlagAttributes))
		for _, f := range FlagAttributes {
			m[f] = true
		}
		return m
	}()

	scalarSet = map[string]bool{
		AttrID: true, AttrName: true, AttrType1: true, AttrType2: true,
		AttrColor: true, AttrRegion: true, AttrGeneration: true, AttrPopularity: true,
	}
)

// ErrUnknownAttribute is returned when an attribute is not part of the schema.
var ErrUnknownAttribute = errors.New("unknown attribute")

// IsFlag reports whether name is one of the declared boolean flags.
func IsFlag(name string) bool {
	return flagSet[name]
}

// IsAttribute reports whether name is any schema attribute.
func IsAttribute(name string) bool {
	return flagSet[name] || scalarSet[name]
}

// #endregion attributes

// #region item
// Item is one guessable catalog record.
type Item struct {
	ID         int
	Name       string
	Type1      string
	Type2      string // empty for single-type items
	Color      string
	Region     string
	Generation int // 0 when unknown
	Flags      map[string]string
	Popularity float64
}

// Flag returns the text token of a flag, False when unset.
func (it Item) Flag(name string) string {
	if v, ok := it.Flags[name]; ok && v != "" {
		return v
	}
	return False
}

// HasType reports whether either type tag equals t.
func (it Item) HasType(t string) bool {
	return t != "" && (it.Type1 == t || it.Type2 == t)
}

// Attribute returns the string-coded value of a schema attribute.
func (it Item) Attribute(name string) (string, bool) {
	switch name {
	case AttrID:
		return strconv.Itoa(it.ID), true
	case AttrName:
		return it.Name, true
	case AttrType1:
		return it.Type1, true
	case AttrType2:
		return it.Type2, true
	case AttrColor:
		return it.Color, true
	case AttrRegion:
		return it.Region, true
	case AttrGeneration:
		if it.Generation == 0 {
			return "", true
		}
		return strconv.Itoa(it.Generation), true
	case AttrPopularity:
		return strconv.FormatFloat(it.Popularity, 'f', -1, 64), true
	}
	if IsFlag(name) {
		return it.Flag(name), true
	}
	return "", false
}

// ByPopularity returns up to n items, most popular first, lower id first on
// ties. A negative n returns all of them.
func ByPopularity(items []Item, n int) []Item {
	sorted := append([]Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Popularity != sorted[j].Popularity {
			return sorted[i].Popularity > sorted[j].Popularity
		}
		return sorted[i].ID < sorted[j].ID
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// #endregion item

// #region filter
// Filter maps attribute names to required values. Entries are ANDed.
type Filter map[string]string

// Clone returns an independent copy.
func (f Filter) Clone() Filter {
	out := make(Filter, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Has reports whether attr is already constrained.
func (f Filter) Has(attr string) bool {
	_, ok := f[attr]
	return ok
}

// #endregion filter

// #region stats
// PopularityStats summarizes the popularity column.
type PopularityStats struct {
	Min   float64
	Max   float64
	Avg   float64
	Total int
	Top   []Item
}

// #endregion stats
