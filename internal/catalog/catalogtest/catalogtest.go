// Package catalogtest provides a small fixed catalog for tests.
package catalogtest

import (
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
)

const seedYAML = `
items:
  - {id: 1, name: Bulbasaur, types: [Grass, Poison], color: green, region: Kanto, generation: 1, flags: {starter: true, evolves: true}}
  - {id: 4, name: Charmander, types: [Fire], color: red, region: Kanto, generation: 1, flags: {starter: true, evolves: true}}
  - {id: 6, name: Charizard, types: [Fire, Flying], color: red, region: Kanto, generation: 1, flags: {mega_evolve: true, gigantamax: true}}
  - {id: 7, name: Squirtle, types: [Water], color: blue, region: Kanto, generation: 1, flags: {starter: true, evolves: true}}
  - {id: 25, name: Pikachu, types: [Electric], color: yellow, region: Kanto, generation: 1, flags: {evolves: true, gigantamax: true}}
  - {id: 26, name: Raichu, types: [Electric], color: yellow, region: Kanto, generation: 1, flags: {evolves_from_stone: true}}
  - {id: 94, name: Gengar, types: [Ghost, Poison], color: purple, region: Kanto, generation: 1, flags: {mega_evolve: true, gigantamax: true, evolves_from_trading: true}}
  - {id: 133, name: Eevee, types: [Normal], color: brown, region: Kanto, generation: 1, flags: {evolves: true, gigantamax: true}}
  - {id: 138, name: Omanyte, types: [Rock, Water], color: blue, region: Kanto, generation: 1, flags: {fossil: true, evolves: true}}
  - {id: 144, name: Articuno, types: [Ice, Flying], color: blue, region: Kanto, generation: 1, flags: {legendary: true}}
  - {id: 150, name: Mewtwo, types: [Psychic], color: purple, region: Kanto, generation: 1, flags: {legendary: true, mega_evolve: true}}
  - {id: 151, name: Mew, types: [Psychic], color: pink, region: Kanto, generation: 1, flags: {mythical: true}}
  - {id: 172, name: Pichu, types: [Electric], color: yellow, region: Johto, generation: 2, flags: {baby: true, evolves: true}}
  - {id: 249, name: Lugia, types: [Psychic, Flying], color: white, region: Johto, generation: 2, flags: {legendary: true}}
  - {id: 255, name: Torchic, types: [Fire], color: red, region: Hoenn, generation: 3, flags: {starter: true, evolves: true}}
  - {id: 448, name: Lucario, types: [Fighting, Steel], color: blue, region: Sinnoh, generation: 4, flags: {mega_evolve: true}}
`

// Items returns the fixture catalog in ascending id order.
func Items() []catalog.Item {
	items, err := catalog.ParseSeed([]byte(seedYAML))
	if err != nil {
		panic(err)
	}
	return items
}

// Item builds a single-type record with the given flags set to "true".
func Item(id int, name, typ string, flags ...string) catalog.Item {
	it := catalog.Item{
		ID:         id,
		Name:       name,
		Type1:      typ,
		Color:      "red",
		Region:     "Kanto",
		Generation: 1,
		Flags:      make(map[string]string, len(catalog.FlagAttributes)),
	}
	for _, f := range catalog.FlagAttributes {
		it.Flags[f] = catalog.False
	}
	for _, f := range flags {
		it.Flags[f] = catalog.True
	}
	return it
}

// Store opens a temporary SQLite catalog seeded with items (Items() when nil).
func Store(t *testing.T, items []catalog.Item) *catalog.Store {
	t.Helper()
	s, err := catalog.NewStore(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if items == nil {
		items = Items()
	}
	if err := s.Upsert(items); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	return s
}
