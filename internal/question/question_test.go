package question

import (
	"errors"
	"testing"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/catalog/catalogtest"
)

func TestKey(t *testing.T) {
	tests := []struct {
		q    Question
		want string
	}{
		{Attribute("legendary"), "attribute:legendary"},
		{Categorical(CategoryType, "Fire"), "type:Fire"},
		{Categorical(CategoryColor, "red"), "color:red"},
		{Categorical(CategoryRegion, "Kanto"), "region:Kanto"},
		{Categorical(CategoryGeneration, "3"), "generation:3"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.q.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	charizard := catalog.Item{
		ID: 6, Name: "Charizard", Type1: "Fire", Type2: "Flying",
		Color: "red", Region: "Kanto", Generation: 1,
		Flags: map[string]string{"gigantamax": catalog.True, "legendary": catalog.False},
	}
	tests := []struct {
		name string
		q    Question
		want bool
	}{
		{"primary type", Categorical(CategoryType, "Fire"), true},
		{"secondary type", Categorical(CategoryType, "Flying"), true},
		{"other type", Categorical(CategoryType, "Water"), false},
		{"color", Categorical(CategoryColor, "red"), true},
		{"region", Categorical(CategoryRegion, "Johto"), false},
		{"generation", Categorical(CategoryGeneration, "1"), true},
		{"flag true", Attribute("gigantamax"), true},
		{"flag false", Attribute("legendary"), false},
		{"flag unset", Attribute("fossil"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Matches(charizard); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesGenerationZeroNeverMatches(t *testing.T) {
	it := catalogtest.Item(1, "Unknown", "Normal")
	it.Generation = 0
	if Categorical(CategoryGeneration, "0").Matches(it) {
		t.Fatal("generation 0 should not match")
	}
}

func TestValidate(t *testing.T) {
	if err := Attribute("starter").Validate(); err != nil {
		t.Fatalf("starter: %v", err)
	}
	if err := Attribute("shiny").Validate(); !errors.Is(err, catalog.ErrUnknownAttribute) {
		t.Fatalf("expected ErrUnknownAttribute, got %v", err)
	}
	if err := Categorical("weight", "10").Validate(); !errors.Is(err, catalog.ErrUnknownAttribute) {
		t.Fatalf("expected ErrUnknownAttribute, got %v", err)
	}
}

func TestText(t *testing.T) {
	if got := Attribute("evolves_from_trading").Text(); got != "Does it evolve through trading? (e.g. Gengar = yes)" {
		t.Errorf("unexpected text %q", got)
	}
	if got := Categorical(CategoryType, "Fire").Text(); got != "Is it a Fire-type Pokemon?" {
		t.Errorf("unexpected text %q", got)
	}
	if got := Categorical(CategoryGeneration, "2").Text(); got != "Is it from Generation 2?" {
		t.Errorf("unexpected text %q", got)
	}
	if got := Attribute("custom").Text(); got != "Is the custom true?" {
		t.Errorf("unexpected fallback text %q", got)
	}
}

func TestAskedValues(t *testing.T) {
	a := NewAskedValues()
	a.Add(CategoryType, "Fire")
	if !a.Has(CategoryType, "Fire") {
		t.Fatal("expected Fire to be asked")
	}
	if a.Has(CategoryColor, "Fire") {
		t.Fatal("categories must be disjoint")
	}

	cp := a.Clone()
	a.Reset()
	if a.Has(CategoryType, "Fire") {
		t.Fatal("expected reset to clear sets")
	}
	if !cp.Has(CategoryType, "Fire") {
		t.Fatal("clone should be independent of reset")
	}
}

func TestParseKey(t *testing.T) {
	for _, q := range []Question{Attribute("legendary"), Categorical(CategoryType, "Fire"), Categorical(CategoryGeneration, "3")} {
		got, err := ParseKey(q.Key())
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", q.Key(), err)
		}
		if got != q {
			t.Errorf("ParseKey(%q) = %+v, want %+v", q.Key(), got, q)
		}
	}
	for _, key := range []string{"", "type", "type:", "attribute:wings", "shape:round"} {
		if _, err := ParseKey(key); err == nil {
			t.Errorf("ParseKey(%q): expected error", key)
		}
	}
}
