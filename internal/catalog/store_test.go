package catalog_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/catalog/catalogtest"
)

func TestAllItemsOrderedByID(t *testing.T) {
	s := catalogtest.Store(t, nil)

	items, err := s.AllItems()
	if err != nil {
		t.Fatalf("AllItems: %v", err)
	}
	if len(items) != len(catalogtest.Items()) {
		t.Fatalf("expected %d items, got %d", len(catalogtest.Items()), len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].ID >= items[i].ID {
			t.Fatalf("items not ascending at %d: %d >= %d", i, items[i-1].ID, items[i].ID)
		}
	}
}

func TestFlagsRoundTripAsTextTokens(t *testing.T) {
	s := catalogtest.Store(t, nil)

	it, ok, err := s.ItemByID(144)
	if err != nil || !ok {
		t.Fatalf("ItemByID(144): ok=%v err=%v", ok, err)
	}
	if it.Flags["legendary"] != catalog.True {
		t.Errorf("expected legendary=%q, got %q", catalog.True, it.Flags["legendary"])
	}
	if it.Flags["mythical"] != catalog.False {
		t.Errorf("expected mythical=%q, got %q", catalog.False, it.Flags["mythical"])
	}

	var raw string
	if err := s.DB().QueryRow(`SELECT legendary FROM catalog_items WHERE id = 144`).Scan(&raw); err != nil {
		t.Fatalf("raw select: %v", err)
	}
	if raw != "true" {
		t.Errorf("expected stored token 'true', got %q", raw)
	}
}

func TestFilterItemsAndSemantics(t *testing.T) {
	s := catalogtest.Store(t, nil)

	items, err := s.FilterItems(catalog.Filter{"starter": catalog.True, "region": "Kanto"})
	if err != nil {
		t.Fatalf("FilterItems: %v", err)
	}
	var ids []int
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	if want := []int{1, 4, 7}; !reflect.DeepEqual(ids, want) {
		t.Errorf("expected %v, got %v", want, ids)
	}

	items, err = s.FilterItems(catalog.Filter{"generation": "2"})
	if err != nil {
		t.Fatalf("FilterItems generation: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 generation-2 items, got %d", len(items))
	}
}

func TestFilterItemsEmptyFilterReturnsAll(t *testing.T) {
	s := catalogtest.Store(t, nil)
	items, err := s.FilterItems(nil)
	if err != nil {
		t.Fatalf("FilterItems: %v", err)
	}
	if len(items) != len(catalogtest.Items()) {
		t.Errorf("expected all items, got %d", len(items))
	}
}

func TestFilterItemsUnknownAttribute(t *testing.T) {
	s := catalogtest.Store(t, nil)
	_, err := s.FilterItems(catalog.Filter{"name; DROP TABLE catalog_items": "x"})
	if !errors.Is(err, catalog.ErrUnknownAttribute) {
		t.Fatalf("expected ErrUnknownAttribute, got %v", err)
	}
	if n, _ := s.Count(); n != len(catalogtest.Items()) {
		t.Fatalf("catalog changed after rejected filter: %d rows", n)
	}
}

func TestDistinctValuesSorted(t *testing.T) {
	s := catalogtest.Store(t, nil)

	regions, err := s.DistinctValues("region")
	if err != nil {
		t.Fatalf("DistinctValues: %v", err)
	}
	if want := []string{"Hoenn", "Johto", "Kanto", "Sinnoh"}; !reflect.DeepEqual(regions, want) {
		t.Errorf("expected %v, got %v", want, regions)
	}

	gens, err := s.DistinctValues("generation")
	if err != nil {
		t.Fatalf("DistinctValues generation: %v", err)
	}
	if want := []string{"1", "2", "3", "4"}; !reflect.DeepEqual(gens, want) {
		t.Errorf("expected %v, got %v", want, gens)
	}

	// type_2 is NULL for single-type items; NULLs are excluded
	types2, err := s.DistinctValues("type_2")
	if err != nil {
		t.Fatalf("DistinctValues type_2: %v", err)
	}
	for _, v := range types2 {
		if v == "" {
			t.Fatal("expected no empty type_2 value")
		}
	}
}

func TestGroupedCounts(t *testing.T) {
	s := catalogtest.Store(t, nil)

	counts, err := s.GroupedCounts("legendary", nil)
	if err != nil {
		t.Fatalf("GroupedCounts: %v", err)
	}
	if counts["true"] != 3 || counts["false"] != 13 {
		t.Errorf("unexpected legendary counts: %v", counts)
	}

	counts, err = s.GroupedCounts("primary_color", catalog.Filter{"region": "Kanto"})
	if err != nil {
		t.Fatalf("GroupedCounts filtered: %v", err)
	}
	if counts["red"] != 2 {
		t.Errorf("expected 2 red Kanto items, got %d", counts["red"])
	}

	if _, err := s.GroupedCounts("weight", nil); !errors.Is(err, catalog.ErrUnknownAttribute) {
		t.Errorf("expected ErrUnknownAttribute, got %v", err)
	}
}

func TestItemByName(t *testing.T) {
	s := catalogtest.Store(t, nil)

	it, ok, err := s.ItemByName("Pikachu")
	if err != nil || !ok || it.ID != 25 {
		t.Fatalf("exact lookup: ok=%v id=%d err=%v", ok, it.ID, err)
	}
	it, ok, err = s.ItemByName("pikachu")
	if err != nil || !ok || it.ID != 25 {
		t.Fatalf("case-insensitive lookup: ok=%v id=%d err=%v", ok, it.ID, err)
	}
	_, ok, err = s.ItemByName("Missingno")
	if err != nil {
		t.Fatalf("missing lookup err: %v", err)
	}
	if ok {
		t.Fatal("expected no match for Missingno")
	}
}

func TestPopularityReadWriteDecay(t *testing.T) {
	s := catalogtest.Store(t, nil)

	if err := s.SetPopularity(25, 4.0); err != nil {
		t.Fatalf("SetPopularity: %v", err)
	}
	if err := s.SetPopularity(1, 2.0); err != nil {
		t.Fatalf("SetPopularity: %v", err)
	}
	if err := s.DecayPopularityExcept([]int{25}, 0.5); err != nil {
		t.Fatalf("DecayPopularityExcept: %v", err)
	}

	p, ok, err := s.Popularity(25)
	if err != nil || !ok {
		t.Fatalf("Popularity(25): ok=%v err=%v", ok, err)
	}
	if p != 4.0 {
		t.Errorf("excluded item decayed: %f", p)
	}
	p, _, _ = s.Popularity(1)
	if math.Abs(p-1.0) > 1e-12 {
		t.Errorf("expected decayed 1.0, got %f", p)
	}

	_, ok, err = s.Popularity(9999)
	if err != nil {
		t.Fatalf("Popularity missing: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for missing id")
	}
}

func TestUpdatePopularityCommitsOrRollsBack(t *testing.T) {
	s := catalogtest.Store(t, nil)
	s.SetPopularity(25, 1.0)

	err := s.UpdatePopularity(func(w catalog.PopularityWriter) error {
		if err := w.SetPopularity(25, 2.0); err != nil {
			return err
		}
		return w.DecayPopularityExcept([]int{25}, 0.5)
	})
	if err != nil {
		t.Fatalf("UpdatePopularity: %v", err)
	}
	if p, _, _ := s.Popularity(25); p != 2.0 {
		t.Fatalf("expected committed 2.0, got %f", p)
	}

	failure := errors.New("boom")
	err = s.UpdatePopularity(func(w catalog.PopularityWriter) error {
		if err := w.SetPopularity(25, 9.0); err != nil {
			return err
		}
		// writes are visible inside the transaction
		if p, _, _ := w.Popularity(25); p != 9.0 {
			t.Errorf("expected 9.0 inside tx, got %f", p)
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if p, _, _ := s.Popularity(25); p != 2.0 {
		t.Fatalf("expected rollback to 2.0, got %f", p)
	}
}

func TestStoreConcurrentWriters(t *testing.T) {
	s := catalogtest.Store(t, nil)

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				err := s.UpdatePopularity(func(w catalog.PopularityWriter) error {
					p, _, err := w.Popularity(25)
					if err != nil {
						return err
					}
					return w.SetPopularity(25, p+1)
				})
				if err != nil {
					t.Errorf("UpdatePopularity: %v", err)
					return
				}
				if _, err := s.AllItems(); err != nil {
					t.Errorf("AllItems: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
	if p, _, _ := s.Popularity(25); p != 320 {
		t.Errorf("expected 320 increments, got %f", p)
	}
}

func TestPopularityStatsAndReset(t *testing.T) {
	s := catalogtest.Store(t, nil)
	s.SetPopularity(151, 3)
	s.SetPopularity(150, 3)
	s.SetPopularity(25, 1)

	st, err := s.PopularityStats(3)
	if err != nil {
		t.Fatalf("PopularityStats: %v", err)
	}
	if st.Max != 3 || st.Min != 0 || st.Total != 16 {
		t.Errorf("unexpected stats: %+v", st)
	}
	if len(st.Top) != 3 || st.Top[0].ID != 150 || st.Top[1].ID != 151 || st.Top[2].ID != 25 {
		t.Errorf("expected top [150 151 25] (popularity desc, id asc), got %+v", st.Top)
	}

	if err := s.ResetPopularity(); err != nil {
		t.Fatalf("ResetPopularity: %v", err)
	}
	st, _ = s.PopularityStats(1)
	if st.Max != 0 {
		t.Errorf("expected max 0 after reset, got %f", st.Max)
	}
}

func TestUpsertKeepsPopularity(t *testing.T) {
	s := catalogtest.Store(t, nil)
	s.SetPopularity(25, 7)

	items := catalogtest.Items()
	if err := s.Upsert(items); err != nil {
		t.Fatalf("re-Upsert: %v", err)
	}
	p, _, _ := s.Popularity(25)
	if p != 7 {
		t.Errorf("expected popularity kept at 7, got %f", p)
	}
}

func TestNewStoreInvalidPath(t *testing.T) {
	_, err := catalog.NewStore(filepath.Join(string(os.PathSeparator), "nonexistent", "deep", "path", "test.db"))
	if err == nil {
		t.Fatal("expected error for invalid path")
	}
}

func TestParseSeedRejectsUnknownFlag(t *testing.T) {
	_, err := catalog.ParseSeed([]byte(`items: [{id: 1, name: X, types: [Fire], flags: {shiny: true}}]`))
	if !errors.Is(err, catalog.ErrUnknownAttribute) {
		t.Fatalf("expected ErrUnknownAttribute, got %v", err)
	}
}

func TestParseSeedRejectsDuplicateID(t *testing.T) {
	_, err := catalog.ParseSeed([]byte(`items: [{id: 1, name: X, types: [Fire]}, {id: 1, name: Y, types: [Water]}]`))
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestItemAttribute(t *testing.T) {
	it := catalogtest.Item(9, "Blastoise", "Water", "mega_evolve")
	tests := []struct {
		attr string
		want string
		ok   bool
	}{
		{"id", "9", true},
		{"type_1", "Water", true},
		{"generation", "1", true},
		{"mega_evolve", "true", true},
		{"legendary", "false", true},
		{"weight", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.attr, func(t *testing.T) {
			got, ok := it.Attribute(tt.attr)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Attribute(%q) = %q, %v; want %q, %v", tt.attr, got, ok, tt.want, tt.ok)
			}
		})
	}
}
