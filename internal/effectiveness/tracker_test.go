package effectiveness

import (
	"database/sql"
	"math"
	"sync"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/adaptive-guess/internal/question"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// a single connection keeps every query on the same in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordResultRunningMean(t *testing.T) {
	tr, err := NewTracker(nil)
	if err != nil {
		t.Fatal(err)
	}
	q := question.Categorical(question.CategoryType, "Fire")

	if err := tr.RecordResult(q, 10, 5); err != nil {
		t.Fatal(err)
	}
	if err := tr.RecordResult(q, 4, 3); err != nil {
		t.Fatal(err)
	}
	r, ok := tr.Lookup("type:Fire")
	if !ok {
		t.Fatal("expected record for type:Fire")
	}
	if r.Count != 2 || math.Abs(r.AvgReduction-0.375) > 1e-12 {
		t.Errorf("expected count 2 avg 0.375, got %+v", r)
	}
	if got := tr.Boost(q); math.Abs(got-0.375*BoostWeight) > 1e-12 {
		t.Errorf("expected boost %f, got %f", 0.375*BoostWeight, got)
	}
}

func TestRecordResultZeroBefore(t *testing.T) {
	tr, _ := NewTracker(nil)
	q := question.Attribute("legendary")
	if err := tr.RecordResult(q, 0, 0); err != nil {
		t.Fatal(err)
	}
	r, _ := tr.Lookup("attribute:legendary")
	if r.AvgReduction != 0 || r.Count != 1 {
		t.Errorf("expected zero ratio sample, got %+v", r)
	}
}

func TestBoostUnseen(t *testing.T) {
	tr, _ := NewTracker(nil)
	if got := tr.Boost(question.Attribute("baby")); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestStatsOrdering(t *testing.T) {
	tr, _ := NewTracker(nil)
	tr.RecordResult(question.Attribute("legendary"), 10, 9)
	tr.RecordResult(question.Categorical(question.CategoryColor, "red"), 10, 5)
	tr.RecordResult(question.Categorical(question.CategoryColor, "blue"), 10, 5)

	st := tr.Stats(2)
	if st.Tracked != 3 {
		t.Fatalf("expected 3 tracked, got %d", st.Tracked)
	}
	if len(st.Top) != 2 || st.Top[0].Key != "color:blue" || st.Top[1].Key != "color:red" {
		t.Errorf("unexpected top %+v", st.Top)
	}
}

func TestPersistenceAcrossTrackers(t *testing.T) {
	db := newTestDB(t)
	store, err := NewStore(db)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := NewTracker(store)
	if err != nil {
		t.Fatal(err)
	}
	q := question.Categorical(question.CategoryRegion, "Kanto")
	tr.RecordResult(q, 8, 2)

	again, err := NewTracker(store)
	if err != nil {
		t.Fatal(err)
	}
	r, ok := again.Lookup("region:Kanto")
	if !ok || r.Count != 1 || math.Abs(r.AvgReduction-0.75) > 1e-12 {
		t.Fatalf("expected persisted record, got %+v ok=%v", r, ok)
	}

	again.RecordResult(q, 8, 8)
	r, _ = again.Lookup("region:Kanto")
	if r.Count != 2 || math.Abs(r.AvgReduction-0.375) > 1e-12 {
		t.Errorf("expected mean to continue from persisted state, got %+v", r)
	}

	if err := again.Reset(); err != nil {
		t.Fatal(err)
	}
	recs, err := store.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Errorf("expected store cleared, got %d records", len(recs))
	}
}

func TestConcurrentRecord(t *testing.T) {
	tr, _ := NewTracker(nil)
	q := question.Attribute("starter")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.RecordResult(q, 2, 1)
		}()
	}
	wg.Wait()
	r, _ := tr.Lookup(q.Key())
	if r.Count != 50 {
		t.Errorf("expected 50 samples, got %d", r.Count)
	}
}
