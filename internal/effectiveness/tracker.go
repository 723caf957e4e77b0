// Package effectiveness tracks how much each question has historically
// narrowed the candidate set.
package effectiveness

import (
	"fmt"
	"sort"
	"sync"

	"github.com/danielpatrickdp/adaptive-guess/internal/question"
)

// BoostWeight scales the mean reduction into an additive score term.
const BoostWeight = 0.3

// Record is the running mean for one question key.
type Record struct {
	Key            string  `json:"key"`
	TotalReduction float64 `json:"total_reduction"`
	Count          int     `json:"count"`
	AvgReduction   float64 `json:"avg_reduction"`
}

// Stats summarizes the tracker.
type Stats struct {
	Tracked int      `json:"tracked"`
	Top     []Record `json:"top"`
}

// Tracker accumulates reductions per question key. It is safe for concurrent
// use. A nil store keeps records in memory only.
type Tracker struct {
	mu      sync.Mutex
	records map[string]*Record
	store   *Store
}

// NewTracker loads any persisted records from store.
func NewTracker(store *Store) (*Tracker, error) {
	t := &Tracker{records: make(map[string]*Record), store: store}
	if store == nil {
		return t, nil
	}
	recs, err := store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load effectiveness: %w", err)
	}
	for i := range recs {
		r := recs[i]
		t.records[r.Key] = &r
	}
	return t, nil
}

// #region record
// RecordResult folds (before-after)/before into the mean for q.
func (t *Tracker) RecordResult(q question.Question, before, after int) error {
	ratio := 0.0
	if before > 0 {
		ratio = float64(before-after) / float64(before)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := q.Key()
	r, ok := t.records[key]
	if !ok {
		r = &Record{Key: key}
		t.records[key] = r
	}
	r.TotalReduction += ratio
	r.Count++
	r.AvgReduction = r.TotalReduction / float64(r.Count)

	if t.store != nil {
		if err := t.store.Save(*r); err != nil {
			return fmt.Errorf("save effectiveness %s: %w", key, err)
		}
	}
	return nil
}

// #endregion record

// #region query
// Boost returns the mean reduction of q times BoostWeight, 0 when unseen.
func (t *Tracker) Boost(q question.Question) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.records[q.Key()]; ok {
		return r.AvgReduction * BoostWeight
	}
	return 0
}

// Lookup returns a copy of the record for key.
func (t *Tracker) Lookup(key string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.records[key]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Stats returns the tracked count and the limit most effective questions.
func (t *Tracker) Stats(limit int) Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	all := make([]Record, 0, len(t.records))
	for _, r := range t.records {
		all = append(all, *r)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].AvgReduction != all[j].AvgReduction {
			return all[i].AvgReduction > all[j].AvgReduction
		}
		return all[i].Key < all[j].Key
	})
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return Stats{Tracked: len(t.records), Top: all}
}

// Reset forgets every record, persisted ones included.
func (t *Tracker) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = make(map[string]*Record)
	if t.store != nil {
		return t.store.Clear()
	}
	return nil
}

// #endregion query
