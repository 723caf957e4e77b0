package effectiveness

// #region imports
import (
	"database/sql"
	"time"
)

// #endregion

// #region schema

const effectivenessSchema = `
CREATE TABLE IF NOT EXISTS question_effectiveness (
    question_key    TEXT PRIMARY KEY,
    total_reduction REAL NOT NULL,
    sample_count    INTEGER NOT NULL,
    avg_reduction   REAL NOT NULL,
    updated_at      TEXT NOT NULL
);
`

const effectivenessIndex = `
CREATE INDEX IF NOT EXISTS idx_question_effectiveness_avg
ON question_effectiveness(avg_reduction DESC);
`

// #endregion

// #region store-struct

// Store persists effectiveness records in SQLite so the running mean spans
// process restarts.
type Store struct {
	db *sql.DB
}

// NewStore initializes the question_effectiveness table and returns a Store.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(effectivenessSchema); err != nil {
		return nil, err
	}
	if _, err := db.Exec(effectivenessIndex); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// #endregion

// #region save

// Save upserts one record.
func (s *Store) Save(rec Record) error {
	_, err := s.db.Exec(`
		INSERT INTO question_effectiveness
		(question_key, total_reduction, sample_count, avg_reduction, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(question_key) DO UPDATE SET
		    total_reduction = excluded.total_reduction,
		    sample_count    = excluded.sample_count,
		    avg_reduction   = excluded.avg_reduction,
		    updated_at      = excluded.updated_at`,
		rec.Key,
		rec.TotalReduction,
		rec.Count,
		rec.AvgReduction,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// #endregion

// #region load

// LoadAll returns every persisted record.
func (s *Store) LoadAll() ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT question_key, total_reduction, sample_count, avg_reduction
		FROM question_effectiveness
		ORDER BY question_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Key, &rec.TotalReduction, &rec.Count, &rec.AvgReduction); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Clear deletes every persisted record.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM question_effectiveness`)
	return err
}

// #endregion
