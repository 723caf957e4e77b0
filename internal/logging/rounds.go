package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// #region schema
const roundLogSchema = `
CREATE TABLE IF NOT EXISTS round_log (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	round_id        TEXT NOT NULL,
	outcome         TEXT NOT NULL,
	guess_id        INTEGER,
	actual_id       INTEGER,
	questions_asked INTEGER NOT NULL,
	wrong_guesses   INTEGER NOT NULL DEFAULT 0,
	history_json    TEXT,
	created_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_round_log_created ON round_log(created_at);
`

// EnsureSchema creates the round_log table when missing.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(roundLogSchema); err != nil {
		return fmt.Errorf("round log schema: %w", err)
	}
	return nil
}
// #endregion schema

// #region log-round
// LogRound writes a finished round to the round_log table.
func LogRound(db *sql.DB, entry RoundEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO round_log (round_id, outcome, guess_id, actual_id, questions_asked, wrong_guesses, history_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RoundID,
		entry.Outcome,
		nullIfZero(entry.GuessID),
		nullIfZero(entry.ActualID),
		entry.QuestionsAsked,
		entry.WrongGuesses,
		nullIfEmpty(entry.HistoryJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log round: %w", err)
	}
	return nil
}

// EncodeRecord marshals a round history for RoundEntry.HistoryJSON.
func EncodeRecord(rec RoundRecord) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode round record: %w", err)
	}
	return string(data), nil
}
// #endregion log-round

// #region list-rounds
// ListRounds returns the most recent rounds, newest first.
func ListRounds(db *sql.DB, limit int) ([]RoundEntry, error) {
	rows, err := db.Query(
		`SELECT round_id, outcome, guess_id, actual_id, questions_asked, wrong_guesses, history_json, created_at
		 FROM round_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	defer rows.Close()

	var out []RoundEntry
	for rows.Next() {
		var e RoundEntry
		var guessID, actualID sql.NullInt64
		var history sql.NullString
		var createdAt string
		if err := rows.Scan(&e.RoundID, &e.Outcome, &guessID, &actualID,
			&e.QuestionsAsked, &e.WrongGuesses, &history, &createdAt); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		e.GuessID = int(guessID.Int64)
		e.ActualID = int(actualID.Int64)
		e.HistoryJSON = history.String
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DecodeRecord parses RoundEntry.HistoryJSON. An empty string yields an empty record.
func DecodeRecord(s string) (RoundRecord, error) {
	var rec RoundRecord
	if s == "" {
		return rec, nil
	}
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return rec, fmt.Errorf("decode round record: %w", err)
	}
	return rec, nil
}
// #endregion list-rounds

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}
// #endregion helpers
