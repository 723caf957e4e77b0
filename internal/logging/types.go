package logging

import "time"

// #region round-entry
// RoundEntry is a single row in the round_log table.
type RoundEntry struct {
	RoundID        string
	Outcome        string // "guessed" | "revealed" | "unknown" | "abandoned"
	GuessID        int    // 0 when no guess was made
	ActualID       int    // 0 when the answer is unknown
	QuestionsAsked int
	WrongGuesses   int
	HistoryJSON    string
	CreatedAt      time.Time
}
// #endregion round-entry

// #region round-record
// RoundRecord is the JSON form of a round's question history, stored in
// round_log.history_json for later inspection and replay.
type RoundRecord struct {
	Turns        []TurnRecord `json:"turns"`
	WrongGuesses []int        `json:"wrong_guesses,omitempty"`
	Finalists    []int        `json:"finalists,omitempty"`
}

// TurnRecord is one answered question.
type TurnRecord struct {
	Key    string `json:"key"`
	Answer bool   `json:"answer"`
	Before int    `json:"before"`
	After  int    `json:"after"`
}
// #endregion round-record
