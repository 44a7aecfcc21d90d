package models

import (
	"encoding/json"
	"time"
)

// QuestionResult is the per-question breakdown of a quiz attempt.
type QuestionResult struct {
	QuestionID string `json:"question_id"`
	Correct    bool   `json:"correct"`
	TimeSpent  int64  `json:"time_spent"`
}

// AttemptRecord is one completed quiz attempt. Attempts are append-only:
// never mutated or removed after insert, ordered chronologically per quiz.
type AttemptRecord struct {
	ID             string           `db:"id" json:"id"`
	QuizID         string           `db:"quiz_id" json:"quiz_id"`
	AttemptedAt    int64            `db:"attempted_at" json:"attempted_at"`
	Score          int              `db:"score" json:"score"` // 0-100
	TimeSpent      int64            `db:"time_spent" json:"time_spent"`
	AnswersCorrect int              `db:"answers_correct" json:"answers_correct"`
	TotalQuestions int              `db:"total_questions" json:"total_questions"`
	Breakdown      []QuestionResult `db:"-" json:"breakdown"`
}

// TableName returns the table name for AttemptRecord.
func (AttemptRecord) TableName() string {
	return "quiz_attempts"
}

// AttemptedAtTime returns AttemptedAt as time.Time.
func (a *AttemptRecord) AttemptedAtTime() time.Time {
	return time.Unix(a.AttemptedAt, 0)
}

// Percentage returns the fraction of correct answers as a 0-100 value.
// Falls back to the recorded score when the attempt has no question count.
func (a *AttemptRecord) Percentage() float64 {
	if a.TotalQuestions == 0 {
		return float64(a.Score)
	}
	return float64(a.AnswersCorrect) / float64(a.TotalQuestions) * 100
}

// BreakdownJSON serializes the per-question breakdown for storage.
func (a *AttemptRecord) BreakdownJSON() ([]byte, error) {
	return json.Marshal(a.Breakdown)
}

// SetBreakdownJSON deserializes the stored per-question breakdown.
func (a *AttemptRecord) SetBreakdownJSON(data []byte) error {
	if len(data) == 0 {
		a.Breakdown = nil
		return nil
	}
	return json.Unmarshal(data, &a.Breakdown)
}
