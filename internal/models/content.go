// Package models provides data model definitions for the offline learning store.
package models

import (
	"encoding/json"
	"time"
)

// CachedModule represents a learning module snapshot kept for offline reading.
// At most one record exists per ID; caching the same ID again replaces the
// prior record in place.
type CachedModule struct {
	ID          string `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Subject     string `db:"subject" json:"subject"`
	Content     []byte `db:"content" json:"content"`
	Version     int    `db:"version" json:"version"`
	LastUpdated int64  `db:"last_updated" json:"last_updated"`
}

// TableName returns the table name for CachedModule.
func (CachedModule) TableName() string {
	return "cached_modules"
}

// LastUpdatedTime returns LastUpdated as time.Time.
func (m *CachedModule) LastUpdatedTime() time.Time {
	return time.Unix(m.LastUpdated, 0)
}

// QuizQuestion is a single question inside a cached quiz.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
	Explanation   string   `json:"explanation,omitempty"`
}

// CachedQuiz represents a quiz snapshot kept for offline use. Same identity
// and versioning rules as CachedModule.
type CachedQuiz struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Subject     string         `db:"subject" json:"subject"`
	Questions   []QuizQuestion `db:"-" json:"questions"`
	Version     int            `db:"version" json:"version"`
	LastUpdated int64          `db:"last_updated" json:"last_updated"`
}

// TableName returns the table name for CachedQuiz.
func (CachedQuiz) TableName() string {
	return "cached_quizzes"
}

// QuestionsJSON serializes the question list for storage.
func (q *CachedQuiz) QuestionsJSON() ([]byte, error) {
	return json.Marshal(q.Questions)
}

// SetQuestionsJSON deserializes the stored question list.
func (q *CachedQuiz) SetQuestionsJSON(data []byte) error {
	if len(data) == 0 {
		q.Questions = nil
		return nil
	}
	return json.Unmarshal(data, &q.Questions)
}
