package models

import (
	"encoding/json"
	"fmt"
)

// EntryType identifies which kind of local mutation a queue entry carries.
type EntryType string

const (
	EntryModuleProgress EntryType = "moduleProgress"
	EntryQuizAttempt    EntryType = "quizAttempt"
)

// SyncStatus represents the lifecycle state of a queue entry.
type SyncStatus string

const (
	SyncStatusPending    SyncStatus = "pending"
	SyncStatusProcessing SyncStatus = "processing"
	SyncStatusFailed     SyncStatus = "failed"
)

// Payload is the typed snapshot carried by a queue entry. Exactly one variant
// is set, selected by Type, so the engine's type-to-endpoint mapping stays
// exhaustive.
type Payload struct {
	Type     EntryType
	Progress *ProgressRecord
	Attempt  *AttemptRecord
}

// ProgressPayload builds the payload for a module progress mutation.
func ProgressPayload(rec *ProgressRecord) Payload {
	return Payload{Type: EntryModuleProgress, Progress: rec}
}

// AttemptPayload builds the payload for a quiz attempt mutation.
func AttemptPayload(rec *AttemptRecord) Payload {
	return Payload{Type: EntryQuizAttempt, Attempt: rec}
}

// MarshalJSON emits only the active variant, which is also the remote
// request body.
func (p Payload) MarshalJSON() ([]byte, error) {
	switch p.Type {
	case EntryModuleProgress:
		return json.Marshal(p.Progress)
	case EntryQuizAttempt:
		return json.Marshal(p.Attempt)
	}
	return nil, fmt.Errorf("unknown payload type %q", p.Type)
}

// DecodePayload parses a stored payload body back into its typed variant.
func DecodePayload(entryType EntryType, data []byte) (Payload, error) {
	switch entryType {
	case EntryModuleProgress:
		var rec ProgressRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return Payload{}, fmt.Errorf("json.Unmarshal > %w", err)
		}
		return ProgressPayload(&rec), nil
	case EntryQuizAttempt:
		var rec AttemptRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return Payload{}, fmt.Errorf("json.Unmarshal > %w", err)
		}
		return AttemptPayload(&rec), nil
	}
	return Payload{}, fmt.Errorf("unknown entry type %q", entryType)
}

// QueueEntry represents one pending synchronization unit, derived from a
// single local mutation. The payload is frozen at enqueue time and never
// rewritten; only SyncStatus, RetryCount and LastError change afterwards.
type QueueEntry struct {
	ID         string          `db:"id" json:"id"`
	Type       EntryType       `db:"entry_type" json:"entry_type"`
	EntityID   string          `db:"entity_id" json:"entity_id"`
	Payload    json.RawMessage `db:"payload" json:"payload"`
	SyncStatus SyncStatus      `db:"sync_status" json:"sync_status"`
	RetryCount int             `db:"retry_count" json:"retry_count"`
	LastError  string          `db:"last_error" json:"last_error,omitempty"`
	CreatedAt  int64           `db:"created_at" json:"created_at"`
	UpdatedAt  int64           `db:"updated_at" json:"updated_at"`
}

// TableName returns the table name for QueueEntry.
func (QueueEntry) TableName() string {
	return "sync_queue"
}

// DecodedPayload returns the entry's payload as its typed variant.
func (e *QueueEntry) DecodedPayload() (Payload, error) {
	return DecodePayload(e.Type, e.Payload)
}
