// Package queue maintains the persisted, ordered list of pending sync
// operations. One entry is created per local mutation; entries leave the
// queue only on confirmed remote acceptance or an explicit clear-failed.
package queue

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/errors"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/logging"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/models"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/store"
)

// Queue manages pending sync entries on top of the entity store's sync_queue
// collection. The mutex serializes multi-statement transitions; single-row
// reads and writes already get their atomicity from the store.
type Queue struct {
	store *store.Store
	mu    sync.Mutex
}

// StatusPatch carries the fields UpdateStatus may change. The payload is
// deliberately absent: it is frozen at enqueue time.
type StatusPatch struct {
	SyncStatus models.SyncStatus
	RetryCount int
	LastError  string
}

// New creates a Queue backed by the given store. Entries left in
// "processing" by a previous run (process killed mid-drain) are reclaimed to
// pending so they are attempted again rather than skipped forever.
func New(s *store.Store) *Queue {
	q := &Queue{store: s}
	reclaimed, err := s.ResetQueueStatus(models.SyncStatusProcessing, models.SyncStatusPending, time.Now().Unix())
	if err != nil {
		logging.Error("failed to reclaim in-flight queue entries", err, nil)
	} else if reclaimed > 0 {
		logging.Info("reclaimed in-flight queue entries", map[string]interface{}{"count": reclaimed})
	}
	return q
}

// Enqueue appends a new pending entry snapshotting the given payload.
func (q *Queue) Enqueue(payload models.Payload, entityID string) (*models.QueueEntry, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrQueue, "failed to encode payload", err)
	}

	now := time.Now().Unix()
	entry := &models.QueueEntry{
		ID:         uuid.New().String(),
		Type:       payload.Type,
		EntityID:   entityID,
		Payload:    body,
		SyncStatus: models.SyncStatusPending,
		RetryCount: 0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := q.store.InsertQueueEntry(entry); err != nil {
		return nil, err
	}

	logging.Debug("enqueued sync entry", map[string]interface{}{
		"entry_id":  entry.ID,
		"type":      string(entry.Type),
		"entity_id": entityID,
	})
	return entry, nil
}

// ListAll returns a snapshot of the queue in insertion order.
func (q *Queue) ListAll() ([]*models.QueueEntry, error) {
	return q.store.ListQueueEntries()
}

// UpdateStatus merges the patch into the entry with the given ID. An absent
// ID is a no-op: the entry may have been removed by a concurrent drain.
func (q *Queue) UpdateStatus(id string, patch StatusPatch) error {
	rows, err := q.store.UpdateQueueEntryStatus(id, patch.SyncStatus, patch.RetryCount, patch.LastError, time.Now().Unix())
	if err != nil {
		return err
	}
	if rows == 0 {
		logging.Debug("queue entry already removed, skipping status update", map[string]interface{}{"entry_id": id})
	}
	return nil
}

// Remove deletes the entry with the given ID. Removing an absent ID is a
// no-op, so removal is idempotent.
func (q *Queue) Remove(id string) error {
	return q.store.DeleteQueueEntry(id)
}

// CountByStatus returns entry counts per sync status plus the total.
func (q *Queue) CountByStatus() (map[models.SyncStatus]int, int, error) {
	counts, err := q.store.CountQueueByStatus()
	if err != nil {
		return nil, 0, err
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	return counts, total, nil
}

// ResetFailed moves every failed entry back to pending. Retry counts are
// kept so backoff and UI accounting survive explicit retries.
func (q *Queue) ResetFailed() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	moved, err := q.store.ResetQueueStatus(models.SyncStatusFailed, models.SyncStatusPending, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	if moved > 0 {
		logging.Info("reset failed entries for retry", map[string]interface{}{"count": moved})
	}
	return int(moved), nil
}

// RemoveFailed deletes every failed entry outright. This is the one
// deliberate data-loss operation in the engine; callers must surface it as
// destructive.
func (q *Queue) RemoveFailed() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	removed, err := q.store.DeleteQueueByStatus(models.SyncStatusFailed)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		logging.Warn("cleared failed entries", map[string]interface{}{"count": removed})
	}
	return int(removed), nil
}
