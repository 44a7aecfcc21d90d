package store

import (
	apperrors "github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/errors"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/models"
)

// Row-level persistence for the sync queue. All queue policy (IDs,
// timestamps, status transitions) lives in the queue package; this file only
// moves rows in and out of the sync_queue table.

// InsertQueueEntry appends a queue entry row.
func (s *Store) InsertQueueEntry(e *models.QueueEntry) error {
	query := `
	INSERT INTO sync_queue (id, entry_type, entity_id, payload, sync_status, retry_count, last_error, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := s.db.Exec(query, e.ID, e.Type, e.EntityID, []byte(e.Payload), e.SyncStatus,
		e.RetryCount, e.LastError, e.CreatedAt, e.UpdatedAt); err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, "failed to insert queue entry", err)
	}
	return nil
}

// ListQueueEntries returns all queue entries in insertion order.
func (s *Store) ListQueueEntries() ([]*models.QueueEntry, error) {
	query := `
	SELECT id, entry_type, entity_id, payload, sync_status, retry_count, last_error, created_at, updated_at
	FROM sync_queue ORDER BY rowid
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to list queue entries", err)
	}
	defer rows.Close()

	entries := []*models.QueueEntry{}
	for rows.Next() {
		var e models.QueueEntry
		var payload []byte
		if err := rows.Scan(&e.ID, &e.Type, &e.EntityID, &payload, &e.SyncStatus,
			&e.RetryCount, &e.LastError, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to scan queue entry", err)
		}
		e.Payload = payload
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to iterate queue entries", err)
	}
	return entries, nil
}

// UpdateQueueEntryStatus patches status, retry count and last error of one
// entry. Returns the number of rows touched so callers can tolerate races
// with removal.
func (s *Store) UpdateQueueEntryStatus(id string, status models.SyncStatus, retryCount int, lastError string, updatedAt int64) (int64, error) {
	query := `UPDATE sync_queue SET sync_status = ?, retry_count = ?, last_error = ?, updated_at = ? WHERE id = ?`
	result, err := s.db.Exec(query, status, retryCount, lastError, updatedAt, id)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorage, "failed to update queue entry", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// DeleteQueueEntry removes one entry. Deleting an absent ID is a no-op.
func (s *Store) DeleteQueueEntry(id string) error {
	if _, err := s.db.Exec(`DELETE FROM sync_queue WHERE id = ?`, id); err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, "failed to delete queue entry", err)
	}
	return nil
}

// CountQueueByStatus returns entry counts grouped by sync status.
func (s *Store) CountQueueByStatus() (map[models.SyncStatus]int, error) {
	rows, err := s.db.Query(`SELECT sync_status, COUNT(*) FROM sync_queue GROUP BY sync_status`)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to count queue entries", err)
	}
	defer rows.Close()

	counts := map[models.SyncStatus]int{}
	for rows.Next() {
		var status models.SyncStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to scan queue counts", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to iterate queue counts", err)
	}
	return counts, nil
}

// ResetQueueStatus moves every entry with status from to status to, keeping
// retry counts. Returns the number of entries moved.
func (s *Store) ResetQueueStatus(from, to models.SyncStatus, updatedAt int64) (int64, error) {
	query := `UPDATE sync_queue SET sync_status = ?, updated_at = ? WHERE sync_status = ?`
	result, err := s.db.Exec(query, to, updatedAt, from)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorage, "failed to reset queue status", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// DeleteQueueByStatus removes every entry with the given status. Returns the
// number of entries removed.
func (s *Store) DeleteQueueByStatus(status models.SyncStatus) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sync_queue WHERE sync_status = ?`, status)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorage, "failed to delete queue entries", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}
