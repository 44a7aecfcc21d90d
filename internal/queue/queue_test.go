package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/models"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/store"
)

func newTestQueue(t *testing.T) (*Queue, *store.Store) {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s), s
}

func enqueueProgress(t *testing.T, q *Queue, moduleID string) *models.QueueEntry {
	t.Helper()
	entry, err := q.Enqueue(models.ProgressPayload(&models.ProgressRecord{
		ModuleID:   moduleID,
		VisitCount: 1,
	}), moduleID)
	require.NoError(t, err)
	return entry
}

func TestEnqueue_DefaultsAndPayload(t *testing.T) {
	q, _ := newTestQueue(t)

	entry := enqueueProgress(t, q, "mod-1")

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, models.EntryModuleProgress, entry.Type)
	assert.Equal(t, "mod-1", entry.EntityID)
	assert.Equal(t, models.SyncStatusPending, entry.SyncStatus)
	assert.Equal(t, 0, entry.RetryCount)
	assert.NotZero(t, entry.CreatedAt)

	payload, err := entry.DecodedPayload()
	require.NoError(t, err)
	require.NotNil(t, payload.Progress)
	assert.Equal(t, "mod-1", payload.Progress.ModuleID)
}

func TestListAll_InsertionOrder(t *testing.T) {
	q, _ := newTestQueue(t)

	first := enqueueProgress(t, q, "mod-1")
	second := enqueueProgress(t, q, "mod-2")
	third := enqueueProgress(t, q, "mod-1")

	entries, err := q.ListAll()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)
	assert.Equal(t, third.ID, entries[2].ID)
}

func TestUpdateStatus_MergesFields(t *testing.T) {
	q, _ := newTestQueue(t)
	entry := enqueueProgress(t, q, "mod-1")

	err := q.UpdateStatus(entry.ID, StatusPatch{
		SyncStatus: models.SyncStatusFailed,
		RetryCount: 2,
		LastError:  "response error 500",
	})
	require.NoError(t, err)

	entries, err := q.ListAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.SyncStatusFailed, entries[0].SyncStatus)
	assert.Equal(t, 2, entries[0].RetryCount)
	assert.Equal(t, "response error 500", entries[0].LastError)
	// Payload is untouched by status updates.
	assert.JSONEq(t, string(entry.Payload), string(entries[0].Payload))
}

func TestUpdateStatus_AbsentIDIsNoop(t *testing.T) {
	q, _ := newTestQueue(t)
	enqueueProgress(t, q, "mod-1")

	err := q.UpdateStatus("no-such-id", StatusPatch{SyncStatus: models.SyncStatusFailed})
	require.NoError(t, err)

	entries, err := q.ListAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.SyncStatusPending, entries[0].SyncStatus)
}

func TestRemove_Idempotent(t *testing.T) {
	q, _ := newTestQueue(t)
	entry := enqueueProgress(t, q, "mod-1")
	enqueueProgress(t, q, "mod-2")

	require.NoError(t, q.Remove(entry.ID))
	entries, err := q.ListAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// Second removal of the same ID changes nothing.
	require.NoError(t, q.Remove(entry.ID))
	entries, err = q.ListAll()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestResetFailed_KeepsRetryCount(t *testing.T) {
	q, _ := newTestQueue(t)
	entry := enqueueProgress(t, q, "mod-1")
	enqueueProgress(t, q, "mod-2")

	require.NoError(t, q.UpdateStatus(entry.ID, StatusPatch{
		SyncStatus: models.SyncStatusFailed,
		RetryCount: 3,
		LastError:  "timeout",
	}))

	moved, err := q.ResetFailed()
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	entries, err := q.ListAll()
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, models.SyncStatusPending, e.SyncStatus)
	}
	// The failed entry's retry count survives the reset.
	assert.Equal(t, 3, entries[0].RetryCount)
}

func TestRemoveFailed(t *testing.T) {
	q, _ := newTestQueue(t)
	failed := enqueueProgress(t, q, "mod-1")
	kept := enqueueProgress(t, q, "mod-2")

	require.NoError(t, q.UpdateStatus(failed.ID, StatusPatch{SyncStatus: models.SyncStatusFailed, RetryCount: 1}))

	removed, err := q.RemoveFailed()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	entries, err := q.ListAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, kept.ID, entries[0].ID)
}

func TestCountByStatus(t *testing.T) {
	q, _ := newTestQueue(t)
	a := enqueueProgress(t, q, "mod-1")
	enqueueProgress(t, q, "mod-2")
	enqueueProgress(t, q, "mod-3")

	require.NoError(t, q.UpdateStatus(a.ID, StatusPatch{SyncStatus: models.SyncStatusFailed, RetryCount: 1}))

	counts, total, err := q.CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, counts[models.SyncStatusPending])
	assert.Equal(t, 1, counts[models.SyncStatusFailed])
}

func TestNew_ReclaimsInFlightEntries(t *testing.T) {
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	q := New(s)
	entry := enqueueProgress(t, q, "mod-1")
	require.NoError(t, q.UpdateStatus(entry.ID, StatusPatch{SyncStatus: models.SyncStatusProcessing}))

	// A process killed mid-drain leaves entries in processing; a fresh
	// queue over the same store reclaims them.
	q = New(s)
	entries, err := q.ListAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.SyncStatusPending, entries[0].SyncStatus)
}

func TestDurability_EntrySurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := store.Open(dir)
	require.NoError(t, err)
	q := New(s)
	entry := enqueueProgress(t, q, "mod-1")
	require.NoError(t, s.Close())

	s, err = store.Open(dir)
	require.NoError(t, err)
	defer s.Close()
	q = New(s)

	entries, err := q.ListAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
}
