package engine

import (
	"time"

	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/logging"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/models"
)

// Health classifies overall sync health for display.
type Health string

const (
	HealthHealthy  Health = "healthy"
	HealthWarning  Health = "warning"
	HealthCritical Health = "critical"
)

// HealthThresholds is the policy surface for the three-tier health
// classification. The cutoffs are display policy, not correctness
// invariants.
type HealthThresholds struct {
	WarnPending     int // pending count above which health degrades to warning
	CriticalFailed  int // failed count at which health becomes critical
	CriticalPending int // pending count at which health becomes critical
}

// DefaultHealthThresholds returns the default classification cutoffs.
func DefaultHealthThresholds() HealthThresholds {
	return HealthThresholds{
		WarnPending:     25,
		CriticalFailed:  10,
		CriticalPending: 100,
	}
}

func (t HealthThresholds) classify(failed, pending int) Health {
	switch {
	case failed >= t.CriticalFailed || pending >= t.CriticalPending:
		return HealthCritical
	case failed > 0 || pending > t.WarnPending:
		return HealthWarning
	}
	return HealthHealthy
}

// Status is the read-only sync health snapshot, recomputed on demand from
// queue state rather than maintained incrementally.
type Status struct {
	IsOnline     bool      `json:"is_online"`
	IsSyncing    bool      `json:"is_syncing"`
	LastSyncTime time.Time `json:"last_sync_time"`
	PendingItems int       `json:"pending_items"`
	FailedItems  int       `json:"failed_items"`
	TotalItems   int       `json:"total_items"`
	SuccessRate  float64   `json:"success_rate"` // 100 when the queue is empty
	HealthStatus Health    `json:"health_status"`
}

// Status computes the current snapshot. A storage failure degrades to a
// zero-count snapshot rather than an error: status is for display and must
// always be answerable.
func (e *Engine) Status() Status {
	counts, total, err := e.queue.CountByStatus()
	if err != nil {
		logging.Error("failed to count queue for status", err, nil)
		counts, total = map[models.SyncStatus]int{}, 0
	}

	pending := counts[models.SyncStatusPending]
	failed := counts[models.SyncStatusFailed]

	successRate := 100.0
	if total > 0 {
		successRate = 100 * (1 - float64(failed)/float64(total))
	}

	return Status{
		IsOnline:     e.monitor.IsOnline(),
		IsSyncing:    e.isSyncing.Load(),
		LastSyncTime: e.store.LastSyncTime(),
		PendingItems: pending,
		FailedItems:  failed,
		TotalItems:   total,
		SuccessRate:  successRate,
		HealthStatus: e.config.Health.classify(failed, pending),
	}
}
