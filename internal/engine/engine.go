// Package engine orchestrates queue draining: it moves queue entries from
// pending to removed (remote accepted) or failed (attempt exhausted), and
// derives the sync health snapshot consumed by the UI.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/connectivity"
	apperrors "github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/errors"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/logging"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/models"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/queue"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/store"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/transport"
)

// Config holds engine configuration.
type Config struct {
	SyncInterval time.Duration // periodic drain interval when running (default: 15 minutes)
	StartupDelay time.Duration // delay before the initial drain attempt (default: 5 seconds)
	Health       HealthThresholds
}

// DefaultConfig returns default engine configuration.
func DefaultConfig() Config {
	return Config{
		SyncInterval: 15 * time.Minute,
		StartupDelay: 5 * time.Second,
		Health:       DefaultHealthThresholds(),
	}
}

// Engine is the single logical sync worker. At most one drain pass runs at a
// time; triggers that arrive mid-pass collapse into one follow-up pass.
type Engine struct {
	store     *store.Store
	queue     *queue.Queue
	monitor   *connectivity.Monitor
	transport transport.Transport
	config    Config

	isSyncing atomic.Bool
	rerun     atomic.Bool

	mu        sync.Mutex
	isRunning bool
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// New creates an Engine and registers it for online-transition draining.
func New(s *store.Store, q *queue.Queue, m *connectivity.Monitor, t transport.Transport, config Config) *Engine {
	if config.SyncInterval <= 0 {
		config.SyncInterval = 15 * time.Minute
	}
	if config.StartupDelay <= 0 {
		config.StartupDelay = 5 * time.Second
	}
	if config.Health == (HealthThresholds{}) {
		config.Health = DefaultHealthThresholds()
	}

	e := &Engine{
		store:     s,
		queue:     q,
		monitor:   m,
		transport: t,
		config:    config,
		stopCh:    make(chan struct{}),
	}

	m.OnTransitionToOnline(func() {
		if _, err := e.DrainQueue(context.Background()); err != nil {
			logging.ErrorWithCode("drain after online transition failed", string(apperrors.ErrSyncFailed), err, nil)
		}
	})

	return e
}

// Start launches the background triggers: one delayed initial drain to catch
// being online at launch, and a periodic drain every SyncInterval.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.isRunning {
		e.mu.Unlock()
		return
	}
	e.isRunning = true
	e.mu.Unlock()

	e.wg.Add(2)
	go e.initialDrain(ctx)
	go e.periodicLoop(ctx)

	logging.Info("sync engine started", map[string]interface{}{
		"sync_interval": e.config.SyncInterval.String(),
		"startup_delay": e.config.StartupDelay.String(),
	})
}

// Stop shuts down the background triggers and waits for them to finish. An
// in-flight submission is not cancelled; the next drain pass re-evaluates
// queue state fresh.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.isRunning {
		e.mu.Unlock()
		return
	}
	e.isRunning = false
	e.mu.Unlock()

	close(e.stopCh)
	e.wg.Wait()

	logging.Info("sync engine stopped", nil)
}

func (e *Engine) initialDrain(ctx context.Context) {
	defer e.wg.Done()

	timer := time.NewTimer(e.config.StartupDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-e.stopCh:
		return
	case <-timer.C:
		if _, err := e.DrainQueue(ctx); err != nil {
			logging.ErrorWithCode("initial drain failed", string(apperrors.ErrSyncFailed), err, nil)
		}
	}
}

func (e *Engine) periodicLoop(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.config.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stopCh:
			return
		case <-ticker.C:
			if _, err := e.DrainQueue(ctx); err != nil {
				logging.ErrorWithCode("periodic drain failed", string(apperrors.ErrSyncFailed), err, nil)
			}
		}
	}
}

// DrainQueue runs one drain pass. Offline, it returns immediately with zero
// entries processed. A call that arrives while a pass is running is dropped,
// leaving behind a single rerun request that the running pass honors when it
// completes. Returns the number of entries accepted by the remote.
func (e *Engine) DrainQueue(ctx context.Context) (int, error) {
	if !e.monitor.IsOnline() {
		logging.Debug("skipping drain, offline", nil)
		return 0, nil
	}

	if !e.isSyncing.CompareAndSwap(false, true) {
		e.rerun.Store(true)
		logging.Debug("drain already in progress, rerun requested", nil)
		return 0, nil
	}
	defer e.isSyncing.Store(false)

	total := 0
	for {
		n, err := e.drainPass(ctx)
		total += n
		if err != nil {
			return total, err
		}
		if !e.rerun.Swap(false) || !e.monitor.IsOnline() {
			return total, nil
		}
	}
}

// drainPass processes one snapshot of the queue in insertion order,
// sequentially: an entry's submission resolves before the next one starts.
// The last-sync timestamp is recorded unconditionally at the end, even for
// an empty queue, so staleness stays observable.
func (e *Engine) drainPass(ctx context.Context) (int, error) {
	defer func() {
		if err := e.store.SetLastSyncTime(time.Now()); err != nil {
			logging.Error("failed to record last sync time", err, nil)
		}
	}()

	entries, err := e.queue.ListAll()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrSyncFailed, "failed to snapshot queue", err)
	}

	processed := 0
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return processed, ctx.Err()
		default:
		}

		// Entries a concurrent claim already marked are skipped; the
		// CAS on isSyncing makes this check sufficient.
		if entry.SyncStatus == models.SyncStatusProcessing {
			continue
		}

		if err := e.queue.UpdateStatus(entry.ID, queue.StatusPatch{
			SyncStatus: models.SyncStatusProcessing,
			RetryCount: entry.RetryCount,
			LastError:  entry.LastError,
		}); err != nil {
			logging.Error("failed to claim queue entry", err, map[string]interface{}{"entry_id": entry.ID})
			continue
		}

		if err := e.transport.Submit(ctx, entry); err != nil {
			// The entry stays queued and is re-attempted on the
			// next pass; only an explicit clear drops it.
			if uerr := e.queue.UpdateStatus(entry.ID, queue.StatusPatch{
				SyncStatus: models.SyncStatusFailed,
				RetryCount: entry.RetryCount + 1,
				LastError:  err.Error(),
			}); uerr != nil {
				logging.Error("failed to mark entry failed", uerr, map[string]interface{}{"entry_id": entry.ID})
			}
			logging.Warn("sync entry submission failed", map[string]interface{}{
				"entry_id":    entry.ID,
				"type":        string(entry.Type),
				"retry_count": entry.RetryCount + 1,
				"error":       err.Error(),
			})
			continue
		}

		if err := e.queue.Remove(entry.ID); err != nil {
			logging.Error("failed to remove synced entry", err, map[string]interface{}{"entry_id": entry.ID})
			continue
		}
		processed++
	}

	if processed > 0 {
		logging.Info("drain pass completed", map[string]interface{}{
			"processed": processed,
			"total":     len(entries),
		})
	}
	return processed, nil
}

// ManualSync runs a user-initiated drain pass and returns when it completes.
func (e *Engine) ManualSync(ctx context.Context) (int, error) {
	return e.DrainQueue(ctx)
}

// ForceSync runs a drain pass like ManualSync. It is a distinct entry point
// so callers can bypass any future rate limiting without changing retry
// semantics.
func (e *Engine) ForceSync(ctx context.Context) (int, error) {
	return e.DrainQueue(ctx)
}

// RetryFailed resets every failed entry to pending, keeping retry counts,
// then runs a drain pass. It exists so callers can surface a deliberate
// "try again" action distinct from the background drains.
func (e *Engine) RetryFailed(ctx context.Context) (int, error) {
	if _, err := e.queue.ResetFailed(); err != nil {
		return 0, err
	}
	return e.DrainQueue(ctx)
}

// ClearFailed removes every failed entry outright and returns the count.
// This loses the affected mutations; callers surface it as destructive.
func (e *Engine) ClearFailed() (int, error) {
	return e.queue.RemoveFailed()
}
