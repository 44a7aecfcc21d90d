// Package learnsync is the offline-first persistence and synchronization
// engine for the STEM learning app. It caches learning content and user
// activity on the device, records every local mutation as a queued
// operation, and reconciles the queue against the remote service once
// connectivity is available.
//
// The surrounding application interacts through two narrow contracts:
// record a local mutation (RecordModuleTouch, RecordQuizAttempt) and report
// current sync health (GetSyncStatus). Everything else here exists to keep
// those two honest across connectivity loss, restarts and partial failures.
package learnsync

import (
	"context"

	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/connectivity"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/engine"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/logging"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/models"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/queue"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/store"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/transport"
)

// Re-exported types so callers never import internal packages.
type (
	CachedModule   = models.CachedModule
	CachedQuiz     = models.CachedQuiz
	QuizQuestion   = models.QuizQuestion
	ProgressRecord = models.ProgressRecord
	AttemptRecord  = models.AttemptRecord
	QuestionResult = models.QuestionResult
	TouchOptions   = models.TouchOptions
	Status         = engine.Status
	Health         = engine.Health
)

// Health values as reported in Status.HealthStatus.
const (
	HealthHealthy  = engine.HealthHealthy
	HealthWarning  = engine.HealthWarning
	HealthCritical = engine.HealthCritical
)

// Config wires a Client.
type Config struct {
	// DataDir is the directory holding the sqlite database.
	DataDir string
	// Remote configures the HTTP transport. Ignored when Transport is set.
	Remote transport.HTTPConfig
	// Engine configures drain intervals and health thresholds.
	Engine engine.Config
	// Online is the initial connectivity assumption before the host pushes
	// its first network-change notification.
	Online bool
	// Transport overrides the HTTP transport, mainly for tests.
	Transport transport.Transport
}

// Client is the engine facade. Construct one per application process at
// startup and share it; the underlying store has process lifetime.
type Client struct {
	store     *store.Store
	queue     *queue.Queue
	monitor   *connectivity.Monitor
	engine    *engine.Engine
	transport transport.Transport
}

// New opens the local store and wires the queue, connectivity monitor,
// transport and sync engine together. It does not start background
// triggers; call Start once the host is ready.
func New(cfg Config) (*Client, error) {
	s, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	q := queue.New(s)
	m := connectivity.NewMonitor(cfg.Online)

	t := cfg.Transport
	if t == nil {
		t = transport.NewHTTPTransport(cfg.Remote)
	}

	if cfg.Engine == (engine.Config{}) {
		cfg.Engine = engine.DefaultConfig()
	}
	e := engine.New(s, q, m, t, cfg.Engine)

	return &Client{
		store:     s,
		queue:     q,
		monitor:   m,
		engine:    e,
		transport: t,
	}, nil
}

// Start launches the engine's background triggers: the delayed initial
// drain and the periodic drain.
func (c *Client) Start(ctx context.Context) {
	c.engine.Start(ctx)
}

// Close stops background work and releases the store and transport.
func (c *Client) Close() error {
	c.engine.Stop()
	if closer, ok := c.transport.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logging.Error("failed to close transport", err, nil)
		}
	}
	return c.store.Close()
}

// SetOnline feeds a platform network-change notification into the engine.
// An offline-to-online edge triggers a drain pass.
func (c *Client) SetOnline(online bool) {
	c.monitor.SetOnline(online)
}

// IsOnline reports the current connectivity state.
func (c *Client) IsOnline() bool {
	return c.monitor.IsOnline()
}

// RecordModuleTouch updates local progress for a module and enqueues a sync
// entry carrying the updated snapshot. The record is returned synchronously
// from local state; enqueue trouble is logged, never surfaced, so the user
// action always completes.
func (c *Client) RecordModuleTouch(moduleID string, opts TouchOptions) (*ProgressRecord, error) {
	rec, err := c.store.TouchModuleProgress(moduleID, opts)
	if err != nil {
		return nil, err
	}
	if _, err := c.queue.Enqueue(models.ProgressPayload(rec), moduleID); err != nil {
		logging.Error("failed to enqueue progress sync entry", err, map[string]interface{}{"module_id": moduleID})
	}
	return rec, nil
}

// RecordQuizAttempt appends a completed quiz attempt locally and enqueues a
// sync entry carrying the attempt snapshot.
func (c *Client) RecordQuizAttempt(quizID string, attempt *AttemptRecord) (*AttemptRecord, error) {
	if err := c.store.AppendQuizAttempt(quizID, attempt); err != nil {
		return nil, err
	}
	if _, err := c.queue.Enqueue(models.AttemptPayload(attempt), quizID); err != nil {
		logging.Error("failed to enqueue attempt sync entry", err, map[string]interface{}{"quiz_id": quizID})
	}
	return attempt, nil
}

// CacheModule stores a module snapshot for offline reading, replacing any
// prior snapshot with the same ID.
func (c *Client) CacheModule(m *CachedModule) error {
	return c.store.UpsertModule(m)
}

// CacheQuiz stores a quiz snapshot for offline use.
func (c *Client) CacheQuiz(q *CachedQuiz) error {
	return c.store.UpsertQuiz(q)
}

// GetModule returns a cached module by ID.
func (c *Client) GetModule(id string) (*CachedModule, error) {
	return c.store.GetModule(id)
}

// GetQuiz returns a cached quiz by ID.
func (c *Client) GetQuiz(id string) (*CachedQuiz, error) {
	return c.store.GetQuiz(id)
}

// ListModules returns all cached modules in insertion order.
func (c *Client) ListModules() []*CachedModule {
	return c.store.ListModules()
}

// ListQuizzes returns all cached quizzes in insertion order.
func (c *Client) ListQuizzes() []*CachedQuiz {
	return c.store.ListQuizzes()
}

// GetProgress returns the progress record for a module.
func (c *Client) GetProgress(moduleID string) (*ProgressRecord, error) {
	return c.store.GetProgress(moduleID)
}

// ListQuizAttempts returns the attempt history for a quiz in chronological
// order.
func (c *Client) ListQuizAttempts(quizID string) []*AttemptRecord {
	return c.store.ListQuizAttempts(quizID)
}

// GetSyncStatus returns the current sync health snapshot.
func (c *Client) GetSyncStatus() Status {
	return c.engine.Status()
}

// ManualSync runs a user-initiated drain pass, returning when it completes.
func (c *Client) ManualSync(ctx context.Context) (int, error) {
	return c.engine.ManualSync(ctx)
}

// ForceSync runs a drain pass, bypassing any future rate limiting.
func (c *Client) ForceSync(ctx context.Context) (int, error) {
	return c.engine.ForceSync(ctx)
}

// RetryFailed re-arms every failed entry and runs a drain pass.
func (c *Client) RetryFailed(ctx context.Context) (int, error) {
	return c.engine.RetryFailed(ctx)
}

// ClearFailed permanently removes all failed entries. Destructive; the UI
// must confirm with the user before calling.
func (c *Client) ClearFailed() (int, error) {
	return c.engine.ClearFailed()
}

// Reset wipes every persisted collection. Used on account logout.
func (c *Client) Reset() error {
	return c.store.ClearAll()
}
