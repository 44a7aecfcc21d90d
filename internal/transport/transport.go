// Package transport abstracts the remote endpoint that accepts queued
// mutations. The engine needs exactly one capability: submit one entry's
// payload and learn whether the remote accepted it.
package transport

import (
	"context"

	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/models"
)

// Transport submits a single queue entry to the remote service. Any non-2xx
// response, network failure or timeout is returned as an error; all such
// failures are retryable from the engine's point of view.
type Transport interface {
	Submit(ctx context.Context, entry *models.QueueEntry) error
}
