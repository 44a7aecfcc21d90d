package transport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	apperrors "github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/errors"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/models"
)

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	BaseURL      string
	ProgressPath string        // endpoint for moduleProgress entries
	AttemptPath  string        // endpoint for quizAttempt entries
	Timeout      time.Duration // per-submission bound, timeout = retryable failure
	Attempts     uint          // total in-call attempts for connection-level failures
	AuthToken    string        // optional bearer token
}

// DefaultHTTPConfig returns the default transport configuration.
func DefaultHTTPConfig(baseURL string) HTTPConfig {
	return HTTPConfig{
		BaseURL:      baseURL,
		ProgressPath: "/sync/progress",
		AttemptPath:  "/sync/attempts",
		Timeout:      30 * time.Second,
		Attempts:     2,
	}
}

// HTTPTransport submits queue entries as JSON POSTs, one call per entry.
// Success is any 2xx response; everything else is a failure the engine
// records against the entry.
type HTTPTransport struct {
	httpClient *resty.Client
	config     HTTPConfig
}

// NewHTTPTransport creates an HTTPTransport.
func NewHTTPTransport(config HTTPConfig) *HTTPTransport {
	client := resty.New()
	client.SetBaseURL(config.BaseURL)
	client.SetHeader("Content-Type", "application/json")
	if config.AuthToken != "" {
		client.SetHeader("Authorization", "Bearer "+config.AuthToken)
	}
	if config.Attempts == 0 {
		config.Attempts = 1
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &HTTPTransport{
		httpClient: client,
		config:     config,
	}
}

// Close releases the underlying HTTP client.
func (t *HTTPTransport) Close() error {
	return t.httpClient.Close()
}

// endpointFor maps an entry type to its remote path.
func (t *HTTPTransport) endpointFor(entryType models.EntryType) (string, error) {
	switch entryType {
	case models.EntryModuleProgress:
		return t.config.ProgressPath, nil
	case models.EntryQuizAttempt:
		return t.config.AttemptPath, nil
	}
	return "", apperrors.New(apperrors.ErrInvalid, fmt.Sprintf("unknown entry type %q", entryType))
}

// isRetryableError reports whether a submission failure is worth retrying
// within the same call. Only connection-level trouble qualifies; a non-2xx
// response is a verdict from the server and is handed straight back to the
// engine.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "connection reset") || strings.Contains(errStr, "no such host") {
		return true
	}
	return false
}

// Submit posts the entry's payload to the endpoint for its type. The whole
// call, including in-call retries, stays inside the configured timeout.
func (t *HTTPTransport) Submit(ctx context.Context, entry *models.QueueEntry) error {
	endpoint, err := t.endpointFor(entry.Type)
	if err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	if err := retry.Do(
		func() error {
			if err := t.submit(callCtx, endpoint, entry); err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			return nil
		},
		retry.Context(callCtx),
		retry.Attempts(t.config.Attempts),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return apperrors.Wrap(apperrors.ErrTransport, "submission failed", err)
	}
	return nil
}

func (t *HTTPTransport) submit(ctx context.Context, endpoint string, entry *models.QueueEntry) error {
	response, err := t.httpClient.R().
		SetContext(ctx).
		SetBody([]byte(entry.Payload)).
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}
	return nil
}
