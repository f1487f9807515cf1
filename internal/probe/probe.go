// Package probe performs HTTP health checks against a deployed service.
// A probe is a single GET against the health endpoint; WaitHealthy wraps
// it with bounded retries for callers that need readiness rather than a
// point-in-time answer.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmarkhas/renderdeploy-go/internal/errors"
	"github.com/dmarkhas/renderdeploy-go/internal/retry"
)

// Prober issues health probes with a bounded per-request timeout.
type Prober struct {
	client *http.Client
}

// New creates a Prober whose individual requests time out after timeout.
func New(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Prober{
		client: &http.Client{Timeout: timeout},
	}
}

// Probe issues one GET against url and returns nil on HTTP 200.
//
// Non-200 statuses and transport failures return a ProbeError wrapping
// ErrHealthCheckFailed. 4xx responses are marked permanent so retrying
// callers stop immediately: a health endpoint that answers 404 will not
// start answering 200 by itself.
func (p *Prober) Probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return retry.Permanent(fmt.Errorf("build probe request: %w", err))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return &errors.ProbeError{URL: url, Err: fmt.Errorf("%w: %v", errors.ErrHealthCheckFailed, err)}
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused across retries.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	probeErr := &errors.ProbeError{
		URL:        url,
		StatusCode: resp.StatusCode,
		Err:        errors.ErrHealthCheckFailed,
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return retry.Permanent(probeErr)
	}
	return probeErr
}

// WaitHealthy probes url until it answers 200, retrying transient
// failures with backoff. maxRetries bounds the retries after the first
// probe; initialDelay seeds the backoff.
func (p *Prober) WaitHealthy(ctx context.Context, url string, maxRetries int, initialDelay time.Duration) error {
	return retry.WithBackoff(ctx, maxRetries, initialDelay, func() error {
		return p.Probe(ctx, url)
	})
}
