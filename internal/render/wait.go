package render

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/dmarkhas/renderdeploy-go/internal/errors"
	"github.com/dmarkhas/renderdeploy-go/internal/retry"
)

// errStillDeploying marks polls that saw an in-progress deploy, so the
// caller can distinguish "never finished" from a terminal failure.
var errStillDeploying = stderrors.New("deploy in progress")

// WaitOptions configures the readiness wait after a deploy is triggered.
type WaitOptions struct {
	// Timeout is the terminal deadline for the whole wait.
	Timeout time.Duration

	// MaxRetries bounds the number of status polls after the first.
	MaxRetries int

	// InitialDelay is the backoff seed between polls.
	InitialDelay time.Duration

	// FixedDelay, when non-zero, disables polling entirely and sleeps
	// for the given duration instead. This reproduces the legacy deploy
	// script behavior for operators that rely on it; the polling mode is
	// the default because the fixed sleep races actual readiness.
	FixedDelay time.Duration
}

// WaitLive blocks until the service's latest deploy reports live.
//
// Terminal deploy failures (build failed, canceled) abort immediately.
// If the deadline passes first, ErrDeployTimeout is returned.
func (d *Deployer) WaitLive(ctx context.Context, serviceID string, opts WaitOptions) error {
	if opts.FixedDelay > 0 {
		d.log.WithField("delay", opts.FixedDelay).InfoContext(ctx, "Fixed-delay wait (readiness not verified)")
		return retry.Sleep(ctx, opts.FixedDelay)
	}

	waitCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	d.log.WithFields(map[string]any{
		"timeout":     opts.Timeout,
		"max_retries": opts.MaxRetries,
	}).InfoContext(ctx, "Waiting for deploy to go live")

	err := retry.WithBackoff(waitCtx, opts.MaxRetries, opts.InitialDelay, func() error {
		deploy, err := d.LatestDeploy(waitCtx, serviceID)
		if err != nil {
			return err
		}

		switch {
		case deploy.Live():
			return nil
		case deploy.Failed():
			return retry.Permanent(fmt.Errorf("deploy %s ended in state %s: %w",
				deploy.ID, deploy.Status, errors.ErrServiceNotReady))
		default:
			d.log.WithField("status", deploy.Status).DebugContext(waitCtx, "Deploy still in progress")
			return fmt.Errorf("deploy %s in state %s: %w",
				deploy.ID, deploy.Status, errStillDeploying)
		}
	})

	if err != nil {
		// Both an elapsed deadline and exhausted polls against an
		// in-progress deploy count as the terminal timeout.
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, errStillDeploying) {
			return fmt.Errorf("service %s: %w", serviceID, errors.ErrDeployTimeout)
		}
		return err
	}

	d.log.InfoContext(ctx, "Deploy is live")
	return nil
}
