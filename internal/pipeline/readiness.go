package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/shipway/shipway/internal/ssh"
)

const (
	defaultWaitRetries  = 10
	defaultWaitInterval = 3 * time.Second
	defaultWaitTimeout  = 60 * time.Second
)

// Waiter polls a remote status command until it exits zero, replacing
// a fixed post-start sleep with bounded readiness detection.
type Waiter struct {
	exec          ssh.Executor
	statusCommand string
	retries       int
	interval      time.Duration
	timeout       time.Duration
}

// NewWaiter creates a waiter with default retry settings.
func NewWaiter(exec ssh.Executor, statusCommand string) *Waiter {
	return &Waiter{
		exec:          exec,
		statusCommand: statusCommand,
		retries:       defaultWaitRetries,
		interval:      defaultWaitInterval,
		timeout:       defaultWaitTimeout,
	}
}

// SetRetries sets the maximum number of status checks.
func (w *Waiter) SetRetries(retries int) {
	w.retries = retries
}

// SetInterval sets the pause between status checks.
func (w *Waiter) SetInterval(interval time.Duration) {
	w.interval = interval
}

// SetTimeout sets the overall deadline across all attempts.
func (w *Waiter) SetTimeout(timeout time.Duration) {
	w.timeout = timeout
}

// Wait blocks until the status command succeeds, the attempts are
// exhausted, the deadline passes, or ctx is canceled.
func (w *Waiter) Wait(ctx context.Context) error {
	deadline := time.Now().Add(w.timeout)

	for attempt := 1; attempt <= w.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("not ready after %s", w.timeout)
		}

		result, err := w.exec.Exec(ctx, w.statusCommand)
		if err == nil && result.ExitCode == 0 {
			return nil
		}

		if attempt < w.retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.interval):
			}
		}
	}

	return fmt.Errorf("not ready after %d attempts", w.retries)
}
