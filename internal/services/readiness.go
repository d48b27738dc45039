package services

import (
	"context"
	"time"

	"github.com/tis24dev/backupmon/internal/environment"
	"github.com/tis24dev/backupmon/internal/logging"
)

// Test seams.
var (
	portReachable = environment.PortReachable
	pollInterval  = time.Second
)

// WaitForPort polls a TCP port once per second until it accepts connections
// or the timeout elapses. A timeout is an outcome, not an error: the caller
// decides whether degraded operation is acceptable. Dial attempts and sleeps
// are clamped to the remaining budget so the wait never exceeds timeout.
func WaitForPort(ctx context.Context, host string, port int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		dialBudget := pollInterval
		if remaining < dialBudget {
			dialBudget = remaining
		}
		if portReachable(host, port, dialBudget) {
			return true
		}

		remaining = time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		wait := pollInterval
		if remaining < wait {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
	}
}

// EnsureRunning brings a unit up and waits for its port. Already-active units
// skip enable+start but the port is still verified, the unit may be active
// while its listener is not yet bound.
func EnsureRunning(ctx context.Context, mgr Manager, logger *logging.Logger, unit string, port int, timeout time.Duration) bool {
	active, err := mgr.IsActive(ctx, unit)
	if err != nil {
		logger.Warning("cannot query %s: %v", unit, err)
	}
	if active {
		logger.Skip("%s is already active", unit)
	} else {
		logger.Step("Enabling and starting %s", unit)
		if err := mgr.EnableAndStart(ctx, unit); err != nil {
			logger.Error("failed to start %s: %v", unit, err)
			return false
		}
	}

	if !WaitForPort(ctx, "localhost", port, timeout) {
		logger.Error("%s did not open port %d within %s", unit, port, timeout)
		return false
	}
	return true
}
