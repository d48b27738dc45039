// Package firewall abstracts the host firewall behind one capability:
// durably allow inbound traffic on a set of ports/services.
//
// The orchestrator expresses intent once ("allow 8086"); each variant
// translates it into the concrete tool's command sequence. A host without a
// supported firewall yields a reported error, never an abort.
package firewall

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/tis24dev/backupmon/internal/types"
)

// ErrNoFirewall is returned when no supported firewall manager exists.
var ErrNoFirewall = errors.New("no supported firewall manager available")

// Runner executes firewall commands. Shared shape with pkgmgr.Runner so one
// fake serves both in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// lookPath indirection for the iptables-save persistence probe.
var lookPath = exec.LookPath

// Firewall is the firewall capability set.
type Firewall interface {
	Kind() types.FirewallKind
	OpenPorts(ctx context.Context, ports []int, services []string) error
}

// New returns the Firewall variant for the given kind.
func New(kind types.FirewallKind, runner Runner) Firewall {
	switch kind {
	case types.FirewallUfw:
		return &ufwFirewall{runner: runner}
	case types.FirewallFirewalld:
		return &firewalldFirewall{runner: runner}
	case types.FirewallIptables:
		return &iptablesFirewall{runner: runner}
	default:
		return noneFirewall{}
	}
}

func commandError(action string, output []byte, err error) error {
	trimmed := strings.TrimSpace(string(output))
	if trimmed != "" {
		return fmt.Errorf("%s: %w (%s)", action, err, trimmed)
	}
	return fmt.Errorf("%s: %w", action, err)
}

type ufwFirewall struct {
	runner Runner
}

func (f *ufwFirewall) Kind() types.FirewallKind {
	return types.FirewallUfw
}

func (f *ufwFirewall) OpenPorts(ctx context.Context, ports []int, services []string) error {
	for _, port := range ports {
		if out, err := f.runner.Run(ctx, "ufw", "allow", fmt.Sprintf("%d", port)); err != nil {
			return commandError("ufw allow", out, err)
		}
	}
	for _, service := range services {
		if out, err := f.runner.Run(ctx, "ufw", "allow", service); err != nil {
			return commandError("ufw allow", out, err)
		}
	}
	return nil
}

type firewalldFirewall struct {
	runner Runner
}

func (f *firewalldFirewall) Kind() types.FirewallKind {
	return types.FirewallFirewalld
}

// OpenPorts adds permanent rules and reloads once after the batch, so the
// rules are both durable and immediately active.
func (f *firewalldFirewall) OpenPorts(ctx context.Context, ports []int, services []string) error {
	for _, port := range ports {
		if out, err := f.runner.Run(ctx, "firewall-cmd", "--permanent", "--add-port", fmt.Sprintf("%d/tcp", port)); err != nil {
			return commandError("firewall-cmd --add-port", out, err)
		}
	}
	for _, service := range services {
		if out, err := f.runner.Run(ctx, "firewall-cmd", "--permanent", "--add-service", service); err != nil {
			return commandError("firewall-cmd --add-service", out, err)
		}
	}
	if out, err := f.runner.Run(ctx, "firewall-cmd", "--reload"); err != nil {
		return commandError("firewall-cmd --reload", out, err)
	}
	return nil
}

type iptablesFirewall struct {
	runner Runner
}

func (f *iptablesFirewall) Kind() types.FirewallKind {
	return types.FirewallIptables
}

// OpenPorts appends ACCEPT rules. Persistence via iptables-save is best
// effort: its absence or failure does not fail the call, the rules are live
// for the current boot either way.
func (f *iptablesFirewall) OpenPorts(ctx context.Context, ports []int, _ []string) error {
	for _, port := range ports {
		out, err := f.runner.Run(ctx, "iptables",
			"-A", "INPUT", "-p", "tcp", "--dport", fmt.Sprintf("%d", port), "-j", "ACCEPT")
		if err != nil {
			return commandError("iptables -A", out, err)
		}
	}
	if _, err := lookPath("iptables-save"); err == nil {
		_, _ = f.runner.Run(ctx, "iptables-save")
	}
	return nil
}

type noneFirewall struct{}

func (noneFirewall) Kind() types.FirewallKind {
	return types.FirewallNone
}

func (noneFirewall) OpenPorts(context.Context, []int, []string) error {
	return ErrNoFirewall
}
