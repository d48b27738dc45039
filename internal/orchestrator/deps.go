// Package orchestrator sequences the bootstrap: dependency check, environment
// probe, metrics store, dashboard, configuration elicitation, script and unit
// installation, persistence, summary. Stage failures are isolated; only a
// refused install of required tools, a persistence failure or an empty host
// set aborts the run.
package orchestrator

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"github.com/tis24dev/backupmon/internal/environment"
	"github.com/tis24dev/backupmon/internal/logging"
	"github.com/tis24dev/backupmon/internal/services"
	"github.com/tis24dev/backupmon/internal/wizard"
)

// FS abstracts the filesystem operations the bootstrap performs.
type FS interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	Stat(path string) (os.FileInfo, error)
}

// CommandRunner executes system commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Deps groups the orchestrator's collaborators. Zero fields are filled with
// production implementations by normalize; tests override selectively.
type Deps struct {
	Logger   *logging.Logger
	Prompter wizard.Prompter
	Command  CommandRunner
	FS       FS
	Services services.Manager

	// Env is the probed environment; when nil the orchestrator probes itself.
	Env *environment.Info

	// ConfigDir receives backup.yaml and influxdb-config.yaml.
	ConfigDir string
	// ScriptDir receives the backup scripts referenced by the systemd units.
	ScriptDir string
	// ScriptSourceDir is where the engine scripts ship alongside the
	// installer.
	ScriptSourceDir string

	// MetricsBaseURL overrides the setup API endpoint; empty means
	// http://localhost:8086.
	MetricsBaseURL string

	// ReadyTimeout bounds each service readiness wait.
	ReadyTimeout time.Duration

	// DryRun reports planned actions without touching the system.
	DryRun bool
}

type osFS struct{}

func (osFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }
func (osFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}
func (osFS) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }
func (osFS) Stat(path string) (os.FileInfo, error)        { return os.Stat(path) }

type osCommandRunner struct{}

func (osCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func (d *Deps) normalize() {
	if d.Logger == nil {
		d.Logger = logging.GetDefaultLogger()
	}
	if d.Prompter == nil {
		d.Prompter = wizard.NewConsolePrompter()
	}
	if d.Command == nil {
		d.Command = osCommandRunner{}
	}
	if d.FS == nil {
		d.FS = osFS{}
	}
	if d.Env == nil {
		d.Env = environment.Detect()
	}
	if d.ConfigDir == "" {
		d.ConfigDir = "/etc/backupmon"
	}
	if d.ScriptDir == "" {
		d.ScriptDir = "/usr/local/bin"
	}
	if d.ScriptSourceDir == "" {
		d.ScriptSourceDir = "."
	}
	if d.MetricsBaseURL == "" {
		d.MetricsBaseURL = "http://localhost:8086"
	}
	if d.ReadyTimeout == 0 {
		d.ReadyTimeout = 30 * time.Second
	}
}
