package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/tis24dev/backupmon/internal/config"
	"github.com/tis24dev/backupmon/internal/environment"
	"github.com/tis24dev/backupmon/internal/firewall"
	"github.com/tis24dev/backupmon/internal/input"
	"github.com/tis24dev/backupmon/internal/pkgmgr"
	"github.com/tis24dev/backupmon/internal/services"
	"github.com/tis24dev/backupmon/internal/types"
	"github.com/tis24dev/backupmon/internal/wizard"
)

// Managed services and their ports.
const (
	metricsUnit   = "influxdb.service"
	metricsPkg    = "influxdb2"
	metricsPort   = 8086
	dashboardUnit = "grafana-server.service"
	dashboardPkg  = "grafana"
	dashboardPort = 3000
)

// Tools the backup engine needs at runtime.
var requiredTools = []string{"rsync", "btrfs"}

// toolPackages maps a missing tool to the package providing it.
var toolPackages = map[string]string{
	"rsync": "rsync",
	"btrfs": "btrfs-progs",
}

// Test seams.
var (
	lookPath       = exec.LookPath
	listeningPorts = environment.ListeningTCPPorts
)

// StageStatus is the outcome of one bootstrap stage.
type StageStatus int

const (
	StageOK StageStatus = iota
	StageSkipped
	StageFailed
)

func (s StageStatus) String() string {
	switch s {
	case StageOK:
		return "ok"
	case StageSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// StageResult records a stage outcome for the final summary.
type StageResult struct {
	Name   string
	Status StageStatus
	Detail string
}

// Orchestrator drives the bootstrap sequence.
type Orchestrator struct {
	deps    Deps
	results []StageResult

	metricsCfg config.MetricsStoreConfig
	backupCfg  *config.BackupConfig
}

// New builds an orchestrator, filling missing dependencies with production
// implementations.
func New(deps Deps) *Orchestrator {
	deps.normalize()
	return &Orchestrator{deps: deps}
}

// Results returns the per-stage outcomes recorded so far.
func (o *Orchestrator) Results() []StageResult {
	return o.results
}

func (o *Orchestrator) record(name string, status StageStatus, detail string) {
	o.results = append(o.results, StageResult{Name: name, Status: status, Detail: detail})
}

// Run executes the full bootstrap. Individual stage failures are reported and
// the run continues; only a declined or failed install of required tools,
// persistence failure, an invalid document or an operator abort yields a
// failure exit.
func (o *Orchestrator) Run(ctx context.Context) types.ExitCode {
	log := o.deps.Logger

	log.Phase("Backup monitoring bootstrap")
	o.reportEnvironment()

	if code, ok := o.dependencyStage(ctx); !ok {
		return code
	}
	o.metricsStage(ctx)
	o.dashboardStage(ctx)

	if code, ok := o.elicitationStage(ctx); !ok {
		return code
	}
	o.unitStage(ctx)

	if code, ok := o.persistenceStage(); !ok {
		return code
	}

	o.summary()
	return types.ExitSuccess
}

func (o *Orchestrator) reportEnvironment() {
	log := o.deps.Logger
	env := o.deps.Env

	log.Info("Distribution: %s (%s family)", env.DistroName, env.Family)
	log.Info("Package manager: %s", env.PackageManager)
	log.Info("Firewall: %s", env.Firewall)
	if !env.Privileged {
		log.Warning("Running unprivileged: package, firewall and service steps will be skipped")
	}
}

// dependencyStage installs the tools the backup engine needs. The tools are
// required: declining the installation, or the installation failing, aborts
// the run. Only an unprivileged process degrades to a reported failure, it
// cannot install and still produces the configuration documents.
func (o *Orchestrator) dependencyStage(ctx context.Context) (types.ExitCode, bool) {
	const stage = "dependencies"
	log := o.deps.Logger
	log.Phase("Checking runtime dependencies")

	var missing []string
	for _, tool := range requiredTools {
		if _, err := lookPath(tool); err != nil {
			missing = append(missing, toolPackages[tool])
		}
	}
	if len(missing) == 0 {
		log.Skip("All runtime dependencies present")
		o.record(stage, StageSkipped, "already installed")
		return types.ExitSuccess, true
	}

	log.Warning("Missing tools: %s", strings.Join(missing, ", "))
	if !o.deps.Env.Privileged {
		o.record(stage, StageFailed, "missing tools, not privileged")
		return types.ExitSuccess, true
	}

	install, err := o.deps.Prompter.YesNo(ctx, fmt.Sprintf("Install missing packages (%s)?", strings.Join(missing, ", ")), true)
	if err != nil || !install {
		log.Error("required dependencies missing and installation declined; cannot continue")
		o.record(stage, StageFailed, "installation declined")
		return types.ExitFailure, false
	}
	if o.deps.DryRun {
		log.Info("[dry-run] would install %s", strings.Join(missing, ", "))
		o.record(stage, StageSkipped, "dry run")
		return types.ExitSuccess, true
	}

	mgr := pkgmgr.New(o.deps.Env.PackageManager, o.deps.Command)
	if err := mgr.Install(ctx, missing); err != nil {
		log.Error("required dependency installation failed: %v", err)
		o.record(stage, StageFailed, err.Error())
		return types.ExitFailure, false
	}
	log.Info("Dependencies installed")
	o.record(stage, StageOK, "")
	return types.ExitSuccess, true
}

// installService brings one managed service up: repository, package, unit,
// firewall. Already-listening ports short-circuit the install entirely.
func (o *Orchestrator) installService(ctx context.Context, stage, unit, pkg string, port int, repo pkgmgr.Repository) bool {
	log := o.deps.Logger

	if listeningPorts()[port] {
		log.Skip("%s already listening on port %d", unit, port)
		o.record(stage, StageSkipped, "already running")
		return true
	}

	if !o.deps.Env.Privileged {
		log.Warning("%s is not running and installation requires root", unit)
		o.record(stage, StageFailed, "not privileged")
		return false
	}
	if o.deps.DryRun {
		log.Info("[dry-run] would install and start %s", pkg)
		o.record(stage, StageSkipped, "dry run")
		return false
	}

	mgr := pkgmgr.New(o.deps.Env.PackageManager, o.deps.Command)

	log.Step("Adding %s package repository", repo.Name)
	if err := mgr.AddRepository(ctx, repo); err != nil {
		if errors.Is(err, pkgmgr.ErrUnsupported) {
			log.Warning("automatic repository setup unsupported on %s; assuming %s is available", o.deps.Env.PackageManager, pkg)
		} else {
			log.Error("repository setup failed: %v", err)
			o.record(stage, StageFailed, err.Error())
			return false
		}
	}

	log.Step("Installing %s", pkg)
	if err := mgr.Install(ctx, []string{pkg}); err != nil {
		log.Error("install failed: %v", err)
		o.record(stage, StageFailed, err.Error())
		return false
	}

	if o.deps.Services == nil {
		log.Warning("no service manager available; start %s manually", unit)
		o.record(stage, StageFailed, "no service manager")
		return false
	}
	if !services.EnsureRunning(ctx, o.deps.Services, log, unit, port, o.deps.ReadyTimeout) {
		o.record(stage, StageFailed, "service not ready")
		return false
	}

	o.openFirewall(ctx, port)
	o.record(stage, StageOK, "")
	return true
}

func (o *Orchestrator) openFirewall(ctx context.Context, port int) {
	log := o.deps.Logger

	fw := firewall.New(o.deps.Env.Firewall, o.deps.Command)
	if err := fw.OpenPorts(ctx, []int{port}, nil); err != nil {
		if errors.Is(err, firewall.ErrNoFirewall) {
			log.Skip("No firewall manager detected; port %d left as-is", port)
			return
		}
		// Firewall trouble never blocks the service itself.
		log.Warning("could not open port %d: %v", port, err)
		return
	}
	log.Info("Firewall: port %d open", port)
}

func (o *Orchestrator) metricsStage(ctx context.Context) {
	const stage = "metrics store"
	log := o.deps.Logger
	log.Phase("Metrics store")

	ready := o.installService(ctx, stage, metricsUnit, metricsPkg, metricsPort, pkgmgr.InfluxDBRepository())
	if !ready {
		log.Warning("Metrics store unavailable; backup metrics will not be recorded")
		return
	}

	client := services.NewSetupClient(o.deps.MetricsBaseURL)
	cfg, err := services.ConfigureMetricsStore(ctx, client, o.deps.Prompter, log, "localhost", fmt.Sprint(metricsPort))
	if err != nil {
		// Only interactive aborts escape ConfigureMetricsStore; surface and
		// let the elicitation stage handle the same condition.
		log.Warning("metrics store configuration interrupted: %v", err)
		return
	}
	o.metricsCfg = cfg
	if cfg.Empty() {
		log.Warning("Metrics store left unconfigured")
	}
}

func (o *Orchestrator) dashboardStage(ctx context.Context) {
	log := o.deps.Logger
	log.Phase("Dashboard server")

	if o.installService(ctx, "dashboard", dashboardUnit, dashboardPkg, dashboardPort, pkgmgr.GrafanaRepository()) {
		log.Info("Dashboard available at http://localhost:%d (default login admin/admin)", dashboardPort)
	}
}

// elicitationStage runs the configuration dialogue. Aborts and validation
// failures end the run.
func (o *Orchestrator) elicitationStage(ctx context.Context) (types.ExitCode, bool) {
	const stage = "configuration"
	log := o.deps.Logger
	log.Phase("Backup configuration")

	builder := wizard.NewBuilder(o.deps.Prompter, log, o.deps.Command)
	cfg, err := builder.Run(ctx)
	if err != nil {
		o.record(stage, StageFailed, err.Error())
		switch {
		case input.IsAborted(err):
			log.Error("configuration aborted by operator")
		case errors.Is(err, config.ErrNoHosts):
			log.Error("no hosts configured; nothing to back up")
		default:
			log.Error("configuration failed: %v", err)
		}
		return types.ExitFailure, false
	}

	o.backupCfg = cfg
	o.record(stage, StageOK, fmt.Sprintf("%d host(s)", len(cfg.Hosts)))
	return types.ExitSuccess, true
}

func (o *Orchestrator) persistenceStage() (types.ExitCode, bool) {
	const stage = "persistence"
	log := o.deps.Logger
	log.Phase("Saving configuration")

	if o.deps.DryRun {
		log.Info("[dry-run] would save configuration under %s", o.deps.ConfigDir)
		o.record(stage, StageSkipped, "dry run")
		return types.ExitSuccess, true
	}

	path, err := config.SaveBackupConfig(o.deps.ConfigDir, o.backupCfg)
	if err != nil {
		log.Error("cannot save backup configuration: %v", err)
		o.record(stage, StageFailed, err.Error())
		return types.ExitFailure, false
	}
	log.Info("Backup configuration saved to %s", path)

	if !o.metricsCfg.Empty() {
		path, err = config.SaveMetricsConfig(o.deps.ConfigDir, o.metricsCfg)
		if err != nil {
			log.Error("cannot save metrics store configuration: %v", err)
			o.record(stage, StageFailed, err.Error())
			return types.ExitFailure, false
		}
		log.Info("Metrics store configuration saved to %s", path)
	}

	o.record(stage, StageOK, "")
	return types.ExitSuccess, true
}

func (o *Orchestrator) summary() {
	log := o.deps.Logger
	log.Phase("Bootstrap complete")

	for _, r := range o.results {
		switch r.Status {
		case StageOK:
			log.Info("%-14s ok", r.Name)
		case StageSkipped:
			log.Skip("%-14s %s", r.Name, r.Detail)
		case StageFailed:
			log.Warning("%-14s failed: %s", r.Name, r.Detail)
		}
	}

	if !o.metricsCfg.Empty() {
		log.Info("Metrics store: http://%s:%s (organization %s, bucket %s)",
			o.metricsCfg.Host, o.metricsCfg.Port, o.metricsCfg.Organization, o.metricsCfg.Bucket)
	}
	log.Info("Configuration directory: %s", o.deps.ConfigDir)
	log.Info("Next: verify host connectivity, then wait for the first timer run")
}
