package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
)

// Systemd artifacts for the scheduled backup job.
const (
	unitDir          = "/etc/systemd/system"
	backupService    = "backup.service"
	backupTimer      = "backup.timer"
	defaultFrequency = "*-*-* 00/2:00:00"
)

// Scripts shipped next to the installer, deployed into ScriptDir.
var backupScripts = []string{"backup-new", "backup-metrics", "job_pool.sh"}

const serviceUnitContent = `[Unit]
Description=Scheduled backup job
After=network.target

[Service]
Type=oneshot
ExecStart=/usr/local/bin/backup-new --backup
User=root
Environment=PATH=/usr/local/bin:/usr/bin:/bin
`

const timerUnitTemplate = `[Unit]
Description=Timer for the scheduled backup job

[Timer]
OnCalendar=%s
Persistent=yes
RandomizedDelaySec=300

[Install]
WantedBy=timers.target
`

// unitStage deploys the backup scripts and the service/timer pair. Skipped
// wholesale when unprivileged; failures are reported but never abort the run,
// the configuration documents are still worth persisting.
func (o *Orchestrator) unitStage(ctx context.Context) {
	const stage = "scheduler"
	log := o.deps.Logger
	log.Phase("Backup scheduler")

	if !o.deps.Env.Privileged {
		log.Skip("Script and unit installation requires root")
		o.record(stage, StageSkipped, "not privileged")
		return
	}
	if o.deps.DryRun {
		log.Info("[dry-run] would install scripts and systemd units")
		o.record(stage, StageSkipped, "dry run")
		return
	}

	o.installScripts()

	frequency, err := o.deps.Prompter.Input(ctx, "Backup frequency (examples: hourly, daily, *-*-* 00/2:00:00)", defaultFrequency)
	if err != nil {
		o.record(stage, StageFailed, err.Error())
		return
	}

	if err := o.deps.FS.WriteFile(filepath.Join(unitDir, backupService), []byte(serviceUnitContent), 0o644); err != nil {
		log.Error("cannot write %s: %v", backupService, err)
		o.record(stage, StageFailed, err.Error())
		return
	}
	timerContent := fmt.Sprintf(timerUnitTemplate, frequency)
	if err := o.deps.FS.WriteFile(filepath.Join(unitDir, backupTimer), []byte(timerContent), 0o644); err != nil {
		log.Error("cannot write %s: %v", backupTimer, err)
		o.record(stage, StageFailed, err.Error())
		return
	}

	if o.deps.Services == nil {
		log.Warning("no service manager available; enable %s manually", backupTimer)
		o.record(stage, StageFailed, "no service manager")
		return
	}
	if err := o.deps.Services.Reload(ctx); err != nil {
		log.Error("daemon-reload failed: %v", err)
		o.record(stage, StageFailed, err.Error())
		return
	}

	start, err := o.deps.Prompter.YesNo(ctx, "Enable and start the backup timer now?", true)
	if err != nil || !start {
		log.Info("Enable later with: systemctl enable --now %s", backupTimer)
		o.record(stage, StageOK, "timer not started")
		return
	}
	if err := o.deps.Services.EnableAndStart(ctx, backupTimer); err != nil {
		log.Error("cannot enable %s: %v", backupTimer, err)
		o.record(stage, StageFailed, err.Error())
		return
	}
	log.Info("Backup timer active (%s)", frequency)
	o.record(stage, StageOK, "")
}

// installScripts copies the engine scripts into ScriptDir. A missing source
// script is reported and skipped: the operator may deploy the engine
// separately.
func (o *Orchestrator) installScripts() {
	log := o.deps.Logger

	if err := o.deps.FS.MkdirAll(o.deps.ScriptDir, 0o755); err != nil {
		log.Error("cannot create %s: %v", o.deps.ScriptDir, err)
		return
	}
	for _, name := range backupScripts {
		source := filepath.Join(o.deps.ScriptSourceDir, name)
		data, err := o.deps.FS.ReadFile(source)
		if err != nil {
			log.Warning("script %s not found next to the installer; skipping", name)
			continue
		}
		dest := filepath.Join(o.deps.ScriptDir, name)
		if err := o.deps.FS.WriteFile(dest, data, 0o755); err != nil {
			log.Error("cannot install %s: %v", dest, err)
			continue
		}
		log.Step("Installed %s", dest)
	}
}
