package wizard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tis24dev/backupmon/internal/config"
	"github.com/tis24dev/backupmon/internal/logging"
	"golang.org/x/crypto/ssh"
)

// Runner executes external commands; the builder only needs it for the
// filesystem capability check.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ErrSnapshotsRefused is returned when the destination filesystem does not
// support snapshots and the operator refuses to continue without them.
var ErrSnapshotsRefused = errors.New("snapshots unsupported on destination filesystem and operator declined to continue")

// Test seams.
var (
	readKeyFile     = os.ReadFile
	parsePrivateKey = func(data []byte) error {
		_, err := ssh.ParsePrivateKey(data)
		return err
	}
)

// Builder runs the elicitation dialogue and produces a validated document.
type Builder struct {
	prompter Prompter
	logger   *logging.Logger
	runner   Runner
}

// NewBuilder wires a dialogue over the given prompter.
func NewBuilder(prompter Prompter, logger *logging.Logger, runner Runner) *Builder {
	return &Builder{prompter: prompter, logger: logger, runner: runner}
}

// Run drives the dialogue start to finish: base settings, the snapshot
// decision, then the host loop. The returned document has already passed
// Validate.
func (b *Builder) Run(ctx context.Context) (*config.BackupConfig, error) {
	cfg := config.NewBackupConfig()

	if err := b.baseSettings(ctx, cfg); err != nil {
		return nil, err
	}
	if err := b.snapshotDecision(ctx, cfg); err != nil {
		return nil, err
	}
	if err := b.hostLoop(ctx, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (b *Builder) baseSettings(ctx context.Context, cfg *config.BackupConfig) error {
	base, err := b.prompter.Input(ctx, "Backup destination directory", config.DefaultBackupBase)
	if err != nil {
		return err
	}
	lock, err := b.prompter.Input(ctx, "Lock file path", config.DefaultLockFile)
	if err != nil {
		return err
	}
	opts, err := b.prompter.Input(ctx, "Rsync options", config.DefaultRsyncOptions)
	if err != nil {
		return err
	}
	cfg.Settings.BackupBase = base
	cfg.Settings.LockFile = lock
	cfg.Settings.RsyncOptions = opts
	return nil
}

// snapshotDecision checks whether the parent of the destination root lives on
// btrfs. On a capable filesystem the section is opt-in; on anything else the
// operator must explicitly accept running without snapshots.
func (b *Builder) snapshotDecision(ctx context.Context, cfg *config.BackupConfig) error {
	parent := filepath.Dir(strings.TrimRight(cfg.Settings.BackupBase, "/"))
	if parent == "" {
		parent = "/"
	}

	if !b.isBtrfs(ctx, parent) {
		b.logger.Warning("%s is not on a btrfs filesystem; snapshots are unavailable", parent)
		ok, err := b.prompter.YesNo(ctx, "Continue without snapshot support?", true)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSnapshotsRefused
		}
		return nil
	}

	want, err := b.prompter.YesNo(ctx, "Destination supports btrfs snapshots. Configure snapshot rotation?", true)
	if err != nil {
		return err
	}
	if !want {
		// Declined: the section stays absent, not empty.
		return nil
	}
	return b.snapshotConfig(ctx, cfg)
}

func (b *Builder) isBtrfs(ctx context.Context, path string) bool {
	if b.runner == nil {
		return false
	}
	out, err := b.runner.Run(ctx, "df", "-T", path)
	if err != nil {
		return false
	}
	return strings.Contains(string(out), "btrfs")
}

func (b *Builder) snapshotConfig(ctx context.Context, cfg *config.BackupConfig) error {
	volume, err := b.prompter.Input(ctx, "Snapshot volume path", config.DefaultVolume)
	if err != nil {
		return err
	}
	snaps := &config.Snapshots{Volume: volume}

	useDefault, err := b.prompter.YesNo(ctx, "Use default retention (6 hourly / 7 daily / 4 weekly / 12 monthly)?", true)
	if err != nil {
		return err
	}
	if useDefault {
		snaps.Schedules = config.DefaultSchedules()
		cfg.Snapshots = snaps
		return nil
	}

	for {
		label, err := b.prompter.Input(ctx, "Schedule name (e.g. daily)", "")
		if err != nil {
			return err
		}
		count, err := b.promptInt(ctx, "Snapshots to keep", "7")
		if err != nil {
			return err
		}
		interval, err := b.promptInt(ctx, "Interval between snapshots in seconds", "86400")
		if err != nil {
			return err
		}
		snaps.Schedules = append(snaps.Schedules, config.Schedule{
			Type:     label,
			Count:    count,
			Interval: interval,
		})

		more, err := b.prompter.YesNo(ctx, "Add another schedule?", false)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	cfg.Snapshots = snaps
	return nil
}

// promptInt re-prompts until the answer parses as a positive integer.
func (b *Builder) promptInt(ctx context.Context, question, def string) (int, error) {
	for {
		raw, err := b.prompter.Input(ctx, question, def)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err == nil && n > 0 {
			return n, nil
		}
		b.logger.Warning("%q is not a positive number", raw)
	}
}

// hostLoop asks before each host, including the first. Declining immediately
// leaves the document without hosts, which Validate rejects.
func (b *Builder) hostLoop(ctx context.Context, cfg *config.BackupConfig) error {
	for {
		add, err := b.prompter.YesNo(ctx, "Add a backup host?", true)
		if err != nil {
			return err
		}
		if !add {
			return nil
		}

		identifier, err := b.prompter.Input(ctx, "Host identifier", "")
		if err != nil {
			return err
		}

		host := &config.Host{}
		remote, err := b.prompter.YesNo(ctx, fmt.Sprintf("Is %s a remote host (reached over SSH)?", identifier), true)
		if err != nil {
			return err
		}
		if remote {
			if err := b.remoteFields(ctx, host); err != nil {
				return err
			}
		}
		if err := b.pathLoop(ctx, host); err != nil {
			return err
		}

		if cfg.SetHost(identifier, host) {
			b.logger.Warning("host %s was already configured; previous entry replaced", identifier)
		}
	}
}

func (b *Builder) remoteFields(ctx context.Context, host *config.Host) error {
	user, err := b.prompter.Input(ctx, "SSH user", config.DefaultSSHUser)
	if err != nil {
		return err
	}
	hostname, err := b.prompter.Input(ctx, "Hostname or IP address", "")
	if err != nil {
		return err
	}
	key, err := b.prompter.Input(ctx, "SSH private key path", config.DefaultSSHKey)
	if err != nil {
		return err
	}
	ignorePing, err := b.prompter.YesNo(ctx, "Skip the reachability ping before each backup?", false)
	if err != nil {
		return err
	}

	host.SSHUser = user
	host.Hostname = hostname
	host.SSHKey = key
	host.IgnorePing = ignorePing

	b.checkKey(key)
	return nil
}

// checkKey warns when the named key file is missing or does not parse as an
// SSH private key. Advisory only: the key may be created later.
func (b *Builder) checkKey(path string) {
	data, err := readKeyFile(path)
	if err != nil {
		b.logger.Warning("SSH key %s is not readable: %v", path, err)
		return
	}
	if err := parsePrivateKey(data); err != nil {
		b.logger.Warning("SSH key %s does not parse as a private key: %v", path, err)
	}
}

func (b *Builder) pathLoop(ctx context.Context, host *config.Host) error {
	for {
		path, err := b.prompter.Input(ctx, "Backup path", config.DefaultBackupPath)
		if err != nil {
			return err
		}
		subdir, err := b.prompter.YesNo(ctx, "Store under a custom destination subdirectory?", false)
		if err != nil {
			return err
		}
		entry := config.PathEntry{Path: path}
		if subdir {
			entry.DestSubdir, err = b.prompter.Input(ctx, "Destination subdirectory", "")
			if err != nil {
				return err
			}
		}
		exclude, err := b.prompter.YesNo(ctx, "Use an exclude file for this path?", false)
		if err != nil {
			return err
		}
		if exclude {
			entry.ExcludeFile, err = b.prompter.Input(ctx, "Exclude file path", "")
			if err != nil {
				return err
			}
		}
		host.Paths = append(host.Paths, entry)

		more, err := b.prompter.YesNo(ctx, "Add another path for this host?", false)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}
