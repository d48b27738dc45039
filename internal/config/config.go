// Package config defines the backup configuration document and the metrics
// store connection document, their validation rules and YAML persistence.
//
// Both documents are built incrementally in memory during elicitation,
// validated as a whole, persisted once per run and never mutated afterwards.
package config

import (
	"errors"
	"fmt"
)

// Defaults mirrored into elicitation prompts.
const (
	DefaultBackupBase   = "/share/backup/"
	DefaultLockFile     = "/tmp/backup.fil"
	DefaultRsyncOptions = "-avz --delete --numeric-ids --stats --human-readable"
	DefaultSSHUser      = "backup"
	DefaultSSHKey       = "/root/.ssh/id_ed25519"
	DefaultBackupPath   = "/etc"
	DefaultVolume       = "/share"
)

// Validation errors surfaced to the orchestrator.
var (
	// ErrNoHosts - the document has no configured hosts; fatal per contract.
	ErrNoHosts = errors.New("at least one host must be configured")

	// ErrPartialRemote - a host carries some but not all remote-access fields.
	ErrPartialRemote = errors.New("remote host fields must be all present or all absent")
)

// Settings holds the base backup parameters.
type Settings struct {
	BackupBase   string `yaml:"backup_base"`
	LockFile     string `yaml:"lock_file"`
	RsyncOptions string `yaml:"rsync_options"`
}

// PathEntry is one backup source path belonging to exactly one host.
type PathEntry struct {
	Path        string `yaml:"path"`
	DestSubdir  string `yaml:"dest_subdir,omitempty"`
	ExcludeFile string `yaml:"exclude_file,omitempty"`
}

// Host describes one backed-up machine. A host is either local (no remote
// fields) or fully SSH-addressable: SSHUser, Hostname and SSHKey together.
// Paths keep operator entry order; the backup engine runs them in order.
type Host struct {
	SSHUser    string      `yaml:"ssh_user,omitempty"`
	Hostname   string      `yaml:"hostname,omitempty"`
	SSHKey     string      `yaml:"ssh_key,omitempty"`
	IgnorePing bool        `yaml:"ignore_ping,omitempty"`
	Paths      []PathEntry `yaml:"paths"`
}

// Remote reports whether the host is SSH-addressable.
func (h *Host) Remote() bool {
	return h.SSHUser != "" || h.Hostname != "" || h.SSHKey != ""
}

func (h *Host) validate(identifier string) error {
	if len(h.Paths) == 0 {
		return fmt.Errorf("host %s: at least one backup path is required", identifier)
	}
	if h.Remote() {
		if h.SSHUser == "" || h.Hostname == "" || h.SSHKey == "" {
			return fmt.Errorf("host %s: %w", identifier, ErrPartialRemote)
		}
	}
	for i, p := range h.Paths {
		if p.Path == "" {
			return fmt.Errorf("host %s: path entry %d is empty", identifier, i+1)
		}
	}
	return nil
}

// Schedule is one snapshot retention tier.
type Schedule struct {
	Type     string `yaml:"type"`
	Count    int    `yaml:"count"`
	Interval int    `yaml:"interval"` // seconds between snapshots
}

// Snapshots is the optional snapshot section. Its absence from BackupConfig
// is semantically distinct from a present section with zero schedules.
type Snapshots struct {
	Volume    string     `yaml:"volume"`
	Schedules []Schedule `yaml:"schedules"`
}

// DefaultSchedules returns the four-tier retention policy offered as a single
// choice during elicitation.
func DefaultSchedules() []Schedule {
	return []Schedule{
		{Type: "hourly", Count: 6, Interval: 14400},
		{Type: "daily", Count: 7, Interval: 86400},
		{Type: "weekly", Count: 4, Interval: 604800},
		{Type: "monthly", Count: 12, Interval: 2592000},
	}
}

// BackupConfig is the top-level backup document consumed by the backup engine.
type BackupConfig struct {
	Settings  Settings         `yaml:"config"`
	Hosts     map[string]*Host `yaml:"hosts"`
	Snapshots *Snapshots       `yaml:"snapshots,omitempty"`
}

// NewBackupConfig returns a document with default base settings and no hosts.
func NewBackupConfig() *BackupConfig {
	return &BackupConfig{
		Settings: Settings{
			BackupBase:   DefaultBackupBase,
			LockFile:     DefaultLockFile,
			RsyncOptions: DefaultRsyncOptions,
		},
		Hosts: make(map[string]*Host),
	}
}

// SetHost commits a host under its identifier. Re-adding an identifier
// replaces the previous entry entirely (documented last-write-wins); the
// caller is expected to warn the operator. It reports whether an entry was
// overwritten.
func (c *BackupConfig) SetHost(identifier string, host *Host) bool {
	_, existed := c.Hosts[identifier]
	c.Hosts[identifier] = host
	return existed
}

// Validate checks the whole document before persistence.
func (c *BackupConfig) Validate() error {
	if c.Settings.BackupBase == "" {
		return errors.New("backup destination directory cannot be empty")
	}
	if c.Settings.LockFile == "" {
		return errors.New("lock file path cannot be empty")
	}
	if len(c.Hosts) == 0 {
		return ErrNoHosts
	}
	for identifier, host := range c.Hosts {
		if identifier == "" {
			return errors.New("host identifier cannot be empty")
		}
		if err := host.validate(identifier); err != nil {
			return err
		}
	}
	if c.Snapshots != nil && c.Snapshots.Volume == "" {
		return errors.New("snapshot volume path cannot be empty")
	}
	return nil
}

// MetricsStoreConfig holds the connection details for the time-series store.
// It is a secret once Token is set: never log it, never include it in errors.
type MetricsStoreConfig struct {
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	Token        string `yaml:"token"`
	Organization string `yaml:"organization"`
	Bucket       string `yaml:"bucket"`
}

// Empty reports whether the metrics store ended the run unconfigured.
func (m MetricsStoreConfig) Empty() bool {
	return m == MetricsStoreConfig{}
}

// String implements fmt.Stringer with the token redacted.
func (m MetricsStoreConfig) String() string {
	token := ""
	if m.Token != "" {
		token = "[redacted]"
	}
	return fmt.Sprintf("{host:%s port:%s org:%s bucket:%s token:%s}",
		m.Host, m.Port, m.Organization, m.Bucket, token)
}
