package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File names inside the configuration directory.
const (
	BackupConfigFile  = "backup.yaml"
	MetricsConfigFile = "influxdb-config.yaml"
)

// SaveBackupConfig validates and writes the backup document. The write is a
// full-file overwrite via temp file + rename so a crash never leaves a
// half-written document.
func SaveBackupConfig(dir string, cfg *BackupConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	path := filepath.Join(dir, BackupConfigFile)
	if err := writeYAML(path, cfg); err != nil {
		return "", err
	}
	return path, nil
}

// SaveMetricsConfig writes the metrics store document, nested under a fixed
// top-level key so downstream tooling can share the file.
func SaveMetricsConfig(dir string, cfg MetricsStoreConfig) (string, error) {
	document := map[string]MetricsStoreConfig{"influxdb": cfg}
	path := filepath.Join(dir, MetricsConfigFile)
	if err := writeYAML(path, document); err != nil {
		return "", err
	}
	return path, nil
}

func writeYAML(path string, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create configuration directory: %w", err)
	}

	// Documents may hold tokens: owner-only from the first byte.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalize %s: %w", filepath.Base(path), err)
	}
	return nil
}
