package pkgmgr

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tis24dev/backupmon/internal/types"
)

const (
	aptKeyringDir = "/etc/apt/trusted.gpg.d"
	aptSourcesDir = "/etc/apt/sources.list.d"
)

// fetchKey downloads a repository signing key. Indirection for tests.
var fetchKey = func(ctx context.Context, url string) ([]byte, error) {
	client := resty.New().SetTimeout(30 * time.Second)
	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("key download failed: %s", resp.Status())
	}
	return resp.Body(), nil
}

type aptManager struct {
	runner Runner
}

func (m *aptManager) Kind() types.PackageManagerKind {
	return types.PackageManagerApt
}

// Install refreshes the package index first; installs from a stale index fail
// on recently registered repositories.
func (m *aptManager) Install(ctx context.Context, packages []string) error {
	if out, err := m.runner.Run(ctx, "apt", "update"); err != nil {
		return commandError("apt update", out, err)
	}

	args := append([]string{"install", "-y"}, packages...)
	if out, err := m.runner.Run(ctx, "apt", args...); err != nil {
		return commandError("apt install", out, err)
	}
	return nil
}

func (m *aptManager) AddRepository(ctx context.Context, repo Repository) error {
	key, err := fetchKey(ctx, repo.KeyURL)
	if err != nil {
		return fmt.Errorf("fetch signing key for %s: %w", repo.Name, err)
	}
	if err := writeFile(fmt.Sprintf("%s/%s.asc", aptKeyringDir, repo.Name), key, 0o644); err != nil {
		return fmt.Errorf("write signing key for %s: %w", repo.Name, err)
	}
	line := repo.AptSource + "\n"
	if err := writeFile(fmt.Sprintf("%s/%s.list", aptSourcesDir, repo.Name), []byte(line), 0o644); err != nil {
		return fmt.Errorf("write sources entry for %s: %w", repo.Name, err)
	}
	if out, err := m.runner.Run(ctx, "apt", "update"); err != nil {
		return commandError("apt update", out, err)
	}
	return nil
}
