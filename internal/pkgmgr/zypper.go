package pkgmgr

import (
	"context"

	"github.com/tis24dev/backupmon/internal/types"
)

type zypperManager struct {
	runner Runner
}

func (m *zypperManager) Kind() types.PackageManagerKind {
	return types.PackageManagerZypper
}

func (m *zypperManager) Install(ctx context.Context, packages []string) error {
	args := append([]string{"install", "-y"}, packages...)
	if out, err := m.runner.Run(ctx, "zypper", args...); err != nil {
		return commandError("zypper install", out, err)
	}
	return nil
}

func (m *zypperManager) AddRepository(ctx context.Context, repo Repository) error {
	if out, err := m.runner.Run(ctx, "zypper", "addrepo", "-f", repo.ZypperURL, repo.Name); err != nil {
		return commandError("zypper addrepo", out, err)
	}
	return nil
}
