package pkgmgr

import (
	"context"
	"fmt"

	"github.com/tis24dev/backupmon/internal/types"
)

type pacmanManager struct {
	runner Runner
}

func (m *pacmanManager) Kind() types.PackageManagerKind {
	return types.PackageManagerPacman
}

func (m *pacmanManager) Install(ctx context.Context, packages []string) error {
	args := append([]string{"-S", "--noconfirm"}, packages...)
	if out, err := m.runner.Run(ctx, "pacman", args...); err != nil {
		return commandError("pacman -S", out, err)
	}
	return nil
}

// AddRepository is not automated for pacman: third-party repositories require
// editing pacman.conf, which we refuse to do unattended.
func (m *pacmanManager) AddRepository(_ context.Context, repo Repository) error {
	return fmt.Errorf("repository %s requires manual pacman.conf configuration: %w", repo.Name, ErrUnsupported)
}
