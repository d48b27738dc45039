package pkgmgr

import (
	"context"
	"fmt"

	"github.com/tis24dev/backupmon/internal/types"
)

const yumReposDir = "/etc/yum.repos.d"

// rpmManager covers both dnf and yum; they share the install syntax and the
// repo-definition file registration style.
type rpmManager struct {
	kind   types.PackageManagerKind
	runner Runner
}

func (m *rpmManager) Kind() types.PackageManagerKind {
	return m.kind
}

func (m *rpmManager) Install(ctx context.Context, packages []string) error {
	args := append([]string{"install", "-y"}, packages...)
	if out, err := m.runner.Run(ctx, m.kind.String(), args...); err != nil {
		return commandError(m.kind.String()+" install", out, err)
	}
	return nil
}

func (m *rpmManager) AddRepository(ctx context.Context, repo Repository) error {
	path := fmt.Sprintf("%s/%s.repo", yumReposDir, repo.Name)
	if err := writeFile(path, []byte(repo.YumContent), 0o644); err != nil {
		return fmt.Errorf("write repo definition for %s: %w", repo.Name, err)
	}
	return nil
}
