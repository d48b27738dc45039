// Package pkgmgr abstracts the host's package manager behind a single
// capability set: install packages, register a third-party repository.
//
// One variant exists per concrete manager (apt, dnf, zypper, pacman, yum).
// Every invocation is non-interactive; no variant ever prompts. An unsupported
// manager yields a reported error, never an abort: the orchestrator decides
// whether that is fatal.
package pkgmgr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tis24dev/backupmon/internal/types"
)

// ErrUnsupported is returned by every operation of the unsupported variant.
var ErrUnsupported = errors.New("no supported package manager available")

// writeFile is an indirection over os.WriteFile so tests never touch /etc.
var writeFile = os.WriteFile

// Repository describes a third-party package repository in a manager-agnostic
// way. Each variant uses the fields relevant to its own registration style.
type Repository struct {
	// Name is the short identifier used for generated file names.
	Name string

	// KeyURL is the signing key location (apt style registration).
	KeyURL string

	// AptSource is the sources.list line ("deb https://... stable main").
	AptSource string

	// YumContent is the full repo-definition file body dropped under
	// /etc/yum.repos.d.
	YumContent string

	// ZypperURL is the repository URL passed to "zypper addrepo".
	ZypperURL string
}

// Manager is the package-manager capability set.
type Manager interface {
	Kind() types.PackageManagerKind
	Install(ctx context.Context, packages []string) error
	AddRepository(ctx context.Context, repo Repository) error
}

// New returns the Manager variant for the given kind. Unknown kinds map to the
// unsupported variant.
func New(kind types.PackageManagerKind, runner Runner) Manager {
	switch kind {
	case types.PackageManagerApt:
		return &aptManager{runner: runner}
	case types.PackageManagerDnf, types.PackageManagerYum:
		return &rpmManager{kind: kind, runner: runner}
	case types.PackageManagerZypper:
		return &zypperManager{runner: runner}
	case types.PackageManagerPacman:
		return &pacmanManager{runner: runner}
	default:
		return unsupportedManager{}
	}
}

func commandError(action string, output []byte, err error) error {
	trimmed := strings.TrimSpace(string(output))
	if trimmed != "" {
		return fmt.Errorf("%s: %w (%s)", action, err, trimmed)
	}
	return fmt.Errorf("%s: %w", action, err)
}

type unsupportedManager struct{}

func (unsupportedManager) Kind() types.PackageManagerKind {
	return types.PackageManagerUnsupported
}

func (unsupportedManager) Install(context.Context, []string) error {
	return ErrUnsupported
}

func (unsupportedManager) AddRepository(context.Context, Repository) error {
	return ErrUnsupported
}
