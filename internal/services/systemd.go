// Package services manages the long-running collaborators of the stack: the
// service manager boundary, TCP readiness polling and the metrics store
// first-run setup API.
package services

import (
	"context"
	"fmt"

	sd "github.com/coreos/go-systemd/v22/dbus"
)

// Manager is the service-manager boundary. The orchestrator only needs three
// verbs; failures are reported, never fatal on their own.
type Manager interface {
	// IsActive reports whether the unit is currently active.
	IsActive(ctx context.Context, unit string) (bool, error)

	// EnableAndStart enables the unit for boot and starts it now.
	EnableAndStart(ctx context.Context, unit string) error

	// Reload re-reads unit definitions after files were installed.
	Reload(ctx context.Context) error
}

// SystemdManager implements Manager over the system D-Bus.
type SystemdManager struct {
	conn *sd.Conn
}

// NewSystemdManager connects to the system bus. The connection is kept for the
// lifetime of the run; callers should Close it.
func NewSystemdManager(ctx context.Context) (*SystemdManager, error) {
	conn, err := sd.NewSystemConnectionContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to systemd: %w", err)
	}
	return &SystemdManager{conn: conn}, nil
}

// Close releases the bus connection.
func (m *SystemdManager) Close() {
	m.conn.Close()
}

func (m *SystemdManager) IsActive(ctx context.Context, unit string) (bool, error) {
	prop, err := m.conn.GetUnitPropertyContext(ctx, unit, "ActiveState")
	if err != nil {
		return false, fmt.Errorf("query %s: %w", unit, err)
	}
	return prop.Value.Value() == "active", nil
}

func (m *SystemdManager) EnableAndStart(ctx context.Context, unit string) error {
	if _, _, err := m.conn.EnableUnitFilesContext(ctx, []string{unit}, false, true); err != nil {
		return fmt.Errorf("enable %s: %w", unit, err)
	}

	result := make(chan string, 1)
	if _, err := m.conn.StartUnitContext(ctx, unit, "replace", result); err != nil {
		return fmt.Errorf("start %s: %w", unit, err)
	}
	select {
	case r := <-result:
		if r != "done" {
			return fmt.Errorf("start %s: job finished as %q", unit, r)
		}
	case <-ctx.Done():
		return fmt.Errorf("start %s: %w", unit, ctx.Err())
	}
	return nil
}

func (m *SystemdManager) Reload(ctx context.Context) error {
	if err := m.conn.ReloadContext(ctx); err != nil {
		return fmt.Errorf("systemd daemon-reload: %w", err)
	}
	return nil
}
