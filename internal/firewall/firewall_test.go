package firewall

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tis24dev/backupmon/internal/types"
)

type fakeRunner struct {
	calls []string
	fail  map[string]error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	call := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, call)
	for prefix, err := range f.fail {
		if strings.HasPrefix(call, prefix) {
			return []byte("simulated failure"), err
		}
	}
	return nil, nil
}

func withIptablesSave(t *testing.T, present bool) {
	t.Helper()
	orig := lookPath
	lookPath = func(string) (string, error) {
		if present {
			return "/usr/sbin/iptables-save", nil
		}
		return "", errors.New("not found")
	}
	t.Cleanup(func() { lookPath = orig })
}

func TestUfwOpenPorts(t *testing.T) {
	runner := &fakeRunner{}
	fw := New(types.FirewallUfw, runner)

	if err := fw.OpenPorts(context.Background(), []int{8086, 3000}, []string{"ssh"}); err != nil {
		t.Fatalf("OpenPorts() error = %v", err)
	}

	want := []string{"ufw allow 8086", "ufw allow 3000", "ufw allow ssh"}
	if len(runner.calls) != len(want) {
		t.Fatalf("calls = %v; want %v", runner.calls, want)
	}
	for i := range want {
		if runner.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q; want %q", i, runner.calls[i], want[i])
		}
	}
}

func TestFirewalldReloadsAfterBatch(t *testing.T) {
	runner := &fakeRunner{}
	fw := New(types.FirewallFirewalld, runner)

	if err := fw.OpenPorts(context.Background(), []int{8086}, []string{"grafana"}); err != nil {
		t.Fatalf("OpenPorts() error = %v", err)
	}

	last := runner.calls[len(runner.calls)-1]
	if last != "firewall-cmd --reload" {
		t.Errorf("last call = %q; want reload", last)
	}
	if runner.calls[0] != "firewall-cmd --permanent --add-port 8086/tcp" {
		t.Errorf("calls[0] = %q", runner.calls[0])
	}
	if runner.calls[1] != "firewall-cmd --permanent --add-service grafana" {
		t.Errorf("calls[1] = %q", runner.calls[1])
	}
}

func TestFirewalldFailurePropagates(t *testing.T) {
	runner := &fakeRunner{fail: map[string]error{"firewall-cmd --permanent": errors.New("exit status 1")}}
	fw := New(types.FirewallFirewalld, runner)

	if err := fw.OpenPorts(context.Background(), []int{8086}, nil); err == nil {
		t.Fatal("OpenPorts() should propagate command failure")
	}
}

func TestIptablesPersistenceIsBestEffort(t *testing.T) {
	withIptablesSave(t, true)
	runner := &fakeRunner{fail: map[string]error{"iptables-save": errors.New("exit status 1")}}
	fw := New(types.FirewallIptables, runner)

	// iptables-save failure must not fail the call.
	if err := fw.OpenPorts(context.Background(), []int{8086}, nil); err != nil {
		t.Fatalf("OpenPorts() error = %v; persistence failure should be swallowed", err)
	}

	if runner.calls[0] != "iptables -A INPUT -p tcp --dport 8086 -j ACCEPT" {
		t.Errorf("calls[0] = %q", runner.calls[0])
	}
	if runner.calls[len(runner.calls)-1] != "iptables-save" {
		t.Errorf("iptables-save not attempted: %v", runner.calls)
	}
}

func TestIptablesWithoutSaveTool(t *testing.T) {
	withIptablesSave(t, false)
	runner := &fakeRunner{}
	fw := New(types.FirewallIptables, runner)

	if err := fw.OpenPorts(context.Background(), []int{3000}, nil); err != nil {
		t.Fatalf("OpenPorts() error = %v", err)
	}
	for _, call := range runner.calls {
		if call == "iptables-save" {
			t.Error("iptables-save should not run when absent from PATH")
		}
	}
}

func TestNoneFirewall(t *testing.T) {
	fw := New(types.FirewallNone, nil)
	if err := fw.OpenPorts(context.Background(), []int{8086}, nil); !errors.Is(err, ErrNoFirewall) {
		t.Errorf("OpenPorts() error = %v; want ErrNoFirewall", err)
	}
}
