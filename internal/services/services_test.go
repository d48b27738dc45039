package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tis24dev/backupmon/internal/logging"
	"github.com/tis24dev/backupmon/internal/types"
)

func quietLogger() *logging.Logger {
	l := logging.New(types.LogLevelDebug, false)
	l.SetOutput(io.Discard)
	return l
}

type fakeManager struct {
	active    bool
	activeErr error
	startErr  error
	started   []string
	reloaded  int
}

func (m *fakeManager) IsActive(context.Context, string) (bool, error) {
	return m.active, m.activeErr
}

func (m *fakeManager) EnableAndStart(_ context.Context, unit string) error {
	m.started = append(m.started, unit)
	return m.startErr
}

func (m *fakeManager) Reload(context.Context) error {
	m.reloaded++
	return nil
}

type fakePrompter struct {
	answers map[string]string
	secrets map[string]string
}

func (p *fakePrompter) YesNo(_ context.Context, _ string, def bool) (bool, error) {
	return def, nil
}

func (p *fakePrompter) Input(_ context.Context, question, def string) (string, error) {
	for key, v := range p.answers {
		if strings.Contains(question, key) {
			return v, nil
		}
	}
	return def, nil
}

func (p *fakePrompter) Secret(_ context.Context, question string) (string, error) {
	for key, v := range p.secrets {
		if strings.Contains(question, key) {
			return v, nil
		}
	}
	return "", errors.New("no scripted secret")
}

func stubPort(t *testing.T, script []bool) *int {
	t.Helper()
	origReach, origPoll := portReachable, pollInterval
	calls := 0
	portReachable = func(string, int, time.Duration) bool {
		ok := false
		if calls < len(script) {
			ok = script[calls]
		}
		calls++
		return ok
	}
	pollInterval = time.Millisecond
	t.Cleanup(func() { portReachable, pollInterval = origReach, origPoll })
	return &calls
}

func TestWaitForPortEventuallyReady(t *testing.T) {
	calls := stubPort(t, []bool{false, false, true})

	if !WaitForPort(context.Background(), "localhost", 8086, time.Second) {
		t.Fatal("WaitForPort() = false; want true on third probe")
	}
	if *calls != 3 {
		t.Errorf("probe count = %d; want 3", *calls)
	}
}

func TestWaitForPortTimesOut(t *testing.T) {
	stubPort(t, nil)

	if WaitForPort(context.Background(), "localhost", 8086, 5*time.Millisecond) {
		t.Fatal("WaitForPort() = true; want timeout")
	}
}

func TestWaitForPortRespectsDeadline(t *testing.T) {
	origReach, origPoll := portReachable, pollInterval
	var budgets []time.Duration
	portReachable = func(_ string, _ int, d time.Duration) bool {
		budgets = append(budgets, d)
		return false
	}
	pollInterval = 200 * time.Millisecond
	t.Cleanup(func() { portReachable, pollInterval = origReach, origPoll })

	start := time.Now()
	if WaitForPort(context.Background(), "localhost", 8086, 300*time.Millisecond) {
		t.Fatal("WaitForPort() = true; want timeout")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("elapsed = %v; wait must not overshoot the 300ms budget by an interval", elapsed)
	}
	if len(budgets) == 0 {
		t.Fatal("no dial attempts recorded")
	}
	for _, b := range budgets {
		if b > pollInterval {
			t.Errorf("dial budget = %v; must never exceed the poll interval", b)
		}
	}
	if last := budgets[len(budgets)-1]; last >= pollInterval {
		t.Errorf("final dial budget = %v; want clamped below the %v interval", last, pollInterval)
	}
}

func TestWaitForPortHonorsCancellation(t *testing.T) {
	stubPort(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if WaitForPort(ctx, "localhost", 8086, time.Minute) {
		t.Fatal("WaitForPort() = true; want false on cancelled context")
	}
}

func TestEnsureRunningSkipsActiveUnit(t *testing.T) {
	stubPort(t, []bool{true})
	mgr := &fakeManager{active: true}

	if !EnsureRunning(context.Background(), mgr, quietLogger(), "influxdb.service", 8086, time.Second) {
		t.Fatal("EnsureRunning() = false")
	}
	if len(mgr.started) != 0 {
		t.Errorf("active unit was restarted: %v", mgr.started)
	}
}

func TestEnsureRunningStartsInactiveUnit(t *testing.T) {
	stubPort(t, []bool{true})
	mgr := &fakeManager{}

	if !EnsureRunning(context.Background(), mgr, quietLogger(), "grafana-server.service", 3000, time.Second) {
		t.Fatal("EnsureRunning() = false")
	}
	if len(mgr.started) != 1 || mgr.started[0] != "grafana-server.service" {
		t.Errorf("started = %v", mgr.started)
	}
}

func TestEnsureRunningStartFailure(t *testing.T) {
	stubPort(t, []bool{true})
	mgr := &fakeManager{startErr: errors.New("unit not found")}

	if EnsureRunning(context.Background(), mgr, quietLogger(), "influxdb.service", 8086, time.Second) {
		t.Fatal("EnsureRunning() = true; want reported failure")
	}
}

func TestEnsureRunningPortNeverOpens(t *testing.T) {
	stubPort(t, nil)
	mgr := &fakeManager{}

	if EnsureRunning(context.Background(), mgr, quietLogger(), "influxdb.service", 8086, 5*time.Millisecond) {
		t.Fatal("EnsureRunning() = true; want timeout outcome")
	}
}

func setupServer(t *testing.T, allowed bool, postStatus int, token string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/setup" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]bool{"allowed": allowed})
		case http.MethodPost:
			var req struct {
				Username               string `json:"username"`
				RetentionPeriodSeconds int    `json:"retentionPeriodSeconds"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("setup request does not parse: %v", err)
			}
			if req.RetentionPeriodSeconds != 0 {
				t.Errorf("retention = %d; want 0 (infinite)", req.RetentionPeriodSeconds)
			}
			w.WriteHeader(postStatus)
			json.NewEncoder(w).Encode(map[string]map[string]string{"auth": {"token": token}})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConfigureMetricsStoreFirstRun(t *testing.T) {
	srv := setupServer(t, true, http.StatusCreated, "tok-123")
	prompter := &fakePrompter{secrets: map[string]string{"password": "hunter2"}}

	cfg, err := ConfigureMetricsStore(context.Background(), NewSetupClient(srv.URL), prompter, quietLogger(), "localhost", "8086")
	if err != nil {
		t.Fatalf("ConfigureMetricsStore() error = %v", err)
	}
	if cfg.Token != "tok-123" {
		t.Errorf("Token = %q; want %q", cfg.Token, "tok-123")
	}
	if cfg.Organization != DefaultOrg || cfg.Bucket != DefaultBucket {
		t.Errorf("cfg = %+v; want default org/bucket", cfg)
	}
	if cfg.Host != "localhost" || cfg.Port != "8086" {
		t.Errorf("endpoint = %s:%s", cfg.Host, cfg.Port)
	}
}

func TestConfigureMetricsStoreAlreadyConfigured(t *testing.T) {
	srv := setupServer(t, false, http.StatusUnprocessableEntity, "")
	prompter := &fakePrompter{
		secrets: map[string]string{"token": "existing-tok"},
		answers: map[string]string{"Organization": "ops"},
	}

	cfg, err := ConfigureMetricsStore(context.Background(), NewSetupClient(srv.URL), prompter, quietLogger(), "localhost", "8086")
	if err != nil {
		t.Fatalf("ConfigureMetricsStore() error = %v", err)
	}
	if cfg.Token != "existing-tok" {
		t.Errorf("Token = %q; want elicited token", cfg.Token)
	}
	if cfg.Organization != "ops" {
		t.Errorf("Organization = %q", cfg.Organization)
	}
}

func TestConfigureMetricsStoreSetupRejected(t *testing.T) {
	srv := setupServer(t, true, http.StatusUnprocessableEntity, "")
	prompter := &fakePrompter{secrets: map[string]string{"password": "hunter2"}}

	cfg, err := ConfigureMetricsStore(context.Background(), NewSetupClient(srv.URL), prompter, quietLogger(), "localhost", "8086")
	if err != nil {
		t.Fatalf("ConfigureMetricsStore() error = %v; non-201 must not abort", err)
	}
	if !cfg.Empty() {
		t.Errorf("cfg = %+v; want empty on rejected setup", cfg)
	}
}

func TestConfigureMetricsStoreMislabeledContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]bool{"allowed": true})
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]map[string]string{"auth": {"token": "tok-plain"}})
		}
	}))
	t.Cleanup(srv.Close)
	prompter := &fakePrompter{secrets: map[string]string{"password": "hunter2"}}

	cfg, err := ConfigureMetricsStore(context.Background(), NewSetupClient(srv.URL), prompter, quietLogger(), "localhost", "8086")
	if err != nil {
		t.Fatalf("ConfigureMetricsStore() error = %v", err)
	}
	if cfg.Token != "tok-plain" {
		t.Errorf("Token = %q; JSON body must be parsed regardless of Content-Type", cfg.Token)
	}
}

func TestConfigureMetricsStoreUnreachable(t *testing.T) {
	logger := quietLogger()
	cfg, err := ConfigureMetricsStore(context.Background(), NewSetupClient("http://127.0.0.1:1"), &fakePrompter{}, logger, "localhost", "8086")
	if err != nil {
		t.Fatalf("ConfigureMetricsStore() error = %v; network failure must not abort", err)
	}
	if !cfg.Empty() {
		t.Errorf("cfg = %+v; want empty", cfg)
	}
	if !logger.HasWarnings() {
		t.Error("unreachable API should be reported as a warning")
	}
}
