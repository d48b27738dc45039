package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tis24dev/backupmon/internal/config"
	"github.com/tis24dev/backupmon/internal/logging"
	"github.com/tis24dev/backupmon/internal/wizard"
)

// Elicitation defaults for the metrics store.
const (
	DefaultAdminUser   = "admin"
	DefaultOrg         = "home"
	DefaultBucket      = "backup"
	MetricsDefaultPort = "8086"
)

// SetupClient talks to the metrics store first-run setup API.
type SetupClient struct {
	http *resty.Client
}

// NewSetupClient targets baseURL, e.g. http://localhost:8086.
func NewSetupClient(baseURL string) *SetupClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second)
	return &SetupClient{http: client}
}

type setupStatus struct {
	Allowed bool `json:"allowed"`
}

type setupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Org      string `json:"org"`
	Bucket   string `json:"bucket"`
	// 0 keeps points forever.
	RetentionPeriodSeconds int `json:"retentionPeriodSeconds"`
}

type setupResponse struct {
	Auth struct {
		Token string `json:"token"`
	} `json:"auth"`
}

// SetupAllowed queries whether first-run setup is still permitted.
func (c *SetupClient) SetupAllowed(ctx context.Context) (bool, error) {
	var status setupStatus
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&status).
		// The body is JSON even when a proxy or misconfigured server labels
		// it otherwise; parse it regardless of the Content-Type header.
		ForceContentType("application/json").
		Get("/api/v2/setup")
	if err != nil {
		return false, fmt.Errorf("query setup status: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return false, fmt.Errorf("setup status: unexpected HTTP %d", resp.StatusCode())
	}
	return status.Allowed, nil
}

// Setup performs first-run initialization and returns the operator token.
// Anything but a 201 is a failure.
func (c *SetupClient) Setup(ctx context.Context, req setupRequest) (string, error) {
	var result setupResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		ForceContentType("application/json").
		Post("/api/v2/setup")
	if err != nil {
		return "", fmt.Errorf("perform setup: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return "", fmt.Errorf("perform setup: unexpected HTTP %d", resp.StatusCode())
	}
	if result.Auth.Token == "" {
		return "", fmt.Errorf("perform setup: response carries no token")
	}
	return result.Auth.Token, nil
}

// ConfigureMetricsStore resolves the metrics store connection document.
// First-run setup is attempted when still permitted; an already-configured
// store falls back to eliciting existing credentials. API or network failures
// yield an empty config, never an error: the bootstrap continues degraded.
// Interactive aborts are the one exception and propagate.
func ConfigureMetricsStore(ctx context.Context, client *SetupClient, prompter wizard.Prompter, logger *logging.Logger, host, port string) (config.MetricsStoreConfig, error) {
	allowed, err := client.SetupAllowed(ctx)
	if err != nil {
		logger.Warning("metrics store setup API unreachable: %v", err)
		return config.MetricsStoreConfig{}, nil
	}

	if !allowed {
		logger.Skip("Metrics store is already initialized; using existing credentials")
		return elicitExisting(ctx, prompter, host, port)
	}

	logger.Step("Initializing metrics store")
	username, err := prompter.Input(ctx, "Admin username", DefaultAdminUser)
	if err != nil {
		return config.MetricsStoreConfig{}, err
	}
	password, err := prompter.Secret(ctx, "Admin password")
	if err != nil {
		return config.MetricsStoreConfig{}, err
	}
	org, err := prompter.Input(ctx, "Organization name", DefaultOrg)
	if err != nil {
		return config.MetricsStoreConfig{}, err
	}
	bucket, err := prompter.Input(ctx, "Bucket name", DefaultBucket)
	if err != nil {
		return config.MetricsStoreConfig{}, err
	}

	token, err := client.Setup(ctx, setupRequest{
		Username: username,
		Password: password,
		Org:      org,
		Bucket:   bucket,
	})
	if err != nil {
		logger.Warning("metrics store setup failed: %v", err)
		return config.MetricsStoreConfig{}, nil
	}

	logger.Info("Metrics store initialized (organization %s, bucket %s)", org, bucket)
	return config.MetricsStoreConfig{
		Host:         host,
		Port:         port,
		Token:        token,
		Organization: org,
		Bucket:       bucket,
	}, nil
}

func elicitExisting(ctx context.Context, prompter wizard.Prompter, host, port string) (config.MetricsStoreConfig, error) {
	token, err := prompter.Secret(ctx, "Existing API token")
	if err != nil {
		return config.MetricsStoreConfig{}, err
	}
	org, err := prompter.Input(ctx, "Organization name", DefaultOrg)
	if err != nil {
		return config.MetricsStoreConfig{}, err
	}
	bucket, err := prompter.Input(ctx, "Bucket name", DefaultBucket)
	if err != nil {
		return config.MetricsStoreConfig{}, err
	}
	return config.MetricsStoreConfig{
		Host:         host,
		Port:         port,
		Token:        token,
		Organization: org,
		Bucket:       bucket,
	}, nil
}
