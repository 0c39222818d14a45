package cdmclient

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/cdm-client/internal/client"
	"github.com/fivetwenty-io/cdm-client/internal/config"
	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

// New creates an authenticated client. Empty connection fields in config are
// taken from the rubrik_cdm_* environment variables unless
// config.DisableEnvFallback is set. config itself is not modified.
func New(ctx context.Context, cfg *cdm.Config) (cdm.Client, error) {
	resolved, err := config.ResolveNode(cfg)
	if err != nil {
		return nil, err
	}

	c, err := client.New(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewFromEnv creates a client from the environment only.
func NewFromEnv(ctx context.Context) (cdm.Client, error) {
	return New(ctx, config.FromEnvironment())
}

// NewWithToken creates a client using Bearer token authentication.
func NewWithToken(ctx context.Context, nodeIP, token string) (cdm.Client, error) {
	return New(ctx, &cdm.Config{
		NodeIP:   nodeIP,
		APIToken: token,
	})
}

// NewWithPassword creates a client using Basic authentication.
func NewWithPassword(ctx context.Context, nodeIP, username, password string) (cdm.Client, error) {
	return New(ctx, &cdm.Config{
		NodeIP:   nodeIP,
		Username: username,
		Password: password,
	})
}

// NewBootstrap creates the unauthenticated client used to bootstrap a new
// cluster. Only config.NodeIP (or rubrik_cdm_node_ip) is required;
// credentials are ignored.
func NewBootstrap(ctx context.Context, cfg *cdm.Config) (cdm.BootstrapClient, error) {
	resolved, err := config.ResolveNode(cfg)
	if err != nil {
		return nil, err
	}

	c, err := client.NewBootstrap(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to create bootstrap client: %w", err)
	}

	return c, nil
}
