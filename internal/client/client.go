package client

import (
	"github.com/fivetwenty-io/cdm-client/internal/auth"
	"github.com/fivetwenty-io/cdm-client/internal/constants"
	"github.com/fivetwenty-io/cdm-client/internal/http"
	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

// Client implements the cdm.Client interface.
type Client struct {
	httpClient *http.Client
	authorizer auth.Authorizer
	nodeIP     string
	logger     cdm.Logger

	// Resource clients
	cluster        cdm.ClusterClient
	dataManagement cdm.DataManagementClient
	physical       cdm.PhysicalClient
	cloud          cdm.CloudClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *cdm.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.SkipTLSVerify {
		httpOpts = append(httpOpts, http.WithInsecureSkipVerify(true))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates an authenticated client. The config must already carry the
// node address and credentials; environment fallback happens in cdmclient.
func New(config *cdm.Config) (*Client, error) {
	if config == nil {
		return nil, cdm.ErrConfigRequired
	}

	creds, err := auth.NewCredentials(config.Username, config.Password, config.APIToken)
	if err != nil {
		return nil, err
	}

	if config.UserAgent != "" {
		creds = creds.WithUserAgent(config.UserAgent)
	}

	client, err := NewWithAuthorizer(config, creds)
	if err != nil {
		return nil, err
	}

	if config.Logger != nil {
		fields := map[string]interface{}{"node": config.NodeIP, "auth": "basic"}
		if creds.UsesToken() {
			fields["auth"] = "token"
		} else {
			fields["username"] = creds.Username()
		}

		config.Logger.Debug("client: created", fields)
	}

	return client, nil
}

// NewWithAuthorizer creates a client that takes its header set from authorizer.
func NewWithAuthorizer(config *cdm.Config, authorizer auth.Authorizer) (*Client, error) {
	if config == nil {
		return nil, cdm.ErrConfigRequired
	}

	if config.NodeIP == "" {
		return nil, cdm.ErrNodeIPRequired
	}

	httpClient := http.NewClient(config.NodeIP, authorizer, createHTTPClientOptions(config)...)

	client := &Client{
		httpClient: httpClient,
		authorizer: authorizer,
		nodeIP:     config.NodeIP,
		logger:     config.Logger,
	}

	// Initialize resource clients
	client.initializeResourceClients()

	return client, nil
}

// NewBootstrap creates the unauthenticated client used against a fresh node.
func NewBootstrap(config *cdm.Config) (*BootstrapClient, error) {
	if config == nil {
		return nil, cdm.ErrConfigRequired
	}

	if config.NodeIP == "" {
		return nil, cdm.ErrNodeIPRequired
	}

	// Submissions are counted by the bootstrap workflow and never resent by
	// the transport.
	transport := *config
	transport.RetryMax = 0

	httpOpts := createHTTPClientOptions(&transport)
	httpOpts = append(httpOpts, http.WithAPIVersions(cdm.BootstrapAPIVersions...))

	httpClient := http.NewClient(config.NodeIP, nil, httpOpts...)

	opts := []BootstrapOption{
		WithBootstrapCadence(config.BootstrapRetryInterval, config.BootstrapPollInterval, config.BootstrapMaxAttempts),
	}

	if config.Logger != nil {
		opts = append(opts, WithBootstrapLogger(config.Logger))
	}

	if config.BootstrapObserver != nil {
		opts = append(opts, WithBootstrapObserver(config.BootstrapObserver))
	}

	return NewBootstrapClient(httpClient, config.NodeIP, opts...), nil
}

func (c *Client) initializeResourceClients() {
	c.cluster = NewClusterClient(c.httpClient)
	c.dataManagement = NewDataManagementClient(c.httpClient)
	c.physical = NewPhysicalClient(c.httpClient)
	c.cloud = NewCloudClient(c.httpClient)
}

// NodeIP implements cdm.Client.NodeIP.
func (c *Client) NodeIP() string {
	return c.nodeIP
}

// Resource client accessors

// Cluster implements cdm.Client.Cluster.
func (c *Client) Cluster() cdm.ClusterClient {
	return c.cluster
}

// DataManagement implements cdm.Client.DataManagement.
func (c *Client) DataManagement() cdm.DataManagementClient {
	return c.dataManagement
}

// Physical implements cdm.Client.Physical.
func (c *Client) Physical() cdm.PhysicalClient {
	return c.physical
}

// Cloud implements cdm.Client.Cloud.
func (c *Client) Cloud() cdm.CloudClient {
	return c.cloud
}

// loggerAdapter adapts cdm.Logger to http.Logger.
type loggerAdapter struct {
	logger cdm.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}
