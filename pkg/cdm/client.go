package cdm

import (
	"context"
	"time"
)

// ClusterClient manages cluster-wide settings of a bootstrapped cluster.
type ClusterClient interface {
	Version(ctx context.Context) (*ClusterVersion, error)
	Info(ctx context.Context) (*ClusterInfo, error)
	Nodes(ctx context.Context) ([]ClusterNode, error)
	NodeIPs(ctx context.Context) ([]string, error)
	NodeNames(ctx context.Context) ([]string, error)
	ConfigureTimezone(ctx context.Context, timezone string) (*ChangeResult, error)
	ConfigureNTP(ctx context.Context, servers []string) (*ChangeResult, error)
	ConfigureDNSServers(ctx context.Context, servers []string) (*ChangeResult, error)
	ConfigureSearchDomains(ctx context.Context, domains []string) (*ChangeResult, error)
	ConfigureSyslog(ctx context.Context, syslog *SyslogConfig) (*ChangeResult, error)
}

// DataManagementClient covers SLA assignment and snapshot operations.
type DataManagementClient interface {
	SLADomainID(ctx context.Context, name string) (string, error)
	VMwareVM(ctx context.Context, name string) (*VMwareVM, error)
	OnDemandSnapshot(ctx context.Context, vmName, slaName string) (*AsyncRequest, error)
	AssignSLA(ctx context.Context, vmName, slaName string) (*ChangeResult, error)
	JobStatus(ctx context.Context, href string) (*AsyncRequest, error)
}

// PhysicalClient manages physical hosts registered with the cluster.
type PhysicalClient interface {
	ListHosts(ctx context.Context, hostname string) ([]Host, error)
	AddHost(ctx context.Context, hostname string) (*ChangeResult, error)
	DeleteHost(ctx context.Context, hostname string) (*ChangeResult, error)
}

// CloudClient manages archive locations and cloud accounts.
type CloudClient interface {
	ArchiveLocations(ctx context.Context) ([]ArchiveLocation, error)
	AWSAccounts(ctx context.Context) ([]AWSAccount, error)
	AddAWSAccount(ctx context.Context, account *AWSAccountRequest) (*ChangeResult, error)
}

// ResourceClients groups the capability clients of a bootstrapped cluster.
type ResourceClients interface {
	Cluster() ClusterClient
	DataManagement() DataManagementClient
	Physical() PhysicalClient
	Cloud() CloudClient
}

// Client is the entry point for an authenticated cluster session.
type Client interface {
	ResourceClients

	// NodeIP returns the address of the node the client talks to.
	NodeIP() string
}

// BootstrapClient drives the unauthenticated bootstrap API of a fresh node.
type BootstrapClient interface {
	// Setup submits the bootstrap request and, when wait is true, polls
	// until the cluster reports a terminal state.
	Setup(ctx context.Context, config *BootstrapConfig, wait bool) (*BootstrapResult, error)
	Status(ctx context.Context, requestID string) (*BootstrapStatus, error)
	Discover(ctx context.Context) (*DiscoverResponse, error)
}

// BootstrapObserver receives bootstrap state transitions.
type BootstrapObserver interface {
	OnBootstrapEvent(ctx context.Context, event BootstrapEvent)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a Client or a
// BootstrapClient.
//
// # Authentication
//
// Provide either APIToken or Username and Password. When APIToken is set the
// username and password are ignored. Empty connection fields fall back to the
// rubrik_cdm_node_ip, rubrik_cdm_username, rubrik_cdm_password and
// rubrik_cdm_token environment variables unless DisableEnvFallback is set.
// A BootstrapClient only needs NodeIP.
//
// # Timeouts and retries
//
// HTTPTimeout bounds each individual call. Transport retries are disabled
// unless RetryMax is positive. The bootstrap cadence (30s between attempts,
// 12 attempts while the node refuses connections, 30s between status polls)
// can be tuned with the Bootstrap* fields; zero values keep the defaults.
type Config struct {
	// NodeIP: hostname or IP address of a node in the cluster. A scheme may be
	// included ("http://..."); "https://" is assumed otherwise.
	NodeIP string

	// Username and Password: credentials for Basic authentication.
	Username string
	Password string
	// APIToken: token for Bearer authentication. Takes precedence.
	APIToken string

	// DisableEnvFallback: do not read connection settings from the environment.
	DisableEnvFallback bool

	// HTTPTimeout: timeout of calls without an operation-specific one. The
	// bootstrap submission, status and discover calls keep 30s, 15s and 30s.
	// Zero keeps the 15s default.
	HTTPTimeout time.Duration
	// RetryMax: transport retries for 5xx, 429 and connection errors.
	RetryMax int
	// RetryWaitMin: minimum backoff between transport retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between transport retries.
	RetryWaitMax time.Duration
	// SkipTLSVerify: accept the self-signed certificate of the appliance.
	SkipTLSVerify bool
	// UserAgent: overrides the client identifier sent on authenticated calls.
	UserAgent string

	// Debug: enables request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger. Nothing is logged when nil.
	Logger Logger

	// BootstrapRetryInterval: wait between submissions on connection refused.
	BootstrapRetryInterval time.Duration
	// BootstrapPollInterval: wait between bootstrap status polls.
	BootstrapPollInterval time.Duration
	// BootstrapMaxAttempts: submissions before giving up on connection refused.
	BootstrapMaxAttempts int
	// BootstrapObserver: optional receiver of bootstrap state transitions.
	BootstrapObserver BootstrapObserver
}
