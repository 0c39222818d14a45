package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for authenticated API calls.
	DefaultHTTPTimeout = 15 * time.Second

	// BootstrapSubmitTimeout is the timeout for the bootstrap submission and node discovery.
	BootstrapSubmitTimeout = 30 * time.Second

	// BootstrapStatusTimeout is the timeout for a single bootstrap status query.
	BootstrapStatusTimeout = 15 * time.Second
)

// Transport retry limits. Retries are off unless a caller asks for them.
const (
	// DefaultRetryWaitMin is the minimum wait between transport retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait between transport retries.
	DefaultRetryWaitMax = 30 * time.Second
)

// Bootstrap cadence.
const (
	// BootstrapRetryInterval is the wait between submissions while the node refuses connections.
	BootstrapRetryInterval = 30 * time.Second

	// BootstrapPollInterval is the wait between bootstrap status queries.
	BootstrapPollInterval = 30 * time.Second

	// BootstrapMaxAttempts caps the number of submissions on connection refused.
	BootstrapMaxAttempts = 12

	// DefaultBootstrapRequestID is the request id queried when none is given.
	DefaultBootstrapRequestID = "1"

	// BootstrapAdminID is the fixed id of the admin account created by bootstrap.
	BootstrapAdminID = "admin"
)

// Bootstrap status values reported by the cluster.
const (
	BootstrapStatusInProgress = "IN_PROGRESS"
	BootstrapStatusFailure    = "FAILURE"
	BootstrapStatusFailed     = "FAILED"
	BootstrapStatusSuccess    = "SUCCESS"
)

// Bootstrap defaults.
const (
	// DefaultDNSNameserver is used when no DNS nameservers are given.
	DefaultDNSNameserver = "8.8.8.8"

	// DefaultNTPServer is used when no NTP servers are given.
	DefaultNTPServer = "pool.ntp.org"
)

// Server and client messages.
const (
	// AlreadyBootstrappedServerMessage is matched against submission errors.
	AlreadyBootstrappedServerMessage = "Cannot bootstrap from an already bootstrapped node"

	// AlreadyBootstrappedMessage is returned when the cluster needs no bootstrap.
	AlreadyBootstrappedMessage = "No change required. The Rubrik cluster is already bootstrapped."

	// ConnectionUnavailableMessage is returned once every bootstrap attempt was refused.
	ConnectionUnavailableMessage = "Unable to establish a connection to the Rubrik cluster."

	// ConnectionRefusedMessage is the fragment used to recognise refused connections
	// when the errno is not reachable through the error chain.
	ConnectionRefusedMessage = "connection refused"
)

// Client identification.
const (
	// UserAgent is sent on every authenticated call.
	UserAgent = "Rubrik Go SDK v1.0.0"

	// ContentTypeJSON is used for both Content-Type and Accept.
	ContentTypeJSON = "application/json"
)

// Environment variables used as fallback for connection settings.
const (
	EnvNodeIP   = "rubrik_cdm_node_ip"
	EnvUsername = "rubrik_cdm_username"
	EnvPassword = "rubrik_cdm_password"
	EnvToken    = "rubrik_cdm_token"
)

// Syslog defaults.
const (
	DefaultSyslogPort     = 514
	DefaultSyslogProtocol = "UDP"
)

// Output formats.
const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
)

// Event publishing.
const (
	// BootstrapSubjectPrefix prefixes the NATS subject for bootstrap events.
	BootstrapSubjectPrefix = "cdm.bootstrap"

	// NATSConnectTimeout bounds the initial NATS connection.
	NATSConnectTimeout = 5 * time.Second
)
