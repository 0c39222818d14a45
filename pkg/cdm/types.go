package cdm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// APIVersion is the version segment of a CDM API URL.
type APIVersion string

const (
	APIVersionV1       APIVersion = "v1"
	APIVersionV2       APIVersion = "v2"
	APIVersionInternal APIVersion = "internal"
)

// SupportedAPIVersions lists the versions accepted for authenticated calls.
var SupportedAPIVersions = []APIVersion{APIVersionV1, APIVersionV2, APIVersionInternal}

// BootstrapAPIVersions lists the versions served by a node before bootstrap.
var BootstrapAPIVersions = []APIVersion{APIVersionV1, APIVersionInternal}

// RequestID identifies an asynchronous request. The cluster may encode it as a
// JSON number or string.
type RequestID string

// UnmarshalJSON accepts both string and numeric ids.
func (r *RequestID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""

		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string

		err := json.Unmarshal(data, &s)
		if err != nil {
			return fmt.Errorf("parsing request id: %w", err)
		}

		*r = RequestID(s)

		return nil
	}

	var n json.Number

	err := json.Unmarshal(data, &n)
	if err != nil {
		return fmt.Errorf("parsing request id: %w", err)
	}

	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*r = RequestID(strconv.FormatInt(i, 10))

		return nil
	}

	*r = RequestID(n.String())

	return nil
}

// String returns the id as sent in query strings.
func (r RequestID) String() string {
	return string(r)
}

// BootstrapConfig holds the caller-facing bootstrap settings. Unset list fields
// take their defaults when the request payload is built.
type BootstrapConfig struct {
	ClusterName          string            `json:"cluster_name"           yaml:"cluster_name"`
	AdminEmail           string            `json:"admin_email"            yaml:"admin_email"`
	AdminPassword        string            `json:"-"                      yaml:"-"`
	ManagementGateway    string            `json:"management_gateway"     yaml:"management_gateway"`
	ManagementSubnetMask string            `json:"management_subnet_mask" yaml:"management_subnet_mask"`
	NodeConfig           map[string]string `json:"node_config"            yaml:"node_config"`
	// EnableEncryption defaults to true. Cloud clusters must set it to false.
	EnableEncryption *bool    `json:"enable_encryption,omitempty"  yaml:"enable_encryption,omitempty"`
	DNSSearchDomains []string `json:"dns_search_domains,omitempty" yaml:"dns_search_domains,omitempty"`
	DNSNameservers   []string `json:"dns_nameservers,omitempty"    yaml:"dns_nameservers,omitempty"`
	NTPServers       []string `json:"ntp_servers,omitempty"        yaml:"ntp_servers,omitempty"`
}

// BootstrapRequest is the body of POST /internal/cluster/me/bootstrap.
type BootstrapRequest struct {
	Name                           string                `json:"name"`
	EnableSoftwareEncryptionAtRest bool                  `json:"enableSoftwareEncryptionAtRest"`
	DNSNameservers                 []string              `json:"dnsNameservers"`
	DNSSearchDomains               []string              `json:"dnsSearchDomains"`
	NTPServers                     []string              `json:"ntpServers"`
	AdminUserInfo                  AdminUserInfo         `json:"adminUserInfo"`
	NodeConfigs                    map[string]NodeConfig `json:"nodeConfigs"`
}

// AdminUserInfo describes the admin account created by bootstrap.
type AdminUserInfo struct {
	ID           string `json:"id"`
	EmailAddress string `json:"emailAddress"`
	Password     string `json:"password"`
}

// NodeConfig is the per-node part of a bootstrap request.
type NodeConfig struct {
	ManagementIPConfig IPConfig `json:"managementIpConfig"`
}

// IPConfig is a static interface address.
type IPConfig struct {
	Address string `json:"address"`
	Netmask string `json:"netmask"`
	Gateway string `json:"gateway"`
}

// BootstrapSubmission is the response to a bootstrap request.
type BootstrapSubmission struct {
	ID     RequestID       `json:"id"               yaml:"id"`
	Status string          `json:"status,omitempty" yaml:"status,omitempty"`
	Raw    json.RawMessage `json:"-"                yaml:"-"`
}

// BootstrapStatus is the response of GET /internal/cluster/me/bootstrap.
type BootstrapStatus struct {
	Status  string          `json:"status"            yaml:"status"`
	Message string          `json:"message,omitempty" yaml:"message,omitempty"`
	Raw     json.RawMessage `json:"-"                 yaml:"-"`
}

// BootstrapResult is the outcome of a bootstrap run.
type BootstrapResult struct {
	RequestID string `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	// AlreadyBootstrapped is set when the node refused the request because it
	// is already part of a cluster; Message then explains that nothing changed.
	AlreadyBootstrapped bool                 `json:"already_bootstrapped" yaml:"already_bootstrapped"`
	Message             string               `json:"message,omitempty"    yaml:"message,omitempty"`
	Submission          *BootstrapSubmission `json:"submission,omitempty" yaml:"submission,omitempty"`
	// Status is the terminal status when the caller waited for completion.
	Status *BootstrapStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// BootstrapState names a step of the bootstrap workflow.
type BootstrapState string

const (
	BootstrapStateSubmitting          BootstrapState = "SUBMITTING"
	BootstrapStateRetryWait           BootstrapState = "RETRY_WAIT"
	BootstrapStatePolling             BootstrapState = "POLLING"
	BootstrapStateSucceeded           BootstrapState = "SUCCEEDED"
	BootstrapStateFailed              BootstrapState = "FAILED"
	BootstrapStateAlreadyBootstrapped BootstrapState = "ALREADY_BOOTSTRAPPED"
	BootstrapStateSubmitted           BootstrapState = "SUBMITTED"
)

// BootstrapEvent is emitted on every bootstrap state transition.
type BootstrapEvent struct {
	Cluster   string         `json:"cluster"`
	Node      string         `json:"node"`
	State     BootstrapState `json:"state"`
	Attempt   int            `json:"attempt,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Status    string         `json:"status,omitempty"`
	Message   string         `json:"message,omitempty"`
	Time      time.Time      `json:"time"`
}

// DiscoverResponse is the response of GET /internal/cluster/me/discover.
type DiscoverResponse struct {
	Data  []DiscoveredNode `json:"data"            yaml:"data"`
	Total int              `json:"total,omitempty" yaml:"total,omitempty"`
	Raw   json.RawMessage  `json:"-"               yaml:"-"`
}

// DiscoveredNode is a node that can join the cluster.
type DiscoveredNode struct {
	ID       string `json:"id,omitempty"       yaml:"id,omitempty"`
	Hostname string `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	IPv4     string `json:"ipv4,omitempty"     yaml:"ipv4,omitempty"`
	IPv6     string `json:"ipv6,omitempty"     yaml:"ipv6,omitempty"`
}

// ChangeResult reports whether an idempotent operation changed anything.
type ChangeResult struct {
	Changed bool   `json:"changed"           yaml:"changed"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// ClusterVersion is the response of GET /v1/cluster/me/version.
type ClusterVersion struct {
	Version string `json:"version" yaml:"version"`
}

// ClusterInfo is the response of GET /v1/cluster/me.
type ClusterInfo struct {
	ID         string   `json:"id"         yaml:"id"`
	Name       string   `json:"name"       yaml:"name"`
	Version    string   `json:"version"    yaml:"version"`
	APIVersion string   `json:"apiVersion" yaml:"apiVersion"`
	Timezone   Timezone `json:"timezone"   yaml:"timezone"`
}

// Timezone wraps the cluster timezone.
type Timezone struct {
	Timezone string `json:"timezone" yaml:"timezone"`
}

// ClusterNode is a member node of the cluster.
type ClusterNode struct {
	ID        string `json:"id"        yaml:"id"`
	BrikID    string `json:"brikId"    yaml:"brikId"`
	Status    string `json:"status"    yaml:"status"`
	IPAddress string `json:"ipAddress" yaml:"ipAddress"`
}

// SyslogConfig is a remote syslog target.
type SyslogConfig struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Hostname string `json:"hostname"     yaml:"hostname"`
	Port     int    `json:"port"         yaml:"port"`
	Protocol string `json:"protocol"     yaml:"protocol"`
}

// SLADomain is an SLA domain summary.
type SLADomain struct {
	ID   string `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// VMwareVM is a vSphere virtual machine summary.
type VMwareVM struct {
	ID                    string `json:"id"                    yaml:"id"`
	Name                  string `json:"name"                  yaml:"name"`
	ConfiguredSLADomainID string `json:"configuredSlaDomainId" yaml:"configuredSlaDomainId"`
	EffectiveSLADomainID  string `json:"effectiveSlaDomainId"  yaml:"effectiveSlaDomainId"`
}

// AsyncRequest is the status of an asynchronous cluster job.
type AsyncRequest struct {
	ID        string `json:"id"                  yaml:"id"`
	Status    string `json:"status"              yaml:"status"`
	Progress  int    `json:"progress,omitempty"  yaml:"progress,omitempty"`
	StartTime string `json:"startTime,omitempty" yaml:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"   yaml:"endTime,omitempty"`
	Links     []Link `json:"links,omitempty"     yaml:"links,omitempty"`
}

// SelfHref returns the href of the "self" link, if any.
func (r *AsyncRequest) SelfHref() string {
	for _, link := range r.Links {
		if link.Rel == "self" {
			return link.Href
		}
	}

	return ""
}

// Link is a hypermedia link.
type Link struct {
	Href string `json:"href" yaml:"href"`
	Rel  string `json:"rel"  yaml:"rel"`
}

// Host is a physical host registered with the cluster.
type Host struct {
	ID              string `json:"id"                        yaml:"id"`
	Hostname        string `json:"hostname"                  yaml:"hostname"`
	OperatingSystem string `json:"operatingSystem,omitempty" yaml:"operatingSystem,omitempty"`
	Status          string `json:"status,omitempty"          yaml:"status,omitempty"`
}

// ArchiveLocation is an archival target.
type ArchiveLocation struct {
	ID           string `json:"id"                     yaml:"id"`
	Name         string `json:"name"                   yaml:"name"`
	LocationType string `json:"locationType"           yaml:"locationType"`
	Bucket       string `json:"bucket,omitempty"       yaml:"bucket,omitempty"`
	CurrentState string `json:"currentState,omitempty" yaml:"currentState,omitempty"`
}

// AWSAccount is an AWS native account known to the cluster.
type AWSAccount struct {
	ID     string `json:"id"               yaml:"id"`
	Name   string `json:"name"             yaml:"name"`
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
}

// AWSAccountRequest is the body used to add an AWS native account.
type AWSAccountRequest struct {
	Name      string   `json:"name"`
	AccessKey string   `json:"accessKey"`
	SecretKey string   `json:"secretKey"`
	Regions   []string `json:"regions"`
}

// ListResponse is the paged envelope used by most list endpoints.
type ListResponse[T any] struct {
	HasMore bool `json:"hasMore"`
	Data    []T  `json:"data"`
	Total   int  `json:"total"`
}
