package client

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/fivetwenty-io/cdm-client/internal/constants"
	"github.com/fivetwenty-io/cdm-client/internal/http"
	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

// ClusterClient implements cdm.ClusterClient.
type ClusterClient struct {
	httpClient *http.Client
}

// NewClusterClient creates a new cluster client.
func NewClusterClient(httpClient *http.Client) *ClusterClient {
	return &ClusterClient{
		httpClient: httpClient,
	}
}

// Version implements cdm.ClusterClient.Version.
func (c *ClusterClient) Version(ctx context.Context) (*cdm.ClusterVersion, error) {
	resp, err := c.httpClient.Get(ctx, cdm.APIVersionV1, "/cluster/me/version", nil)
	if err != nil {
		return nil, fmt.Errorf("getting cluster version: %w", err)
	}

	var version cdm.ClusterVersion

	err = json.Unmarshal(resp.Body, &version)
	if err != nil {
		return nil, fmt.Errorf("parsing cluster version: %w", err)
	}

	return &version, nil
}

// Info implements cdm.ClusterClient.Info.
func (c *ClusterClient) Info(ctx context.Context) (*cdm.ClusterInfo, error) {
	resp, err := c.httpClient.Get(ctx, cdm.APIVersionV1, "/cluster/me", nil)
	if err != nil {
		return nil, fmt.Errorf("getting cluster info: %w", err)
	}

	var info cdm.ClusterInfo

	err = json.Unmarshal(resp.Body, &info)
	if err != nil {
		return nil, fmt.Errorf("parsing cluster info: %w", err)
	}

	return &info, nil
}

// Nodes implements cdm.ClusterClient.Nodes.
func (c *ClusterClient) Nodes(ctx context.Context) ([]cdm.ClusterNode, error) {
	resp, err := c.httpClient.Get(ctx, cdm.APIVersionInternal, "/cluster/me/node", nil)
	if err != nil {
		return nil, fmt.Errorf("listing cluster nodes: %w", err)
	}

	return parseList[cdm.ClusterNode](resp.Body, "cluster node")
}

// NodeIPs implements cdm.ClusterClient.NodeIPs.
func (c *ClusterClient) NodeIPs(ctx context.Context) ([]string, error) {
	nodes, err := c.Nodes(ctx)
	if err != nil {
		return nil, err
	}

	ips := make([]string, 0, len(nodes))
	for _, node := range nodes {
		ips = append(ips, node.IPAddress)
	}

	return ips, nil
}

// NodeNames implements cdm.ClusterClient.NodeNames.
func (c *ClusterClient) NodeNames(ctx context.Context) ([]string, error) {
	nodes, err := c.Nodes(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(nodes))
	for _, node := range nodes {
		names = append(names, node.ID)
	}

	return names, nil
}

// ConfigureTimezone implements cdm.ClusterClient.ConfigureTimezone.
func (c *ClusterClient) ConfigureTimezone(ctx context.Context, timezone string) (*cdm.ChangeResult, error) {
	if timezone == "" {
		return nil, fmt.Errorf("%w: timezone", cdm.ErrNameRequired)
	}

	info, err := c.Info(ctx)
	if err != nil {
		return nil, err
	}

	if info.Timezone.Timezone == timezone {
		return noChange("The Rubrik cluster is already configured with '%s' as its timezone.", timezone), nil
	}

	body := map[string]interface{}{
		"timezone": cdm.Timezone{Timezone: timezone},
	}

	_, err = c.httpClient.Patch(ctx, cdm.APIVersionV1, "/cluster/me", body)
	if err != nil {
		return nil, fmt.Errorf("configuring timezone: %w", err)
	}

	return changed("The cluster timezone was set to '%s'.", timezone), nil
}

// ConfigureNTP implements cdm.ClusterClient.ConfigureNTP.
func (c *ClusterClient) ConfigureNTP(ctx context.Context, servers []string) (*cdm.ChangeResult, error) {
	return c.configureList(ctx, "/cluster/me/ntp_server", "NTP servers", servers)
}

// ConfigureDNSServers implements cdm.ClusterClient.ConfigureDNSServers.
func (c *ClusterClient) ConfigureDNSServers(ctx context.Context, servers []string) (*cdm.ChangeResult, error) {
	return c.configureList(ctx, "/cluster/me/dns_nameserver", "DNS servers", servers)
}

// ConfigureSearchDomains implements cdm.ClusterClient.ConfigureSearchDomains.
func (c *ClusterClient) ConfigureSearchDomains(ctx context.Context, domains []string) (*cdm.ChangeResult, error) {
	return c.configureList(ctx, "/cluster/me/dns_search_domain", "DNS search domains", domains)
}

// configureList replaces a string-list cluster setting unless it already
// holds the same values.
func (c *ClusterClient) configureList(ctx context.Context, path, what string, values []string) (*cdm.ChangeResult, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: at least one value is required for %s", cdm.ErrInvalidParameter, what)
	}

	resp, err := c.httpClient.Get(ctx, cdm.APIVersionInternal, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", what, err)
	}

	current, err := parseStrings(resp.Body, what)
	if err != nil {
		return nil, err
	}

	if sameSet(current, values) {
		return noChange("The Rubrik cluster is already configured with the provided %s.", what), nil
	}

	_, err = c.httpClient.Post(ctx, cdm.APIVersionInternal, path, values)
	if err != nil {
		return nil, fmt.Errorf("configuring %s: %w", what, err)
	}

	return changed("The cluster %s were set to %s.", what, strings.Join(values, ", ")), nil
}

// ConfigureSyslog implements cdm.ClusterClient.ConfigureSyslog. Existing
// targets that differ from syslog are removed first.
func (c *ClusterClient) ConfigureSyslog(ctx context.Context, syslog *cdm.SyslogConfig) (*cdm.ChangeResult, error) {
	if syslog == nil || syslog.Hostname == "" {
		return nil, fmt.Errorf("%w: syslog hostname", cdm.ErrNameRequired)
	}

	target := *syslog
	target.ID = ""
	target.Protocol = strings.ToUpper(target.Protocol)

	if target.Protocol == "" {
		target.Protocol = constants.DefaultSyslogProtocol
	}

	if !slices.Contains([]string{"TCP", "UDP"}, target.Protocol) {
		return nil, cdm.ErrInvalidSyslogProtocol
	}

	if target.Port == 0 {
		target.Port = constants.DefaultSyslogPort
	}

	resp, err := c.httpClient.Get(ctx, cdm.APIVersionInternal, "/syslog", nil)
	if err != nil {
		return nil, fmt.Errorf("getting syslog configuration: %w", err)
	}

	current, err := parseList[cdm.SyslogConfig](resp.Body, "syslog")
	if err != nil {
		return nil, err
	}

	for _, existing := range current {
		if existing.Hostname == target.Hostname && existing.Port == target.Port && strings.EqualFold(existing.Protocol, target.Protocol) {
			return noChange("The Rubrik cluster is already configured to use the syslog server '%s'.", target.Hostname), nil
		}
	}

	for _, existing := range current {
		_, err = c.httpClient.Delete(ctx, cdm.APIVersionInternal, "/syslog/"+existing.ID)
		if err != nil {
			return nil, fmt.Errorf("removing syslog server %s: %w", existing.Hostname, err)
		}
	}

	_, err = c.httpClient.Post(ctx, cdm.APIVersionInternal, "/syslog", &target)
	if err != nil {
		return nil, fmt.Errorf("configuring syslog server: %w", err)
	}

	return changed("The cluster now sends syslog to %s:%d over %s.", target.Hostname, target.Port, target.Protocol), nil
}
