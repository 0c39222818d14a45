package cdm

import (
	"github.com/fivetwenty-io/cdm-client/internal/constants"
)

// Request builds the bootstrap payload, applying defaults for unset fields.
// Encryption defaults to enabled, DNS nameservers to 8.8.8.8 and NTP servers
// to pool.ntp.org.
func (c *BootstrapConfig) Request() (*BootstrapRequest, error) {
	if len(c.NodeConfig) == 0 {
		return nil, ErrNodeConfigRequired
	}

	encryption := true
	if c.EnableEncryption != nil {
		encryption = *c.EnableEncryption
	}

	searchDomains := c.DNSSearchDomains
	if searchDomains == nil {
		searchDomains = []string{}
	}

	nameservers := c.DNSNameservers
	if len(nameservers) == 0 {
		nameservers = []string{constants.DefaultDNSNameserver}
	}

	ntpServers := c.NTPServers
	if len(ntpServers) == 0 {
		ntpServers = []string{constants.DefaultNTPServer}
	}

	nodeConfigs := make(map[string]NodeConfig, len(c.NodeConfig))
	for name, address := range c.NodeConfig {
		nodeConfigs[name] = NodeConfig{
			ManagementIPConfig: IPConfig{
				Address: address,
				Netmask: c.ManagementSubnetMask,
				Gateway: c.ManagementGateway,
			},
		}
	}

	return &BootstrapRequest{
		Name:                           c.ClusterName,
		EnableSoftwareEncryptionAtRest: encryption,
		DNSNameservers:                 nameservers,
		DNSSearchDomains:               searchDomains,
		NTPServers:                     ntpServers,
		AdminUserInfo: AdminUserInfo{
			ID:           constants.BootstrapAdminID,
			EmailAddress: c.AdminEmail,
			Password:     c.AdminPassword,
		},
		NodeConfigs: nodeConfigs,
	}, nil
}

// Bool returns a pointer to b, for optional fields such as EnableEncryption.
func Bool(b bool) *bool {
	return &b
}
