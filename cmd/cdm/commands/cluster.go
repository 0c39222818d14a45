package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/cdm-client/internal/constants"
	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

// NewClusterCommand creates the cluster command group.
func NewClusterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Manage cluster settings",
		Long:  "Display cluster information and configure timezone, NTP, DNS and syslog",
	}

	cmd.AddCommand(newClusterVersionCommand())
	cmd.AddCommand(newClusterInfoCommand())
	cmd.AddCommand(newClusterNodesCommand())
	cmd.AddCommand(newClusterTimezoneCommand())
	cmd.AddCommand(newClusterNTPCommand())
	cmd.AddCommand(newClusterDNSCommand())
	cmd.AddCommand(newClusterSearchDomainsCommand())
	cmd.AddCommand(newClusterSyslogCommand())

	return cmd
}

func newClusterVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show cluster software version",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			version, err := client.Cluster().Version(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get cluster version: %w", err)
			}

			return renderProperties(cmd, version, [][]string{{"Version", version.Version}})
		},
	}
}

func newClusterInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cluster information",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			info, err := client.Cluster().Info(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get cluster info: %w", err)
			}

			return renderProperties(cmd, info, [][]string{
				{"ID", info.ID},
				{"Name", info.Name},
				{"Version", info.Version},
				{"API Version", info.APIVersion},
				{"Timezone", info.Timezone.Timezone},
			})
		},
	}
}

func newClusterNodesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List cluster nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			nodes, err := client.Cluster().Nodes(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list nodes: %w", err)
			}

			rows := make([][]string, 0, len(nodes))
			for _, node := range nodes {
				rows = append(rows, []string{node.ID, node.BrikID, node.IPAddress, displayStatus(node.Status)})
			}

			return renderOutput(cmd, nodes, []string{"ID", "Brik", "IP Address", "Status"}, rows)
		},
	}
}

func newClusterTimezoneCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "timezone TIMEZONE",
		Short:   "Set the cluster timezone",
		Example: "  cdm cluster timezone America/Chicago",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			result, err := client.Cluster().ConfigureTimezone(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to configure timezone: %w", err)
			}

			return renderChange(cmd, result)
		},
	}
}

func newClusterNTPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ntp SERVER...",
		Short: "Set the cluster NTP servers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			result, err := client.Cluster().ConfigureNTP(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("failed to configure NTP servers: %w", err)
			}

			return renderChange(cmd, result)
		},
	}
}

func newClusterDNSCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dns SERVER...",
		Short: "Set the cluster DNS nameservers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			result, err := client.Cluster().ConfigureDNSServers(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("failed to configure DNS servers: %w", err)
			}

			return renderChange(cmd, result)
		},
	}
}

func newClusterSearchDomainsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search-domains DOMAIN...",
		Short: "Set the cluster DNS search domains",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			result, err := client.Cluster().ConfigureSearchDomains(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("failed to configure search domains: %w", err)
			}

			return renderChange(cmd, result)
		},
	}
}

func newClusterSyslogCommand() *cobra.Command {
	var (
		port     int
		protocol string
	)

	cmd := &cobra.Command{
		Use:   "syslog HOSTNAME",
		Short: "Forward cluster logs to a syslog server",
		Long:  "Replace the remote syslog configuration of the cluster with a single server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			result, err := client.Cluster().ConfigureSyslog(cmd.Context(), &cdm.SyslogConfig{
				Hostname: args[0],
				Port:     port,
				Protocol: protocol,
			})
			if err != nil {
				return fmt.Errorf("failed to configure syslog: %w", err)
			}

			return renderChange(cmd, result)
		},
	}

	cmd.Flags().IntVar(&port, "port", constants.DefaultSyslogPort, "syslog server port")
	cmd.Flags().StringVar(&protocol, "protocol", constants.DefaultSyslogProtocol, "transport protocol (UDP, TCP)")

	return cmd
}
