package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewHostsCommand creates the hosts command group.
func NewHostsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hosts",
		Aliases: []string{"host"},
		Short:   "Manage physical hosts",
		Long:    "List, add and delete physical hosts registered with the cluster",
	}

	cmd.AddCommand(newHostsListCommand())
	cmd.AddCommand(newHostsAddCommand())
	cmd.AddCommand(newHostsDeleteCommand())

	return cmd
}

func newHostsListCommand() *cobra.Command {
	var hostname string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hosts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			hosts, err := client.Physical().ListHosts(cmd.Context(), hostname)
			if err != nil {
				return fmt.Errorf("failed to list hosts: %w", err)
			}

			rows := make([][]string, 0, len(hosts))
			for _, host := range hosts {
				rows = append(rows, []string{host.ID, host.Hostname, host.OperatingSystem, displayStatus(host.Status)})
			}

			return renderOutput(cmd, hosts, []string{"ID", "Hostname", "Operating System", "Status"}, rows)
		},
	}

	cmd.Flags().StringVar(&hostname, "hostname", "", "only show hosts matching this hostname")

	return cmd
}

func newHostsAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add HOSTNAME",
		Short: "Add a host",
		Long:  "Register a physical host running the backup agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			result, err := client.Physical().AddHost(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to add host: %w", err)
			}

			return renderChange(cmd, result)
		},
	}
}

func newHostsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete HOSTNAME",
		Short: "Delete a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			result, err := client.Physical().DeleteHost(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete host: %w", err)
			}

			return renderChange(cmd, result)
		},
	}
}
