package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

// NewVMsCommand creates the vms command group.
func NewVMsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vms",
		Aliases: []string{"vm"},
		Short:   "Manage VMware virtual machines",
		Long:    "Inspect virtual machines, take on-demand snapshots and assign SLA domains",
	}

	cmd.AddCommand(newVMsGetCommand())
	cmd.AddCommand(newVMsSnapshotCommand())
	cmd.AddCommand(newVMsAssignSLACommand())

	return cmd
}

// NewSLACommand creates the sla command group.
func NewSLACommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sla",
		Short: "Look up SLA domains",
	}

	cmd.AddCommand(newSLAGetCommand())

	return cmd
}

// NewJobsCommand creates the jobs command group.
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Follow asynchronous jobs",
	}

	cmd.AddCommand(newJobsStatusCommand())

	return cmd
}

func newVMsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get VM_NAME",
		Short: "Show a virtual machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			vm, err := client.DataManagement().VMwareVM(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get virtual machine: %w", err)
			}

			return renderProperties(cmd, vm, [][]string{
				{"ID", vm.ID},
				{"Name", vm.Name},
				{"Configured SLA", vm.ConfiguredSLADomainID},
				{"Effective SLA", vm.EffectiveSLADomainID},
			})
		},
	}
}

func newVMsSnapshotCommand() *cobra.Command {
	var slaName string

	cmd := &cobra.Command{
		Use:   "snapshot VM_NAME",
		Short: "Take an on-demand snapshot",
		Long:  "Take an on-demand snapshot of a virtual machine. The effective SLA domain of the VM is used unless --sla is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			job, err := client.DataManagement().OnDemandSnapshot(cmd.Context(), args[0], slaName)
			if err != nil {
				return fmt.Errorf("failed to take snapshot: %w", err)
			}

			return renderJob(cmd, job)
		},
	}

	cmd.Flags().StringVar(&slaName, "sla", "", "SLA domain used for retention")

	return cmd
}

func newVMsAssignSLACommand() *cobra.Command {
	return &cobra.Command{
		Use:     "assign-sla VM_NAME SLA_NAME",
		Short:   "Assign an SLA domain",
		Long:    `Assign an SLA domain to a virtual machine. Use "do not protect" to stop protecting it or "clear" to inherit the SLA of its parent`,
		Example: `  cdm vms assign-sla web01 Gold`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			result, err := client.DataManagement().AssignSLA(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to assign SLA domain: %w", err)
			}

			return renderChange(cmd, result)
		},
	}
}

func newSLAGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get SLA_NAME",
		Short: "Show the id of an SLA domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			id, err := client.DataManagement().SLADomainID(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get SLA domain: %w", err)
			}

			sla := cdm.SLADomain{ID: id, Name: args[0]}

			return renderProperties(cmd, sla, [][]string{
				{"ID", sla.ID},
				{"Name", sla.Name},
			})
		},
	}
}

func newJobsStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status HREF",
		Short: "Show the status of a job",
		Long:  "Display the status of an asynchronous job from the href returned when it was started",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			job, err := client.DataManagement().JobStatus(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get job status: %w", err)
			}

			return renderJob(cmd, job)
		},
	}
}

func renderJob(cmd *cobra.Command, job *cdm.AsyncRequest) error {
	return renderProperties(cmd, job, [][]string{
		{"ID", job.ID},
		{"Status", displayStatus(job.Status)},
		{"Progress", strconv.Itoa(job.Progress)},
		{"Started", job.StartTime},
		{"Ended", job.EndTime},
		{"Href", job.SelfHref()},
	})
}
