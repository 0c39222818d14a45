package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

// NewArchiveCommand creates the archive command group.
func NewArchiveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect archive locations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List archive locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			locations, err := client.Cloud().ArchiveLocations(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list archive locations: %w", err)
			}

			rows := make([][]string, 0, len(locations))
			for _, location := range locations {
				rows = append(rows, []string{
					location.ID,
					location.Name,
					location.LocationType,
					location.Bucket,
					displayStatus(location.CurrentState),
				})
			}

			return renderOutput(cmd, locations, []string{"ID", "Name", "Type", "Bucket", "State"}, rows)
		},
	})

	return cmd
}

// NewAWSCommand creates the aws command group.
func NewAWSCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aws",
		Short: "Manage AWS native accounts",
	}

	cmd.AddCommand(newAWSListCommand())
	cmd.AddCommand(newAWSAddCommand())

	return cmd
}

func newAWSListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List AWS native accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			accounts, err := client.Cloud().AWSAccounts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list AWS accounts: %w", err)
			}

			rows := make([][]string, 0, len(accounts))
			for _, account := range accounts {
				rows = append(rows, []string{account.ID, account.Name, displayStatus(account.Status)})
			}

			return renderOutput(cmd, accounts, []string{"ID", "Name", "Status"}, rows)
		},
	}
}

func newAWSAddCommand() *cobra.Command {
	var (
		accessKey string
		secretKey string
		regions   []string
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add an AWS native account",
		Long: `Add an AWS native account. Keys default to the AWS_ACCESS_KEY_ID and
AWS_SECRET_ACCESS_KEY environment variables.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if accessKey == "" {
				accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
			}

			if secretKey == "" {
				secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
			}

			if len(regions) == 0 {
				regions = viper.GetStringSlice("aws_regions")
			}

			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			result, err := client.Cloud().AddAWSAccount(cmd.Context(), &cdm.AWSAccountRequest{
				Name:      args[0],
				AccessKey: accessKey,
				SecretKey: secretKey,
				Regions:   regions,
			})
			if err != nil {
				return fmt.Errorf("failed to add AWS account: %w", err)
			}

			return renderChange(cmd, result)
		},
	}

	cmd.Flags().StringVar(&accessKey, "access-key", "", "AWS access key id")
	cmd.Flags().StringVar(&secretKey, "secret-key", "", "AWS secret access key")
	cmd.Flags().StringSliceVar(&regions, "region", nil, "AWS region to protect (repeatable)")

	return cmd
}
