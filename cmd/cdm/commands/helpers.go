package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/cdm-client/internal/constants"
	"github.com/fivetwenty-io/cdm-client/internal/logging"
	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
	"github.com/fivetwenty-io/cdm-client/pkg/cdmclient"
)

// clientConfig builds the library configuration from flags, the config file
// and the environment.
func clientConfig() *cdm.Config {
	return &cdm.Config{
		NodeIP:        viper.GetString("node"),
		Username:      viper.GetString("username"),
		Password:      viper.GetString("password"),
		APIToken:      viper.GetString("token"),
		HTTPTimeout:   viper.GetDuration("timeout"),
		SkipTLSVerify: viper.GetBool("skip_ssl_validation"),
		Debug:         viper.GetBool("verbose"),
		Logger:        newLogger(),
	}
}

func newLogger() *logging.Logger {
	logger := logging.New(logging.Options{
		JSON:    viper.GetString("log_format") == "json",
		Verbose: viper.GetBool("verbose"),
		Out:     os.Stderr,
	})

	if node := viper.GetString("node"); node != "" {
		return logger.With(map[string]interface{}{"node": node})
	}

	return logger
}

func newClient(ctx context.Context) (cdm.Client, error) {
	client, err := cdmclient.New(ctx, clientConfig())
	if err != nil {
		return nil, nodeError(err)
	}

	return client, nil
}

func newBootstrapClient(ctx context.Context, cfg *cdm.Config) (cdm.BootstrapClient, error) {
	client, err := cdmclient.NewBootstrap(ctx, cfg)
	if err != nil {
		return nil, nodeError(err)
	}

	return client, nil
}

func nodeError(err error) error {
	if errors.Is(err, cdm.ErrNodeIPRequired) {
		return constants.ErrNoNodeConfigured
	}

	return err
}

// renderOutput writes data as JSON or YAML, or as a table built from headers
// and rows.
func renderOutput(cmd *cobra.Command, data interface{}, headers []string, rows [][]string) error {
	out := cmd.OutOrStdout()

	switch format := viper.GetString("output"); format {
	case constants.OutputFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(data)
	case constants.OutputFormatYAML:
		encoder := yaml.NewEncoder(out)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(data)
	case constants.OutputFormatTable, "":
		table := tablewriter.NewWriter(out)

		header := make([]any, len(headers))
		for i, h := range headers {
			header[i] = h
		}

		table.Header(header...)

		for _, row := range rows {
			_ = table.Append(row)
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, format)
	}
}

// renderProperties renders a two column property table.
func renderProperties(cmd *cobra.Command, data interface{}, rows [][]string) error {
	return renderOutput(cmd, data, []string{"Property", "Value"}, rows)
}

func renderChange(cmd *cobra.Command, result *cdm.ChangeResult) error {
	return renderProperties(cmd, result, [][]string{
		{"Changed", strconv.FormatBool(result.Changed)},
		{"Message", result.Message},
	})
}

// displayStatus turns an API status such as IN_PROGRESS into "In Progress".
func displayStatus(status string) string {
	if status == "" {
		return ""
	}

	words := strings.ReplaceAll(strings.ToLower(status), "_", " ")

	return cases.Title(language.English).String(words)
}
