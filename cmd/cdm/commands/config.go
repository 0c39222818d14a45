package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/cdm-client/internal/constants"
)

const maskedValue = "********"

// Config represents the CLI configuration file.
type Config struct {
	Node              string `json:"node,omitempty"       yaml:"node,omitempty"`
	Username          string `json:"username,omitempty"   yaml:"username,omitempty"`
	Token             string `json:"token,omitempty"      yaml:"token,omitempty"`
	Output            string `json:"output,omitempty"     yaml:"output,omitempty"`
	LogFormat         string `json:"log_format,omitempty" yaml:"log_format,omitempty"`
	Timeout           string `json:"timeout,omitempty"    yaml:"timeout,omitempty"`
	SkipSSLValidation bool   `json:"skip_ssl_validation"  yaml:"skip_ssl_validation"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage CDM CLI configuration stored in $HOME/.cdm/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.Token != "" {
				config.Token = maskedValue
			}

			return renderProperties(cmd, config, [][]string{
				{"Node", config.Node},
				{"Username", config.Username},
				{"Token", config.Token},
				{"Output", config.Output},
				{"Log Format", config.LogFormat},
				{"Timeout", config.Timeout},
				{"Skip SSL Validation", strconv.FormatBool(config.SkipSSLValidation)},
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "set KEY VALUE",
		Short:   "Set a configuration value",
		Long:    "Set a configuration value. Keys: node, username, token, output, log_format, timeout, skip_ssl_validation",
		Example: "  cdm config set node 10.0.0.11",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			viper.Set(args[0], args[1])

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := unsetConfigValue(config, args[0])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			viper.Set(args[0], nil)

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func loadConfig() *Config {
	return &Config{
		Node:              viper.GetString("node"),
		Username:          viper.GetString("username"),
		Token:             viper.GetString("token"),
		Output:            viper.GetString("output"),
		LogFormat:         viper.GetString("log_format"),
		Timeout:           viper.GetString("timeout"),
		SkipSSLValidation: viper.GetBool("skip_ssl_validation"),
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "node":
		config.Node = value
	case "username":
		config.Username = value
	case "token":
		config.Token = value
	case "output":
		formats := []string{constants.OutputFormatTable, constants.OutputFormatJSON, constants.OutputFormatYAML}
		if !slices.Contains(formats, value) {
			return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, value)
		}

		config.Output = value
	case "log_format":
		config.LogFormat = value
	case "timeout":
		_, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", value, err)
		}

		config.Timeout = value
	case "skip_ssl_validation":
		skip, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for skip_ssl_validation %q: %w", value, err)
		}

		config.SkipSSLValidation = skip
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func unsetConfigValue(config *Config, key string) error {
	switch key {
	case "node":
		config.Node = ""
	case "username":
		config.Username = ""
	case "token":
		config.Token = ""
	case "output":
		config.Output = ""
	case "log_format":
		config.LogFormat = ""
	case "timeout":
		config.Timeout = ""
	case "skip_ssl_validation":
		config.SkipSSLValidation = false
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, ".cdm")

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
