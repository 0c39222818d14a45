package commands_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/cdm-client/cmd/cdm/commands"
	"github.com/fivetwenty-io/cdm-client/internal/constants"
)

func useConfigFile(t *testing.T) string {
	t.Helper()

	resetViper(t)

	configFile := filepath.Join(t.TempDir(), "config.yml")
	viper.SetConfigFile(configFile)

	return configFile
}

func readConfigFile(t *testing.T, path string) commands.Config {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var config commands.Config

	require.NoError(t, yaml.Unmarshal(data, &config))

	return config
}

func TestNewConfigCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewConfigCommand()
	assert.Equal(t, "config", cmd.Use)
	assert.NotNil(t, findSubcommand(cmd, "show"))
	assert.NotNil(t, findSubcommand(cmd, "set"))
	assert.NotNil(t, findSubcommand(cmd, "unset"))
}

func TestConfigSetAndUnset(t *testing.T) {
	configFile := useConfigFile(t)

	out, err := execute(commands.NewConfigCommand(), "set", "node", "10.0.0.11")
	require.NoError(t, err)
	assert.Equal(t, "Set node\n", out)

	_, err = execute(commands.NewConfigCommand(), "set", "skip_ssl_validation", "true")
	require.NoError(t, err)

	_, err = execute(commands.NewConfigCommand(), "set", "timeout", "45s")
	require.NoError(t, err)

	config := readConfigFile(t, configFile)
	assert.Equal(t, "10.0.0.11", config.Node)
	assert.True(t, config.SkipSSLValidation)
	assert.Equal(t, "45s", config.Timeout)

	info, err := os.Stat(configFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())

	_, err = execute(commands.NewConfigCommand(), "unset", "node")
	require.NoError(t, err)

	config = readConfigFile(t, configFile)
	assert.Empty(t, config.Node)
	assert.True(t, config.SkipSSLValidation)
}

func TestConfigSet_Invalid(t *testing.T) {
	useConfigFile(t)

	_, err := execute(commands.NewConfigCommand(), "set", "colour", "blue")
	require.ErrorIs(t, err, constants.ErrUnknownConfigKey)

	_, err = execute(commands.NewConfigCommand(), "set", "output", "xml")
	require.ErrorIs(t, err, constants.ErrUnsupportedOutput)

	_, err = execute(commands.NewConfigCommand(), "set", "timeout", "soon")
	require.Error(t, err)

	_, err = execute(commands.NewConfigCommand(), "unset", "colour")
	require.ErrorIs(t, err, constants.ErrUnknownConfigKey)
}

func TestConfigShow_MasksToken(t *testing.T) {
	useConfigFile(t)
	viper.Set("node", "10.0.0.11")
	viper.Set("token", "secret-token")
	viper.Set("output", "json")

	out, err := execute(commands.NewConfigCommand(), "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "secret-token")

	var config commands.Config

	require.NoError(t, json.Unmarshal([]byte(out), &config))
	assert.Equal(t, "10.0.0.11", config.Node)
	assert.Equal(t, "********", config.Token)
}
