package commands_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// resetViper clears global configuration and the connection variables read
// by the client library.
func resetViper(t *testing.T) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	for _, name := range []string{
		"rubrik_cdm_node_ip", "rubrik_cdm_username", "rubrik_cdm_password", "rubrik_cdm_token",
		"RUBRIK_CDM_NODE_IP", "RUBRIK_CDM_USERNAME", "RUBRIK_CDM_PASSWORD", "RUBRIK_CDM_TOKEN",
	} {
		t.Setenv(name, "")
	}
}

// newTestCluster starts a fake cluster and points the CLI at it with JSON output.
func newTestCluster(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	resetViper(t)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	viper.Set("node", server.URL)
	viper.Set("token", "test-token")
	viper.Set("output", "json")

	return server
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func writeJSON(t *testing.T, writer http.ResponseWriter, status int, body interface{}) {
	t.Helper()

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	err := json.NewEncoder(writer).Encode(body)
	assert.NoError(t, err)
}
