package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

func TestPhysicalClient_ListHosts(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/v1/host", request.URL.Path)
		assert.Empty(t, request.URL.RawQuery)

		writeJSON(t, writer, http.StatusOK, map[string]interface{}{
			"data": []cdm.Host{
				{ID: "Host:::1", Hostname: "db01", OperatingSystem: "Linux"},
				{ID: "Host:::2", Hostname: "db02", OperatingSystem: "Linux"},
			},
			"total": 2,
		})
	}))
	defer server.Close()

	hosts, err := NewTestClient(t, server.URL).Physical().ListHosts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, hosts, 2)
	assert.Equal(t, "db02", hosts[1].Hostname)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestPhysicalClient_AddDeleteHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		registered []cdm.Host
		operation  func(cdm.PhysicalClient) (*cdm.ChangeResult, error)
		wantMethod string
		wantPath   string
		changed    bool
	}{
		{
			name: "add new host",
			operation: func(c cdm.PhysicalClient) (*cdm.ChangeResult, error) {
				return c.AddHost(context.Background(), "db01")
			},
			wantMethod: http.MethodPost,
			wantPath:   "/api/v1/host",
			changed:    true,
		},
		{
			name:       "add existing host",
			registered: []cdm.Host{{ID: "Host:::1", Hostname: "db01"}},
			operation: func(c cdm.PhysicalClient) (*cdm.ChangeResult, error) {
				return c.AddHost(context.Background(), "db01")
			},
		},
		{
			name:       "delete existing host",
			registered: []cdm.Host{{ID: "Host:::1", Hostname: "db01"}},
			operation: func(c cdm.PhysicalClient) (*cdm.ChangeResult, error) {
				return c.DeleteHost(context.Background(), "db01")
			},
			wantMethod: http.MethodDelete,
			wantPath:   "/api/v1/host/Host:::1",
			changed:    true,
		},
		{
			name:       "delete missing host",
			registered: []cdm.Host{{ID: "Host:::9", Hostname: "db01.example.com"}},
			operation: func(c cdm.PhysicalClient) (*cdm.ChangeResult, error) {
				return c.DeleteHost(context.Background(), "db01")
			},
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var mutated atomic.Bool

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				if request.Method == http.MethodGet {
					assert.Equal(t, "db01", request.URL.Query().Get("hostname"))
					writeJSON(t, writer, http.StatusOK, map[string]interface{}{"data": testCase.registered})

					return
				}

				assert.Equal(t, testCase.wantMethod, request.Method)
				assert.Equal(t, testCase.wantPath, request.URL.Path)

				if request.Method == http.MethodPost {
					var body map[string]interface{}

					err := json.NewDecoder(request.Body).Decode(&body)
					assert.NoError(t, err)
					assert.Equal(t, "db01", body["hostname"])
					assert.Equal(t, true, body["hasAgent"])
				}

				mutated.Store(true)
				writer.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			result, err := testCase.operation(NewTestClient(t, server.URL).Physical())
			require.NoError(t, err)
			assert.Equal(t, testCase.changed, result.Changed)
			assert.Equal(t, testCase.changed, mutated.Load())

			if !testCase.changed {
				assert.Contains(t, result.Message, "No change required.")
			}
		})
	}

	t.Run("empty hostname", func(t *testing.T) {
		t.Parallel()

		_, err := NewTestClient(t, "10.0.0.1").Physical().AddHost(context.Background(), "")
		require.ErrorIs(t, err, cdm.ErrNameRequired)
	})
}
