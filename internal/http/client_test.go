package http_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/cdm-client/internal/auth"
	"github.com/fivetwenty-io/cdm-client/internal/constants"
	cdmhttp "github.com/fivetwenty-io/cdm-client/internal/http"
	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}

func tokenCredentials(t *testing.T) *auth.Credentials {
	t.Helper()

	creds, err := auth.NewCredentials("", "", "test-token")
	require.NoError(t, err)

	return creds
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful authenticated request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/v1/cluster/me/version", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.NotEmpty(t, request.Header.Get("User-Agent"))

			_ = json.NewEncoder(writer).Encode(map[string]string{"version": "5.3.0-p1"})
		}))
		defer server.Close()

		client := cdmhttp.NewClient(server.URL, tokenCredentials(t))

		resp, err := client.Get(context.Background(), cdm.APIVersionV1, "/cluster/me/version", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result map[string]string

		err = json.Unmarshal(resp.Body, &result)
		require.NoError(t, err)
		assert.Equal(t, "5.3.0-p1", result["version"])
	})

	t.Run("basic authentication", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:secret"))
			assert.Equal(t, expected, request.Header.Get("Authorization"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		creds, err := auth.NewCredentials("admin", "secret", "")
		require.NoError(t, err)

		client := cdmhttp.NewClient(server.URL, creds)

		_, err = client.Get(context.Background(), cdm.APIVersionInternal, "/cluster/me/node", nil)
		require.NoError(t, err)
	})

	t.Run("unauthenticated request sends bare headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Empty(t, request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := cdmhttp.NewClient(server.URL, tokenCredentials(t))

		_, err := client.Do(context.Background(), &cdmhttp.Request{
			Method:   "GET",
			Version:  cdm.APIVersionInternal,
			Path:     "/cluster/me/discover",
			SkipAuth: true,
		})
		require.NoError(t, err)
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/v1/host", request.URL.Path)
			assert.Equal(t, "hostname=db01", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := cdmhttp.NewClient(server.URL, tokenCredentials(t))

		resp, err := client.Get(context.Background(), cdm.APIVersionV1, "/host", url.Values{"hostname": []string{"db01"}})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("query string in the endpoint is preserved", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/internal/cluster/me/bootstrap", request.URL.Path)
			assert.Equal(t, "7", request.URL.Query().Get("request_id"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := cdmhttp.NewClient(server.URL, nil)

		_, err := client.Do(context.Background(), &cdmhttp.Request{
			Method:   "GET",
			Version:  cdm.APIVersionInternal,
			Path:     "/cluster/me/bootstrap?request_id=7",
			SkipAuth: true,
		})
		require.NoError(t, err)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]interface{}

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "db01", body["hostname"])

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := cdmhttp.NewClient(server.URL, tokenCredentials(t))

		resp, err := client.Post(context.Background(), cdm.APIVersionV1, "/host", map[string]interface{}{"hostname": "db01", "hasAgent": true})
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(writer).Encode(map[string]interface{}{
				"errorType": "user_error",
				"message":   "Cannot bootstrap from an already bootstrapped node",
				"cause":     nil,
			})
		}))
		defer server.Close()

		client := cdmhttp.NewClient(server.URL, nil)

		resp, err := client.Do(context.Background(), &cdmhttp.Request{
			Method:   "POST",
			Version:  cdm.APIVersionInternal,
			Path:     "/cluster/me/bootstrap",
			Body:     map[string]string{},
			SkipAuth: true,
		})
		require.Error(t, err)
		assert.Equal(t, 422, resp.StatusCode)

		apiErr := &cdm.APICallError{}
		ok := errors.As(err, &apiErr)
		require.True(t, ok)
		assert.Equal(t, 422, apiErr.StatusCode)
		assert.Equal(t, "Cannot bootstrap from an already bootstrapped node", apiErr.Message)
		assert.True(t, cdm.IsAlreadyBootstrapped(err))
		assert.False(t, cdm.IsConnectionRefused(err))
	})

	t.Run("plain text error body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			http.Error(writer, "internal failure", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := cdmhttp.NewClient(server.URL, tokenCredentials(t))

		_, err := client.Get(context.Background(), cdm.APIVersionV1, "/cluster/me", nil)
		require.Error(t, err)

		apiErr := &cdm.APICallError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "internal failure", apiErr.Message)
	})

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		serverURL := server.URL
		server.Close()

		client := cdmhttp.NewClient(serverURL, nil)

		_, err := client.Do(context.Background(), &cdmhttp.Request{
			Method:   "GET",
			Version:  cdm.APIVersionInternal,
			Path:     "/cluster/me/discover",
			SkipAuth: true,
		})
		require.Error(t, err)

		apiErr := &cdm.APICallError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Zero(t, apiErr.StatusCode)
		assert.True(t, cdm.IsConnectionRefused(err))
	})

	t.Run("invalid endpoint is rejected before sending", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		client := cdmhttp.NewClient(server.URL, tokenCredentials(t))

		_, err := client.Get(context.Background(), cdm.APIVersionV1, "cluster/me", nil)
		require.ErrorIs(t, err, cdm.ErrEndpointLeadingSlash)

		_, err = client.Get(context.Background(), "v3", "/cluster/me", nil)
		require.ErrorIs(t, err, cdm.ErrInvalidAPIVersion)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("restricted api versions", func(t *testing.T) {
		t.Parallel()

		client := cdmhttp.NewClient("node.example.com", nil, cdmhttp.WithAPIVersions(cdm.BootstrapAPIVersions...))

		_, err := client.Do(context.Background(), &cdmhttp.Request{
			Method:   "GET",
			Version:  cdm.APIVersionV2,
			Path:     "/cluster/me",
			SkipAuth: true,
		})
		require.ErrorIs(t, err, cdm.ErrInvalidParameter)
	})

	t.Run("authenticated call without credentials", func(t *testing.T) {
		t.Parallel()

		client := cdmhttp.NewClient("node.example.com", nil)

		_, err := client.Get(context.Background(), cdm.APIVersionV1, "/cluster/me", nil)
		require.ErrorIs(t, err, cdm.ErrNotAuthenticated)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			select {
			case <-request.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()

		client := cdmhttp.NewClient(server.URL, tokenCredentials(t))

		_, err := client.Do(context.Background(), &cdmhttp.Request{
			Method:  "GET",
			Version: cdm.APIVersionV1,
			Path:    "/cluster/me",
			Timeout: 50 * time.Millisecond,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := cdmhttp.NewClient(server.URL, tokenCredentials(t))

		resp, err := client.Do(context.Background(), &cdmhttp.Request{
			Method:  "GET",
			Version: cdm.APIVersionV1,
			Path:    "/cluster/me",
			Headers: map[string]string{
				"X-Custom-Header": "custom-value",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("custom headers cannot replace credentials", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
			assert.Equal(t, constants.UserAgent, request.Header.Get("User-Agent"))
			assert.Equal(t, "req-42", request.Header.Get("X-Request-Id"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := cdmhttp.NewClient(server.URL, tokenCredentials(t))

		_, err := client.Do(context.Background(), &cdmhttp.Request{
			Method:  "GET",
			Version: cdm.APIVersionV1,
			Path:    "/cluster/me",
			Headers: map[string]string{
				"Authorization": "Bearer forged",
				"User-Agent":    "other-agent",
				"X-Request-Id":  "req-42",
			},
		})
		require.NoError(t, err)
	})

	t.Run("request timeout wins over client timeout", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			time.Sleep(100 * time.Millisecond)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := cdmhttp.NewClient(server.URL, tokenCredentials(t), cdmhttp.WithTimeout(20*time.Millisecond))

		_, err := client.Do(context.Background(), &cdmhttp.Request{
			Method:  "GET",
			Version: cdm.APIVersionV1,
			Path:    "/cluster/me",
			Timeout: 5 * time.Second,
		})
		require.NoError(t, err)

		_, err = client.Get(context.Background(), cdm.APIVersionV1, "/cluster/me", nil)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := cdmhttp.NewClient(server.URL, tokenCredentials(t), cdmhttp.WithLogger(logger), cdmhttp.WithDebug(true))

		_, err := client.Get(context.Background(), cdm.APIVersionV1, "/cluster/me", nil)
		require.NoError(t, err)

		// Should have logged request and response
		assert.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])

		for _, entry := range logger.logs {
			fields, ok := entry["fields"].(map[string]interface{})
			require.True(t, ok)
			assert.NotContains(t, fields, "Authorization")
		}
	})
}

func TestNormalizeBaseURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://10.0.0.1", cdmhttp.NormalizeBaseURL("10.0.0.1"))
	assert.Equal(t, "https://cdm.example.com", cdmhttp.NormalizeBaseURL("cdm.example.com/"))
	assert.Equal(t, "http://127.0.0.1:8080", cdmhttp.NormalizeBaseURL("http://127.0.0.1:8080"))

	client := cdmhttp.NewClient("10.0.0.1", nil)
	assert.Equal(t, "https://10.0.0.1/api/internal/cluster/me", client.URL(cdm.APIVersionInternal, "/cluster/me", nil))
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		fn     func(*cdmhttp.Client, context.Context) (*cdmhttp.Response, error)
	}{
		{
			name:   "GET",
			method: "GET",
			fn: func(c *cdmhttp.Client, ctx context.Context) (*cdmhttp.Response, error) {
				return c.Get(ctx, cdm.APIVersionV1, "/test", nil)
			},
		},
		{
			name:   "POST",
			method: "POST",
			fn: func(c *cdmhttp.Client, ctx context.Context) (*cdmhttp.Response, error) {
				return c.Post(ctx, cdm.APIVersionV1, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PUT",
			method: "PUT",
			fn: func(c *cdmhttp.Client, ctx context.Context) (*cdmhttp.Response, error) {
				return c.Put(ctx, cdm.APIVersionV1, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PATCH",
			method: "PATCH",
			fn: func(c *cdmhttp.Client, ctx context.Context) (*cdmhttp.Response, error) {
				return c.Patch(ctx, cdm.APIVersionV1, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "DELETE",
			method: "DELETE",
			fn: func(c *cdmhttp.Client, ctx context.Context) (*cdmhttp.Response, error) {
				return c.Delete(ctx, cdm.APIVersionV1, "/test")
			},
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, "/api/v1/test", request.URL.Path)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := cdmhttp.NewClient(server.URL, tokenCredentials(t))
			resp, err := testCase.fn(client, context.Background())
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("no transport retries by default", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := cdmhttp.NewClient(server.URL, tokenCredentials(t))

		resp, err := client.Get(context.Background(), cdm.APIVersionV1, "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 503, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := cdmhttp.NewClient(server.URL, tokenCredentials(t), cdmhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), cdm.APIVersionV1, "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("returns the last response when retries run out", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := cdmhttp.NewClient(server.URL, tokenCredentials(t), cdmhttp.WithRetryConfig(2, 10*time.Millisecond, 20*time.Millisecond))

		resp, err := client.Get(context.Background(), cdm.APIVersionV1, "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 502, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)

			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := cdmhttp.NewClient(server.URL, tokenCredentials(t), cdmhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), cdm.APIVersionV1, "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load()) // Should not retry
	})
}
