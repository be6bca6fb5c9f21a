package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tbhttp "github.com/tablebase-io/tablebase/internal/http"
	"github.com/tablebase-io/tablebase/pkg/tablebase"
)

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (m *MockLogger) log(level, msg string, fields map[string]interface{}) {
	entry := map[string]interface{}{"level": level, "msg": msg}
	for k, v := range fields {
		entry[k] = v
	}

	m.logs = append(m.logs, entry)
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) { m.log("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields map[string]interface{})  { m.log("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields map[string]interface{})  { m.log("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields map[string]interface{}) { m.log("error", msg, fields) }

func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful GET request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/v0/appBase/Tasks/rec1", r.URL.Path)
			assert.Equal(t, "Bearer key123", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Equal(t, "tablebase-go", r.Header.Get("User-Agent"))

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "rec1"})
		}))
		defer server.Close()

		client := tbhttp.NewClient(server.URL, "key123")

		resp, err := client.Get(context.Background(), "/v0/appBase/Tasks/rec1", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"id":"rec1"}`, string(resp.Body))
	})

	t.Run("query parameters are encoded", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "100", r.URL.Query().Get("pageSize"))
			assert.Equal(t, []string{"Name", "Status"}, r.URL.Query()["fields[]"])

			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"records":[]}`))
		}))
		defer server.Close()

		client := tbhttp.NewClient(server.URL, "key123")

		query := url.Values{}
		query.Set("pageSize", "100")
		query.Add("fields[]", "Name")
		query.Add("fields[]", "Status")

		resp, err := client.Get(context.Background(), "/v0/appBase/Tasks", query)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("JSON body is marshaled with content type", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]interface{}{"fields": map[string]interface{}{"Name": "a"}}, body)

			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":"rec1"}`))
		}))
		defer server.Close()

		client := tbhttp.NewClient(server.URL, "key123")

		resp, err := client.Post(context.Background(), "/v0/appBase/Tasks", map[string]interface{}{
			"fields": map[string]interface{}{"Name": "a"},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("custom headers override defaults", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "custom-agent/1.0", r.Header.Get("User-Agent"))
			assert.Equal(t, "trace-1", r.Header.Get("X-Request-Id"))

			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := tbhttp.NewClient(server.URL, "key123", tbhttp.WithUserAgent("custom-agent/1.0"))

		_, err := client.Do(context.Background(), &tbhttp.Request{
			Method:  http.MethodGet,
			Path:    "/v0/appBase/Tasks",
			Headers: map[string]string{"X-Request-Id": "trace-1"},
		})
		require.NoError(t, err)
	})

	t.Run("error response surfaces an APIError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"NOT_FOUND","message":"record not found"}}`))
		}))
		defer server.Close()

		client := tbhttp.NewClient(server.URL, "key123")

		resp, err := client.Get(context.Background(), "/v0/appBase/Tasks/recMissing", nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		assert.True(t, tablebase.IsNotFound(err))

		var apiErr *tablebase.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "NOT_FOUND", apiErr.Type)
		assert.Equal(t, "record not found", apiErr.Message)
	})

	t.Run("missing API key sends no Authorization header", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))

			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"AUTHENTICATION_REQUIRED"}`))
		}))
		defer server.Close()

		client := tbhttp.NewClient(server.URL, "")

		_, err := client.Get(context.Background(), "/v0/appBase/Tasks", nil)
		require.Error(t, err)
		assert.True(t, tablebase.IsUnauthorized(err))
	})

	t.Run("debug logging records request and response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := tbhttp.NewClient(server.URL, "key123",
			tbhttp.WithLogger(logger),
			tbhttp.WithDebug(true))

		_, err := client.Get(context.Background(), "/v0/appBase/Tasks", nil)
		require.NoError(t, err)

		require.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
		assert.Equal(t, http.StatusOK, logger.logs[1]["status"])
	})
}

func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		call   func(client *tbhttp.Client) (*tbhttp.Response, error)
	}{
		{
			name:   "Get",
			method: http.MethodGet,
			call: func(client *tbhttp.Client) (*tbhttp.Response, error) {
				return client.Get(context.Background(), "/v0/appBase/Tasks", nil)
			},
		},
		{
			name:   "Post",
			method: http.MethodPost,
			call: func(client *tbhttp.Client) (*tbhttp.Response, error) {
				return client.Post(context.Background(), "/v0/appBase/Tasks", map[string]string{"k": "v"})
			},
		},
		{
			name:   "Put",
			method: http.MethodPut,
			call: func(client *tbhttp.Client) (*tbhttp.Response, error) {
				return client.Put(context.Background(), "/v0/appBase/Tasks", map[string]string{"k": "v"})
			},
		},
		{
			name:   "Patch",
			method: http.MethodPatch,
			call: func(client *tbhttp.Client) (*tbhttp.Response, error) {
				return client.Patch(context.Background(), "/v0/appBase/Tasks", map[string]string{"k": "v"})
			},
		},
		{
			name:   "Delete",
			method: http.MethodDelete,
			call: func(client *tbhttp.Client) (*tbhttp.Response, error) {
				return client.Delete(context.Background(), "/v0/appBase/Tasks")
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.method, r.Method)

				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{}`))
			}))
			defer server.Close()

			client := tbhttp.NewClient(server.URL, "key123")

			resp, err := tt.call(client)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("rate limit retried invisibly until success", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) <= 2 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"type":"RATE_LIMITED","message":"slow down"}}`))

				return
			}

			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":"rec1"}`))
		}))
		defer server.Close()

		client := tbhttp.NewClient(server.URL, "key123",
			tbhttp.WithRetryWait(time.Millisecond, 5*time.Millisecond))

		resp, err := client.Get(context.Background(), "/v0/appBase/Tasks/rec1", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("retry disabled surfaces the first rate limit", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"type":"RATE_LIMITED","message":"slow down"}}`))
		}))
		defer server.Close()

		client := tbhttp.NewClient(server.URL, "key123", tbhttp.WithRetryDisabled(true))

		_, err := client.Get(context.Background(), "/v0/appBase/Tasks", nil)
		require.Error(t, err)
		assert.True(t, tablebase.IsRateLimited(err))
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("server errors are not retried", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"type":"SERVER_ERROR","message":"boom"}}`))
		}))
		defer server.Close()

		client := tbhttp.NewClient(server.URL, "key123")

		_, err := client.Get(context.Background(), "/v0/appBase/Tasks", nil)
		require.Error(t, err)
		assert.Equal(t, int32(1), attempts.Load())

		var apiErr *tablebase.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "SERVER_ERROR", apiErr.Type)
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":{"type":"INVALID_REQUEST","message":"bad formula"}}`))
		}))
		defer server.Close()

		client := tbhttp.NewClient(server.URL, "key123")

		_, err := client.Get(context.Background(), "/v0/appBase/Tasks", nil)
		require.Error(t, err)
		assert.True(t, tablebase.IsInvalidRequest(err))
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("context cancellation stops the retry loop", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"RATE_LIMITED"}`))
		}))
		defer server.Close()

		client := tbhttp.NewClient(server.URL, "key123",
			tbhttp.WithRetryWait(50*time.Millisecond, 100*time.Millisecond))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := client.Get(ctx, "/v0/appBase/Tasks", nil)
		require.Error(t, err)
		assert.False(t, tablebase.IsRateLimited(err))
	})
}
