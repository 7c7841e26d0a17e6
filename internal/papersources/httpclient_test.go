package papersources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		client := NewHTTPClient(HTTPClientConfig{})
		assert.Equal(t, 30*time.Second, client.config.Timeout)
		assert.Equal(t, 10.0, client.config.RateLimit)
		assert.Equal(t, 10, client.config.BurstSize)
		assert.Equal(t, "Helixir-ResearchAssistant/1.0", client.config.UserAgent)
		assert.Equal(t, 30*time.Second, client.client.Timeout)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		client := NewHTTPClient(HTTPClientConfig{
			Timeout:   5 * time.Second,
			RateLimit: 2,
			BurstSize: 3,
			UserAgent: "Custom/2.0",
		})
		assert.Equal(t, 5*time.Second, client.config.Timeout)
		assert.Equal(t, 2.0, client.config.RateLimit)
		assert.Equal(t, 3, client.config.BurstSize)
		assert.Equal(t, "Custom/2.0", client.config.UserAgent)
	})
}

func TestHTTPClient_Do(t *testing.T) {
	t.Run("sets default user agent", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "TestAgent/1.0", r.Header.Get("User-Agent"))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewHTTPClient(HTTPClientConfig{RateLimit: 100, BurstSize: 100, UserAgent: "TestAgent/1.0"})
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("preserves caller user agent", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Caller/9", r.Header.Get("User-Agent"))
		}))
		defer server.Close()

		client := NewHTTPClient(HTTPClientConfig{RateLimit: 100, BurstSize: 100})
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "Caller/9")

		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
	})

	t.Run("sends API key header", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		}))
		defer server.Close()

		client := NewHTTPClient(HTTPClientConfig{RateLimit: 100, BurstSize: 100, APIKey: "secret", APIKeyHeader: "x-api-key"})
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
	})

	t.Run("does not retry server errors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewHTTPClient(HTTPClientConfig{RateLimit: 100, BurstSize: 100})
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("cancelled context fails before sending", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewHTTPClient(HTTPClientConfig{RateLimit: 100, BurstSize: 100})
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		_, err = client.Do(req)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int32(0), calls.Load())
	})
}

func TestHTTPClient_DoWithRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	// One token, refilled every 50ms.
	client := NewHTTPClient(HTTPClientConfig{RateLimit: 20, BurstSize: 1})

	start := time.Now()
	for i := 0; i < 3; i++ {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestHTTPClient_GetJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("decodes success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			_, _ = w.Write([]byte(`{"name":"openalex"}`))
		}))
		defer server.Close()

		var got payload
		client := NewHTTPClient(HTTPClientConfig{RateLimit: 100, BurstSize: 100})
		require.NoError(t, client.GetJSON(context.Background(), "Test", server.URL, &got))
		assert.Equal(t, "openalex", got.Name)
	})

	t.Run("non-200 becomes APIError with truncated body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(strings.Repeat("x", 500)))
		}))
		defer server.Close()

		client := NewHTTPClient(HTTPClientConfig{RateLimit: 100, BurstSize: 100})
		err := client.GetJSON(context.Background(), "Test", server.URL, &payload{})
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Test", apiErr.Source)
		assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
		assert.Len(t, apiErr.Message, 220)
		assert.Contains(t, err.Error(), "Test API error (status 429)")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		client := NewHTTPClient(HTTPClientConfig{RateLimit: 100, BurstSize: 100})
		err := client.GetJSON(context.Background(), "Test", server.URL, &payload{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decoding response")
	})

	t.Run("bad URL", func(t *testing.T) {
		client := NewHTTPClient(HTTPClientConfig{})
		err := client.GetJSON(context.Background(), "Test", "://bad", &payload{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "creating request")
	})
}
