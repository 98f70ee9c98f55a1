package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/inkwell/pkg/constants"
	"github.com/agentstation/inkwell/pkg/errors"
)

func TestAuthenticators(t *testing.T) {
	tests := []struct {
		name   string
		scheme string
		check  func(t *testing.T, req *http.Request)
	}{
		{
			name:   "bearer",
			scheme: "bearer",
			check: func(t *testing.T, req *http.Request) {
				assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
			},
		},
		{
			name:   "custom header",
			scheme: "header:X-Api-Key",
			check: func(t *testing.T, req *http.Request) {
				assert.Equal(t, "secret", req.Header.Get("X-Api-Key"))
				assert.Empty(t, req.Header.Get("Authorization"))
			},
		},
		{
			name:   "query parameter",
			scheme: "query:key",
			check: func(t *testing.T, req *http.Request) {
				assert.Equal(t, "secret", req.URL.Query().Get("key"))
				assert.Equal(t, "1", req.URL.Query().Get("page"))
			},
		},
		{
			name:   "unknown scheme",
			scheme: "header:",
			check: func(t *testing.T, req *http.Request) {
				assert.Empty(t, req.Header)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, _ := url.Parse("https://example.com/sets?page=1")
			req := &http.Request{URL: u, Header: make(http.Header)}
			ForScheme(tt.scheme).Apply(req, "secret")
			tt.check(t, req)
		})
	}
}

func TestGetJSON(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{"results":[{"code":"1"}]}`))
	}))
	defer srv.Close()

	var out struct {
		Results []struct {
			Code string `json:"code"`
		} `json:"results"`
	}
	c := New("test")
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, &out))
	require.Len(t, out.Results, 1)
	assert.Equal(t, "1", out.Results[0].Code)
	assert.Equal(t, constants.UserAgent, gotUA)
	assert.Equal(t, "application/json", gotAccept)
}

func TestGetJSONErrors(t *testing.T) {
	t.Run("server error is unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		var out map[string]any
		err := New("test").GetJSON(context.Background(), srv.URL, &out)
		require.Error(t, err)
		assert.True(t, errors.IsRemoteUnavailable(err))

		var apiErr *errors.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
		assert.Equal(t, "down for maintenance", apiErr.Message)
	})

	t.Run("rate limited", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		var out map[string]any
		err := New("test").GetJSON(context.Background(), srv.URL, &out)
		assert.True(t, errors.IsRateLimited(err))
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"results":`))
		}))
		defer srv.Close()

		var out map[string]any
		err := New("test").GetJSON(context.Background(), srv.URL, &out)
		var parseErr *errors.ParseError
		assert.True(t, errors.As(err, &parseErr))
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		var out map[string]any
		err := New("test").GetJSON(context.Background(), addr, &out)
		assert.True(t, errors.IsRemoteUnavailable(err))
	})

	t.Run("canceled context", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var out map[string]any
		err := New("test").GetJSON(ctx, srv.URL, &out)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestAPIKeyApplied(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var out map[string]any
	c := New("test", WithAPIKey(&BearerAuth{}, "k"), WithUserAgent("custom"))
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, &out))
	assert.Equal(t, "Bearer k", got)
}
