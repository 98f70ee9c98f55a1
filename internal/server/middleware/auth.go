package middleware

import (
	"crypto/subtle"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/inkwell/pkg/logging"
)

// AuthConfig holds API key configuration.
type AuthConfig struct {
	APIKey      string
	HeaderName  string
	PublicPaths []string
	// ReadOnlyPublic lets GET, HEAD and OPTIONS through without a key, so
	// only requests that change state need one.
	ReadOnlyPublic bool
}

// DefaultAuthConfig returns the default API key configuration.
func DefaultAuthConfig(apiKey string) AuthConfig {
	return AuthConfig{
		APIKey:         apiKey,
		HeaderName:     "X-API-Key",
		PublicPaths:    []string{"/health", "/api/v1/health", "/api/v1/ready", "/api/v1/openapi.json", "/api/v1/openapi.yaml"},
		ReadOnlyPublic: true,
	}
}

// Auth rejects requests without the configured API key. An empty key
// disables the check.
func Auth(config AuthConfig, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.APIKey == "" || slices.Contains(config.PublicPaths, r.URL.Path) ||
				(config.ReadOnlyPublic && isReadOnly(r.Method)) {
				next.ServeHTTP(w, r)
				return
			}

			key := extractAPIKey(r, config.HeaderName)
			if subtle.ConstantTimeCompare([]byte(key), []byte(config.APIKey)) != 1 {
				logger.Warn().
					Str("request_id", logging.RequestID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bool("key_provided", key != "").
					Msg("Authentication failed")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"data":null,"error":{"code":"UNAUTHORIZED","message":"Invalid or missing API key","details":"Provide a valid API key in the ` + config.HeaderName + ` header"}}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isReadOnly(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// extractAPIKey reads the key from the custom header, then from
// "Authorization: Bearer <key>".
func extractAPIKey(r *http.Request, header string) string {
	if key := r.Header.Get(header); key != "" {
		return key
	}
	if auth := r.Header.Get("Authorization"); auth != "" {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
