package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/inkwell/pkg/logging"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// TestChain tests middleware composition.
func TestChain(t *testing.T) {
	tests := []struct {
		name              string
		numMiddleware     int
		expectedCallOrder []string
	}{
		{name: "no middleware", numMiddleware: 0, expectedCallOrder: []string{"handler"}},
		{name: "single middleware", numMiddleware: 1, expectedCallOrder: []string{"m1", "handler"}},
		{name: "three middleware", numMiddleware: 3, expectedCallOrder: []string{"m1", "m2", "m3", "handler"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var callOrder []string

			middlewares := make([]func(http.Handler) http.Handler, tt.numMiddleware)
			for i := range tt.numMiddleware {
				name := "m" + string(rune('1'+i))
				middlewares[i] = func(next http.Handler) http.Handler {
					return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						callOrder = append(callOrder, name)
						next.ServeHTTP(w, r)
					})
				}
			}

			handler := Chain(middlewares...)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				callOrder = append(callOrder, "handler")
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

			if strings.Join(callOrder, ",") != strings.Join(tt.expectedCallOrder, ",") {
				t.Errorf("expected call order %v, got %v", tt.expectedCallOrder, callOrder)
			}
		})
	}
}

// TestRequestID tests request ID assignment and propagation.
func TestRequestID(t *testing.T) {
	existing := uuid.NewString()

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "assigns new id", incoming: "", keep: false},
		{name: "keeps valid id", incoming: existing, keep: true},
		{name: "replaces malformed id", incoming: "not-a-uuid", keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = logging.RequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if seen == "" {
				t.Fatal("request ID not stored in context")
			}
			if got := w.Header().Get(RequestIDHeader); got != seen {
				t.Errorf("response header %q does not match context %q", got, seen)
			}
			if tt.keep && seen != tt.incoming {
				t.Errorf("expected incoming ID %q to be kept, got %q", tt.incoming, seen)
			}
			if !tt.keep && seen == tt.incoming {
				t.Errorf("expected ID %q to be replaced", tt.incoming)
			}
		})
	}
}

// TestRecovery tests that panics become 500 responses.
func TestRecovery(t *testing.T) {
	logger := zerolog.Nop()
	handler := Recovery(&logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "INTERNAL_ERROR") {
		t.Errorf("expected INTERNAL_ERROR body, got %s", w.Body.String())
	}
}

// TestLoggerCapturesStatus tests the status recorded by the logging wrapper.
func TestLoggerCapturesStatus(t *testing.T) {
	var buf strings.Builder
	logger := zerolog.New(&buf)

	handler := Chain(RequestID(), Logger(&logger))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/sets", nil))

	out := buf.String()
	for _, want := range []string{`"status":418`, `"path":"/api/v1/sets"`, `"message":"inside"`, `"request_id"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}

// TestRequestIDReachesContextLogger tests that loggers taken from the request
// context carry the request ID.
func TestRequestIDReachesContextLogger(t *testing.T) {
	var buf strings.Builder
	logger := zerolog.New(&buf)
	id := uuid.NewString()

	handler := Chain(RequestID(), Logger(&logger))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info().Msg("handled")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collection", nil)
	req.Header.Set(RequestIDHeader, id)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, `"message":"handled"`) {
			found = true
			if !strings.Contains(line, `"request_id":"`+id+`"`) {
				t.Errorf("handler log missing request ID: %s", line)
			}
		}
	}
	if !found {
		t.Fatalf("handler log not written to the request logger: %s", buf.String())
	}
}

// TestResponseWriterFlush tests that Flush reaches the underlying writer.
func TestResponseWriterFlush(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	rw.Flush()
	if !rec.Flushed {
		t.Error("expected underlying recorder to be flushed")
	}
	if _, _, err := rw.Hijack(); err == nil {
		t.Error("expected hijack to fail on a recorder")
	}
}

// TestAuth tests API key enforcement.
func TestAuth(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name       string
		apiKey     string
		method     string
		path       string
		header     string
		bearer     string
		wantStatus int
	}{
		{name: "no key configured", apiKey: "", method: http.MethodPost, path: "/api/v1/refresh", wantStatus: http.StatusOK},
		{name: "read is public", apiKey: "secret", method: http.MethodGet, path: "/api/v1/cards", wantStatus: http.StatusOK},
		{name: "write without key", apiKey: "secret", method: http.MethodPut, path: "/api/v1/collection/TFC-001", wantStatus: http.StatusUnauthorized},
		{name: "write with wrong key", apiKey: "secret", method: http.MethodPost, path: "/api/v1/refresh", header: "nope", wantStatus: http.StatusUnauthorized},
		{name: "write with header key", apiKey: "secret", method: http.MethodPost, path: "/api/v1/refresh", header: "secret", wantStatus: http.StatusOK},
		{name: "write with bearer key", apiKey: "secret", method: http.MethodDelete, path: "/api/v1/refresh", bearer: "secret", wantStatus: http.StatusOK},
		{name: "public path", apiKey: "secret", method: http.MethodPost, path: "/health", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Auth(DefaultAuthConfig(tt.apiKey), &logger)(okHandler)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

// TestCORS tests CORS headers and preflight handling.
func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		method     string
		wantOrigin string
		wantStatus int
	}{
		{name: "wildcard", origins: []string{"*"}, origin: "http://a.example", method: http.MethodGet, wantOrigin: "*", wantStatus: http.StatusOK},
		{name: "listed origin", origins: []string{"http://a.example"}, origin: "http://a.example", method: http.MethodGet, wantOrigin: "http://a.example", wantStatus: http.StatusOK},
		{name: "unlisted origin", origins: []string{"http://a.example"}, origin: "http://b.example", method: http.MethodGet, wantOrigin: "", wantStatus: http.StatusOK},
		{name: "preflight", origins: []string{"*"}, origin: "http://a.example", method: http.MethodOptions, wantOrigin: "*", wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultCORSConfig()
			config.AllowedOrigins = tt.origins
			handler := CORS(config)(okHandler)

			req := httptest.NewRequest(tt.method, "/api/v1/sets", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("expected allow origin %q, got %q", tt.wantOrigin, got)
			}
		})
	}
}

// TestRateLimiter tests per-IP request counting.
func TestRateLimiter(t *testing.T) {
	logger := zerolog.Nop()
	rl := NewRateLimiter(3, time.Minute, &logger)

	for i := range 3 {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("fourth request should be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other IPs should have their own budget")
	}
	if got := rl.Remaining("10.0.0.2"); got != 2 {
		t.Errorf("expected 2 remaining, got %d", got)
	}
}

// TestRateLimitMiddleware tests the 429 response and headers.
func TestRateLimitMiddleware(t *testing.T) {
	logger := zerolog.Nop()
	handler := RateLimit(NewRateLimiter(1, time.Minute, &logger))(okHandler)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cards", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	if w := send(); w.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", w.Code)
	}
	w := send()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After 60, got %q", w.Header().Get("Retry-After"))
	}

	t.Run("disabled", func(t *testing.T) {
		h := RateLimit(NewRateLimiter(0, time.Minute, &logger))(okHandler)
		for range 5 {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			if w.Code != http.StatusOK {
				t.Fatalf("expected disabled limiter to pass, got %d", w.Code)
			}
		}
	})
}
