package response

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agentstation/inkwell/pkg/errors"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

// TestJSON tests the envelope written by the success helpers.
func TestJSON(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(w http.ResponseWriter)
		status int
	}{
		{name: "OK", fn: func(w http.ResponseWriter) { OK(w, map[string]int{"count": 42}) }, status: http.StatusOK},
		{name: "Accepted", fn: func(w http.ResponseWriter) { Accepted(w, map[string]string{"state": "loading"}) }, status: http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.fn(w)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected Content-Type=application/json, got %s", ct)
			}
			resp := decode(t, w)
			if resp.Data == nil {
				t.Error("expected Data to be set")
			}
			if resp.Error != nil {
				t.Error("expected Error to be nil")
			}
		})
	}
}

// TestErrorHelpers tests all error response helpers.
func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(w http.ResponseWriter)
		status int
		code   string
	}{
		{"BadRequest", func(w http.ResponseWriter) { BadRequest(w, "bad", "") }, http.StatusBadRequest, "BAD_REQUEST"},
		{"Unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "no key", "") }, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"NotFound", func(w http.ResponseWriter) { NotFound(w, "missing", "") }, http.StatusNotFound, "NOT_FOUND"},
		{"MethodNotAllowed", func(w http.ResponseWriter) { MethodNotAllowed(w, "PATCH") }, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{"Conflict", func(w http.ResponseWriter) { Conflict(w, "busy", "") }, http.StatusConflict, "CONFLICT"},
		{"RateLimited", func(w http.ResponseWriter) { RateLimited(w, "slow down") }, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"InternalError", func(w http.ResponseWriter) { InternalError(w, fmt.Errorf("secret")) }, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"ServiceUnavailable", func(w http.ResponseWriter) { ServiceUnavailable(w, "down") }, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"GatewayTimeout", func(w http.ResponseWriter) { GatewayTimeout(w, "slow") }, http.StatusGatewayTimeout, "TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.fn(w)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			resp := decode(t, w)
			if resp.Error == nil {
				t.Fatal("expected Error to be set")
			}
			if resp.Error.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, resp.Error.Code)
			}
		})
	}
}

// TestInternalErrorHidesDetails tests that error text never reaches clients.
func TestInternalErrorHidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	InternalError(w, fmt.Errorf("database password is hunter2"))
	if body := w.Body.String(); strings.Contains(body, "hunter2") {
		t.Errorf("internal error leaked: %s", body)
	}
}

// TestErrorFromType tests mapping of typed errors to status codes.
func TestErrorFromType(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", errors.NewNotFoundError("card", "TFC-999"), http.StatusNotFound, "NOT_FOUND"},
		{"validation", errors.NewValidationError("ink", "orange", "unknown ink color"), http.StatusBadRequest, "BAD_REQUEST"},
		{"remote rate limited", &errors.APIError{Source: "lorcast", StatusCode: 429}, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"remote down", &errors.APIError{Source: "lorcast", StatusCode: 503}, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"remote bad request", &errors.APIError{Source: "lorcast", StatusCode: 400}, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "TIMEOUT"},
		{"timeout", errors.NewTimeoutError("refresh", "30s"), http.StatusGatewayTimeout, "TIMEOUT"},
		{"canceled", errors.ErrCanceled, http.StatusConflict, "CONFLICT"},
		{"refresh failed", &errors.RefreshError{Reason: "parse", Err: fmt.Errorf("bad json")}, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"no remote", errors.NewConfigError("remote", "remote source cannot list set counts", nil), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"wrapped not found", fmt.Errorf("lookup: %w", errors.NewNotFoundError("set", "X")), http.StatusNotFound, "NOT_FOUND"},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFromType(w, tt.err)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			if resp := decode(t, w); resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("expected code %s, got %+v", tt.code, resp.Error)
			}
		})
	}
}
