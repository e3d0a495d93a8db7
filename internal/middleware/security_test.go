package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		isDev       bool
		checkHeader string
		wantValue   string
	}{
		{"X-Content-Type-Options is set", false, "X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options is set", false, "X-Frame-Options", "DENY"},
		{"Referrer-Policy is set", false, "Referrer-Policy", "strict-origin-when-cross-origin"},
		{"CSP is set", false, "Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
		{"HSTS is set in production", false, "Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
		{"HSTS is NOT set in development", true, "Strict-Transport-Security", ""},
		{"Cache-Control is set", false, "Cache-Control", "no-store"},
		{"Cross-Origin-Opener-Policy is set", false, "Cross-Origin-Opener-Policy", "same-origin"},
		{"Cross-Origin-Resource-Policy is set", false, "Cross-Origin-Resource-Policy", "same-origin"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := Security(SecurityConfig{IsDevelopment: tt.isDev})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantValue, rec.Header().Get(tt.checkHeader))
		})
	}
}

func TestMaxBodySize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		maxBytes      int64
		contentLength int64
		body          string
		wantStatus    int
	}{
		{"small body allowed", 1024, 10, "small body", http.StatusOK},
		{"content-length exceeds limit", 10, 100, strings.Repeat("x", 100), http.StatusRequestEntityTooLarge},
		{"unknown length cut off while reading", 10, -1, strings.Repeat("x", 100), http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := MaxBodySize(tt.maxBytes)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if _, err := io.Copy(io.Discard, r.Body); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestMaxBodySize_ErrorBody(t *testing.T) {
	t.Parallel()

	handler := MaxBodySize(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too big"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PAYLOAD_TOO_LARGE", body["code"])
}

func TestRecoverer(t *testing.T) {
	t.Parallel()

	handler := Recoverer(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error","code":"INTERNAL_ERROR"}`, rec.Body.String())
}
