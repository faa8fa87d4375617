package httpx_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/omnik-labs/marketplace/pkg/httpx"
)

func passthrough(next http.Handler) http.Handler { return next }

func newRouter(cfg httpx.ServerConfig) http.Handler {
	r := httpx.NewRouter(cfg, passthrough, passthrough, passthrough, passthrough)
	r.Get("/ledger", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]int{"item_count": 0})
	})
	r.Post("/items/{id}/purchase", func(w http.ResponseWriter, r *http.Request) {
		var tooLarge *http.MaxBytesError
		if _, err := io.ReadAll(r.Body); errors.As(err, &tooLarge) {
			httpx.JSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestNewRouter_SecurityHeaders(t *testing.T) {
	h := newRouter(httpx.ServerConfig{ServiceName: "marketplace"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ledger", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	checks := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'self'",
	}
	for header, expected := range checks {
		if got := rr.Header().Get(header); got != expected {
			t.Errorf("%s: got %q, want %q", header, got, expected)
		}
	}
	if rr.Header().Get("Permissions-Policy") == "" {
		t.Error("expected Permissions-Policy header")
	}
}

func TestNewRouter_RateLimitPerIP(t *testing.T) {
	h := newRouter(httpx.ServerConfig{RateLimitPerMinute: 2})

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/ledger", http.NoBody)
		req.RemoteAddr = "203.0.113.7:5000"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, want [200 200 429]", codes)
	}

	// Another client keeps its own budget.
	req := httptest.NewRequest(http.MethodGet, "/ledger", http.NoBody)
	req.RemoteAddr = "203.0.113.8:5000"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("second client got %d", rr.Code)
	}
}

func TestNewRouter_CORS(t *testing.T) {
	tests := []struct {
		name            string
		allowed         string
		origin          string
		wantOrigin      string
		wantCredentials string
	}{
		{"listed origin", "https://app.omnik.example, http://localhost:3000", "http://localhost:3000", "http://localhost:3000", "true"},
		{"unlisted origin", "https://app.omnik.example", "https://evil.example", "", ""},
		{"wildcard has no credentials", "*", "https://anyone.example", "*", ""},
		{"empty list means wildcard", " , ", "https://anyone.example", "*", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newRouter(httpx.ServerConfig{CORSAllowedOrigins: tt.allowed})
			req := httptest.NewRequest(http.MethodGet, "/ledger", http.NoBody)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCredentials {
				t.Errorf("Allow-Credentials = %q, want %q", got, tt.wantCredentials)
			}
		})
	}
}

func TestNewRouter_BodyLimit(t *testing.T) {
	h := newRouter(httpx.ServerConfig{})

	small := strings.NewReader(`{"payment":"2020000000000000000"}`)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/items/1/purchase", small))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	huge := strings.NewReader(`{"payment":"` + strings.Repeat("9", 11<<20) + `"}`)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/items/1/purchase", huge))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
}

func TestRequestBodyLimit_ExceedsLimit(t *testing.T) {
	const limit int64 = 10

	var readErr error
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, limit+5)
		_, readErr = r.Body.Read(buf)
		if readErr != nil {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	h := httpx.RequestBodyLimit(limit)(inner)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", int(limit)+1))))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
}

func TestNewServer_Timeouts(t *testing.T) {
	srv := httpx.NewServer(":8080", http.NotFoundHandler())
	if srv.ReadTimeout == 0 || srv.WriteTimeout == 0 || srv.IdleTimeout == 0 {
		t.Fatalf("server must set timeouts: %+v", srv)
	}
	if srv.MaxHeaderBytes != 1<<20 {
		t.Fatalf("MaxHeaderBytes = %d", srv.MaxHeaderBytes)
	}
}
