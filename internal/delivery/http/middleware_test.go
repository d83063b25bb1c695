package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestIsAllowedOrigin(t *testing.T) {
	// the default policy trusts any extension install plus the local dashboard
	defaultOrigins := []string{"chrome-extension://*", "http://localhost:3000"}

	tests := []struct {
		name    string
		origin  string
		allowed []string
		want    bool
	}{
		{
			name:    "extension install matches wildcard",
			origin:  "chrome-extension://kbfnbcaeplbcioakkpcpgfkobkghlhen",
			allowed: defaultOrigins,
			want:    true,
		},
		{
			name:    "different install ID still matches",
			origin:  "chrome-extension://aapbdbdomjkkjkaonfhkkikfgjllcleb",
			allowed: defaultOrigins,
			want:    true,
		},
		{
			name:    "dashboard origin matches exactly",
			origin:  "http://localhost:3000",
			allowed: defaultOrigins,
			want:    true,
		},
		{
			name:    "dashboard on another port is rejected",
			origin:  "http://localhost:8081",
			allowed: defaultOrigins,
			want:    false,
		},
		{
			name:    "shop page origin is rejected",
			origin:  "https://www.zara.com",
			allowed: defaultOrigins,
			want:    false,
		},
		{
			name:    "extension scheme alone does not satisfy an exact entry",
			origin:  "chrome-extension://kbfnbcaeplbcioakkpcpgfkobkghlhen",
			allowed: []string{"chrome-extension://aapbdbdomjkkjkaonfhkkikfgjllcleb"},
			want:    false,
		},
		{
			name:    "missing origin header",
			origin:  "",
			allowed: defaultOrigins,
			want:    false,
		},
		{
			name:    "empty allow list rejects everything",
			origin:  "chrome-extension://kbfnbcaeplbcioakkpcpgfkobkghlhen",
			allowed: nil,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAllowedOrigin(tt.origin, tt.allowed); got != tt.want {
				t.Errorf("isAllowedOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(allowed []string) *gin.Engine {
		router := gin.New()
		router.Use(CORSMiddleware(allowed))
		router.GET("/stats", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	t.Run("trusted extension origin is echoed back", func(t *testing.T) {
		router := newRouter([]string{"chrome-extension://*"})
		origin := "chrome-extension://kbfnbcaeplbcioakkpcpgfkobkghlhen"

		req := httptest.NewRequest("GET", "/stats", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != origin {
			t.Errorf("Allow-Origin = %q, want the caller's origin %q", got, origin)
		}
		if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("Allow-Credentials missing")
		}
		if methods := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(methods, "PUT") {
			t.Errorf("Allow-Methods = %q, want PUT included for the filter-state endpoint", methods)
		}
	})

	t.Run("untrusted origin gets no CORS headers", func(t *testing.T) {
		router := newRouter([]string{"chrome-extension://*"})

		req := httptest.NewRequest("GET", "/stats", nil)
		req.Header.Set("Origin", "https://www.zara.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		// the response still flows; the browser enforces the missing header
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want empty for untrusted origin", got)
		}
	})

	t.Run("request without origin header passes through untouched", func(t *testing.T) {
		router := newRouter([]string{"chrome-extension://*"})

		req := httptest.NewRequest("GET", "/stats", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want empty without an Origin header", got)
		}
	})
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handlerHit := false
	router := gin.New()
	router.Use(CORSMiddleware([]string{"chrome-extension://*"}))
	router.PUT("/filter-state", func(c *gin.Context) {
		handlerHit = true
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest("OPTIONS", "/filter-state", nil)
	req.Header.Set("Origin", "chrome-extension://kbfnbcaeplbcioakkpcpgfkobkghlhen")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if handlerHit {
		t.Error("preflight reached the route handler, want short-circuit")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "chrome-extension://kbfnbcaeplbcioakkpcpgfkobkghlhen" {
		t.Errorf("Allow-Origin = %q, want the extension origin", got)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "PUT") {
		t.Errorf("Allow-Methods = %q, want PUT included", w.Header().Get("Access-Control-Allow-Methods"))
	}
	if w.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Error("Allow-Headers missing")
	}
	if w.Header().Get("Access-Control-Max-Age") == "" {
		t.Error("Max-Age missing")
	}
}
