package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"twenty-one-go/internal/auth"
	"twenty-one-go/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() config.Config {
	return config.Config{JWTSecret: "s3cret", JWTIssuer: "twenty-one", JWTTTL: time.Hour, AppEnv: "production"}
}

func whoami(cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/me", RequireAuth(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt64(ContextUserID)})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	cfg := testConfig()
	tok, err := auth.GenerateToken(7, "alice", cfg)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	r := whoami(cfg)

	tests := []struct {
		name string
		prep func(*http.Request)
		want int
	}{
		{"no token", func(*http.Request) {}, http.StatusUnauthorized},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: auth.AuthCookieName, Value: tok}) }, http.StatusOK},
		{"cookie wins over bad header", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: auth.AuthCookieName, Value: tok})
			r.Header.Set("Authorization", "Bearer nope")
		}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.prep(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestCORS(t *testing.T) {
	cfg := testConfig()
	cfg.WSAllowedOrigins = []string{"https://tables.example"}

	tests := []struct {
		name   string
		env    string
		origin string
		allow  bool
	}{
		{"configured origin", "production", "https://tables.example", true},
		{"loopback in production", "production", "http://localhost:5173", false},
		{"loopback in development", "development", "http://localhost:5173", true},
		{"unknown origin", "development", "https://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg
			c.AppEnv = tt.env
			req := httptest.NewRequest(http.MethodOptions, "/me", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			whoami(c).ServeHTTP(w, req)
			if w.Code != http.StatusNoContent {
				t.Fatalf("preflight status = %d", w.Code)
			}
			got := w.Header().Get("Access-Control-Allow-Origin") == tt.origin
			if got != tt.allow {
				t.Fatalf("allowed = %v, want %v", got, tt.allow)
			}
		})
	}
}
