package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(t *testing.T) (*gin.Engine, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret", 24*time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	r := gin.New()
	r.Use(CorrelationIDMiddleware())
	r.GET("/private", AuthMiddleware(tokens), func(c *gin.Context) {
		p, ok := PrincipalFromContext(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "username": p.Username})
	})
	return r, tokens
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body.Error
}

func TestAuthMiddleware_MissingTokenIs401(t *testing.T) {
	r, _ := protectedRouter(t)

	for _, header := range []string{"", "Bearer", "Bearer   "} {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, w.Code)
		}
		if got := errorBody(t, w); got != "Access token required" {
			t.Fatalf("header %q: error = %q", header, got)
		}
	}
}

func TestAuthMiddleware_InvalidTokenIs403(t *testing.T) {
	r, _ := protectedRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if got := errorBody(t, w); got != "Invalid or expired token" {
		t.Fatalf("error = %q", got)
	}
}

func TestAuthMiddleware_ValidTokenSetsPrincipal(t *testing.T) {
	r, tokens := protectedRouter(t)
	token, err := tokens.Issue(7, "ada")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var got struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.ID != 7 || got.Username != "ada" {
		t.Fatalf("principal = %+v", got)
	}
}

func TestCorrelationID_EchoesOrGenerates(t *testing.T) {
	r, _ := protectedRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(CorrelationIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(CorrelationIDHeader); got != "abc-123" {
		t.Fatalf("echoed id = %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	if got := w.Header().Get(CorrelationIDHeader); len(got) != 36 {
		t.Fatalf("generated id = %q", got)
	}
}

func TestRateLimit_PerClientIP(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	r := gin.New()
	r.POST("/contact", RateLimit(limiter), func(c *gin.Context) { c.Status(http.StatusCreated) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = ip + ":4000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if send("10.0.0.1") != http.StatusCreated || send("10.0.0.1") != http.StatusCreated {
		t.Fatal("burst should be allowed")
	}
	if code := send("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", code)
	}
	if code := send("10.0.0.2"); code != http.StatusCreated {
		t.Fatalf("other client status = %d", code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Content-Type-Options") != "nosniff" || w.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("headers = %v", w.Header())
	}
}
