package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sarathsathish07/Task-Manager-App/internal/pkg/metrics"
	"github.com/sarathsathish07/Task-Manager-App/internal/pkg/revoke"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const testSecret = "test_secret"

func signToken(t *testing.T, userID string, tokenID string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ID:        tokenID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func protectedRouter(revoked *revoke.List) *gin.Engine {
	gin.SetMode(gin.TestMode)
	metrics.InitMetrics()
	r := gin.New()
	r.GET("/protected", AuthMiddleware(testSecret, revoked), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": GetUserID(c)})
	})
	return r
}

func request(r *gin.Engine, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	r := protectedRouter(nil)
	w := request(r, signToken(t, "42", "tok-1", time.Hour))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddleware_MissingCookie(t *testing.T) {
	r := protectedRouter(nil)
	w := request(r, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	r := protectedRouter(nil)
	w := request(r, signToken(t, "42", "tok-1", -time.Minute))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", w.Code)
	}
}

func TestAuthMiddleware_WrongSignature(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other_secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	r := protectedRouter(nil)
	w := request(r, signed)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad signature, got %d", w.Code)
	}
}

func TestAuthMiddleware_RevokedToken(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer s.Close()
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()
	revoked := revoke.NewList(rdb)

	r := protectedRouter(revoked)
	token := signToken(t, "42", "tok-1", time.Hour)

	if w := request(r, token); w.Code != http.StatusOK {
		t.Fatalf("token should pass before revocation, got %d", w.Code)
	}

	if err := revoked.Revoke(context.Background(), "tok-1", time.Hour); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if w := request(r, token); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after revocation, got %d", w.Code)
	}
}
