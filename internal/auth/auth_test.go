package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret, issuer string, method jwt.SigningMethod) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestGateVerify(t *testing.T) {
	gate := New("topsecret", "callsign")

	tests := []struct {
		name  string
		token string
		ok    bool
	}{
		{"valid", signToken(t, "topsecret", "callsign", jwt.SigningMethodHS256), true},
		{"wrong secret", signToken(t, "other", "callsign", jwt.SigningMethodHS256), false},
		{"wrong issuer", signToken(t, "topsecret", "impostor", jwt.SigningMethodHS256), false},
		{"wrong algorithm", signToken(t, "topsecret", "callsign", jwt.SigningMethodHS512), false},
		{"garbage", "not.a.token", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Verify(tt.token)
			if tt.ok && err != nil {
				t.Errorf("Verify failed: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("Verify should have rejected the token")
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gate := New("topsecret", "callsign")

	r := gin.New()
	r.GET("/ws", gate.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + signToken(t, "topsecret", "callsign", jwt.SigningMethodHS256), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
