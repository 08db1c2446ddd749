// Package auth implements the handshake-time token gate: websocket
// upgrades must carry a bearer credential signed with the shared
// secret and issuer held in Redis. The gate runs before the signaling
// engine ever sees a connection; when its key material cannot be
// loaded the gate is disabled rather than taking the relay down.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	secretKey = "JWT_SECRET"
	issuerKey = "JWT_ISSUER"
)

// Gate verifies bearer tokens on the upgrade request.
type Gate struct {
	secret []byte
	issuer string
}

// Load fetches the signing secret and issuer from Redis. Both keys
// must be set.
func Load(ctx context.Context, rdb *redis.Client) (*Gate, error) {
	secret, err := rdb.Get(ctx, secretKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", secretKey, err)
	}
	issuer, err := rdb.Get(ctx, issuerKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", issuerKey, err)
	}
	return New(secret, issuer), nil
}

func New(secret, issuer string) *Gate {
	return &Gate{secret: []byte(secret), issuer: issuer}
}

// Verify checks one bearer token.
func (g *Gate) Verify(token string) error {
	_, err := jwt.Parse(token,
		func(t *jwt.Token) (any, error) { return g.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(g.issuer),
	)
	return err
}

// Middleware rejects requests without a valid bearer token before the
// upgrade handler runs.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if err := g.Verify(token); err != nil {
			log.Debug().Err(err).Str("module", "auth").Msg("token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
