// Package presence holds the Redis collaborators: the logged-in-peers
// set other services read, and the force-logout channel other
// processes use to evict a user's connections from this relay.
package presence

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dche/callsign/internal/config"
)

const (
	loggedInKey        = "LOGGED_IN_PEERS"
	forceLogoutChannel = "force_logout"

	opTimeout = 3 * time.Second
)

// Dial connects to Redis. The stored password is the SHA-512 hex
// digest of the password file's contents, per the deployment's shared
// secret convention; an empty path means no auth.
func Dial(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{Addr: cfg.Addr}
	if cfg.PasswordFile != "" {
		raw, err := os.ReadFile(cfg.PasswordFile)
		if err != nil {
			return nil, fmt.Errorf("redis password file: %w", err)
		}
		sum := sha512.Sum512(raw)
		opts.Password = hex.EncodeToString(sum[:])
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Tracker mirrors the relay's logged-in users into a Redis set.
// Failures are logged and swallowed; presence mirroring is advisory
// and must never stall the signaling engine.
type Tracker struct {
	rdb *redis.Client
}

func NewTracker(rdb *redis.Client) *Tracker {
	return &Tracker{rdb: rdb}
}

func (t *Tracker) MarkLoggedIn(userIDs []string) {
	if len(userIDs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	members := make([]any, len(userIDs))
	for i, id := range userIDs {
		members[i] = id
	}
	if err := t.rdb.SAdd(ctx, loggedInKey, members...).Err(); err != nil {
		log.Error().Err(err).Str("module", "presence").Msg("sadd logged-in peers")
	}
}

func (t *Tracker) MarkLoggedOut(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := t.rdb.SRem(ctx, loggedInKey, userID).Err(); err != nil {
		log.Error().Err(err).Str("module", "presence").Msg("srem logged-in peer")
	}
}

// SubscribeForceLogout invokes handler with each user id published on
// the force-logout channel until ctx is done.
func SubscribeForceLogout(ctx context.Context, rdb *redis.Client, handler func(userID string)) {
	sub := rdb.Subscribe(ctx, forceLogoutChannel)
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				log.Info().Str("module", "presence").Str("user_id", msg.Payload).Msg("force logout received")
				handler(msg.Payload)
			}
		}
	}()
}
