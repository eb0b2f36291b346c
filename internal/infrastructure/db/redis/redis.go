package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// The limiter is the only Redis consumer in this service, so the dial-time
// knobs stay minimal: address and logical database. Ping before returning so
// a misconfigured address fails at startup, not on the first login.
const pingTimeout = 5 * time.Second

// Connect dials the attempt-counting store and verifies it is reachable.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}
