package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options configures the shared Redis client.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Timeout bounds dial, read and write. Redis only backs caches and queues here, so
	// a slow server should fail fast instead of holding requests.
	Timeout     time.Duration
	PingTimeout time.Duration
}

const (
	clientName         = "backoffice"
	defaultPingTimeout = 2 * time.Second
)

// New creates a Redis client. The client is returned even when the initial ping
// fails so callers that treat redis as optional can keep running without it.
func New(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(clientOptions(opts))

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return client, fmt.Errorf("platform/cache: ping %s: %w", opts.Addr, err)
	}

	return client, nil
}

func clientOptions(opts Options) *redis.Options {
	out := &redis.Options{
		Addr:       opts.Addr,
		Password:   opts.Password,
		DB:         opts.DB,
		ClientName: clientName,
	}
	if opts.Timeout > 0 {
		out.DialTimeout = opts.Timeout
		out.ReadTimeout = opts.Timeout
		out.WriteTimeout = opts.Timeout
	}
	return out
}
