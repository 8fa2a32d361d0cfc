package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "sales_order:"

// Cache keeps JSON snapshots of orders in Redis. Concurrent misses for the same order
// share one load. Redis failures fall back to the loader.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func cacheKey(id int64) string {
	return cacheKeyPrefix + strconv.FormatInt(id, 10)
}

// Fetch implements OrderCache.
func (c *Cache) Fetch(ctx context.Context, id int64, load func(context.Context) (*SalesOrder, error)) (*SalesOrder, error) {
	if c == nil || c.client == nil {
		return load(ctx)
	}
	key := cacheKey(id)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var order SalesOrder
		if err := json.Unmarshal(payload, &order); err == nil {
			return &order, nil
		}
		c.logger.Warn("order cache decode", slog.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("order cache get", slog.String("key", key), slog.Any("error", err))
	}

	resultChan := c.group.DoChan(key, func() (interface{}, error) {
		// The load is shared by every waiter, so one caller leaving must not cancel it.
		loadCtx := context.WithoutCancel(ctx)
		order, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if err := c.storeIfNewer(loadCtx, key, order); err != nil {
			c.logger.Warn("order cache set", slog.String("key", key), slog.Any("error", err))
		}
		return order, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}
		order := *res.Val.(*SalesOrder)
		return &order, nil
	}
}

// Refresh implements OrderCache. It writes the committed snapshot unless a newer one is
// already cached. When the write fails the key is dropped so readers fall back to the store.
func (c *Cache) Refresh(ctx context.Context, order *SalesOrder) {
	if c == nil || c.client == nil || order == nil {
		return
	}
	key := cacheKey(order.ID)
	err := c.storeIfNewer(ctx, key, order)
	if err == nil {
		return
	}
	c.logger.Warn("order cache refresh", slog.Int64("order_id", order.ID), slog.Any("error", err))
	if err := c.client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("order cache invalidate", slog.Int64("order_id", order.ID), slog.Any("error", err))
	}
}

const storeAttempts = 3

// storeIfNewer writes order under key unless the cached entry has a later UpdatedAt.
// The read and the write run under WATCH, so a concurrent writer forces a re-check.
func (c *Cache) storeIfNewer(ctx context.Context, key string, order *SalesOrder) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return err
	}
	write := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var cached SalesOrder
			if json.Unmarshal(current, &cached) == nil && newerThan(cached.UpdatedAt, order.UpdatedAt) {
				return nil
			}
		case !errors.Is(err, redis.Nil):
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, c.ttl)
			return nil
		})
		return err
	}
	for i := 0; i < storeAttempts; i++ {
		err = c.client.Watch(ctx, write, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

// newerThan compares at the precision Postgres keeps for timestamptz.
func newerThan(a, b time.Time) bool {
	return a.Truncate(time.Microsecond).After(b.Truncate(time.Microsecond))
}
