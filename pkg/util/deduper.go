package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper hands out short-lived "first one wins" keys in redis.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// AcquireOnce returns true if this is the first caller for (handler, id) within the TTL.
// When redis is unreachable it returns true so processing is never blocked by the cache.
func (d *Deduper) AcquireOnce(ctx context.Context, handler string, id int) bool {
	key := DedupKey(handler, id)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		d.logger.Warn("Redis dedup check failed, allowing processing",
			zap.String("handler", handler),
			zap.Int("id", id),
			zap.Error(err),
		)
		return true
	}

	if !ok {
		d.logger.Debug("Skipped duplicated work",
			zap.String("handler", handler),
			zap.String("dedup_key", key),
		)
	}
	return ok
}

// Release drops the key for (handler, id) so the next AcquireOnce succeeds. Errors are
// logged only; the key still expires after the TTL.
func (d *Deduper) Release(ctx context.Context, handler string, id int) {
	if err := d.rdb.Del(ctx, DedupKey(handler, id)).Err(); err != nil {
		d.logger.Warn("Redis dedup release failed",
			zap.String("handler", handler),
			zap.Int("id", id),
			zap.Error(err),
		)
	}
}

func DedupKey(handler string, id int) string {
	return fmt.Sprintf("dedup:%s:%d", handler, id)
}
