package util

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestDedupKey(t *testing.T) {
	if got := DedupKey("sweep", 42); got != "dedup:sweep:42" {
		t.Errorf("DedupKey() = %q", got)
	}
}

func TestAcquireOnce_FailsOpenWithoutRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	d := NewDeduper(rdb, time.Minute, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if !d.AcquireOnce(ctx, "sweep", 1) {
		t.Error("AcquireOnce() should allow processing when redis is unavailable")
	}
}

func TestRelease_ToleratesMissingRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	NewDeduper(rdb, time.Minute, nil).Release(ctx, "sweep", 1)
}
