// Package redis keeps per-sheet roll history in Redis lists.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/dvh/internal/storage"
)

// DefaultKeyPrefix namespaces roll history keys.
const DefaultKeyPrefix = "dvh:rolls:"

// RollLogConfig configures a RollLog.
type RollLogConfig struct {
	Client redis.Cmdable
	// KeyPrefix defaults to DefaultKeyPrefix.
	KeyPrefix string
	// Limit is the number of entries kept per sheet.
	Limit int
	// TTL expires a sheet's history after inactivity. Zero disables expiry.
	TTL time.Duration
}

// RollLog is a storage.RollLog backed by one Redis list per sheet, newest at
// the head.
type RollLog struct {
	client redis.Cmdable
	prefix string
	limit  int
	ttl    time.Duration
}

// NewClient returns a go-redis client for a single instance. Redis connects
// lazily, so no round trip happens here.
func NewClient(addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("redis: addr is required")
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}), nil
}

// NewRollLog validates cfg and returns a RollLog.
func NewRollLog(cfg *RollLogConfig) (*RollLog, error) {
	if cfg == nil || cfg.Client == nil {
		return nil, errors.New("redis roll log: client is required")
	}
	if cfg.Limit < 1 {
		return nil, fmt.Errorf("redis roll log: limit must be >= 1, got %d", cfg.Limit)
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RollLog{client: cfg.Client, prefix: prefix, limit: cfg.Limit, ttl: cfg.TTL}, nil
}

func (l *RollLog) key(sheetID string) string {
	return l.prefix + sheetID
}

// Append implements storage.RollLog. Push, trim and expiry run in one MULTI.
func (l *RollLog) Append(ctx context.Context, sheetID string, e storage.RollEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding roll entry: %w", err)
	}
	key := l.key(sheetID)
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, int64(l.limit-1))
		if l.ttl > 0 {
			pipe.Expire(ctx, key, l.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("appending roll for %s: %w", sheetID, err)
	}
	return nil
}

// Recent implements storage.RollLog. n <= 0 returns the whole retained history.
func (l *RollLog) Recent(ctx context.Context, sheetID string, n int) ([]storage.RollEntry, error) {
	stop := int64(-1)
	if n > 0 {
		stop = int64(n - 1)
	}
	raw, err := l.client.LRange(ctx, l.key(sheetID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("reading rolls for %s: %w", sheetID, err)
	}
	out := make([]storage.RollEntry, 0, len(raw))
	for _, item := range raw {
		var e storage.RollEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("decoding roll entry for %s: %w", sheetID, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Clear drops a sheet's history. It is called when the sheet is deleted.
func (l *RollLog) Clear(ctx context.Context, sheetID string) error {
	if err := l.client.Del(ctx, l.key(sheetID)).Err(); err != nil {
		return fmt.Errorf("clearing rolls for %s: %w", sheetID, err)
	}
	return nil
}
