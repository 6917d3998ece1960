package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spaolacci/murmur3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/util"
)

// CachedPort wraps a Port with a Redis result cache keyed by a content hash
// of (schema kind, text), plus singleflight so concurrent identical requests
// hit the upstream once. Cache failures degrade to the inner port; extraction
// never fails because Redis is down.
type CachedPort struct {
	inner  Port
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewCachedPort creates the caching decorator. A nil client disables caching
// but keeps the singleflight collapse.
func NewCachedPort(inner Port, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedPort {
	return &CachedPort{inner: inner, client: client, ttl: ttl, logger: logger}
}

// Extract returns the cached fields when present, otherwise calls the inner
// port and stores the result.
func (c *CachedPort) Extract(ctx context.Context, text string, schema FieldSchema) (map[string]any, error) {
	key := cacheKey(text, schema)

	if cached, ok := c.lookup(ctx, key); ok {
		return cached, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		fields, err := c.inner.Extract(ctx, text, schema)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, fields)
		return fields, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

func (c *CachedPort) lookup(ctx context.Context, key string) (map[string]any, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("extraction cache read failed", util.ErrorField(err))
		}
		return nil, false
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		c.logger.Warn("extraction cache entry corrupt", util.String("key", key))
		return nil, false
	}
	c.logger.Debug("extraction cache hit", util.String("key", key))
	return fields, true
}

func (c *CachedPort) store(ctx context.Context, key string, fields map[string]any) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("extraction cache write failed", util.ErrorField(err))
	}
}

func cacheKey(text string, schema FieldSchema) string {
	h := murmur3.New128()
	h.Write([]byte(schema.Kind))
	h.Write([]byte{0})
	h.Write([]byte(text))
	h1, h2 := h.Sum128()
	return fmt.Sprintf("extract:%s:%016x%016x", schema.Kind, h1, h2)
}
