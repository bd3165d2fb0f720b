package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/attunelab/attune-backend/internal/layout"
	"github.com/attunelab/attune-backend/internal/logger"
	"github.com/attunelab/attune-backend/internal/utils"
)

// LayoutCache memoizes resolved dashboards per viewer. Callers treat a nil
// cache as a pass-through, so the platform runs without redis.
type LayoutCache interface {
	GetResolved(ctx context.Context, userID uuid.UUID) ([]layout.ResolvedWidget, bool)
	SetResolved(ctx context.Context, userID uuid.UUID, widgets []layout.ResolvedWidget)
	InvalidateUsers(ctx context.Context, userIDs ...uuid.UUID)
	Close() error
}

type layoutCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewLayoutCache(log *logger.Logger) (LayoutCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttlSeconds := utils.GetEnvAsInt("DASHBOARD_CACHE_TTL_SECONDS", 300, log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &layoutCache{
		log: log.With("service", "LayoutCache"),
		rdb: rdb,
		ttl: time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func resolvedKey(userID uuid.UUID) string {
	return "dashboard:resolved:" + userID.String()
}

func (c *layoutCache) GetResolved(ctx context.Context, userID uuid.UUID) ([]layout.ResolvedWidget, bool) {
	raw, err := c.rdb.Get(ctx, resolvedKey(userID)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("resolved layout cache read failed", "error", err, "user_id", userID)
		}
		return nil, false
	}
	var widgets []layout.ResolvedWidget
	if err := json.Unmarshal(raw, &widgets); err != nil {
		c.log.Warn("resolved layout cache entry corrupt, dropping", "error", err, "user_id", userID)
		_ = c.rdb.Del(ctx, resolvedKey(userID)).Err()
		return nil, false
	}
	return widgets, true
}

func (c *layoutCache) SetResolved(ctx context.Context, userID uuid.UUID, widgets []layout.ResolvedWidget) {
	raw, err := json.Marshal(widgets)
	if err != nil {
		c.log.Warn("resolved layout cache encode failed", "error", err, "user_id", userID)
		return
	}
	if err := c.rdb.Set(ctx, resolvedKey(userID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("resolved layout cache write failed", "error", err, "user_id", userID)
	}
}

func (c *layoutCache) InvalidateUsers(ctx context.Context, userIDs ...uuid.UUID) {
	if len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != uuid.Nil {
			keys = append(keys, resolvedKey(id))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("resolved layout cache invalidation failed", "error", err, "keys", len(keys))
	}
}

func (c *layoutCache) Close() error {
	return c.rdb.Close()
}
