package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/userhub/directory-api/internal/api/metrics"
	"github.com/userhub/directory-api/internal/core/domain"
)

const (
	cacheTTL    = 30 * time.Second
	listKey     = "users:all"
	userKeyStem = "users:"
)

// UserViewCache caches outward user views (password hash never serialized)
// with a short TTL plus explicit invalidation on mutation. Any backend
// failure degrades to a miss: the caller falls through to the database.
type UserViewCache struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewUserViewCache(client *redis.Client, log zerolog.Logger) *UserViewCache {
	return &UserViewCache{client: client, log: log}
}

func (c *UserViewCache) GetUser(ctx context.Context, id int64) (*domain.User, bool) {
	raw, err := c.client.Get(ctx, c.userKey(id)).Bytes()
	if err != nil {
		c.miss(err)
		return nil, false
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		c.miss(err)
		return nil, false
	}
	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	return &user, true
}

func (c *UserViewCache) SetUser(ctx context.Context, user *domain.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.userKey(user.ID), raw, cacheTTL).Err(); err != nil {
		c.log.Debug().Err(err).Msg("user cache set failed")
	}
}

func (c *UserViewCache) GetList(ctx context.Context) ([]domain.User, bool) {
	raw, err := c.client.Get(ctx, listKey).Bytes()
	if err != nil {
		c.miss(err)
		return nil, false
	}
	var users []domain.User
	if err := json.Unmarshal(raw, &users); err != nil {
		c.miss(err)
		return nil, false
	}
	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	return users, true
}

func (c *UserViewCache) SetList(ctx context.Context, users []domain.User) {
	raw, err := json.Marshal(users)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, listKey, raw, cacheTTL).Err(); err != nil {
		c.log.Debug().Err(err).Msg("user cache set failed")
	}
}

// Invalidate drops the list view and the given user ids.
func (c *UserViewCache) Invalidate(ctx context.Context, ids ...int64) {
	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, listKey)
	for _, id := range ids {
		keys = append(keys, c.userKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Debug().Err(err).Msg("user cache invalidate failed")
	}
}

func (c *UserViewCache) userKey(id int64) string {
	return fmt.Sprintf("%s%d", userKeyStem, id)
}

func (c *UserViewCache) miss(err error) {
	metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	if err != nil && err != redis.Nil {
		c.log.Debug().Err(err).Msg("user cache lookup failed")
	}
}
