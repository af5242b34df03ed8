package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/mailsig/sigsync/repository"
)

type templateCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewTemplateCache creates a Redis-backed cache for remote templates.
func NewTemplateCache(client *redislib.Client, ttl time.Duration) repository.TemplateCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &templateCache{
		client: client,
		prefix: "template:",
		ttl:    ttl,
	}
}

func (c *templateCache) Get(ctx context.Context, key string) (string, error) {
	result, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		if err == redislib.Nil {
			return "", repository.ErrCacheMiss
		}
		return "", err
	}
	return result, nil
}

func (c *templateCache) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, c.key(key), value, c.ttl).Err()
}

func (c *templateCache) key(id string) string {
	return fmt.Sprintf("%s%s", c.prefix, id)
}
