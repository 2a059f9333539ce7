package kvstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"package-organizer/internal/platform/obs"
	"package-organizer/internal/ports"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps organizer keys in Redis under a common prefix.
type RedisStore struct {
	Client *redis.Client
	Prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{Client: client, Prefix: prefix}
}

func (r *RedisStore) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	defer obs.Time(ctx, "kv.redis.Get")(&err)

	if r.Client == nil {
		return "", false, errors.New("redis kv store: client is nil")
	}

	v, err := r.Client.Get(ctx, r.Prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get redis kv key=%q: %w", key, err)
	}

	return v, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) (err error) {
	defer obs.Time(ctx, "kv.redis.Set")(&err)

	if r.Client == nil {
		return errors.New("redis kv store: client is nil")
	}

	if err := r.Client.Set(ctx, r.Prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set redis kv key=%q: %w", key, classifyRedisError(err))
	}

	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if r.Client == nil {
		return errors.New("redis kv store: client is nil")
	}

	if err := r.Client.Del(ctx, r.Prefix+key).Err(); err != nil {
		return fmt.Errorf("delete redis kv key=%q: %w", key, err)
	}

	return nil
}

func (r *RedisStore) Keys(ctx context.Context) ([]string, error) {
	if r.Client == nil {
		return nil, errors.New("redis kv store: client is nil")
	}

	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := r.Client.Scan(ctx, cursor, r.Prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("list redis kv keys: scan: %w", err)
		}
		for _, k := range batch {
			keys = append(keys, strings.TrimPrefix(k, r.Prefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	slices.Sort(keys)
	return slices.Compact(keys), nil
}

// classifyRedisError maps the "OOM command not allowed" reply to ports.ErrQuotaExceeded.
func classifyRedisError(err error) error {
	if strings.HasPrefix(err.Error(), "OOM ") {
		return fmt.Errorf("%w: %v", ports.ErrQuotaExceeded, err)
	}
	return err
}
