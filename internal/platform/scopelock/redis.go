package scopelock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLocker implements Locker as a SET NX lease so the serialization point
// holds across multiple service instances. The lease carries a random owner
// token; release is a compare-and-delete so an expired holder cannot free a
// successor's lock.
type RedisLocker struct {
	client    *redis.Client
	ttl       time.Duration
	retryWait time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client:    client,
		ttl:       ttl,
		retryWait: 25 * time.Millisecond,
	}
}

// releaseScript deletes the lease only if this locker still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *RedisLocker) Lock(ctx context.Context, scopeKey string) (func(), error) {
	key := "scopelock:" + scopeKey
	owner := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// Best effort: the TTL reclaims the lease if the
				// release is lost.
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_, _ = releaseScript.Run(releaseCtx, l.client, []string{key}, owner).Result()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryWait):
		}
	}
}
