// internal/service/payment/infrastructure/lock_redis_adapter.go
package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/logger"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/redis"
)

const (
	unlockScriptName = "unlock_resource"

	// 只释放自己持有的锁, 比较与删除在脚本内原子完成
	unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end`

	lockTTL          = 10 * time.Second
	lockWaitTimeout  = 5 * time.Second
	lockRetryBackoff = 50 * time.Millisecond
)

// RedisLockAdapter 是 port.ResourceLocker 的 Redis 实现。
// SET NX + 随机持有者标识 + Lua 释放, 锁本身带 TTL 防止持有者崩溃后死锁。
type RedisLockAdapter struct {
	redisClient *redis.Client
}

// NewRedisLockAdapter 创建一个新的资源锁适配器实例。
// 它在创建时会加载释放锁所需的 Lua 脚本。
func NewRedisLockAdapter(redisClient *redis.Client) (*RedisLockAdapter, error) {
	if err := redisClient.LoadScriptFromContent(unlockScriptName, unlockScript); err != nil {
		return nil, fmt.Errorf("failed to load critical unlock script: %w", err)
	}
	return &RedisLockAdapter{redisClient: redisClient}, nil
}

// WithLock 在持有资源锁期间执行 fn
func (a *RedisLockAdapter) WithLock(ctx context.Context, resourceID string, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("payment:lock:{%s}", resourceID)
	holder := uuid.NewString()

	if err := a.acquire(ctx, key, holder); err != nil {
		return err
	}
	defer a.release(ctx, key, holder)

	return fn(ctx)
}

func (a *RedisLockAdapter) acquire(ctx context.Context, key, holder string) error {
	deadline := time.Now().Add(lockWaitTimeout)
	for {
		ok, err := a.redisClient.GetClient().SetNX(ctx, key, holder, lockTTL).Result()
		if err != nil {
			return errors.Wrap(err, "redis lock acquire failed")
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return errors.Errorf("timed out acquiring lock for resource %s", key)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryBackoff):
		}
	}
}

func (a *RedisLockAdapter) release(ctx context.Context, key, holder string) {
	if _, err := a.redisClient.RunScript(ctx, unlockScriptName, []string{key}, holder); err != nil {
		// 释放失败时锁会随 TTL 自然过期, 记日志即可
		logger.Ctx(ctx).Error().Err(err).Str("key", key).Msg("failed to release resource lock")
	}
}
