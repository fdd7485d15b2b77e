// internal/service/payment/infrastructure/lock_zookeeper_adapter.go
package infrastructure

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/logger"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/zookeeper"
)

// ZookeeperLockAdapter 是 port.ResourceLocker 的 ZooKeeper 实现。
// 临时顺序节点实现的公平锁, 持有者断连时锁自动释放,
// 适合部署里已有 ZooKeeper 而不想引入 Redis 的场景。
type ZookeeperLockAdapter struct {
	conn *zookeeper.Conn
}

// NewZookeeperLockAdapter 创建一个新的资源锁适配器实例
func NewZookeeperLockAdapter(conn *zookeeper.Conn) *ZookeeperLockAdapter {
	return &ZookeeperLockAdapter{conn: conn}
}

// WithLock 在持有资源锁期间执行 fn
func (a *ZookeeperLockAdapter) WithLock(ctx context.Context, resourceID string, fn func(ctx context.Context) error) error {
	lock, err := zookeeper.NewDistributedLock(a.conn, resourceID)
	if err != nil {
		return errors.Wrap(err, "zookeeper lock create failed")
	}
	if err := lock.Lock(lockWaitTimeout); err != nil {
		return errors.Wrapf(err, "timed out acquiring lock for resource %s", resourceID)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("resource", resourceID).Msg("failed to release resource lock")
		}
	}()

	return fn(ctx)
}
