// internal/service/payment/domain/port/locker.go
package port

import "context"

// ResourceLocker 是按资源 ID 粒度的短时互斥锁。
// "已支付/已入账"检查必须读到最新已提交状态, 同一资源上的检查-落账序列
// 要在锁内执行, 两个并发捕获不可能同时通过检查。
type ResourceLocker interface {
	// WithLock 在持有 resourceID 对应的锁期间执行 fn。
	// 拿不到锁或 fn 返回错误时原样上抛; 锁在 fn 返回后立即释放。
	WithLock(ctx context.Context, resourceID string, fn func(ctx context.Context) error) error
}
