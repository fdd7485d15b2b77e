// internal/zookeeper/lock.go
package zookeeper

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

const (
	lockRoot = "/payment_locks" // 支付资源锁的根节点
)

// DistributedLock 是基于临时顺序节点实现的分布式锁。
// 用于串行化同一资源上无法用单条条件更新表达的"检查-变更"流程。
type DistributedLock struct {
	conn     *Conn
	path     string // 锁的路径, 例如 /payment_locks/listing-123
	lockNode string // 成功获取锁后, 自己创建的节点路径
}

// NewDistributedLock 创建一个新的分布式锁实例
func NewDistributedLock(conn *Conn, resourceID string) (*DistributedLock, error) {
	// 确保根节点存在
	if exists, _, err := conn.Exists(lockRoot); err == nil && !exists {
		_, createErr := conn.Create(lockRoot, []byte(""), 0, zk.WorldACL(zk.PermAll))
		if createErr != nil && createErr != zk.ErrNodeExists {
			return nil, fmt.Errorf("failed to create lock root node: %w", createErr)
		}
	}

	lockPath := lockRoot + "/" + resourceID

	// 确保锁的父节点路径存在
	if exists, _, err := conn.Exists(lockPath); err == nil && !exists {
		_, createErr := conn.Create(lockPath, []byte(""), 0, zk.WorldACL(zk.PermAll))
		if createErr != nil && createErr != zk.ErrNodeExists {
			return nil, fmt.Errorf("failed to create lock path node %s: %w", lockPath, createErr)
		}
	}

	return &DistributedLock{
		conn: conn,
		path: lockPath,
	}, nil
}

// Lock 尝试获取锁, 获取不到则阻塞等待, 最长等待 waitTimeout。
func (l *DistributedLock) Lock(waitTimeout time.Duration) error {
	// 1. 在锁路径下创建一个临时顺序节点
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("failed to create sequential node: %w", err)
	}
	l.lockNode = nodePath

	deadline := time.Now().Add(waitTimeout)

	for {
		// 2. 获取锁路径下的所有子节点
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			return fmt.Errorf("failed to get children nodes: %w", err)
		}
		sort.Strings(children)

		// 3. 判断自己是否是最小的节点
		myNodeName := strings.TrimPrefix(l.lockNode, l.path+"/")
		if myNodeName == children[0] {
			// 是最小节点, 成功获取锁
			return nil
		}

		// 4. 不是最小节点, 监听前一个节点
		prevNodeIndex := -1
		for i, child := range children {
			if child == myNodeName {
				prevNodeIndex = i - 1
				break
			}
		}
		if prevNodeIndex < 0 {
			return errors.New("cannot find previous node, something is wrong")
		}
		prevNodePath := l.path + "/" + children[prevNodeIndex]

		// 使用 ExistsW 来设置一次性的 Watcher
		exists, _, eventChan, err := l.conn.ExistsW(prevNodePath)
		if err != nil {
			if err == zk.ErrNoNode {
				continue
			}
			return fmt.Errorf("failed to watch previous node: %w", err)
		}
		if !exists {
			// 前一个节点在设置 Watcher 前就被删除了, 重新竞争
			continue
		}

		// 阻塞等待事件
		select {
		case event := <-eventChan:
			if event.Type == zk.EventNodeDeleted {
				continue
			}
		case <-time.After(time.Until(deadline)):
			// 超时放弃, 同时清理自己的节点, 避免阻塞后来者
			_ = l.conn.Delete(l.lockNode, -1)
			l.lockNode = ""
			return errors.New("timeout waiting for lock")
		}
	}
}

// Unlock 释放锁
func (l *DistributedLock) Unlock() error {
	if l.lockNode == "" {
		return errors.New("no lock to unlock")
	}
	err := l.conn.Delete(l.lockNode, -1)
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to delete lock node: %w", err)
	}
	l.lockNode = ""
	return nil
}
