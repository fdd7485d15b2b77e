// internal/zookeeper/conn.go
package zookeeper

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

// Conn 包装了 zk.Conn, 统一管理连接的建立与关闭。
type Conn struct {
	*zk.Conn
}

// Connect 连接到 ZooKeeper 集群。servers 为逗号分隔的地址列表。
func Connect(servers string) (*Conn, error) {
	conn, _, err := zk.Connect(strings.Split(servers, ","), 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to zookeeper at %s: %w", servers, err)
	}
	return &Conn{Conn: conn}, nil
}

// Close 关闭连接, 所有临时节点随之失效。
func (c *Conn) Close() {
	c.Conn.Close()
}
