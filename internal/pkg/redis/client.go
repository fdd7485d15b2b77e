// internal/pkg/redis/client.go
package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	goredis "github.com/redis/go-redis/v9"
)

// Client 封装了 go-redis 的 UniversalClient, 并统一管理 Lua 脚本。
// 脚本先注册再执行, 通过 EvalSha 避免每次传输脚本内容。
type Client struct {
	rdb goredis.UniversalClient

	mu      sync.RWMutex
	scripts map[string]*goredis.Script
}

// NewClient 创建 Redis 客户端。addrs 为逗号分隔的地址列表,
// 单地址时为普通客户端, 多地址时自动切换为集群客户端。
func NewClient(addrs string) (*Client, error) {
	rdb := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs: strings.Split(addrs, ","),
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addrs, err)
	}

	return &Client{
		rdb:     rdb,
		scripts: make(map[string]*goredis.Script),
	}, nil
}

// GetClient 返回底层的 go-redis 客户端, 供需要原生 API 的调用方使用。
func (c *Client) GetClient() goredis.UniversalClient {
	return c.rdb
}

// LoadScriptFromContent 注册一段 Lua 脚本, 后续通过名字执行。
func (c *Client) LoadScriptFromContent(name, content string) error {
	if content == "" {
		return fmt.Errorf("script %s has empty content", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scripts[name] = goredis.NewScript(content)
	return nil
}

// LoadScriptFromFile 从文件加载并注册一段 Lua 脚本。
func (c *Client) LoadScriptFromFile(name, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script file %s: %w", path, err)
	}
	return c.LoadScriptFromContent(name, string(content))
}

// RunScript 执行一段已注册的 Lua 脚本。
func (c *Client) RunScript(ctx context.Context, name string, keys []string, args ...interface{}) (interface{}, error) {
	c.mu.RLock()
	script, ok := c.scripts[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("script %s is not loaded", name)
	}
	return script.Run(ctx, c.rdb, keys, args...).Result()
}

// Close 关闭底层连接。
func (c *Client) Close() error {
	return c.rdb.Close()
}
