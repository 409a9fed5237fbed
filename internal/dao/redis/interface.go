// Package redis 定义挂件状态存储接口并提供 Redis 实现
// Service 层依赖接口而非具体 Redis 客户端
package redis

import (
	"context"
	"time"
)

// DefaultIdleTTL 刷新计数的默认空闲过期时间
const DefaultIdleTTL = 30 * time.Minute

// StateStore 挂件状态存储
// toast 只保留最后一次写入的内容，过期即视为已消失
type StateStore interface {
	// SetToast 覆盖会话的 toast，ttl 到期后自动消失
	SetToast(ctx context.Context, sessionID, message string, ttl time.Duration) error
	// GetToast 读取会话当前的 toast，visible=false 表示没有可见 toast
	GetToast(ctx context.Context, sessionID string) (message string, visible bool, err error)
	// DismissToast 立即隐藏 toast
	DismissToast(ctx context.Context, sessionID string) error

	// IncrRefresh 刷新计数 +1，返回新值
	IncrRefresh(ctx context.Context, sessionID string) (int64, error)
	// GetRefresh 读取刷新计数，不存在时为 0
	GetRefresh(ctx context.Context, sessionID string) (int64, error)
}

// AsyncStateStore 带异步任务能力的状态存储
// 重新拉取好友申请等后台任务通过 SubmitTask 提交
type AsyncStateStore interface {
	StateStore
	SubmitTask(action func())
	Close()
}

// toastKey / refreshKey 会话维度的 key
func toastKey(sessionID string) string   { return "navbar_social:toast:" + sessionID }
func refreshKey(sessionID string) string { return "navbar_social:refresh:" + sessionID }
