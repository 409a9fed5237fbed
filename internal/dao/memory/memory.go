// Package memory 提供进程内的挂件状态存储
// 单实例部署或测试时使用，语义与 Redis 实现一致（toast 按 TTL 过期，刷新计数空闲后过期）
package memory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultIdleTTL 刷新计数的默认空闲过期时间
const DefaultIdleTTL = 30 * time.Minute

type toast struct {
	message  string
	deadline time.Time
}

type counter struct {
	n        int64
	deadline time.Time
}

// Store 进程内状态存储
// 过期条目在写入时按 idleTTL 周期批量清理
type Store struct {
	mu        sync.Mutex
	toasts    map[string]toast
	refresh   map[string]counter
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// New 创建进程内状态存储，idleTTL <= 0 时使用 DefaultIdleTTL
func New(idleTTL time.Duration) *Store {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Store{
		toasts:    make(map[string]toast),
		refresh:   make(map[string]counter),
		idleTTL:   idleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// sweepLocked 清理已过期的 toast 和刷新计数
func (s *Store) sweepLocked(now time.Time) {
	if now.Sub(s.lastSweep) < s.idleTTL {
		return
	}
	s.lastSweep = now
	for sid, t := range s.toasts {
		if !now.Before(t.deadline) {
			delete(s.toasts, sid)
		}
	}
	for sid, c := range s.refresh {
		if !now.Before(c.deadline) {
			delete(s.refresh, sid)
		}
	}
}

// SetToast 覆盖写入 toast
func (s *Store) SetToast(_ context.Context, sessionID, message string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	s.toasts[sessionID] = toast{message: message, deadline: now.Add(ttl)}
	return nil
}

// GetToast 读取 toast，过期视为不可见
func (s *Store) GetToast(_ context.Context, sessionID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.toasts[sessionID]
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(t.deadline) {
		delete(s.toasts, sessionID)
		return "", false, nil
	}
	return t.message, true, nil
}

// DismissToast 隐藏 toast
func (s *Store) DismissToast(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.toasts, sessionID)
	return nil
}

// IncrRefresh 刷新计数 +1 并顺延过期时间
func (s *Store) IncrRefresh(_ context.Context, sessionID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	c := s.refresh[sessionID]
	if !now.Before(c.deadline) {
		c.n = 0
	}
	c.n++
	c.deadline = now.Add(s.idleTTL)
	s.refresh[sessionID] = c
	return c.n, nil
}

// GetRefresh 读取刷新计数，过期视为 0
func (s *Store) GetRefresh(_ context.Context, sessionID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.refresh[sessionID]
	if !ok || !s.now().Before(c.deadline) {
		return 0, nil
	}
	return c.n, nil
}

// SubmitTask 每个任务一个 goroutine
func (s *Store) SubmitTask(action func()) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				zap.L().Error("memory task panic", zap.Any("recover", rec))
			}
		}()
		action()
	}()
}

// Close 无需释放资源
func (s *Store) Close() {}
