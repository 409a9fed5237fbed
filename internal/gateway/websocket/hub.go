package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"navbar_social/internal/dto/respond"

	"go.uber.org/zap"
)

// Hub 按会话管理浏览器连接，并实现挂件事件的推送
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

// Register 注册连接
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.SessionID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.SessionID] = set
	}
	set[c] = struct{}{}
}

// Unregister 注销连接并关闭其发送通道，重复调用无副作用
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.SessionID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.Send)
	if len(set) == 0 {
		delete(h.clients, c.SessionID)
	}
}

// Count 会话当前的连接数
func (h *Hub) Count(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// Publish 把事件推送给该会话的所有连接
// 连接的发送缓冲已满时丢弃该连接的这条事件
func (h *Hub) Publish(_ context.Context, evt respond.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	h.Deliver(evt.SessionID, data)
	return nil
}

// Deliver 推送已编码的事件
func (h *Hub) Deliver(sessionID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[sessionID] {
		select {
		case c.Send <- data:
		default:
			zap.L().Warn("ws send buffer full, event dropped", zap.String("session_id", sessionID))
		}
	}
}

// Close 关闭所有连接
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sid, set := range h.clients {
		for c := range set {
			close(c.Send)
		}
		delete(h.clients, sid)
	}
}
