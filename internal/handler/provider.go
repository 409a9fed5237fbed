// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"navbar_social/internal/gateway/websocket"
	"navbar_social/internal/service"
)

// Handlers 聚合所有 Handler 实例
// Router 层通过此结构访问各个 Handler
type Handlers struct {
	Social *SocialHandler
}

// NewHandlers 创建并注入所有 Handler 实例
// hub 为本实例的 WebSocket 连接表
func NewHandlers(svc *service.Services, hub *websocket.Hub) *Handlers {
	return &Handlers{
		Social: NewSocialHandler(svc.Social, hub),
	}
}
