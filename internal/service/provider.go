// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"time"

	myredis "navbar_social/internal/dao/redis"
	"navbar_social/internal/friendsapi"
	"navbar_social/internal/service/social"
)

// Services 聚合所有 Service 实例
type Services struct {
	Social SocialService // 社交挂件 Service
}

// Deps Service 层依赖
type Deps struct {
	API       friendsapi.API
	Store     myredis.AsyncStateStore
	Publisher social.Publisher
	Validator *social.FormValidator
	ToastTTL  time.Duration
	IdleTTL   time.Duration
}

// NewServices 创建并注入所有 Service 实例
func NewServices(deps Deps) *Services {
	return &Services{
		Social: social.NewService(deps.API, deps.Store, deps.Publisher, deps.Validator, deps.ToastTTL, deps.IdleTTL),
	}
}

var _ SocialService = (*social.Service)(nil)

// Close 释放各 Service 的后台资源
func (s *Services) Close() {
	s.Social.Close()
}
