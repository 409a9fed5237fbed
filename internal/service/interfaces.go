// Package service 定义业务层接口，供 Handler 层调用
package service

import (
	"context"

	"navbar_social/internal/dto/request"
	"navbar_social/internal/dto/respond"
)

// SocialService 导航栏社交挂件业务接口
// sessionID 由 middleware 从浏览器凭证派生，tok 为原始凭证（缺失时为空串）
type SocialService interface {
	// Mount 挂载挂件并拉取一次邀请列表
	Mount(ctx context.Context, sessionID, tok string) (*respond.WidgetStateRespond, error)
	// State 挂件状态快照
	State(ctx context.Context, sessionID string) (*respond.WidgetStateRespond, error)
	// Invites 当前渲染的邀请卡片
	Invites(sessionID string) []respond.InviteCard
	// OpenModal 打开好友申请弹窗，返回弹窗状态
	OpenModal(sessionID string) string
	// CloseModal 取消弹窗并重置表单
	CloseModal(sessionID string)
	// Submit 提交好友申请
	Submit(ctx context.Context, sessionID, tok string, form request.FriendRequestForm) (*respond.OperationRespond, error)
	// Accept 接受好友申请
	Accept(ctx context.Context, sessionID, tok, senderEmail string) (*respond.OperationRespond, error)
	// Reject 拒绝好友申请
	Reject(ctx context.Context, sessionID, tok, senderEmail string) (*respond.OperationRespond, error)
	// DismissToast 隐藏 toast
	DismissToast(ctx context.Context, sessionID string) error
	// Close 释放后台资源
	Close()
}
