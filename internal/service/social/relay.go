package social

import (
	"context"
	"time"

	myredis "navbar_social/internal/dao/redis"
	"navbar_social/internal/dto/respond"

	"go.uber.org/zap"
)

// Publisher 挂件事件的下游（WebSocket 推送或 Kafka 主题）
type Publisher interface {
	Publish(ctx context.Context, evt respond.Event) error
}

// Relay 共享的 toast 通道
// 每次写入都会覆盖上一条，同一时刻只有一条可见
type Relay struct {
	store myredis.StateStore
	pub   Publisher
	ttl   time.Duration
}

// NewRelay 创建 toast 通道，pub 可以为 nil
func NewRelay(store myredis.StateStore, pub Publisher, ttl time.Duration) *Relay {
	return &Relay{store: store, pub: pub, ttl: ttl}
}

// Show 展示 toast 并推送给该会话的浏览器
// toast 是旁路通道，写入失败只记录日志
func (r *Relay) Show(ctx context.Context, sessionID, message string) {
	if err := r.store.SetToast(ctx, sessionID, message, r.ttl); err != nil {
		zap.L().Error("写入 toast 失败", zap.String("session_id", sessionID), zap.Error(err))
	}
	r.publish(ctx, respond.Event{
		Type:      respond.EventToast,
		SessionID: sessionID,
		Toast:     &respond.ToastRespond{Visible: true, Message: message},
	})
}

// Dismiss 隐藏 toast
func (r *Relay) Dismiss(ctx context.Context, sessionID string) error {
	if err := r.store.DismissToast(ctx, sessionID); err != nil {
		return err
	}
	r.publish(ctx, respond.Event{
		Type:      respond.EventToast,
		SessionID: sessionID,
		Toast:     &respond.ToastRespond{},
	})
	return nil
}

// Current 读取当前 toast
func (r *Relay) Current(ctx context.Context, sessionID string) (respond.ToastRespond, error) {
	msg, visible, err := r.store.GetToast(ctx, sessionID)
	if err != nil {
		return respond.ToastRespond{}, err
	}
	return respond.ToastRespond{Visible: visible, Message: msg}, nil
}

// PushInvites 推送重新渲染后的邀请卡片
func (r *Relay) PushInvites(ctx context.Context, sessionID string, cards []respond.InviteCard) {
	r.publish(ctx, respond.Event{
		Type:      respond.EventInvites,
		SessionID: sessionID,
		Invites:   cards,
	})
}

func (r *Relay) publish(ctx context.Context, evt respond.Event) {
	if r.pub == nil {
		return
	}
	if err := r.pub.Publish(ctx, evt); err != nil {
		zap.L().Warn("推送挂件事件失败",
			zap.String("type", evt.Type),
			zap.String("session_id", evt.SessionID),
			zap.Error(err),
		)
	}
}
