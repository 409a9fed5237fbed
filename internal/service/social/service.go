// Package social 实现导航栏社交挂件：好友申请弹窗、邀请列表和 toast 通道
package social

import (
	"context"
	"sync"
	"time"

	myredis "navbar_social/internal/dao/redis"
	"navbar_social/internal/dto/request"
	"navbar_social/internal/dto/respond"
	"navbar_social/internal/friendsapi"
	"navbar_social/pkg/errorx"

	"go.uber.org/zap"
)

// Service 管理所有会话的挂件实例
type Service struct {
	api       friendsapi.API
	store     myredis.AsyncStateStore
	relay     *Relay
	validator *FormValidator

	mu        sync.Mutex
	widgets   map[string]*Widget
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewService 构造函数
// pub 为事件下游，可以为 nil；toastTTL 为 toast 自动消失时间
// idleTTL 为挂件空闲释放时间，<= 0 时使用 myredis.DefaultIdleTTL
func NewService(api friendsapi.API, store myredis.AsyncStateStore, pub Publisher, validator *FormValidator, toastTTL, idleTTL time.Duration) *Service {
	if idleTTL <= 0 {
		idleTTL = myredis.DefaultIdleTTL
	}
	return &Service{
		api:       api,
		store:     store,
		relay:     NewRelay(store, pub, toastTTL),
		validator: validator,
		widgets:   make(map[string]*Widget),
		idleTTL:   idleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Widget 获取会话的挂件，不存在时创建
// 每隔 idleTTL 顺带释放一次空闲的挂件
func (s *Service) Widget(sessionID string) *Widget {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastSweep) >= s.idleTTL {
		s.evictIdleLocked(now)
	}
	w, ok := s.widgets[sessionID]
	if !ok {
		w = newWidget(sessionID, s)
		s.widgets[sessionID] = w
	}
	w.lastSeen = now
	return w
}

// evictIdleLocked 释放空闲超过 idleTTL 的挂件，提交中的挂件保留
func (s *Service) evictIdleLocked(now time.Time) {
	s.lastSweep = now
	evicted := 0
	for sid, w := range s.widgets {
		if now.Sub(w.lastSeen) < s.idleTTL || w.submitting() {
			continue
		}
		delete(s.widgets, sid)
		evicted++
	}
	if evicted > 0 {
		zap.L().Info("释放空闲挂件", zap.Int("evicted", evicted), zap.Int("remaining", len(s.widgets)))
	}
}

// Mount 挂载：拉取邀请列表并返回状态
// 好友服务不可达时卡片保持原样，挂载本身不失败
func (s *Service) Mount(ctx context.Context, sessionID, tok string) (*respond.WidgetStateRespond, error) {
	w := s.Widget(sessionID)
	if _, err := w.LoadInvites(ctx, tok); err != nil && !errorx.IsTransport(err) {
		return nil, err
	}
	return w.State(ctx)
}

// State 状态快照
func (s *Service) State(ctx context.Context, sessionID string) (*respond.WidgetStateRespond, error) {
	return s.Widget(sessionID).State(ctx)
}

// Invites 当前渲染的卡片
func (s *Service) Invites(sessionID string) []respond.InviteCard {
	return s.Widget(sessionID).Invites()
}

// OpenModal 打开弹窗
func (s *Service) OpenModal(sessionID string) string {
	return string(s.Widget(sessionID).OpenModal())
}

// CloseModal 关闭弹窗
func (s *Service) CloseModal(sessionID string) {
	s.Widget(sessionID).CloseModal()
}

// Submit 提交好友申请表单
func (s *Service) Submit(ctx context.Context, sessionID, tok string, form request.FriendRequestForm) (*respond.OperationRespond, error) {
	return s.Widget(sessionID).Submit(ctx, tok, form)
}

// Accept 接受好友申请
func (s *Service) Accept(ctx context.Context, sessionID, tok, senderEmail string) (*respond.OperationRespond, error) {
	return s.Widget(sessionID).Accept(ctx, tok, senderEmail)
}

// Reject 拒绝好友申请
func (s *Service) Reject(ctx context.Context, sessionID, tok, senderEmail string) (*respond.OperationRespond, error) {
	return s.Widget(sessionID).Reject(ctx, tok, senderEmail)
}

// DismissToast 隐藏 toast
func (s *Service) DismissToast(ctx context.Context, sessionID string) error {
	return s.relay.Dismiss(ctx, sessionID)
}

// Close 释放后台任务
func (s *Service) Close() {
	s.store.Close()
}
