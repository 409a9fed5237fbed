package social

import (
	"context"
	"fmt"
	"sync"
	"time"

	"navbar_social/internal/dto/request"
	"navbar_social/internal/dto/respond"
	"navbar_social/internal/friendsapi"
	"navbar_social/pkg/errorx"
	"navbar_social/pkg/util/sanitize"
	"navbar_social/pkg/util/token"

	"go.uber.org/zap"
)

// 邀请卡片按钮指向的浏览器接口
const (
	PathAccept = "/social/requests/accept"
	PathReject = "/social/requests/reject"
)

// ValidationError 表单校验失败，Fields 以 json 字段名为 key
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("form validation failed: %v", e.Fields)
}

// Widget 一个浏览器会话对应的社交挂件
// 弹窗状态、表单值和邀请卡片保存在内存；toast 与刷新计数在 StateStore
type Widget struct {
	sessionID string
	svc       *Service
	lastSeen  time.Time // 由 Service.mu 保护

	mu      sync.Mutex
	modal   ModalState
	email   string
	invites []respond.InviteCard
}

func newWidget(sessionID string, svc *Service) *Widget {
	return &Widget{
		sessionID: sessionID,
		svc:       svc,
		modal:     ModalClosed,
		invites:   []respond.InviteCard{},
	}
}

// ==================== 弹窗 ====================

// OpenModal closed -> editing；提交中再次打开不改变状态
func (w *Widget) OpenModal() ModalState {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.modal == ModalClosed {
		w.modal = ModalEditing
		w.email = ""
	}
	return w.modal
}

// CloseModal 取消：重置表单并关闭，不发请求
func (w *Widget) CloseModal() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
}

func (w *Widget) submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.modal == ModalSubmitting
}

func (w *Widget) resetLocked() {
	w.modal = ModalClosed
	w.email = ""
}

// Submit 校验并发送好友申请
// 校验失败不发请求，弹窗保持 editing；收到任何响应后重置并关闭弹窗
// 请求没有得到响应时不产生 toast，弹窗回到 editing 供用户重试
func (w *Widget) Submit(ctx context.Context, tok string, form request.FriendRequestForm) (*respond.OperationRespond, error) {
	w.mu.Lock()
	if w.modal != ModalEditing {
		state := w.modal
		w.mu.Unlock()
		return nil, errorx.Newf(errorx.CodeInvalidParam, "弹窗当前状态为 %s，无法提交", state)
	}
	w.email = form.Email
	if fields := w.svc.validator.Validate(form); fields != nil {
		w.mu.Unlock()
		return nil, &ValidationError{Fields: fields}
	}
	w.modal = ModalSubmitting
	w.mu.Unlock()

	res, err := w.svc.api.MakeRequest(ctx, tok, form.Email)
	if err != nil {
		w.mu.Lock()
		if w.modal == ModalSubmitting {
			w.modal = ModalEditing
		}
		w.mu.Unlock()
		zap.L().Error("发送好友申请失败",
			zap.String("session_id", w.sessionID),
			zap.String("user", token.Who(tok)),
			zap.Error(err),
		)
		return nil, err
	}

	msg := MsgMakeRequestFailed
	if res.OK() {
		msg = alertOr(res, MsgMakeRequestSuccess)
	} else {
		zap.L().Warn("好友服务拒绝了好友申请",
			zap.String("session_id", w.sessionID),
			zap.String("target", sanitize.Text(form.Email)),
			zap.Error(res.Err()),
		)
	}
	w.svc.relay.Show(ctx, w.sessionID, msg)

	w.mu.Lock()
	w.resetLocked()
	w.mu.Unlock()

	return &respond.OperationRespond{Toast: msg, Modal: string(ModalClosed)}, nil
}

// ==================== 邀请列表 ====================

// LoadInvites 拉取待处理的好友申请并重新渲染卡片
// 非 2xx 时清空列表并提示；响应不是数组时清空列表且不提示
// 请求没有得到响应时卡片保持不变
func (w *Widget) LoadInvites(ctx context.Context, tok string) ([]respond.InviteCard, error) {
	res, err := w.svc.api.GetFriendRequests(ctx, tok)
	if err != nil {
		zap.L().Error("拉取好友申请失败",
			zap.String("session_id", w.sessionID),
			zap.Error(err),
		)
		return nil, err
	}

	// 非 2xx 与形状不符都会清空列表，只有非 2xx 提示
	if resErr := res.Err(); resErr != nil {
		zap.L().Warn("好友申请响应异常",
			zap.String("session_id", w.sessionID),
			zap.Int("status", res.StatusCode),
			zap.Int("code", errorx.GetCode(resErr)),
			zap.Error(resErr),
		)
	}

	cards := []respond.InviteCard{}
	if !res.OK() {
		w.svc.relay.Show(ctx, w.sessionID, MsgGetRequestsFailed)
	} else if res.IsArray {
		for _, fr := range res.Requests {
			cards = append(cards, NewInviteCard(fr.Email))
		}
	}

	w.mu.Lock()
	w.invites = cards
	w.mu.Unlock()

	w.svc.relay.PushInvites(ctx, w.sessionID, cards)
	return cards, nil
}

// Invites 当前渲染的卡片（不发请求）
func (w *Widget) Invites() []respond.InviteCard {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]respond.InviteCard, len(w.invites))
	copy(out, w.invites)
	return out
}

// NewInviteCard 渲染一张邀请卡片，按钮顺序为 Reject、Accept
func NewInviteCard(email string) respond.InviteCard {
	return respond.InviteCard{
		Key:   "friend-" + email,
		Email: email,
		Text:  "From: " + email,
		Actions: []respond.CardAction{
			{Label: "Reject", Method: "PUT", Path: PathReject},
			{Label: "Accept", Method: "PUT", Path: PathAccept},
		},
	}
}

// ==================== 处理申请 ====================

// Accept 接受好友申请
func (w *Widget) Accept(ctx context.Context, tok, senderEmail string) (*respond.OperationRespond, error) {
	return w.handle(ctx, tok, senderEmail, friendsapi.StatusAccepted)
}

// Reject 拒绝好友申请
func (w *Widget) Reject(ctx context.Context, tok, senderEmail string) (*respond.OperationRespond, error) {
	return w.handle(ctx, tok, senderEmail, friendsapi.StatusRejected)
}

// handle 成功后刷新计数 +1 并在后台重新拉取邀请列表
// 卡片在重新拉取完成前保持可见
func (w *Widget) handle(ctx context.Context, tok, senderEmail string, status friendsapi.Status) (*respond.OperationRespond, error) {
	res, err := w.svc.api.HandleRequest(ctx, tok, senderEmail, status)
	if err != nil {
		zap.L().Error("处理好友申请失败",
			zap.String("session_id", w.sessionID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return nil, err
	}

	if !res.OK() {
		zap.L().Warn("好友服务处理申请失败",
			zap.String("session_id", w.sessionID),
			zap.String("sender", sanitize.Text(senderEmail)),
			zap.String("status", string(status)),
			zap.Error(res.Err()),
		)
		w.svc.relay.Show(ctx, w.sessionID, MsgHandleRequestFailed)
		return &respond.OperationRespond{Toast: MsgHandleRequestFailed}, nil
	}

	defaultMsg := MsgAcceptedSuccess
	if status == friendsapi.StatusRejected {
		defaultMsg = MsgRejectedSuccess
	}
	msg := alertOr(res, defaultMsg)
	w.svc.relay.Show(ctx, w.sessionID, msg)

	n, err := w.svc.store.IncrRefresh(ctx, w.sessionID)
	if err != nil {
		zap.L().Error("刷新计数失败", zap.String("session_id", w.sessionID), zap.Error(err))
	}
	w.scheduleReload(ctx, tok)

	return &respond.OperationRespond{Toast: msg, Refresh: n}, nil
}

// scheduleReload 刷新计数变化后重新拉取邀请列表
// 使用与浏览器请求解绑的 context，浏览器断开也会完成
func (w *Widget) scheduleReload(ctx context.Context, tok string) {
	reloadCtx := context.WithoutCancel(ctx)
	w.svc.store.SubmitTask(func() {
		_, _ = w.LoadInvites(reloadCtx, tok)
	})
}

// ==================== 快照 ====================

// State 返回挂件当前状态
func (w *Widget) State(ctx context.Context) (*respond.WidgetStateRespond, error) {
	toast, err := w.svc.relay.Current(ctx, w.sessionID)
	if err != nil {
		return nil, err
	}
	refresh, err := w.svc.store.GetRefresh(ctx, w.sessionID)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	invites := make([]respond.InviteCard, len(w.invites))
	copy(invites, w.invites)
	return &respond.WidgetStateRespond{
		Modal:   string(w.modal),
		Email:   w.email,
		Invites: invites,
		Toast:   toast,
		Refresh: refresh,
	}, nil
}

// alertOr 响应对象带 alert 属性时使用服务端文案
func alertOr(res *friendsapi.AlertResult, fallback string) string {
	if res.HasAlert {
		return res.Alert
	}
	return fallback
}
