// Package handler 提供 HTTP 请求处理器
// 本文件处理导航栏社交挂件的浏览器请求
package handler

import (
	"context"
	"html/template"
	"net/http"

	"navbar_social/internal/dto/request"
	"navbar_social/internal/dto/respond"
	"navbar_social/internal/gateway/websocket"
	"navbar_social/internal/infrastructure/middleware"
	"navbar_social/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// invitesTemplate 邀请下拉列表片段，没有卡片时渲染空列表
// 邮箱按原文展示，由 html/template 负责转义
var invitesTemplate = template.Must(template.New("invites").Parse(
	`<ul class="friend-invites">{{range .}}<li class="friend-invite" data-key="{{.Key}}">` +
		`<span>{{.Text}}</span>{{$email := .Email}}{{range .Actions}}` +
		`<button data-method="{{.Method}}" data-path="{{.Path}}" data-sender="{{$email}}">{{.Label}}</button>` +
		`{{end}}</li>{{end}}</ul>`))

// SocialHandler 社交挂件 Handler
type SocialHandler struct {
	svc service.SocialService
	hub *websocket.Hub
}

// NewSocialHandler 构造函数
func NewSocialHandler(svc service.SocialService, hub *websocket.Hub) *SocialHandler {
	return &SocialHandler{svc: svc, hub: hub}
}

// detached 返回与浏览器连接解绑的 context
// 浏览器断开后对好友服务的调用仍然完成并更新状态
func detached(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func session(c *gin.Context) (sessionID, tok string) {
	return c.GetString(middleware.CtxSessionID), c.GetString(middleware.CtxToken)
}

// MountHandler 挂载挂件
// POST /social/mount
// 响应: respond.WidgetStateRespond
func (h *SocialHandler) MountHandler(c *gin.Context) {
	sid, tok := session(c)
	data, err := h.svc.Mount(detached(c), sid, tok)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// StateHandler 状态快照
// GET /social/state
func (h *SocialHandler) StateHandler(c *gin.Context) {
	sid, _ := session(c)
	data, err := h.svc.State(c.Request.Context(), sid)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// InvitesHandler 邀请下拉列表 HTML 片段
// GET /social/invites
func (h *SocialHandler) InvitesHandler(c *gin.Context) {
	sid, _ := session(c)
	cards := h.svc.Invites(sid)
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := invitesTemplate.Execute(c.Writer, cards); err != nil {
		zap.L().Error("render invites failed", zap.String("session_id", sid), zap.Error(err))
	}
}

// OpenModalHandler 打开好友申请弹窗
// POST /social/modal/open
func (h *SocialHandler) OpenModalHandler(c *gin.Context) {
	sid, _ := session(c)
	HandleSuccess(c, gin.H{"modal": h.svc.OpenModal(sid)})
}

// CloseModalHandler 取消弹窗
// POST /social/modal/close
func (h *SocialHandler) CloseModalHandler(c *gin.Context) {
	sid, _ := session(c)
	h.svc.CloseModal(sid)
	HandleSuccess(c, nil)
}

// SubmitHandler 提交好友申请
// POST /social/requests
// 请求体: request.FriendRequestForm
// 响应: respond.OperationRespond；校验失败时 msg 为字段提示
func (h *SocialHandler) SubmitHandler(c *gin.Context) {
	var req request.FriendRequestForm
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	sid, tok := session(c)
	data, err := h.svc.Submit(detached(c), sid, tok, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// AcceptHandler 接受好友申请
// PUT /social/requests/accept
// 请求体: request.HandleFriendRequest
func (h *SocialHandler) AcceptHandler(c *gin.Context) {
	h.handle(c, h.svc.Accept)
}

// RejectHandler 拒绝好友申请
// PUT /social/requests/reject
// 请求体: request.HandleFriendRequest
func (h *SocialHandler) RejectHandler(c *gin.Context) {
	h.handle(c, h.svc.Reject)
}

type handleFunc func(ctx context.Context, sessionID, tok, senderEmail string) (*respond.OperationRespond, error)

func (h *SocialHandler) handle(c *gin.Context, fn handleFunc) {
	var req request.HandleFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	sid, tok := session(c)
	data, err := fn(detached(c), sid, tok, req.SenderEmail)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DismissToastHandler 隐藏 toast
// POST /social/toast/dismiss
func (h *SocialHandler) DismissToastHandler(c *gin.Context) {
	sid, _ := session(c)
	if err := h.svc.DismissToast(c.Request.Context(), sid); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// WsHandler 升级为 WebSocket，推送当前会话的 toast 与邀请列表事件
// GET /social/ws
func (h *SocialHandler) WsHandler(c *gin.Context) {
	sid, _ := session(c)
	h.hub.ServeWS(c, sid)
}

// HealthHandler 存活检查
// GET /healthz
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
