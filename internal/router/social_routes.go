package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterSocialRoutes 注册导航栏社交挂件路由
func (rt *Router) RegisterSocialRoutes(rg *gin.RouterGroup) {
	h := rt.handlers.Social

	rg.POST("/mount", h.MountHandler)
	rg.GET("/state", h.StateHandler)
	rg.GET("/invites", h.InvitesHandler)

	rg.POST("/modal/open", h.OpenModalHandler)
	rg.POST("/modal/close", h.CloseModalHandler)

	rg.POST("/requests", h.SubmitHandler)
	rg.PUT("/requests/accept", h.AcceptHandler)
	rg.PUT("/requests/reject", h.RejectHandler)

	rg.POST("/toast/dismiss", h.DismissToastHandler)

	// 浏览器通过此连接接收 toast 与邀请列表事件
	// 请求示例: ws://host:port/social/ws（凭证走 cookie）
	rg.GET("/ws", h.WsHandler)
}
