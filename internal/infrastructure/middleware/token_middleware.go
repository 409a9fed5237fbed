package middleware

import (
	"net/http"
	"strings"

	"navbar_social/pkg/util/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 上下文 key
const (
	CtxToken     = "token"
	CtxSessionID = "session_id"
	CtxRequestID = "request_id"
)

// browserCookieMaxAge 浏览器 ID cookie 有效期（秒）
const browserCookieMaxAge = 30 * 24 * 3600

// Token 读取浏览器带来的凭证并派生会话 ID
// 优先读取 cookie（浏览器本地存储的 key），其次读取 Authorization 头
// 凭证缺失时不拦截，后续对好友服务的调用会带上 "Bearer null"；
// 会话按 browserCookie 中的随机浏览器 ID 区分，没有时下发一个
func Token(cookieName, browserCookie string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := c.Cookie(cookieName)
		if err != nil || tok == "" {
			tok = bearerFromHeader(c.GetHeader("Authorization"))
		}
		c.Set(CtxToken, tok)
		if tok != "" {
			c.Set(CtxSessionID, token.SessionID(tok))
		} else {
			c.Set(CtxSessionID, token.AnonymousSessionID(browserID(c, browserCookie)))
		}
		c.Next()
	}
}

// browserID 读取浏览器 ID，不存在或格式不对时生成新的并写回 cookie
func browserID(c *gin.Context, browserCookie string) string {
	if id, err := c.Cookie(browserCookie); err == nil {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(browserCookie, id, browserCookieMaxAge, "/", "", c.Request.TLS != nil, true)
	return id
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	tok := strings.TrimSpace(parts[1])
	if tok == token.MissingToken {
		return ""
	}
	return tok
}

// RequestID 为每个浏览器请求分配 ID，已有 X-Request-ID 时沿用
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(CtxRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
