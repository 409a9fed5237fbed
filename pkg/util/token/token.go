// Package token 处理浏览器带来的凭证
// 本服务从不校验凭证，校验由好友服务负责
package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MissingToken 浏览器本地没有凭证时实际发送的值
// 与浏览器读取不存在的 key 得到 null 再拼接进 header 的行为一致
const MissingToken = "null"

// sessionNamespace 会话 ID 的命名空间
var sessionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("navbar_social/session"))

// BearerHeader 拼接 Authorization 头
// 凭证缺失时不拦截，照常发送 "Bearer null"
func BearerHeader(tok string) string {
	if tok == "" {
		tok = MissingToken
	}
	return "Bearer " + tok
}

// anonymousNamespace 没有凭证的浏览器使用独立的命名空间，避免与凭证派生的 ID 冲突
var anonymousNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("navbar_social/anonymous"))

// SessionID 由凭证派生出稳定的会话 ID，原始凭证不会被用作存储 key
func SessionID(tok string) string {
	return uuid.NewSHA1(sessionNamespace, []byte(tok)).String()
}

// AnonymousSessionID 没有凭证时由浏览器 ID（cookie）派生会话 ID
func AnonymousSessionID(browserID string) string {
	return uuid.NewSHA1(anonymousNamespace, []byte(browserID)).String()
}

// Claims 仅用于日志的凭证声明
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Peek 不校验签名地读取凭证声明，只用于日志字段
// 凭证不是 JWT 时返回 nil
func Peek(tok string) *Claims {
	if tok == "" {
		return nil
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return nil
	}
	return claims
}

// Who 返回凭证里能识别出的用户标识（email 优先，其次 sub）
func Who(tok string) string {
	claims := Peek(tok)
	if claims == nil {
		return ""
	}
	if claims.Email != "" {
		return claims.Email
	}
	return claims.Subject
}
