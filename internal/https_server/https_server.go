// Package https_server 提供 HTTP/HTTPS 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件和路由
package https_server

import (
	"navbar_social/internal/config"
	"navbar_social/internal/handler"
	"navbar_social/internal/infrastructure/logger"
	"navbar_social/internal/infrastructure/middleware"
	"navbar_social/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 初始化 HTTP/HTTPS 服务器并返回 Gin 引擎实例
// 配置顺序：
//  1. 创建空白 Gin 引擎
//  2. 注册请求 ID、日志和恢复中间件
//  3. 配置 CORS 跨域规则，按需开启 TLS 重定向
//  4. 解析浏览器凭证
//  5. 注册业务路由
func Init(handlers *handler.Handlers, conf *config.Config) *gin.Engine {
	if conf.MainConfig.Mode != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	// 请求 ID 需要在日志之前写入上下文
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // 生产环境应指定具体域名
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	engine.Use(cors.New(corsConfig))

	// 由 Nginx 终止 TLS 时保持 forceTLS = false
	if conf.MainConfig.ForceTLS {
		engine.Use(middleware.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))
	}

	engine.Use(middleware.Token(conf.TokenConfig.CookieName, conf.TokenConfig.BrowserCookie))

	rt := router.NewRouter(handlers)
	rt.RegisterRoutes(engine)

	return engine
}
