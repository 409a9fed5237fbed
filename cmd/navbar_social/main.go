package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"navbar_social/internal/config"
	"navbar_social/internal/dao/memory"
	myredis "navbar_social/internal/dao/redis"
	"navbar_social/internal/friendsapi"
	"navbar_social/internal/gateway/websocket"
	"navbar_social/internal/handler"
	"navbar_social/internal/https_server"
	"navbar_social/internal/infrastructure/logger"
	"navbar_social/internal/infrastructure/mq"
	"navbar_social/internal/service"
	"navbar_social/internal/service/social"

	"go.uber.org/zap"
)

// 后台刷新任务的协程数与队列长度
const (
	workerNum  = 8
	bufferSize = 256
)

func main() {
	// 1. 加载配置
	conf, err := config.LoadConfig()
	if err != nil {
		log.Printf("load config failed, using defaults: %v", err)
	}

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化状态存储
	var store myredis.AsyncStateStore
	if conf.StoreConfig.StoreMode == "redis" {
		rs, err := myredis.Init(&conf.RedisConfig, workerNum, bufferSize, conf.SessionIdleTTL())
		if err != nil {
			zap.L().Fatal("Redis 初始化失败", zap.Error(err))
		}
		store = rs
		zap.L().Info("Redis 状态存储初始化成功")
	} else {
		store = memory.New(conf.SessionIdleTTL())
		zap.L().Info("内存状态存储初始化成功")
	}

	// 4. 初始化推送通道
	ctx, cancel := context.WithCancel(context.Background())
	hub := websocket.NewHub()
	var (
		pub      social.Publisher = hub
		notifier *mq.KafkaNotifier
	)
	if conf.KafkaConfig.NotifyMode == "kafka" {
		notifier = mq.NewKafkaNotifier(conf.KafkaConfig)
		pub = notifier
		go notifier.Run(ctx, hub.Deliver)
		zap.L().Info("Kafka 推送通道初始化成功", zap.String("topic", conf.KafkaConfig.ToastTopic))
	}

	// 5. 初始化 Service 层 (依赖注入)
	validator, err := social.NewFormValidator(conf.ValidatorConfig.Locale)
	if err != nil {
		zap.L().Fatal("表单校验器初始化失败", zap.Error(err))
	}
	svcs := service.NewServices(service.Deps{
		API:       friendsapi.New(conf.APIConfig.BaseURL, conf.APITimeout()),
		Store:     store,
		Publisher: pub,
		Validator: validator,
		ToastTTL:  conf.ToastDuration(),
		IdleTTL:   conf.SessionIdleTTL(),
	})
	zap.L().Info("Service 层初始化成功", zap.String("api", conf.APIConfig.BaseURL))

	// 6. 初始化 HTTP 服务器
	engine := https_server.Init(handler.NewHandlers(svcs, hub), conf)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()
	zap.L().Info("服务启动", zap.String("addr", srv.Addr))

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}

	cancel()
	if notifier != nil {
		notifier.Close()
	}
	hub.Close()
	svcs.Close()

	zap.L().Info("服务器已关闭")
	_ = zap.L().Sync()
}
