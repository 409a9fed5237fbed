package redis

import (
	"context"
	"strconv"
	"time"

	"navbar_social/internal/config"
	"navbar_social/pkg/errorx"

	"github.com/cenkalti/backoff"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 连接重试参数
const (
	pingInitialInterval = 200 * time.Millisecond
	pingMaxInterval     = 2 * time.Second
	pingMaxElapsed      = 15 * time.Second
)

// Init 根据配置创建 Redis 客户端，PING 成功后返回状态存储
// 启动时 Redis 可能尚未就绪，PING 以指数退避重试
func Init(conf *config.RedisConfig, workerNum, bufferSize int, idleTTL time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         conf.Host + ":" + strconv.Itoa(conf.Port),
		Password:     conf.Password,
		DB:           conf.Db,
		PoolSize:     50,
		MinIdleConns: workerNum,
	})

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = pingInitialInterval
	bo.MaxInterval = pingMaxInterval
	bo.MaxElapsedTime = pingMaxElapsed

	err := backoff.RetryNotify(func() error {
		return client.Ping(context.Background()).Err()
	}, bo, func(err error, next time.Duration) {
		zap.L().Warn("redis 未就绪，稍后重试", zap.Error(err), zap.Duration("next", next))
	})
	if err != nil {
		_ = client.Close()
		return nil, errorx.Wrap(err, errorx.CodeCacheError, "redis ping")
	}

	return NewRedisStore(client, workerNum, bufferSize, idleTTL), nil
}
