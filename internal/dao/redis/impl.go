package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	"navbar_social/pkg/errorx"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore StateStore 的 Redis 实现
// toast 使用带 PX 过期的 String，刷新计数使用 INCR
// 同时持有一个 Worker Pool，用于执行后台任务
type RedisStore struct {
	client   *redis.Client
	idleTTL  time.Duration
	taskChan chan func()
	wg       sync.WaitGroup
	once     sync.Once
}

// NewRedisStore 创建 Redis 状态存储并启动 workerNum 个后台 Worker
// idleTTL 为刷新计数的空闲过期时间，<= 0 时使用 DefaultIdleTTL
func NewRedisStore(client *redis.Client, workerNum, bufferSize int, idleTTL time.Duration) *RedisStore {
	if workerNum <= 0 {
		workerNum = 1
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	rs := &RedisStore{
		client:   client,
		idleTTL:  idleTTL,
		taskChan: make(chan func(), bufferSize),
	}
	for i := 0; i < workerNum; i++ {
		rs.wg.Add(1)
		go rs.startWorker()
	}
	zap.L().Info("Redis state workers started", zap.Int("workers", workerNum), zap.Int("buffer", bufferSize))
	return rs
}

// startWorker 单个 Worker 消费循环，单个任务 panic 不影响后续任务
func (r *RedisStore) startWorker() {
	defer r.wg.Done()
	for task := range r.taskChan {
		r.run(task)
	}
}

func (r *RedisStore) run(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("Redis Worker panic", zap.Any("recover", rec))
		}
	}()
	if task != nil {
		task()
	}
}

// ==================== toast ====================

// SetToast 覆盖写入 toast
func (r *RedisStore) SetToast(ctx context.Context, sessionID, message string, ttl time.Duration) error {
	key := toastKey(sessionID)
	if err := r.client.Set(ctx, key, message, ttl).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set key %s", key)
	}
	return nil
}

// GetToast 读取 toast，key 不存在即不可见
func (r *RedisStore) GetToast(ctx context.Context, sessionID string) (string, bool, error) {
	key := toastKey(sessionID)
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", key)
	}
	return value, true, nil
}

// DismissToast 删除 toast
func (r *RedisStore) DismissToast(ctx context.Context, sessionID string) error {
	key := toastKey(sessionID)
	if err := r.client.Unlink(ctx, key).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis unlink key %s", key)
	}
	return nil
}

// ==================== 刷新计数 ====================

// IncrRefresh 刷新计数 +1，并在同一事务中顺延空闲过期时间
func (r *RedisStore) IncrRefresh(ctx context.Context, sessionID string) (int64, error) {
	key := refreshKey(sessionID)
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, r.idleTTL)
		return nil
	})
	if err != nil {
		return 0, errorx.Wrapf(err, errorx.CodeCacheError, "redis incr key %s", key)
	}
	return incr.Val(), nil
}

// GetRefresh 读取刷新计数
func (r *RedisStore) GetRefresh(ctx context.Context, sessionID string) (int64, error) {
	key := refreshKey(sessionID)
	n, err := r.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", key)
	}
	return n, nil
}

// ==================== 异步任务 ====================

// SubmitTask 提交后台任务，通道满时降级为同步执行
func (r *RedisStore) SubmitTask(action func()) {
	select {
	case r.taskChan <- action:
	default:
		zap.L().Warn("Redis task channel full, executing synchronously")
		r.run(action)
	}
}

// Close 停止 Worker 并关闭客户端
func (r *RedisStore) Close() {
	r.once.Do(func() {
		close(r.taskChan)
		r.wg.Wait()
		if err := r.client.Close(); err != nil {
			zap.L().Error("close redis client", zap.Error(err))
		}
	})
}

var _ AsyncStateStore = (*RedisStore)(nil)
