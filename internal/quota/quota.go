// 包 quota：高德每分钟调用配额控制；进程内计数或经 Redis 在多个进程间共享
package quota

import (
	"context"
	"strconv"
	"sync"
	"time"

	"amap-kit/internal/logger"
	"amap-kit/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// Limiter 配额判定：true 表示本次调用可以发出
type Limiter interface {
	Allow(ctx context.Context) (bool, error)
}

// 文档注释：进程内每分钟计数
// 背景：受外部配额限制，控制每分钟最大请求数；按自然分钟重置。
type MinuteLimiter struct {
	capacity int
	used     int
	lastMin  int64
	mu       sync.Mutex
	now      func() time.Time
}

func NewMinuteLimiter(capacity int) *MinuteLimiter {
	return &MinuteLimiter{capacity: capacity, now: time.Now}
}

func (ml *MinuteLimiter) Allow(ctx context.Context) (bool, error) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	nowMin := ml.now().Unix() / 60
	if ml.lastMin != nowMin {
		ml.lastMin = nowMin
		ml.used = 0
	}
	if ml.used < ml.capacity {
		ml.used++
		return true, nil
	}
	metrics.QuotaRejectedTotal.Inc()
	return false, nil
}

// counter RedisLimiter 实际使用的命令子集
type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// 文档注释：Redis 共享每分钟计数
// 背景：多个采集进程共用同一个 key 的配额时，进程内计数无法协调；以 "<prefix>:<unix分钟>" 为键 INCR 计数。
// 约束：首次计数时设置 2 分钟过期；Redis 异常时放行并返回错误，由调用方记录，不阻断主流程。
type RedisLimiter struct {
	rc       counter
	prefix   string
	capacity int
	now      func() time.Time
}

func NewRedisLimiter(rc counter, prefix string, capacity int) *RedisLimiter {
	if prefix == "" {
		prefix = "amap:quota"
	}
	return &RedisLimiter{rc: rc, prefix: prefix, capacity: capacity, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context) (bool, error) {
	key := l.prefix + ":" + strconv.FormatInt(l.now().Unix()/60, 10)
	n, err := l.rc.Incr(ctx, key).Result()
	if err != nil {
		logger.L().Warn("quota_redis_error", "key", key, "err", err)
		return true, err
	}
	if n == 1 {
		_ = l.rc.Expire(ctx, key, 2*time.Minute).Err()
	}
	if n > int64(l.capacity) {
		metrics.QuotaRejectedTotal.Inc()
		return false, nil
	}
	return true, nil
}

// OpenRedis 打开 Redis 客户端；addr 为空时返回 nil
func OpenRedis(addr, pass string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	logger.L().Debug("redis_open", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

// Wait 阻塞直到配额放行或 ctx 结束；轮询间隔 250ms
func Wait(ctx context.Context, l Limiter) error {
	for {
		ok, _ := l.Allow(ctx)
		if ok {
			return nil
		}
		t := time.NewTimer(250 * time.Millisecond)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
