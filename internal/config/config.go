// 包 config：集中读取 .env 与环境变量；解析失败的数值项回退默认值
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 命令行工具与客户端的运行配置
type Config struct {
	AMapKey        string
	AMapPrivateKey string
	AMapBaseURL    string
	AMapTimeout    time.Duration
	AMapQPS        float64
	RatePerMin     int
	Workers        int
	// Radius 批量逆地理的搜索半径（米），0 表示不下发由高德取默认值
	Radius int
	// SkipKnown 为 true 时导入前跳过库中已有结果的坐标
	SkipKnown bool

	RedisAddr string
	RedisPass string
	RedisDB   int
	// QuotaShared 为 true 时每分钟配额通过 Redis 在多个进程间共享
	QuotaShared bool

	PostgresDSN string
	MetricsAddr string
}

// Load 依次加载给定的 .env 文件（不存在时忽略），再读取环境变量
func Load(envFiles ...string) Config {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}
	return FromEnv()
}

// FromEnv 仅从当前环境变量构造配置
func FromEnv() Config {
	return Config{
		AMapKey:        os.Getenv("AMAP_SERVER_KEY"),
		AMapPrivateKey: os.Getenv("AMAP_PRIVATE_KEY"),
		AMapBaseURL:    envString("AMAP_BASE_URL", "https://restapi.amap.com"),
		AMapTimeout:    time.Duration(envInt("AMAP_TIMEOUT_MS", 5000)) * time.Millisecond,
		AMapQPS:        envFloat("AMAP_QPS", 50),
		RatePerMin:     envInt("AMAP_RATE_LIMIT_PER_MIN", 1200),
		Workers:        envInt("AMAP_WORKERS", 4),
		Radius:         envInt("AMAP_REGEO_RADIUS", 0),
		SkipKnown:      !strings.EqualFold(os.Getenv("AMAP_SKIP_KNOWN"), "false"),
		RedisAddr:      redisAddr(),
		RedisPass:      os.Getenv("REDIS_PASS"),
		RedisDB:        envInt("REDIS_DB", 0),
		QuotaShared:    strings.EqualFold(os.Getenv("AMAP_QUOTA_SHARED"), "true"),
		PostgresDSN:    PostgresDSN(),
		MetricsAddr:    os.Getenv("METRICS_ADDR"),
	}
}

func redisAddr() string {
	return envString("REDIS_HOST", "127.0.0.1") + ":" + envString("REDIS_PORT", "6379")
}

// PostgresDSN 由 PG_* 变量拼接连接串；PG_DSN 存在时直接使用
func PostgresDSN() string {
	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		return dsn
	}
	dsn := "postgres://" + envString("PG_USER", "postgres")
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		dsn += ":" + pass
	}
	dsn += "@" + envString("PG_HOST", "localhost") + ":" + envString("PG_PORT", "5432") +
		"/" + envString("PG_DB", "amapkit") + "?sslmode=" + envString("PG_SSLMODE", "disable")
	return dsn
}

func envString(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envFloat(name string, def float64) float64 {
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}
