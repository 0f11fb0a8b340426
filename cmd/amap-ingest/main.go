package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"amap-kit/internal/amap"
	"amap-kit/internal/config"
	"amap-kit/internal/ingest"
	"amap-kit/internal/logger"
	"amap-kit/internal/metrics"
	"amap-kit/internal/quota"
	"amap-kit/internal/store"
)

// 文档注释：坐标批量逆地理导入
// 背景：输入为每行一个 "lng,lat" 的文件（AMAP_INPUT_FILE）或标准输入；结果按坐标去重写入 PostgreSQL。
// 约束：每分钟请求数受 AMAP_RATE_LIMIT_PER_MIN 限制；AMAP_QUOTA_SHARED=true 时经 Redis 在多个进程间共享；
// 库中已有结果的坐标默认跳过（AMAP_SKIP_KNOWN=false 时全部重查），AMAP_REGEO_RADIUS 设置搜索半径。
func main() {
	cfg := config.Load(".env")
	l := logger.Setup()
	l.Info("amap_ingest_start")
	if cfg.AMapKey == "" {
		l.Error("amap_key_missing")
		os.Exit(1)
	}
	if cfg.Radius > amap.RadiusMax {
		l.Error("amap_radius_invalid", "radius", cfg.Radius, "max", amap.RadiusMax)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.PostgresDSN)
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer st.Close()
	if err := st.EnsureSchema(ctx); err != nil {
		l.Error("db_schema_error", "err", err)
		os.Exit(1)
	}

	var in io.Reader = os.Stdin
	if p := os.Getenv("AMAP_INPUT_FILE"); p != "" {
		f, err := os.Open(p)
		if err != nil {
			l.Error("input_open_error", "err", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}
	locs, err := ingest.ReadLocations(in)
	if err != nil {
		l.Error("input_read_error", "err", err)
	}

	var limiter quota.Limiter = quota.NewMinuteLimiter(cfg.RatePerMin)
	if cfg.QuotaShared {
		if rc := quota.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB); rc != nil {
			defer rc.Close()
			limiter = quota.NewRedisLimiter(rc, "amap:quota:"+cfg.AMapKey[:min(6, len(cfg.AMapKey))], cfg.RatePerMin)
		}
	}

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				l.Error("metrics_listen_error", "err", err)
			}
		}()
	}

	client := amap.NewClient(cfg.AMapKey,
		amap.WithBaseURL(cfg.AMapBaseURL),
		amap.WithPrivateKey(cfg.AMapPrivateKey),
		amap.WithQPS(cfg.AMapQPS),
		amap.WithHTTPClient(&http.Client{Timeout: cfg.AMapTimeout, Transport: logger.Transport(l, nil)}),
	)
	mode := ingest.ModeReGeo
	if strings.EqualFold(os.Getenv("AMAP_INGEST_MODE"), string(ingest.ModeOps)) {
		mode = ingest.ModeOps
	}
	runner := &ingest.Runner{
		Client:     client,
		Sink:       st,
		Quota:      limiter,
		Workers:    cfg.Workers,
		Mode:       mode,
		Extensions: strings.EqualFold(os.Getenv("AMAP_EXTENSIONS"), "all"),
		Radius:     cfg.Radius,
		SkipKnown:  cfg.SkipKnown,
	}
	t0 := time.Now()
	stats, err := runner.Run(ctx, locs)
	if err != nil {
		l.Error("amap_ingest_aborted", "err", err)
	}
	l.Info("amap_ingest_done",
		"total", len(locs),
		"chunks", stats.Chunks,
		"written", stats.Written,
		"failed", stats.Failed,
		"skipped", stats.Skipped,
		"duration_ms", time.Since(t0).Milliseconds(),
	)
}
