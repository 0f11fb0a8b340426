package ingest

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"amap-kit/internal/amap"
	"amap-kit/internal/logger"
	"amap-kit/internal/metrics"
	"amap-kit/internal/quota"
	"amap-kit/internal/store"

	"golang.org/x/sync/errgroup"
)

// Geocoder Runner 依赖的传输能力；*amap.Client 满足该接口
type Geocoder interface {
	ReGeoCode(ctx context.Context, r *amap.ReGeoCodeRequestParams) (*amap.ReGeoCodeResponse, error)
	Batch(ctx context.Context, ops []amap.BatchOp) ([]amap.BatchResult, error)
}

// Sink 结果落库；*store.Store 满足该接口
type Sink interface {
	UpsertReGeo(ctx context.Context, rows []store.Row) error
	RecordFailure(ctx context.Context, key, reason string) error
}

// KnownChecker 可选能力：Sink 同时实现时，Runner 可在分块前跳过已有结果的坐标
type KnownChecker interface {
	Known(ctx context.Context, key string) (bool, error)
}

// Mode 批量方式
type Mode string

const (
	// ModeReGeo 逆地理接口自带批量：多个坐标以 "|" 拼接、batch=true
	ModeReGeo Mode = "regeo"
	// ModeOps 批量接口：每个坐标一个子请求
	ModeOps Mode = "ops"
)

// Stats 一次运行的计数
type Stats struct {
	Chunks  int64
	Written int64
	Failed  int64
	Skipped int64
}

// 文档注释：逆地理批量导入
// 背景：坐标按 20 个一块并发处理；每块发出一次请求，成功结果单事务写库，失败坐标记录原因。
// 约束：单块失败不终止整体；只有 ctx 结束才提前返回；SkipKnown 仅在 Sink 实现 KnownChecker 时生效。
type Runner struct {
	Client     Geocoder
	Sink       Sink
	Quota      quota.Limiter
	Workers    int
	Mode       Mode
	Extensions bool
	// Radius 大于 0 时随请求下发
	Radius    int
	SkipKnown bool
}

func (r *Runner) Run(ctx context.Context, locs []amap.Location) (Stats, error) {
	var st Stats
	if r.SkipKnown {
		if kc, ok := r.Sink.(KnownChecker); ok {
			var err error
			locs, st.Skipped, err = filterKnown(ctx, kc, locs)
			if err != nil {
				return st, err
			}
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)
	for _, chunk := range Chunk(locs, amap.BatchMaxOps) {
		chunk := chunk
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if r.Quota != nil {
				if err := quota.Wait(gctx, r.Quota); err != nil {
					return err
				}
			}
			atomic.AddInt64(&st.Chunks, 1)
			rows, failed := r.process(gctx, chunk)
			for key, reason := range failed {
				atomic.AddInt64(&st.Failed, 1)
				metrics.IngestSkippedTotal.WithLabelValues("amap").Inc()
				if err := r.Sink.RecordFailure(gctx, key, reason); err != nil {
					logger.L().Error("ingest_failure_record_error", "loc", key, "err", err)
				}
			}
			if len(rows) == 0 {
				return nil
			}
			if err := r.Sink.UpsertReGeo(gctx, rows); err != nil {
				logger.L().Error("ingest_upsert_error", "rows", len(rows), "err", err)
				return nil
			}
			atomic.AddInt64(&st.Written, int64(len(rows)))
			metrics.IngestWrittenTotal.Add(float64(len(rows)))
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return st, err
}

// filterKnown 查询失败的坐标保留，照常请求
func filterKnown(ctx context.Context, kc KnownChecker, locs []amap.Location) ([]amap.Location, int64, error) {
	out := make([]amap.Location, 0, len(locs))
	var skipped int64
	for _, l := range locs {
		if err := ctx.Err(); err != nil {
			return nil, skipped, err
		}
		known, err := kc.Known(ctx, l.String())
		if err != nil {
			logger.L().Warn("ingest_known_check_error", "loc", l.String(), "err", err)
		}
		if known {
			skipped++
			metrics.IngestSkippedTotal.WithLabelValues("known").Inc()
			continue
		}
		out = append(out, l)
	}
	return out, skipped, nil
}

func (r *Runner) process(ctx context.Context, chunk []amap.Location) ([]store.Row, map[string]string) {
	if r.Mode == ModeOps {
		return r.processOps(ctx, chunk)
	}
	return r.processReGeo(ctx, chunk)
}

func (r *Runner) args(location any, batch bool) (amap.Args, error) {
	ext, err := amap.NewExtensions(r.Extensions, nil)
	if err != nil {
		return nil, err
	}
	args := amap.Args{"location": location, "batch": batch, "extensions": ext}
	if r.Radius > 0 {
		args["radius"] = r.Radius
	}
	return args, nil
}

func failAll(chunk []amap.Location, reason string) map[string]string {
	out := make(map[string]string, len(chunk))
	for _, l := range chunk {
		out[l.String()] = reason
	}
	return out
}

// processReGeo 一块坐标一次逆地理请求；结果顺序与坐标顺序一致
func (r *Runner) processReGeo(ctx context.Context, chunk []amap.Location) ([]store.Row, map[string]string) {
	args, err := r.args(chunk, len(chunk) > 1)
	if err != nil {
		return nil, failAll(chunk, err.Error())
	}
	req, err := amap.NewReGeoCodeRequestParams(args)
	if err != nil {
		return nil, failAll(chunk, err.Error())
	}
	resp, err := r.Client.ReGeoCode(ctx, req)
	if err != nil {
		logger.L().Warn("ingest_regeo_error", "size", len(chunk), "err", err)
		return nil, failAll(chunk, err.Error())
	}
	if len(resp.Data) != len(chunk) {
		logger.L().Warn("ingest_regeo_count_mismatch", "want", len(chunk), "got", len(resp.Data))
	}
	return r.collect(chunk, func(i int) (amap.ReGeoCodeData, string) {
		if i >= len(resp.Data) {
			return amap.ReGeoCodeData{}, "missing result"
		}
		return resp.Data[i], ""
	})
}

// processOps 一块坐标作为批量接口的子请求提交
func (r *Runner) processOps(ctx context.Context, chunk []amap.Location) ([]store.Row, map[string]string) {
	ops := make([]amap.BatchOp, 0, len(chunk))
	for _, loc := range chunk {
		args, err := r.args(loc, false)
		if err != nil {
			return nil, failAll(chunk, err.Error())
		}
		req, err := amap.NewReGeoCodeRequestParams(args)
		if err != nil {
			return nil, failAll(chunk, err.Error())
		}
		p, err := req.PrepareData()
		if err != nil {
			return nil, failAll(chunk, err.Error())
		}
		params, err := p.GenerateParams()
		if err != nil {
			return nil, failAll(chunk, err.Error())
		}
		ops = append(ops, amap.BatchOp{Path: amap.PathReGeoCode, Params: params})
	}
	results, err := r.Client.Batch(ctx, ops)
	if err != nil {
		logger.L().Warn("ingest_batch_error", "size", len(chunk), "err", err)
		return nil, failAll(chunk, err.Error())
	}
	return r.collect(chunk, func(i int) (amap.ReGeoCodeData, string) {
		if i >= len(results) {
			return amap.ReGeoCodeData{}, "missing result"
		}
		if results[i].Status != http.StatusOK {
			return amap.ReGeoCodeData{}, fmt.Sprintf("sub request status %d", results[i].Status)
		}
		resp, err := amap.ParseReGeoCodeResponse(results[i].Body)
		if err != nil {
			return amap.ReGeoCodeData{}, err.Error()
		}
		if err := resp.Err(); err != nil {
			return amap.ReGeoCodeData{}, err.Error()
		}
		if len(resp.Data) == 0 {
			return amap.ReGeoCodeData{}, "empty result"
		}
		return resp.Data[0], ""
	})
}

func (r *Runner) collect(chunk []amap.Location, at func(i int) (amap.ReGeoCodeData, string)) ([]store.Row, map[string]string) {
	rows := make([]store.Row, 0, len(chunk))
	failed := map[string]string{}
	for i, loc := range chunk {
		d, reason := at(i)
		if reason != "" {
			failed[loc.String()] = reason
			continue
		}
		row, err := store.RowFromReGeo(loc, d)
		if err != nil {
			failed[loc.String()] = err.Error()
			continue
		}
		rows = append(rows, row)
	}
	return rows, failed
}
