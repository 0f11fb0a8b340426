package amap

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"amap-kit/internal/logger"
	"amap-kit/internal/metrics"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://restapi.amap.com"

	PathGeoCode   = "/v3/geocode/geo"
	PathReGeoCode = "/v3/geocode/regeo"
	PathIP        = "/v3/ip"
	PathBatch     = "/v3/batch"
)

// ErrQuotaExceeded 共享配额已用尽
var ErrQuotaExceeded = errors.New("amap: quota exceeded")

// QuotaGuard 每分钟配额判定；由 internal/quota 提供实现
type QuotaGuard interface {
	Allow(ctx context.Context) (bool, error)
}

// 文档注释：高德 Web 服务传输客户端
// 背景：参数构造与响应解码之外的传输职责集中在此：补齐 key、按私钥签名、本地 QPS 平滑、共享配额、指标与日志。
// 约束：只发出 GET（批量接口为 POST）；不做重试，失败原样返回给调用方决定。
type Client struct {
	baseURL    string
	key        string
	privateKey string
	http       *http.Client
	limiter    *rate.Limiter
	quota      QuotaGuard
}

type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") } }

// WithHTTPClient 传入共享 HTTP 客户端；为空时使用带访问日志的 5s 超时客户端
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func WithPrivateKey(k string) Option { return func(c *Client) { c.privateKey = k } }

// WithQPS 本地每秒请求上限；<=0 表示不限
func WithQPS(qps float64) Option {
	return func(c *Client) {
		if qps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(qps), 1)
		}
	}
}

func WithQuota(q QuotaGuard) Option { return func(c *Client) { c.quota = q } }

func NewClient(key string, opts ...Option) *Client {
	c := &Client{baseURL: DefaultBaseURL, key: key}
	for _, o := range opts {
		o(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 5 * time.Second, Transport: logger.Transport(logger.L(), nil)}
	}
	return c
}

// 文档注释：补齐公共参数并签名
// 约束：调用方已提供 key/sig 时不覆盖；私钥只参与签名，不出现在请求中。
func (c *Client) finalize(params map[string]string, privateKey string) (map[string]string, error) {
	out := make(map[string]string, len(params)+2)
	for k, v := range params {
		out[k] = v
	}
	if out["key"] == "" {
		if c.key == "" {
			return nil, &MissingParameterError{Field: "key"}
		}
		out["key"] = c.key
	}
	if privateKey == "" {
		privateKey = c.privateKey
	}
	if privateKey != "" && out["sig"] == "" {
		out["sig"] = Sign(out, privateKey)
	}
	return out, nil
}

// Sign 数字签名：参数按键名升序拼接为 k=v&k=v，末尾追加私钥后取 md5
func Sign(params map[string]string, privateKey string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "sig" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	sum := md5.Sum([]byte(strings.Join(parts, "&") + privateKey))
	return hex.EncodeToString(sum[:])
}

func (c *Client) admit(ctx context.Context, endpoint string) error {
	if c.quota != nil {
		ok, err := c.quota.Allow(ctx)
		if err != nil {
			logger.L().Warn("amap_quota_error", "endpoint", endpoint, "err", err)
		}
		if !ok {
			metrics.AMapFailTotal.WithLabelValues(endpoint, "quota").Inc()
			return ErrQuotaExceeded
		}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// 文档注释：发出一次 GET 请求并返回原始响应体
// 参数：path 为接口路径（如 /v3/geocode/regeo）；params 为 GenerateParams 的结果；privateKey 可为空。
// 返回：HTTP 非 200 时返回错误；业务状态由调用方解码后判定。
func (c *Client) Do(ctx context.Context, path string, params map[string]string, privateKey string) ([]byte, error) {
	endpoint := endpointName(path)
	q, err := c.finalize(params, privateKey)
	if err != nil {
		return nil, err
	}
	if err := c.admit(ctx, endpoint); err != nil {
		return nil, err
	}
	values := url.Values{}
	for k, v := range q {
		values.Set(k, v)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return c.send(req, endpoint)
}

func (c *Client) send(req *http.Request, endpoint string) ([]byte, error) {
	t0 := time.Now()
	metrics.AMapRequestsTotal.WithLabelValues(endpoint).Inc()
	logger.L().Debug("amap_req", "endpoint", endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		logger.L().Error("amap_http_error", "endpoint", endpoint, "err", err)
		metrics.AMapFailTotal.WithLabelValues(endpoint, "http").Inc()
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	metrics.AMapDurationMs.WithLabelValues(endpoint).Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.AMapFailTotal.WithLabelValues(endpoint, "read").Inc()
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		logger.L().Error("amap_http_status", "endpoint", endpoint, "status", resp.StatusCode)
		metrics.AMapFailTotal.WithLabelValues(endpoint, "http").Inc()
		return nil, fmt.Errorf("amap: http status %d", resp.StatusCode)
	}
	return body, nil
}

// observe 按响应头部记录成功/失败并转换业务错误
func observe(endpoint string, env Envelope, err error) error {
	if err != nil {
		logger.L().Error("amap_decode_error", "endpoint", endpoint, "err", err)
		metrics.AMapFailTotal.WithLabelValues(endpoint, "decode").Inc()
		return err
	}
	logger.L().Debug("amap_resp", "endpoint", endpoint, "status", env.Status.String(), "infocode", env.InfoCode, "count", env.Count)
	if !env.OK() {
		metrics.AMapFailTotal.WithLabelValues(endpoint, "status").Inc()
		return env.Err()
	}
	metrics.AMapSuccessTotal.WithLabelValues(endpoint).Inc()
	return nil
}

// ReGeoCode 逆地理编码：构造、发送、解码一次完成；status!=1 时同时返回响应与 APIError
func (c *Client) ReGeoCode(ctx context.Context, r *ReGeoCodeRequestParams) (*ReGeoCodeResponse, error) {
	p, err := r.PrepareData()
	if err != nil {
		return nil, err
	}
	params, err := p.GenerateParams()
	if err != nil {
		return nil, err
	}
	pk, _ := p.PrivateKey()
	body, err := c.Do(ctx, PathReGeoCode, params, pk)
	if err != nil {
		return nil, err
	}
	resp, err := ParseReGeoCodeResponse(body)
	if err != nil {
		return nil, observe("regeo", Envelope{}, err)
	}
	return resp, observe("regeo", resp.Envelope, nil)
}

// GeoCode 地理编码
func (c *Client) GeoCode(ctx context.Context, r *GeoCodeRequestParams) (*GeoCodeResponse, error) {
	p, err := r.PrepareData()
	if err != nil {
		return nil, err
	}
	params, err := p.GenerateParams()
	if err != nil {
		return nil, err
	}
	pk, _ := p.PrivateKey()
	body, err := c.Do(ctx, PathGeoCode, params, pk)
	if err != nil {
		return nil, err
	}
	resp, err := ParseGeoCodeResponse(body)
	if err != nil {
		return nil, observe("geo", Envelope{}, err)
	}
	return resp, observe("geo", resp.Envelope, nil)
}

// IP 定位；ip 为空时按请求来源定位
func (c *Client) IP(ctx context.Context, ip string) (*IPResponse, error) {
	r, err := NewIPRequestParams(Args{"ip": ip})
	if err != nil {
		return nil, err
	}
	p, err := r.PrepareData()
	if err != nil {
		return nil, err
	}
	params, err := p.GenerateParams()
	if err != nil {
		return nil, err
	}
	body, err := c.Do(ctx, PathIP, params, "")
	if err != nil {
		return nil, err
	}
	resp, err := ParseIPResponse(body)
	if err != nil {
		return nil, observe("ip", Envelope{}, err)
	}
	return resp, observe("ip", resp.Envelope, nil)
}

// 文档注释：批量接口
// 背景：最多 20 个子请求合并为一次 POST；每个子请求的参数同样补齐 key 并签名，整体 key 放在查询串。
// 返回：与 ops 顺序一致的子结果，子结果的 Body 由调用方按接口解码。
func (c *Client) Batch(ctx context.Context, ops []BatchOp) ([]BatchResult, error) {
	signed := make([]BatchOp, 0, len(ops))
	for _, op := range ops {
		q, err := c.finalize(op.Params, "")
		if err != nil {
			return nil, err
		}
		signed = append(signed, BatchOp{Path: op.Path, Params: q})
	}
	body, err := BuildBatchBody(signed)
	if err != nil {
		return nil, err
	}
	if c.key == "" {
		return nil, &MissingParameterError{Field: "key"}
	}
	if err := c.admit(ctx, "batch"); err != nil {
		return nil, err
	}
	u := c.baseURL + PathBatch + "?" + url.Values{"key": {c.key}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	raw, err := c.send(req, "batch")
	if err != nil {
		return nil, err
	}
	res, err := ParseBatchResponse(raw)
	if err != nil {
		metrics.AMapFailTotal.WithLabelValues("batch", "decode").Inc()
		return nil, err
	}
	metrics.AMapSuccessTotal.WithLabelValues("batch").Inc()
	return res, nil
}

func endpointName(path string) string {
	switch path {
	case PathReGeoCode:
		return "regeo"
	case PathGeoCode:
		return "geo"
	case PathIP:
		return "ip"
	case PathBatch:
		return "batch"
	}
	return strings.Trim(path, "/")
}
