// 包 logger：出站 HTTP 日志，记录调用高德接口的方法、路径、状态、字节数与耗时
package logger

import (
	"io"
	"log/slog"
	"net/http"
	"time"
)

// countingBody：包装响应体以统计读出字节数，关闭时输出一条访问日志
type countingBody struct {
	io.ReadCloser
	bytes int64
	done  func(n int64)
}

func (b *countingBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.bytes += int64(n)
	return n, err
}

func (b *countingBody) Close() error {
	err := b.ReadCloser.Close()
	if b.done != nil {
		b.done(b.bytes)
		b.done = nil
	}
	return err
}

// Transport：生成带访问日志的 RoundTripper
// 约束：不记录查询串，避免把 key/sig 写入日志；next 为空时使用 http.DefaultTransport
func Transport(l *slog.Logger, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)
		if err != nil {
			l.Debug("http_outbound_error",
				"method", r.Method,
				"path", r.URL.Path,
				"duration_ms", time.Since(start).Milliseconds(),
				"err", err,
			)
			return nil, err
		}
		status := resp.StatusCode
		resp.Body = &countingBody{ReadCloser: resp.Body, done: func(n int64) {
			l.Debug("http_outbound",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", n,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}}
		return resp, nil
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
