package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = []float64{5, 10, 20, 50, 100, 200, 500, 1000, 3000}

var (
	AMapRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "amapkit_amap_requests_total",
		Help: "Total AMap REST requests by endpoint",
	}, []string{"endpoint"})
	AMapSuccessTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "amapkit_amap_success_total",
		Help: "Total AMap REST requests answered with status=1",
	}, []string{"endpoint"})
	AMapFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "amapkit_amap_fail_total",
		Help: "Total AMap REST failures by endpoint and reason",
	}, []string{"endpoint", "reason"})
	AMapDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "amapkit_amap_duration_ms",
		Help:    "AMap REST call duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"endpoint"})
	QuotaRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "amapkit_quota_rejected_total",
		Help: "Total requests rejected by the shared per-minute quota",
	})
	IngestWrittenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "amapkit_ingest_written_total",
		Help: "Total reverse-geocode rows written by the ingest tool",
	})
	IngestSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "amapkit_ingest_skipped_total",
		Help: "Total ingest inputs skipped by reason",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(AMapRequestsTotal)
	prometheus.MustRegister(AMapSuccessTotal)
	prometheus.MustRegister(AMapFailTotal)
	prometheus.MustRegister(AMapDurationMs)
	prometheus.MustRegister(QuotaRejectedTotal)
	prometheus.MustRegister(IngestWrittenTotal)
	prometheus.MustRegister(IngestSkippedTotal)
}

// 文档注释：返回 Prometheus 指标处理器，由命令行工具按 METRICS_ADDR 挂载到 /metrics
func Handler() http.Handler { return promhttp.Handler() }
