package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "airesume"

var (
	generationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "requests_total",
			Help:      "生成调用总数（按文档类型与结果）。",
		},
		[]string{"doc_type", "outcome"},
	)

	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "上游生成耗时（秒）。",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 90},
		},
		[]string{"doc_type"},
	)

	exportTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "files_total",
			Help:      "导出文件总数（按格式与结果）。",
		},
		[]string{"format", "outcome"},
	)

	exportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "duration_seconds",
			Help:      "导出渲染与存储耗时（秒）。",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	cleanupDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cleanup",
			Name:      "deleted_files_total",
			Help:      "按保留期删除的导出文件数（按触发方式）。",
		},
		[]string{"trigger"},
	)
)

// ObserveGeneration records one generation attempt. outcome is "ok" or a failure kind.
func ObserveGeneration(docType, outcome string, d time.Duration) {
	generationTotal.WithLabelValues(docType, outcome).Inc()
	if outcome == "ok" {
		generationDuration.WithLabelValues(docType).Observe(d.Seconds())
	}
}

// ObserveExport records one export attempt.
func ObserveExport(format string, err error, d time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	exportTotal.WithLabelValues(format, outcome).Inc()
	exportDuration.WithLabelValues(format).Observe(d.Seconds())
}

// AddDeleted counts files removed by the cleanup task ("task") or the sweep ("sweep").
func AddDeleted(trigger string, n int) {
	if n > 0 {
		cleanupDeleted.WithLabelValues(trigger).Add(float64(n))
	}
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
