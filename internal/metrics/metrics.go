package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DumpPartitionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "adcodedb_dump_partitions_total",
		Help: "Total partition export attempts",
	})
	DumpFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "adcodedb_dump_fail_total",
		Help: "Total partition export failures",
	})
	DumpRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "adcodedb_dump_rows_total",
		Help: "Total rows written to partition files",
	})
	DumpDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "adcodedb_dump_duration_ms",
		Help:    "Per-partition export duration in milliseconds",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 60000},
	})
	LoadRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "adcodedb_load_rows_total",
		Help: "Total rows bulk-loaded into the region table",
	})
	LoadDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "adcodedb_load_duration_ms",
		Help:    "Bulk load duration in milliseconds",
		Buckets: []float64{100, 500, 1000, 5000, 10000, 60000, 300000},
	})
	ReorderDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "adcodedb_reorder_duration_ms",
		Help:    "Physical reorder duration in milliseconds",
		Buckets: []float64{100, 500, 1000, 5000, 10000, 60000, 300000},
	})
	CheckViolationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adcodedb_check_violations_total",
		Help: "Integrity check violations by kind",
	}, []string{"kind"})
	FetchRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "adcodedb_fetch_requests_total",
		Help: "Total district REST requests",
	})
	FetchFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "adcodedb_fetch_fail_total",
		Help: "Total district REST failures",
	})
	FetchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "adcodedb_fetch_duration_ms",
		Help:    "District REST call duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
)

func init() {
	prometheus.MustRegister(DumpPartitionsTotal)
	prometheus.MustRegister(DumpFailTotal)
	prometheus.MustRegister(DumpRowsTotal)
	prometheus.MustRegister(DumpDurationMs)
	prometheus.MustRegister(LoadRowsTotal)
	prometheus.MustRegister(LoadDurationMs)
	prometheus.MustRegister(ReorderDurationMs)
	prometheus.MustRegister(CheckViolationsTotal)
	prometheus.MustRegister(FetchRequestsTotal)
	prometheus.MustRegister(FetchFailTotal)
	prometheus.MustRegister(FetchDurationMs)
}

// 文档注释：返回 Prometheus 指标处理器
// 背景：运维命令多为短生命周期进程，仅在设置 METRICS_ADDR 时由入口挂载监听。
func Handler() http.Handler { return promhttp.Handler() }
