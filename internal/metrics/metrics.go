package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry 是本项目专用的指标注册表
	Registry = prometheus.NewRegistry()

	// HTTPRequests 按方法、路径和状态码统计请求数
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration 按方法、路径和状态码统计请求耗时
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// OptimizationRuns 按任务类型和最终状态统计优化任务执行次数
	OptimizationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimization_runs_total", Help: "Optimization task executions by type and status."},
		[]string{"type", "status"},
	)
	// OptimizationDuration 按任务类型统计优化任务耗时
	OptimizationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "optimization_duration_seconds", Help: "Optimization run duration in seconds.", Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600}},
		[]string{"type"},
	)
	// TasksInFlight 统计正在执行的优化任务数
	TasksInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "optimization_tasks_in_flight", Help: "Optimization tasks currently running."},
	)

	// PeriodicJobRuns 按名称和结果统计后台定时任务执行次数
	PeriodicJobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "periodic_job_runs_total", Help: "Periodic worker job executions by job and status."},
		[]string{"job", "status"},
	)
	// CleanupDeletedRows 统计清理任务删除的历史数据行数
	CleanupDeletedRows = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "cleanup_deleted_rows_total", Help: "Rows removed by the cleanup job."},
	)
)

var regOnce sync.Once

// RegisterDefault 把所有指标注册到专用注册表中
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(OptimizationRuns)
		Registry.MustRegister(OptimizationDuration)
		Registry.MustRegister(TasksInFlight)
		Registry.MustRegister(PeriodicJobRuns)
		Registry.MustRegister(CleanupDeletedRows)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
