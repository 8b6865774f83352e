package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "civitgrab_tasks_total",
		Help: "Total number of tasks processed",
	})

	TasksSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "civitgrab_tasks_skipped_total",
		Help: "Total number of tasks skipped because the file already existed",
	})

	TasksSucceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "civitgrab_tasks_succeeded_total",
		Help: "Total number of tasks that downloaded successfully",
	})

	TasksFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "civitgrab_tasks_failed_total",
		Help: "Total number of tasks that failed after exhausting retries",
	})

	FetchAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "civitgrab_fetch_attempts_total",
		Help: "Total number of fetch attempts, including retries",
	})

	DownloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "civitgrab_download_duration_seconds",
		Help:    "Duration of successful downloads in seconds",
		Buckets: prometheus.DefBuckets,
	})

	DownloadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "civitgrab_download_bytes_total",
		Help: "Total bytes downloaded",
	})
)
