package zfscmd

import (
	"github.com/prometheus/client_golang/prometheus"
)

var metrics struct {
	totaltime  *prometheus.HistogramVec
	systemtime *prometheus.HistogramVec
	usertime   *prometheus.HistogramVec
}

var timeLabels = []string{"binary"}

var timeBuckets = []float64{0.01, 0.1, 0.2, 0.5, 0.75, 1, 2, 5, 10, 20, 30}

func init() {
	metrics.totaltime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jailconf",
		Subsystem: "zfscmd",
		Name:      "runtime",
		Help:      "number of seconds that the command took from start until wait returned",
		Buckets:   timeBuckets,
	}, timeLabels)
	metrics.systemtime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jailconf",
		Subsystem: "zfscmd",
		Name:      "systemtime",
		Help:      "https://golang.org/pkg/os/#ProcessState.SystemTime",
		Buckets:   timeBuckets,
	}, timeLabels)
	metrics.usertime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jailconf",
		Subsystem: "zfscmd",
		Name:      "usertime",
		Help:      "https://golang.org/pkg/os/#ProcessState.UserTime",
		Buckets:   timeBuckets,
	}, timeLabels)
}

func RegisterMetrics(r prometheus.Registerer) {
	r.MustRegister(metrics.totaltime)
	r.MustRegister(metrics.systemtime)
	r.MustRegister(metrics.usertime)
}

func waitPostPrometheus(c *Cmd, u usage) {
	if len(c.cmd.Args) < 1 {
		return
	}
	binary := c.cmd.Args[0]
	metrics.totaltime.WithLabelValues(binary).Observe(u.totalSecs)
	metrics.systemtime.WithLabelValues(binary).Observe(u.systemSecs)
	metrics.usertime.WithLabelValues(binary).Observe(u.userSecs)
}
