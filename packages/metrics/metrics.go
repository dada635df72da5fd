package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/abdul-hamid-achik/hitpull/packages/core/requests"
	"github.com/abdul-hamid-achik/hitpull/packages/dispatch"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// latency range in microseconds: 1us to 60s
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Collector implements dispatch.Observer.
type Collector struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	errors      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	batches     *prometheus.CounterVec
	descriptors prometheus.Gauge

	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
	total     int64
	failed    int64
}

// Summary holds aggregate latency figures.
type Summary struct {
	Requests int64         `json:"requests"`
	Errors   int64         `json:"errors"`
	Min      time.Duration `json:"min"`
	Max      time.Duration `json:"max"`
	Mean     time.Duration `json:"mean"`
	P50      time.Duration `json:"p50"`
	P95      time.Duration `json:"p95"`
	P99      time.Duration `json:"p99"`
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hitpull_requests_total",
			Help: "Requests sent, by method, host and status code",
		}, []string{"method", "host", "status"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hitpull_request_errors_total",
			Help: "Failed requests, by error kind",
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hitpull_request_duration_seconds",
			Help:    "Request duration by host",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hitpull_batches_total",
			Help: "Batches run, by result",
		}, []string{"result"}),
		descriptors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hitpull_batch_descriptors",
			Help: "Descriptors in the most recent batch",
		}),
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
	}
	c.registry.MustRegister(c.requests, c.errors, c.duration, c.batches, c.descriptors)
	return c
}

// Registry returns the collector's private registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observe records one settled transport call.
func (c *Collector) Observe(e dispatch.Event) {
	method := ""
	if e.Descriptor != nil {
		method = e.Descriptor.Method
	}
	status := "none"
	if e.StatusCode > 0 {
		status = strconv.Itoa(e.StatusCode)
	}

	c.requests.WithLabelValues(method, e.Host, status).Inc()
	c.duration.WithLabelValues(e.Host).Observe(e.Duration.Seconds())
	if e.Err != nil {
		c.errors.WithLabelValues(errorKind(e.Err)).Inc()
	}

	us := e.Duration.Microseconds()
	if us < minLatencyUs {
		us = minLatencyUs
	}
	if us > maxLatencyUs {
		us = maxLatencyUs
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.histogram.RecordValue(us)
	c.total++
	if e.Err != nil {
		c.failed++
	}
}

// RecordBatch records the outcome of a whole batch.
func (c *Collector) RecordBatch(descriptors int, err error) {
	c.descriptors.Set(float64(descriptors))
	result := "success"
	if err != nil {
		result = errorKind(err)
	}
	c.batches.WithLabelValues(result).Inc()
}

// Summary returns latency percentiles over every observed call.
func (c *Collector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Summary{Requests: c.total, Errors: c.failed}
	if c.total == 0 {
		return s
	}
	s.Min = time.Duration(c.histogram.Min()) * time.Microsecond
	s.Max = time.Duration(c.histogram.Max()) * time.Microsecond
	s.Mean = time.Duration(c.histogram.Mean()) * time.Microsecond
	s.P50 = time.Duration(c.histogram.ValueAtQuantile(50)) * time.Microsecond
	s.P95 = time.Duration(c.histogram.ValueAtQuantile(95)) * time.Microsecond
	s.P99 = time.Duration(c.histogram.ValueAtQuantile(99)) * time.Microsecond
	return s
}

// WriteTextfile writes every series in the Prometheus text format, for the
// node_exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

func errorKind(err error) string {
	if kind, ok := requests.KindOf(err); ok {
		return string(kind)
	}
	return "transport"
}
