// Package profiler - Runtime timing and metric reports for the overlay loop.
package profiler

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/nvr-ai/go-overlay/logger"
)

// MetricsCollector defines the interface for collecting custom metrics.
type MetricsCollector interface {
	CollectMetrics() map[string]float64
}

// RuntimeProfiler tracks operation timings and custom metrics over a sliding
// window and logs a periodic report.
type RuntimeProfiler struct {
	reportInterval time.Duration
	sampleInterval time.Duration
	maxSamples     int
	log            *logger.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	startTime time.Time
	running   bool

	metrics    map[string]*MetricTracker
	collectors []MetricsCollector
	operations map[string]*TimeTracker
}

// MetricTracker tracks statistics for a custom metric.
type MetricTracker struct {
	values []float64
	sum    float64
	min    float64
	max    float64
}

// TimeTracker tracks operation timing statistics.
type TimeTracker struct {
	durations []time.Duration
	total     time.Duration
	min       time.Duration
	max       time.Duration
	count     int64
}

// ProfilingOptions configures the runtime profiler.
type ProfilingOptions struct {
	// ReportInterval specifies how often to log a report (default: 2s)
	ReportInterval time.Duration
	// SampleInterval specifies how often collectors are polled (default: 100ms)
	SampleInterval time.Duration
	// MaxSamples specifies the window size per metric (default: 600)
	MaxSamples int
}

// MetricStats summarizes a metric window.
type MetricStats struct {
	Avg     float64
	Min     float64
	Max     float64
	Samples int
}

// OperationStats summarizes an operation's timings.
type OperationStats struct {
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
	Count int64
}

// Report is a point-in-time snapshot of the profiler.
type Report struct {
	Uptime     time.Duration
	Goroutines int
	HeapAlloc  uint64
	Metrics    map[string]MetricStats
	Operations map[string]OperationStats
}

// NewRuntimeProfiler creates a new runtime profiler with the specified options.
//
// Arguments:
// - opts: Configuration options for the profiler
// - log: Destination of the periodic report; nil disables it
//
// Returns:
// - A configured RuntimeProfiler instance
func NewRuntimeProfiler(opts ProfilingOptions, log *logger.Logger) *RuntimeProfiler {
	if opts.ReportInterval == 0 {
		opts.ReportInterval = 2 * time.Second
	}
	if opts.SampleInterval == 0 {
		opts.SampleInterval = 100 * time.Millisecond
	}
	if opts.MaxSamples == 0 {
		opts.MaxSamples = 600
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &RuntimeProfiler{
		reportInterval: opts.ReportInterval,
		sampleInterval: opts.SampleInterval,
		maxSamples:     opts.MaxSamples,
		log:            log,
		ctx:            ctx,
		cancel:         cancel,
		startTime:      time.Now(),
		metrics:        make(map[string]*MetricTracker),
		operations:     make(map[string]*TimeTracker),
	}
}

// Start begins polling collectors and logging reports. Calling it again
// while running has no effect.
func (rp *RuntimeProfiler) Start() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if rp.running {
		return
	}
	rp.running = true
	rp.startTime = time.Now()

	rp.wg.Add(2)
	go rp.loop(rp.sampleInterval, rp.sample)
	go rp.loop(rp.reportInterval, rp.emitStatusReport)
}

// Stop stops the profiler and waits for its goroutines to exit.
func (rp *RuntimeProfiler) Stop() {
	rp.mu.Lock()
	if !rp.running {
		rp.mu.Unlock()
		return
	}
	rp.running = false
	rp.mu.Unlock()

	rp.cancel()
	rp.wg.Wait()
}

func (rp *RuntimeProfiler) loop(interval time.Duration, fn func()) {
	defer rp.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rp.ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// AddMetricsCollector registers a collector polled every sample interval.
func (rp *RuntimeProfiler) AddMetricsCollector(collector MetricsCollector) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.collectors = append(rp.collectors, collector)
}

// RecordMetric records a custom metric value.
//
// Arguments:
// - name: The name of the metric
// - value: The metric value to record
func (rp *RuntimeProfiler) RecordMetric(name string, value float64) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.record(name, value)
}

func (rp *RuntimeProfiler) record(name string, value float64) {
	t, ok := rp.metrics[name]
	if !ok {
		t = &MetricTracker{min: value, max: value}
		rp.metrics[name] = t
	}

	t.values = append(t.values, value)
	t.sum += value
	if len(t.values) > rp.maxSamples {
		t.sum -= t.values[0]
		t.values = t.values[1:]
	}
	if value < t.min {
		t.min = value
	}
	if value > t.max {
		t.max = value
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
//
// @example
// stop := rp.StartOperation("draw")
// tr.Draw(canvas)
// stop()
func (rp *RuntimeProfiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		rp.recordOperationTime(name, time.Since(start))
	}
}

func (rp *RuntimeProfiler) recordOperationTime(name string, d time.Duration) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	t, ok := rp.operations[name]
	if !ok {
		t = &TimeTracker{min: d, max: d}
		rp.operations[name] = t
	}

	t.durations = append(t.durations, d)
	t.total += d
	if len(t.durations) > rp.maxSamples {
		t.total -= t.durations[0]
		t.durations = t.durations[1:]
	}
	t.count++
	if d < t.min {
		t.min = d
	}
	if d > t.max {
		t.max = d
	}
}

// sample polls every registered collector once.
func (rp *RuntimeProfiler) sample() {
	rp.mu.Lock()
	collectors := append([]MetricsCollector(nil), rp.collectors...)
	rp.mu.Unlock()

	for _, c := range collectors {
		values := c.CollectMetrics()
		rp.mu.Lock()
		for name, v := range values {
			rp.record(name, v)
		}
		rp.mu.Unlock()
	}
}

// Snapshot returns the current statistics.
func (rp *RuntimeProfiler) Snapshot() Report {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	rp.mu.Lock()
	defer rp.mu.Unlock()

	r := Report{
		Uptime:     time.Since(rp.startTime),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		Metrics:    make(map[string]MetricStats, len(rp.metrics)),
		Operations: make(map[string]OperationStats, len(rp.operations)),
	}
	for name, t := range rp.metrics {
		if len(t.values) == 0 {
			continue
		}
		r.Metrics[name] = MetricStats{
			Avg:     t.sum / float64(len(t.values)),
			Min:     t.min,
			Max:     t.max,
			Samples: len(t.values),
		}
	}
	for name, t := range rp.operations {
		if len(t.durations) == 0 {
			continue
		}
		r.Operations[name] = OperationStats{
			Avg:   t.total / time.Duration(len(t.durations)),
			Min:   t.min,
			Max:   t.max,
			Count: t.count,
		}
	}
	return r
}

// emitStatusReport logs one line per metric and operation.
func (rp *RuntimeProfiler) emitStatusReport() {
	r := rp.Snapshot()

	rp.log.Info("runtime",
		"uptime", r.Uptime.Truncate(time.Millisecond),
		"goroutines", r.Goroutines,
		"heap_alloc", r.HeapAlloc)

	for _, name := range sortedKeys(r.Metrics) {
		m := r.Metrics[name]
		rp.log.Info("metric", "name", name, "avg", m.Avg, "min", m.Min, "max", m.Max, "samples", m.Samples)
	}
	for _, name := range sortedKeys(r.Operations) {
		o := r.Operations[name]
		rp.log.Info("operation", "name", name,
			"avg", o.Avg.Truncate(time.Microsecond),
			"min", o.Min.Truncate(time.Microsecond),
			"max", o.Max.Truncate(time.Microsecond),
			"count", o.Count)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
