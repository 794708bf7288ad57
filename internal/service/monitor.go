package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/epicflowhq/epicflow/internal/adapter/otel"
	"github.com/epicflowhq/epicflow/internal/adapter/ws"
	"github.com/epicflowhq/epicflow/internal/port/broadcast"
	"github.com/epicflowhq/epicflow/internal/port/messagequeue"
)

// Well-known metric names recorded by the orchestrator.
const (
	MetricNLPAccuracy    = "nlp_accuracy"
	MetricRoutingSuccess = "routing_success"
	MetricProcessingMs   = "avg_processing_ms"
	MetricContextHitRate = "context_hit_rate"
)

// DefaultMaxSamples bounds per-metric history.
const DefaultMaxSamples = 1024

// threshold pairs a target with a comparison direction.
type threshold struct {
	target        float64
	lowerIsBetter bool
}

// thresholdTable holds the fixed targets checked by CheckThresholds.
// Metrics with no recorded value are excluded, never treated as failing.
var thresholdTable = map[string]threshold{
	MetricNLPAccuracy:    {target: 0.95},
	MetricRoutingSuccess: {target: 0.90},
	MetricProcessingMs:   {target: 5000, lowerIsBetter: true},
	MetricContextHitRate: {target: 0.80},
}

// thresholdOrder fixes the sweep order so failure lists are deterministic.
var thresholdOrder = []string{
	MetricNLPAccuracy,
	MetricRoutingSuccess,
	MetricProcessingMs,
	MetricContextHitRate,
}

// Observation is one recorded metric sample.
type Observation struct {
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// MetricSummary is the per-name view returned by Summary.
type MetricSummary struct {
	Latest     float64   `json:"latest"`
	Count      int       `json:"count"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ThresholdReport is the outcome of a threshold sweep.
type ThresholdReport struct {
	MeetsThresholds  bool     `json:"meets_thresholds"`
	OverallScore     float64  `json:"overall_score"`
	FailedThresholds []string `json:"failed_thresholds"`
}

// MonitorService keeps a bounded per-metric observation history and
// checks the latest values against the fixed threshold table. Writes are
// serialized per ledger; reads take a shared lock.
type MonitorService struct {
	mu         sync.RWMutex
	series     map[string][]Observation
	maxSamples int
	total      map[string]int

	metrics     *otel.Metrics
	broadcaster broadcast.Broadcaster
	queue       messagequeue.Queue
	now         func() time.Time // for testing
}

// NewMonitorService creates a performance monitor. maxSamples <= 0 uses
// DefaultMaxSamples.
func NewMonitorService(maxSamples int) *MonitorService {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &MonitorService{
		series:     make(map[string][]Observation),
		maxSamples: maxSamples,
		total:      make(map[string]int),
		now:        time.Now,
	}
}

// SetMetrics attaches otel instruments mirrored on threshold breaches.
func (m *MonitorService) SetMetrics(metrics *otel.Metrics) {
	m.metrics = metrics
}

// SetBroadcaster attaches the hub that receives threshold breach events.
func (m *MonitorService) SetBroadcaster(b broadcast.Broadcaster) {
	m.broadcaster = b
}

// SetQueue attaches the message queue that carries breach alerts to
// external consumers.
func (m *MonitorService) SetQueue(q messagequeue.Queue) {
	m.queue = q
}

// RecordMetric appends a timestamped observation. History per name is a
// ring bounded to maxSamples; the oldest sample drops first.
func (m *MonitorService) RecordMetric(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obs := Observation{Value: value, RecordedAt: m.now()}
	series := append(m.series[name], obs)
	if len(series) > m.maxSamples {
		series = series[len(series)-m.maxSamples:]
	}
	m.series[name] = series
	m.total[name]++
}

// Summary returns the latest value, total observation count, and last
// recording time for every metric name seen so far.
func (m *MonitorService) Summary() map[string]MetricSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]MetricSummary, len(m.series))
	for name, series := range m.series {
		last := series[len(series)-1]
		out[name] = MetricSummary{
			Latest:     last.Value,
			Count:      m.total[name],
			RecordedAt: last.RecordedAt,
		}
	}
	return out
}

// CheckThresholds compares the latest value of each recorded metric
// against the fixed threshold table. OverallScore is the fraction of
// checked metrics passing; with nothing recorded the score is 1.0.
func (m *MonitorService) CheckThresholds(ctx context.Context) ThresholdReport {
	m.mu.RLock()

	checked, passed := 0, 0
	var failed []string
	type breach struct {
		name   string
		value  float64
		target float64
	}
	var breaches []breach

	for _, name := range thresholdOrder {
		th := thresholdTable[name]
		series, ok := m.series[name]
		if !ok || len(series) == 0 {
			continue
		}
		checked++
		latest := series[len(series)-1].Value

		ok = latest >= th.target
		if th.lowerIsBetter {
			ok = latest <= th.target
		}
		if ok {
			passed++
			continue
		}
		failed = append(failed, name)
		breaches = append(breaches, breach{name: name, value: latest, target: th.target})
	}
	m.mu.RUnlock()

	score := 1.0
	if checked > 0 {
		score = float64(passed) / float64(checked)
	}

	for _, b := range breaches {
		if m.metrics != nil {
			m.metrics.ThresholdBreaches.Add(ctx, 1)
		}
		if m.broadcaster != nil {
			m.broadcaster.BroadcastEvent(ctx, ws.EventThresholdBreach, ws.ThresholdBreachEvent{
				Metric:    b.name,
				Value:     b.value,
				Threshold: b.target,
			})
		}
		m.publishBreach(ctx, b.name, b.value, b.target)
	}

	return ThresholdReport{
		MeetsThresholds:  len(failed) == 0,
		OverallScore:     score,
		FailedThresholds: failed,
	}
}

// publishBreach sends a breach alert on the queue. Best-effort; a sweep
// never fails on its reporting.
func (m *MonitorService) publishBreach(ctx context.Context, metric string, value, target float64) {
	if m.queue == nil || !m.queue.IsConnected() {
		return
	}
	data, err := json.Marshal(messagequeue.ThresholdBreachPayload{
		Metric:    metric,
		Value:     value,
		Threshold: target,
	})
	if err != nil {
		slog.Error("marshal breach payload", "metric", metric, "error", err)
		return
	}
	if err := m.queue.Publish(ctx, messagequeue.SubjectThresholdBreach, data); err != nil {
		slog.Warn("breach publish failed", "metric", metric, "error", err)
	}
}
