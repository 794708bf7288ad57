package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "epicflow"

// Metrics holds all epicflow metric instruments.
type Metrics struct {
	EpicsOrchestrated metric.Int64Counter
	CacheHits         metric.Int64Counter
	FallbacksUsed     metric.Int64Counter
	ThresholdBreaches metric.Int64Counter
	ProcessingTime    metric.Float64Histogram
	Confidence        metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.EpicsOrchestrated, err = meter.Int64Counter("epicflow.epics.orchestrated",
		metric.WithDescription("Number of work items orchestrated"))
	if err != nil {
		return nil, err
	}

	m.CacheHits, err = meter.Int64Counter("epicflow.cache.hits",
		metric.WithDescription("Number of orchestration results served from cache"))
	if err != nil {
		return nil, err
	}

	m.FallbacksUsed, err = meter.Int64Counter("epicflow.provider.fallbacks",
		metric.WithDescription("Number of provider fallback substitutions"))
	if err != nil {
		return nil, err
	}

	m.ThresholdBreaches, err = meter.Int64Counter("epicflow.monitor.breaches",
		metric.WithDescription("Number of performance threshold breaches"))
	if err != nil {
		return nil, err
	}

	m.ProcessingTime, err = meter.Float64Histogram("epicflow.processing.duration_ms",
		metric.WithDescription("End-to-end orchestration time in milliseconds"))
	if err != nil {
		return nil, err
	}

	m.Confidence, err = meter.Float64Histogram("epicflow.classification.confidence",
		metric.WithDescription("Classification confidence per work item"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
