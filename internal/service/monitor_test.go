package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/epicflowhq/epicflow/internal/port/messagequeue"
)

func TestMonitor_RecordAndSummary(t *testing.T) {
	m := NewMonitorService(0)

	m.RecordMetric(MetricNLPAccuracy, 0.97)
	m.RecordMetric(MetricNLPAccuracy, 0.93)
	m.RecordMetric(MetricRoutingSuccess, 1.0)

	sum := m.Summary()
	if len(sum) != 2 {
		t.Fatalf("expected 2 metric names, got %d", len(sum))
	}

	acc := sum[MetricNLPAccuracy]
	if acc.Latest != 0.93 {
		t.Errorf("latest must be the newest observation, got %f", acc.Latest)
	}
	if acc.Count != 2 {
		t.Errorf("count = %d, want 2", acc.Count)
	}
	if acc.RecordedAt.IsZero() {
		t.Error("recorded_at must be set")
	}
}

func TestMonitor_RingBufferBounds(t *testing.T) {
	m := NewMonitorService(4)

	for i := 0; i < 10; i++ {
		m.RecordMetric("series", float64(i))
	}

	sum := m.Summary()
	s := sum["series"]
	if s.Latest != 9 {
		t.Errorf("latest = %f, want 9", s.Latest)
	}
	if s.Count != 10 {
		t.Errorf("total count survives eviction: got %d, want 10", s.Count)
	}

	m.mu.RLock()
	stored := len(m.series["series"])
	m.mu.RUnlock()
	if stored != 4 {
		t.Errorf("ring must hold at most 4 samples, got %d", stored)
	}
}

func TestMonitor_ThresholdsAllPassing(t *testing.T) {
	m := NewMonitorService(0)

	m.RecordMetric(MetricNLPAccuracy, 0.96)
	m.RecordMetric(MetricRoutingSuccess, 0.95)
	m.RecordMetric(MetricProcessingMs, 1200)
	m.RecordMetric(MetricContextHitRate, 0.85)

	rep := m.CheckThresholds(context.Background())
	if !rep.MeetsThresholds {
		t.Errorf("expected all thresholds met, failed: %v", rep.FailedThresholds)
	}
	if rep.OverallScore != 1.0 {
		t.Errorf("overall score = %f, want 1.0", rep.OverallScore)
	}
}

func TestMonitor_ThresholdBreachLowerIsBetter(t *testing.T) {
	m := NewMonitorService(0)

	// Processing time breaches by exceeding the ceiling.
	m.RecordMetric(MetricProcessingMs, 9000)
	m.RecordMetric(MetricNLPAccuracy, 0.99)

	rep := m.CheckThresholds(context.Background())
	if rep.MeetsThresholds {
		t.Fatal("expected a breach")
	}
	if len(rep.FailedThresholds) != 1 || rep.FailedThresholds[0] != MetricProcessingMs {
		t.Errorf("failed = %v, want [%s]", rep.FailedThresholds, MetricProcessingMs)
	}
	if rep.OverallScore != 0.5 {
		t.Errorf("overall score = %f, want 0.5", rep.OverallScore)
	}
}

func TestMonitor_UnrecordedMetricsExcluded(t *testing.T) {
	m := NewMonitorService(0)

	// Nothing recorded: nothing checked, nothing failed.
	rep := m.CheckThresholds(context.Background())
	if !rep.MeetsThresholds {
		t.Error("no recorded metrics means no failures")
	}
	if rep.OverallScore != 1.0 {
		t.Errorf("overall score with nothing checked = %f, want 1.0", rep.OverallScore)
	}

	// Only one metric recorded: only that one is scored.
	m.RecordMetric(MetricNLPAccuracy, 0.50)
	rep = m.CheckThresholds(context.Background())
	if rep.OverallScore != 0.0 {
		t.Errorf("single failing metric scores 0.0, got %f", rep.OverallScore)
	}
	if len(rep.FailedThresholds) != 1 {
		t.Errorf("unrecorded metrics must not appear in failures: %v", rep.FailedThresholds)
	}
}

func TestMonitor_LatestValueDecides(t *testing.T) {
	m := NewMonitorService(0)

	// Older breach is healed by a newer passing sample.
	m.RecordMetric(MetricRoutingSuccess, 0.10)
	m.RecordMetric(MetricRoutingSuccess, 0.95)

	rep := m.CheckThresholds(context.Background())
	if !rep.MeetsThresholds {
		t.Errorf("latest value decides; failed: %v", rep.FailedThresholds)
	}
}

func TestMonitor_BreachBroadcast(t *testing.T) {
	m := NewMonitorService(0)

	var (
		mu     sync.Mutex
		events []string
	)
	m.SetBroadcaster(broadcastFunc(func(_ context.Context, eventType string, _ any) {
		mu.Lock()
		events = append(events, eventType)
		mu.Unlock()
	}))

	m.RecordMetric(MetricContextHitRate, 0.10)
	m.CheckThresholds(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("expected one breach event, got %v", events)
	}
}

func TestMonitor_ConcurrentRecording(t *testing.T) {
	m := NewMonitorService(128)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				m.RecordMetric("hot", float64(v))
			}
		}(i)
	}
	wg.Wait()

	sum := m.Summary()
	if sum["hot"].Count != 1000 {
		t.Errorf("lost updates: count = %d, want 1000", sum["hot"].Count)
	}
}

func TestMonitor_ObservationTimestamps(t *testing.T) {
	m := NewMonitorService(0)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	m.RecordMetric(MetricNLPAccuracy, 0.9)
	if got := m.Summary()[MetricNLPAccuracy].RecordedAt; !got.Equal(base) {
		t.Errorf("recorded_at = %v, want %v", got, base)
	}
}

// broadcastFunc adapts a func to the broadcast port.
type broadcastFunc func(ctx context.Context, eventType string, payload any)

func (f broadcastFunc) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	f(ctx, eventType, payload)
}

// recordingQueue captures publishes for assertions.
type recordingQueue struct {
	connected bool
	published map[string][][]byte
}

func (q *recordingQueue) Publish(_ context.Context, subject string, data []byte) error {
	if q.published == nil {
		q.published = make(map[string][][]byte)
	}
	q.published[subject] = append(q.published[subject], data)
	return nil
}

func (q *recordingQueue) Subscribe(context.Context, string, messagequeue.Handler) (func(), error) {
	return func() {}, nil
}
func (q *recordingQueue) Drain() error      { return nil }
func (q *recordingQueue) Close() error      { return nil }
func (q *recordingQueue) IsConnected() bool { return q.connected }

func TestMonitor_BreachPublishesAlert(t *testing.T) {
	m := NewMonitorService(0)
	queue := &recordingQueue{connected: true}
	m.SetQueue(queue)

	m.RecordMetric(MetricContextHitRate, 0.10)
	m.CheckThresholds(context.Background())

	msgs := queue.published[messagequeue.SubjectThresholdBreach]
	if len(msgs) != 1 {
		t.Fatalf("breach publishes = %d, want 1", len(msgs))
	}
	var payload messagequeue.ThresholdBreachPayload
	if err := json.Unmarshal(msgs[0], &payload); err != nil {
		t.Fatalf("unmarshal breach payload: %v", err)
	}
	if payload.Metric != MetricContextHitRate {
		t.Errorf("metric = %q, want %q", payload.Metric, MetricContextHitRate)
	}
	if payload.Value != 0.10 {
		t.Errorf("value = %v, want 0.10", payload.Value)
	}
	if payload.Threshold != 0.80 {
		t.Errorf("threshold = %v, want 0.80", payload.Threshold)
	}
}

func TestMonitor_DisconnectedQueueSkipsBreachAlert(t *testing.T) {
	m := NewMonitorService(0)
	queue := &recordingQueue{connected: false}
	m.SetQueue(queue)

	m.RecordMetric(MetricContextHitRate, 0.10)
	m.CheckThresholds(context.Background())

	if n := len(queue.published[messagequeue.SubjectThresholdBreach]); n != 0 {
		t.Errorf("breach publishes = %d, want 0 while disconnected", n)
	}
}
