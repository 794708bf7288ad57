package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants for WebSocket messages.
const (
	EventEpicAnalyzed    = "epic.analyzed"
	EventEpicRouted      = "epic.routed"
	EventThresholdBreach = "metrics.breach"
)

// EpicAnalyzedEvent is broadcast when a work item's classification finishes.
type EpicAnalyzedEvent struct {
	IssueNumber     int     `json:"issue_number"`
	EpicType        string  `json:"epic_type"`
	Confidence      float64 `json:"confidence"`
	ComplexityLevel string  `json:"complexity_level"`
}

// EpicRoutedEvent is broadcast when a routing decision is ready.
type EpicRoutedEvent struct {
	ResultID          string   `json:"result_id"`
	IssueNumber       int      `json:"issue_number"`
	Primary           string   `json:"primary"`
	Secondary         []string `json:"secondary,omitempty"`
	ExecutionStrategy string   `json:"execution_strategy"`
	MonitoringLevel   string   `json:"monitoring_level"`
}

// ThresholdBreachEvent is broadcast when a performance metric crosses
// its configured threshold.
type ThresholdBreachEvent struct {
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
}

// BroadcastEvent marshals a typed event and broadcasts it to all clients.
// It implements the broadcast port; failures are logged, never returned,
// because dashboard delivery must not affect routing.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
