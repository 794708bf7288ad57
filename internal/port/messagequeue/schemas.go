package messagequeue

// EpicAnalyzedPayload is the schema for epics.analyzed messages.
type EpicAnalyzedPayload struct {
	IssueNumber     int      `json:"issue_number"`
	EpicType        string   `json:"epic_type"`
	Confidence      float64  `json:"confidence"`
	ComplexityLevel string   `json:"complexity_level"`
	Keywords        []string `json:"keywords"`
}

// EpicRoutedPayload is the schema for epics.routed messages. This is the
// record the worker-dispatch system acts on.
type EpicRoutedPayload struct {
	ResultID          string   `json:"result_id"`
	IssueNumber       int      `json:"issue_number"`
	EpicType          string   `json:"epic_type"`
	Primary           string   `json:"primary"`
	Secondary         []string `json:"secondary"`
	ExecutionStrategy string   `json:"execution_strategy"`
	MonitoringLevel   string   `json:"monitoring_level"`
	ProviderUsed      string   `json:"provider_used"`
	ProcessingTimeMs  int64    `json:"processing_time_ms"`
}

// ProviderFallbackPayload is the schema for epics.fallback messages.
type ProviderFallbackPayload struct {
	IssueNumber      int    `json:"issue_number"`
	Domain           string `json:"domain"`
	PrimaryProvider  string `json:"primary_provider"`
	FallbackProvider string `json:"fallback_provider"`
}

// ThresholdBreachPayload is the schema for metrics.threshold.breach messages.
type ThresholdBreachPayload struct {
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
}
