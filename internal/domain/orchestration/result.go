// Package orchestration defines the externally-visible orchestration result.
package orchestration

import (
	"github.com/epicflowhq/epicflow/internal/domain/epic"
	"github.com/epicflowhq/epicflow/internal/domain/routing"
	"github.com/epicflowhq/epicflow/internal/domain/strategy"
)

// AIInsights summarizes the two analyses for downstream consumers.
type AIInsights struct {
	// InterpretationAccuracy mirrors the classifier confidence.
	InterpretationAccuracy float64  `json:"interpretation_accuracy"`
	ComplexityAssessment   string   `json:"complexity_assessment"`
	SuggestedApproach      string   `json:"suggested_approach"`
	RiskFactors            []string `json:"risk_factors"`
	SuccessPredictors      []string `json:"success_predictors"`
}

// Metrics records how the orchestration call itself performed.
type Metrics struct {
	ProcessingTimeMs int64 `json:"processing_time_ms"` // >= 0

	// ConfidenceScore equals the epic analysis confidence by construction.
	ConfidenceScore float64 `json:"confidence_score"`

	// FallbacksUsed lists provider identities substituted during routing.
	FallbacksUsed []string `json:"fallbacks_used"`
	ProviderUsed  string   `json:"provider_used"`
}

// Result is the sole externally-returned artifact of an orchestration call.
// It is immutable; Metrics.ConfidenceScore == EpicAnalysis.Confidence always.
type Result struct {
	ID                    string                 `json:"id"`
	EpicAnalysis          epic.Analysis          `json:"epic_analysis"`
	StrategicAnalysis     strategy.Analysis      `json:"strategic_analysis"`
	RoutingRecommendation routing.Recommendation `json:"routing_recommendation"`
	AIInsights            AIInsights             `json:"ai_insights"`
	OrchestrationMetrics  Metrics                `json:"orchestration_metrics"`
}
