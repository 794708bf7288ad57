// Package strategy defines the strategic-analysis domain entities.
package strategy

import (
	"time"

	"github.com/epicflowhq/epicflow/internal/domain/epic"
)

// MonitoringLevel escalates with risk.
type MonitoringLevel string

const (
	MonitoringStandard  MonitoringLevel = "standard"
	MonitoringEnhanced  MonitoringLevel = "enhanced"
	MonitoringIntensive MonitoringLevel = "intensive"
)

// FallbackStrategy controls how quickly a failed worker is replaced.
type FallbackStrategy string

const (
	FallbackImmediate FallbackStrategy = "immediate"
	FallbackDelayed   FallbackStrategy = "delayed"
)

// RiskAssessment is the escalation-adjusted risk picture for an epic.
type RiskAssessment struct {
	Level                epic.Level `json:"level"`
	Score                int        `json:"score"` // 0-100
	Factors              []string   `json:"factors"`
	MitigationStrategies []string   `json:"mitigation_strategies"`
}

// ResourceOptimization is the recommended execution envelope.
type ResourceOptimization struct {
	RecommendedAgents int              `json:"recommended_agents"` // >= 1
	ParallelExecution bool             `json:"parallel_execution"`
	MonitoringLevel   MonitoringLevel  `json:"monitoring_level"`
	FallbackStrategy  FallbackStrategy `json:"fallback_strategy"`
	EstimatedDuration time.Duration    `json:"estimated_duration"`
}

// Recommendation is one ranked strategic recommendation.
// Reasoning references the specific triggering evidence so output is auditable.
type Recommendation struct {
	Priority       int    `json:"priority"`
	Category       string `json:"category"`
	Action         string `json:"action"`
	Reasoning      string `json:"reasoning"`
	ExpectedImpact string `json:"expected_impact"`
}

// Analysis bundles risk, resources, and recommendations for an epic.
type Analysis struct {
	RiskAssessment           RiskAssessment       `json:"risk_assessment"`
	ResourceOptimization     ResourceOptimization `json:"resource_optimization"`
	StrategicRecommendations []Recommendation     `json:"strategic_recommendations"`
}
