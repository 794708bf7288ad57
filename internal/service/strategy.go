// Package service implements business logic on top of ports.
package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/epicflowhq/epicflow/internal/domain/epic"
	"github.com/epicflowhq/epicflow/internal/domain/strategy"
)

// Risk score baselines per level; each matched factor adds factorWeight.
const (
	riskBaseLow    = 25
	riskBaseMedium = 55
	riskBaseHigh   = 80
	factorWeight   = 4

	// complexityAgentBump raises a medium-complexity team from 2 to 3.
	complexityAgentBump = 50

	baseDurationHours = 2.0
)

// riskVocabulary lists the terms that escalate risk one level above the
// complexity-derived baseline. Ordered so factor output is deterministic.
var riskVocabulary = []string{
	"critical",
	"migration",
	"production",
	"dependencies",
	"security",
	"breaking",
	"urgent",
	"data-loss",
}

// mitigationTable maps each risk factor to its mitigation. Consulted in
// riskVocabulary order so mitigation output is deterministic.
var mitigationTable = map[string]string{
	"critical":     "Stage the rollout behind a feature flag with instant rollback",
	"migration":    "Take a verified backup and rehearse the migration on a copy first",
	"production":   "Schedule the change inside a low-traffic window",
	"dependencies": "Pin dependency versions and audit the upgrade path",
	"security":     "Require a security review sign-off before merge",
	"breaking":     "Publish a deprecation notice and version the changed interface",
	"urgent":       "Timebox the work and pre-assign an escalation owner",
	"data-loss":    "Enable point-in-time recovery before touching stored data",
}

// StrategyService derives risk, resource, and recommendation output from
// a classified work item. It is stateless; all methods are pure.
type StrategyService struct{}

// NewStrategyService creates a strategic reasoning service.
func NewStrategyService() *StrategyService {
	return &StrategyService{}
}

// Analyze produces the full strategic analysis: escalated risk, resource
// plan, and evidence-citing recommendations.
func (s *StrategyService) Analyze(item epic.WorkItem, analysis epic.Analysis) strategy.Analysis {
	risk := s.assessRisk(item, analysis)
	resources := s.planResources(analysis, risk)
	recs := s.recommend(analysis, risk, resources)

	return strategy.Analysis{
		RiskAssessment:           risk,
		ResourceOptimization:     resources,
		StrategicRecommendations: recs,
	}
}

// Baseline produces a strategic analysis without keyword escalation or
// recommendations. Used when only the interpretation phase runs: risk
// fields carry the complexity-derived baseline so downstream consumers
// always see a populated assessment.
func (s *StrategyService) Baseline(analysis epic.Analysis) strategy.Analysis {
	risk := strategy.RiskAssessment{
		Level: analysis.ComplexityLevel,
		Score: riskBase(analysis.ComplexityLevel),
	}
	return strategy.Analysis{
		RiskAssessment:       risk,
		ResourceOptimization: s.planResources(analysis, risk),
	}
}

// assessRisk starts from the complexity level and escalates one step when
// any risk vocabulary term appears in the body or labels. Escalation never
// de-escalates: a high baseline stays high.
func (s *StrategyService) assessRisk(item epic.WorkItem, analysis epic.Analysis) strategy.RiskAssessment {
	text := strings.ToLower(strings.Join(append([]string{item.Body}, item.Labels...), " "))

	var factors []string
	for _, term := range riskVocabulary {
		if strings.Contains(text, term) {
			factors = append(factors, term)
		}
	}

	level := analysis.ComplexityLevel
	if len(factors) > 0 {
		level = escalate(level)
	}

	score := riskBase(level) + factorWeight*len(factors)
	if score > 100 {
		score = 100
	}

	var mitigations []string
	for _, f := range factors {
		if m, ok := mitigationTable[f]; ok {
			mitigations = append(mitigations, m)
		}
	}

	return strategy.RiskAssessment{
		Level:                level,
		Score:                score,
		Factors:              factors,
		MitigationStrategies: mitigations,
	}
}

// planResources sizes the team from complexity and shapes execution from
// risk. High-risk work runs sequentially to simplify failure attribution.
func (s *StrategyService) planResources(analysis epic.Analysis, risk strategy.RiskAssessment) strategy.ResourceOptimization {
	var agents int
	switch analysis.ComplexityLevel {
	case epic.LevelLow:
		agents = 1
	case epic.LevelMedium:
		agents = 2
		if analysis.ComplexityScore >= complexityAgentBump {
			agents = 3
		}
	default:
		agents = 4
	}

	monitoring := strategy.MonitoringStandard
	fallback := strategy.FallbackDelayed
	switch risk.Level {
	case epic.LevelMedium:
		monitoring = strategy.MonitoringEnhanced
	case epic.LevelHigh:
		monitoring = strategy.MonitoringIntensive
		fallback = strategy.FallbackImmediate
	}

	return strategy.ResourceOptimization{
		RecommendedAgents: agents,
		ParallelExecution: agents > 1 && risk.Level != epic.LevelHigh,
		MonitoringLevel:   monitoring,
		FallbackStrategy:  fallback,
		EstimatedDuration: estimateDuration(analysis.ComplexityScore, agents),
	}
}

// estimateDuration grows with complexity and shrinks with team size,
// sub-linearly so extra agents never make the estimate collapse to zero.
func estimateDuration(complexityScore, agents int) time.Duration {
	hours := baseDurationHours * (1.0 + float64(complexityScore)/50.0)
	hours /= math.Sqrt(float64(agents))
	return time.Duration(hours * float64(time.Hour))
}

// recommend evaluates the fixed rule set in priority order. Delivery
// Strategy and Quality Assurance always fire; Risk Mitigation and
// Resource Allocation only when their triggering evidence exists.
func (s *StrategyService) recommend(analysis epic.Analysis, risk strategy.RiskAssessment, resources strategy.ResourceOptimization) []strategy.Recommendation {
	recs := make([]strategy.Recommendation, 0, 4)

	delivery := "Execute with a single worker in one pass"
	switch {
	case resources.ParallelExecution:
		delivery = fmt.Sprintf("Split across %d workers executing in parallel", resources.RecommendedAgents)
	case resources.RecommendedAgents > 1:
		delivery = fmt.Sprintf("Run %d workers sequentially with checkpointed handoffs", resources.RecommendedAgents)
	}
	recs = append(recs, strategy.Recommendation{
		Priority: 1,
		Category: "Delivery Strategy",
		Action:   delivery,
		Reasoning: fmt.Sprintf("%s complexity (score %d) sizes the team at %d agent(s)",
			analysis.ComplexityLevel, analysis.ComplexityScore, resources.RecommendedAgents),
		ExpectedImpact: "Throughput matched to the work's decomposability",
	})

	qa := "Standard review and automated test gate"
	if resources.MonitoringLevel != strategy.MonitoringStandard {
		qa = fmt.Sprintf("Add %s monitoring with per-step verification", resources.MonitoringLevel)
	}
	recs = append(recs, strategy.Recommendation{
		Priority: 2,
		Category: "Quality Assurance",
		Action:   qa,
		Reasoning: fmt.Sprintf("%s risk (score %d) sets monitoring to %s",
			risk.Level, risk.Score, resources.MonitoringLevel),
		ExpectedImpact: "Defects surfaced proportionally to risk exposure",
	})

	if len(risk.Factors) > 0 {
		recs = append(recs, strategy.Recommendation{
			Priority: 3,
			Category: "Risk Mitigation",
			Action:   "Apply the matched mitigations before execution starts",
			Reasoning: fmt.Sprintf("Risk factors detected in the work item: %s",
				strings.Join(risk.Factors, ", ")),
			ExpectedImpact: "Escalated risk contained at its source",
		})
	}

	if resources.RecommendedAgents >= 3 {
		recs = append(recs, strategy.Recommendation{
			Priority: 4,
			Category: "Resource Allocation",
			Action:   "Reserve worker capacity up front and assign a coordinator",
			Reasoning: fmt.Sprintf("Team of %d on complexity score %d needs explicit coordination",
				resources.RecommendedAgents, analysis.ComplexityScore),
			ExpectedImpact: "No mid-flight contention for worker capacity",
		})
	}

	return recs
}

func riskBase(level epic.Level) int {
	switch level {
	case epic.LevelLow:
		return riskBaseLow
	case epic.LevelMedium:
		return riskBaseMedium
	default:
		return riskBaseHigh
	}
}

func escalate(level epic.Level) epic.Level {
	switch level {
	case epic.LevelLow:
		return epic.LevelMedium
	case epic.LevelMedium:
		return epic.LevelHigh
	default:
		return epic.LevelHigh
	}
}
