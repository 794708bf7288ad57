package service

import (
	"fmt"
	"strings"

	"github.com/epicflowhq/epicflow/internal/domain/orchestration"
)

// GenerateOrchestrationSummary renders a fixed human-readable block for
// issue comments and chat surfaces. Downstream tooling greps the Type,
// Confidence, Primary Agent, and Processing Time lines; their wording is
// part of the external contract.
func GenerateOrchestrationSummary(res orchestration.Result) string {
	var b strings.Builder

	b.WriteString("## Orchestration Summary\n\n")
	fmt.Fprintf(&b, "Type: %s\n", res.EpicAnalysis.EpicType)
	fmt.Fprintf(&b, "Confidence: %.1f%%\n", res.EpicAnalysis.Confidence*100)
	fmt.Fprintf(&b, "Complexity: %s (score %d)\n",
		res.EpicAnalysis.ComplexityLevel, res.EpicAnalysis.ComplexityScore)
	fmt.Fprintf(&b, "Risk: %s (score %d)\n",
		res.StrategicAnalysis.RiskAssessment.Level, res.StrategicAnalysis.RiskAssessment.Score)
	fmt.Fprintf(&b, "Primary Agent: %s\n", res.RoutingRecommendation.Primary)
	if len(res.RoutingRecommendation.Secondary) > 0 {
		fmt.Fprintf(&b, "Supporting Agents: %s\n",
			strings.Join(res.RoutingRecommendation.Secondary, ", "))
	}
	fmt.Fprintf(&b, "Execution: %s\n", res.RoutingRecommendation.ExecutionStrategy)
	fmt.Fprintf(&b, "Monitoring: %s\n",
		res.StrategicAnalysis.ResourceOptimization.MonitoringLevel)
	fmt.Fprintf(&b, "Provider: %s\n", res.OrchestrationMetrics.ProviderUsed)
	fmt.Fprintf(&b, "Processing Time: %dms\n", res.OrchestrationMetrics.ProcessingTimeMs)

	if len(res.StrategicAnalysis.StrategicRecommendations) > 0 {
		b.WriteString("\n### Recommendations\n")
		for _, rec := range res.StrategicAnalysis.StrategicRecommendations {
			fmt.Fprintf(&b, "%d. [%s] %s\n", rec.Priority, rec.Category, rec.Action)
		}
	}

	return b.String()
}
