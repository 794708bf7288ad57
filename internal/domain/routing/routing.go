// Package routing defines the routing-decision domain entities.
package routing

// ExecutionStrategy is how the routed workers should execute the epic.
type ExecutionStrategy string

const (
	// StrategySequential runs workers one at a time.
	StrategySequential ExecutionStrategy = "sequential"
	// StrategyParallel runs all routed workers concurrently.
	StrategyParallel ExecutionStrategy = "parallel"
	// StrategyHybrid runs discovery in parallel and commits sequentially.
	// Reserved for multi-agent work carrying high risk.
	StrategyHybrid ExecutionStrategy = "hybrid"
)

// Recommendation names the worker(s) that should handle an epic and how.
type Recommendation struct {
	Primary            string            `json:"primary"`
	Secondary          []string          `json:"secondary"`
	Reasoning          string            `json:"reasoning"`
	ExecutionStrategy  ExecutionStrategy `json:"execution_strategy"`
	MonitoringRequired bool              `json:"monitoring_required"`
}
