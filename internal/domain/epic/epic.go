// Package epic defines the work-item and analysis domain entities.
package epic

import "time"

// Type categorizes an epic by its dominant domain.
type Type string

const (
	TypeFoundation   Type = "foundation"
	TypeDevelopment  Type = "development"
	TypeArchitecture Type = "architecture"
	TypeIntelligence Type = "intelligence"
	TypeUI           Type = "ui"
	TypeIntegration  Type = "integration"
)

// DefaultType is the fallback classification when no vocabulary matches.
const DefaultType = TypeDevelopment

// Types lists every valid epic type.
func Types() []Type {
	return []Type{
		TypeFoundation,
		TypeDevelopment,
		TypeArchitecture,
		TypeIntelligence,
		TypeUI,
		TypeIntegration,
	}
}

// Level is a three-step bucket shared by complexity and success prediction.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// AnalysisMode selects how much of the orchestration pipeline runs.
type AnalysisMode string

const (
	ModeEpicInterpretation AnalysisMode = "epic-interpretation"
	ModeAgentRouting       AnalysisMode = "agent-routing"
	ModeFullOrchestration  AnalysisMode = "full-orchestration"
)

// Valid reports whether the mode is one of the known analysis modes.
func (m AnalysisMode) Valid() bool {
	switch m {
	case ModeEpicInterpretation, ModeAgentRouting, ModeFullOrchestration:
		return true
	}
	return false
}

// WorkItem is the raw input for one orchestration call. Immutable once received.
type WorkItem struct {
	IssueNumber  int          `json:"issue_number"`
	Title        string       `json:"title"`
	Body         string       `json:"body"`
	Labels       []string     `json:"labels"`
	Assignees    []string     `json:"assignees"`
	AnalysisMode AnalysisMode `json:"analysis_mode"`
}

// Analysis is the classifier output for a single work item.
// A re-analysis produces a new instance; an Analysis is never mutated.
type Analysis struct {
	EpicType Type `json:"epic_type"`

	// Confidence is in [0,1] and never exactly zero.
	Confidence float64 `json:"confidence"`

	// Keywords holds matched vocabulary terms in match order.
	Keywords []string `json:"keywords"`

	ComplexityLevel Level `json:"complexity_level"`
	ComplexityScore int   `json:"complexity_score"` // 0-100

	SuccessPrediction Level `json:"success_prediction"`
	SuccessScore      int   `json:"success_score"` // 0-100

	TaskCount               int `json:"task_count"`
	AcceptanceCriteriaCount int `json:"acceptance_criteria_count"`
}

// ContextEntry is the stored record for one work-item identity.
// Last write wins; there is no history.
type ContextEntry struct {
	IssueNumber int       `json:"issue_number"`
	Input       WorkItem  `json:"input"`
	Analysis    Analysis  `json:"analysis"`
	UpdatedAt   time.Time `json:"updated_at"`
}
