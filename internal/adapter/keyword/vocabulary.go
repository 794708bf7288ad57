package keyword

import "github.com/epicflowhq/epicflow/internal/domain/epic"

// weightedTerm is one vocabulary entry. Weights are empirically tuned; they
// are kept as data so recalibration does not touch classification logic.
type weightedTerm struct {
	Term   string
	Weight float64
}

// vocabulary maps each epic type to its weighted term list. Term lists are
// ordered slices so scoring and keyword evidence stay deterministic.
var vocabulary = map[epic.Type][]weightedTerm{
	epic.TypeFoundation: {
		{"foundation", 3.0},
		{"infrastructure", 2.5},
		{"scaffold", 2.0},
		{"setup", 2.0},
		{"bootstrap", 2.0},
		{"base configuration", 2.0},
		{"tooling", 1.5},
		{"environment", 1.5},
		{"configuration", 1.5},
		{"base", 1.0},
		{"ci", 1.0},
	},
	epic.TypeDevelopment: {
		{"implement", 2.5},
		{"feature", 2.0},
		{"endpoint", 1.8},
		{"bugfix", 1.8},
		{"fix", 1.5},
		{"api", 1.5},
		{"handler", 1.2},
		{"function", 1.0},
		{"test", 1.0},
		{"bug", 1.0},
	},
	epic.TypeArchitecture: {
		{"architecture", 3.0},
		{"redesign", 2.5},
		{"restructure", 2.2},
		{"migration", 2.0},
		{"schema", 2.0},
		{"design", 1.8},
		{"scalability", 1.8},
		{"database", 1.5},
		{"refactor", 1.5},
		{"pattern", 1.2},
	},
	epic.TypeIntelligence: {
		{"intelligence", 3.0},
		{"machine learning", 2.8},
		{"nlp", 2.5},
		{"llm", 2.5},
		{"classifier", 2.2},
		{"embedding", 2.0},
		{"model", 1.8},
		{"prompt", 1.5},
		{"reasoning", 1.5},
		{"heuristic", 1.2},
	},
	epic.TypeUI: {
		{"frontend", 2.8},
		{"dashboard", 2.2},
		{"styling", 2.0},
		{"layout", 1.8},
		{"component", 1.5},
		{"render", 1.5},
		{"css", 1.5},
		{"ux", 1.5},
		{"ui", 1.5},
		{"button", 1.0},
	},
	epic.TypeIntegration: {
		{"integration", 3.0},
		{"webhook", 2.5},
		{"connector", 2.2},
		{"third-party", 2.0},
		{"oauth", 2.0},
		{"external service", 1.8},
		{"plugin", 1.5},
		{"sync", 1.2},
	},
}

// highComplexityTerms raise the complexity score independently of epic type.
var highComplexityTerms = []string{
	"migration",
	"dependencies",
	"critical",
	"refactor",
	"security",
	"breaking",
}
