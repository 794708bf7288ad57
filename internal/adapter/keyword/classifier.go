// Package keyword implements the classifier port with a weighted-vocabulary
// heuristic. It stands in for genuine language understanding: scores are sums
// of matched keyword weights, not model output.
package keyword

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/epicflowhq/epicflow/internal/domain/epic"
)

const (
	// saturation normalizes the winning vocabulary score into confidence.
	saturation = 8.0

	// floorConfidence keeps confidence strictly positive so downstream
	// ratios and comparisons never divide by zero.
	floorConfidence = 0.1

	// emptyInputComplexity is the mid-low baseline when there is no text
	// to score.
	emptyInputComplexity = 30
)

// Level bucket thresholds shared by complexity and success scoring.
const (
	lowCeiling    = 34
	mediumCeiling = 67
)

var (
	checklistRe = regexp.MustCompile(`(?m)^\s*[-*]\s+\[[ xX]\]`)
	numberedRe  = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+\S`)
	criteriaRe  = regexp.MustCompile(`(?im)^#{0,6}\s*acceptance criteria\b.*$`)
	headingRe   = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
)

// Classifier is the weighted-vocabulary epic classifier.
type Classifier struct{}

// New creates a keyword classifier.
func New() *Classifier {
	return &Classifier{}
}

// Analyze classifies the work item. It never fails: empty input yields the
// default type at floor confidence with a mid-low complexity baseline.
func (c *Classifier) Analyze(_ context.Context, item epic.WorkItem) epic.Analysis {
	text := strings.ToLower(strings.Join(append([]string{item.Title, item.Body}, item.Labels...), " "))

	epicType, score, matched := scoreTypes(text)

	confidence := score / saturation
	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < floorConfidence {
		confidence = floorConfidence
	}

	taskCount := len(checklistRe.FindAllString(item.Body, -1))
	criteriaCount := countAcceptanceCriteria(item.Body)

	complexity := complexityScore(item, text, taskCount, criteriaCount)
	success := successScore(confidence, complexity)

	return epic.Analysis{
		EpicType:                epicType,
		Confidence:              confidence,
		Keywords:                matched,
		ComplexityLevel:         bucket(complexity),
		ComplexityScore:         complexity,
		SuccessPrediction:       bucket(success),
		SuccessScore:            success,
		TaskCount:               taskCount,
		AcceptanceCriteriaCount: criteriaCount,
	}
}

// scoreTypes accumulates per-type weighted scores and returns the winning
// type, its score, and its matched terms ordered by first occurrence in text.
func scoreTypes(text string) (epic.Type, float64, []string) {
	type match struct {
		term string
		pos  int
	}

	winner := epic.DefaultType
	var winnerScore float64
	var winnerMatches []match

	for _, t := range epic.Types() {
		var score float64
		var matches []match
		for _, wt := range vocabulary[t] {
			if pos := strings.Index(text, wt.Term); pos >= 0 {
				score += wt.Weight
				matches = append(matches, match{term: wt.Term, pos: pos})
			}
		}
		if score > winnerScore {
			winner = t
			winnerScore = score
			winnerMatches = matches
		}
	}

	sort.SliceStable(winnerMatches, func(i, j int) bool {
		return winnerMatches[i].pos < winnerMatches[j].pos
	})

	keywords := make([]string, 0, len(winnerMatches))
	seen := make(map[string]struct{}, len(winnerMatches))
	for _, m := range winnerMatches {
		if _, dup := seen[m.term]; dup {
			continue
		}
		seen[m.term] = struct{}{}
		keywords = append(keywords, m.term)
	}

	return winner, winnerScore, keywords
}

// complexityScore combines body length, label count, high-complexity term
// matches, and declared task structure. Each component is capped; the total
// is capped at 100.
func complexityScore(item epic.WorkItem, text string, taskCount, criteriaCount int) int {
	if strings.TrimSpace(item.Title) == "" && strings.TrimSpace(item.Body) == "" {
		return emptyInputComplexity
	}

	score := bodyLengthComponent(len(item.Body))

	labels := 5 * len(item.Labels)
	if labels > 20 {
		labels = 20
	}
	score += labels

	var heavy int
	for _, term := range highComplexityTerms {
		if strings.Contains(text, term) {
			heavy += 12
		}
	}
	if heavy > 36 {
		heavy = 36
	}
	score += heavy

	structure := 2 * (taskCount + criteriaCount)
	if structure > 19 {
		structure = 19
	}
	score += structure

	if score > 100 {
		score = 100
	}
	return score
}

func bodyLengthComponent(n int) int {
	switch {
	case n == 0:
		return 0
	case n < 200:
		return 5
	case n < 800:
		return 12
	case n < 2000:
		return 18
	default:
		return 25
	}
}

// successScore predicts delivery success: higher confidence and lower
// complexity both raise it.
func successScore(confidence float64, complexity int) int {
	s := int(confidence*60 + float64(100-complexity)*0.4)
	if s < 0 {
		s = 0
	}
	if s > 100 {
		s = 100
	}
	return s
}

func bucket(score int) epic.Level {
	switch {
	case score < lowCeiling:
		return epic.LevelLow
	case score < mediumCeiling:
		return epic.LevelMedium
	default:
		return epic.LevelHigh
	}
}

// countAcceptanceCriteria counts checklist items under an "Acceptance
// Criteria" heading; bodies without such a section fall back to counting
// numbered list items anywhere.
func countAcceptanceCriteria(body string) int {
	loc := criteriaRe.FindStringIndex(body)
	if loc == nil {
		return len(numberedRe.FindAllString(body, -1))
	}

	section := body[loc[1]:]
	if next := headingRe.FindStringIndex(section); next != nil {
		section = section[:next[0]]
	}

	if n := len(checklistRe.FindAllString(section, -1)); n > 0 {
		return n
	}
	return len(numberedRe.FindAllString(section, -1))
}
