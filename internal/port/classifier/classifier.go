// Package classifier defines the epic classification port.
package classifier

import (
	"context"

	"github.com/epicflowhq/epicflow/internal/domain/epic"
)

// Classifier turns raw work-item text into an epic analysis.
//
// Implementations must never fail: a best-effort, low-confidence analysis is
// always returned, even for empty input. The port exists so a trained-model
// implementation can replace the weighted-vocabulary one without touching the
// orchestration service.
type Classifier interface {
	Analyze(ctx context.Context, item epic.WorkItem) epic.Analysis
}
