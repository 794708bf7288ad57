package http

import (
	"net/http"
	"strconv"

	"github.com/epicflowhq/epicflow/internal/adapter/ws"
	"github.com/epicflowhq/epicflow/internal/domain/epic"
	"github.com/epicflowhq/epicflow/internal/port/contextstore"
	"github.com/epicflowhq/epicflow/internal/port/messagequeue"
	"github.com/epicflowhq/epicflow/internal/service"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// Handlers bundles the HTTP-facing dependencies.
type Handlers struct {
	Orchestrator *service.OrchestratorService
	Store        contextstore.Store
	Providers    *service.ProviderService
	Monitor      *service.MonitorService
	Hub          *ws.Hub
	Queue        messagequeue.Queue
}

type orchestrateRequest struct {
	IssueNumber  int      `json:"issue_number"`
	Title        string   `json:"title"`
	Body         string   `json:"body"`
	Labels       []string `json:"labels"`
	Assignees    []string `json:"assignees"`
	AnalysisMode string   `json:"analysis_mode"`
}

func (req orchestrateRequest) workItem() epic.WorkItem {
	mode := epic.AnalysisMode(req.AnalysisMode)
	if req.AnalysisMode == "" {
		mode = epic.ModeFullOrchestration
	}
	return epic.WorkItem{
		IssueNumber:  req.IssueNumber,
		Title:        req.Title,
		Body:         req.Body,
		Labels:       req.Labels,
		Assignees:    req.Assignees,
		AnalysisMode: mode,
	}
}

// OrchestrateEpic runs the full decision pipeline for a submitted work item.
func (h *Handlers) OrchestrateEpic(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[orchestrateRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	result := h.Orchestrator.Orchestrate(r.Context(), req.workItem())
	writeJSON(w, http.StatusOK, result)
}

// OrchestrateEpicSummary runs the pipeline and additionally renders the
// human-readable summary block.
func (h *Handlers) OrchestrateEpicSummary(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[orchestrateRequest](w, r, maxRequestBodySize)
	if !ok {
		return
	}
	result := h.Orchestrator.Orchestrate(r.Context(), req.workItem())
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": service.GenerateOrchestrationSummary(result),
		"result":  result,
	})
}

// GetEpicContext returns the preserved context entry for an issue.
func (h *Handlers) GetEpicContext(w http.ResponseWriter, r *http.Request) {
	issueNumber, err := strconv.Atoi(urlParam(r, "issueNumber"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid issue number")
		return
	}

	entry, err := h.Store.Get(r.Context(), issueNumber)
	if err != nil {
		writeDomainError(w, err, "no context for issue")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// ListProviders returns every configured provider profile, sorted by domain.
func (h *Handlers) ListProviders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Providers.Profiles())
}

// GetProvider resolves the profile for one domain. Unknown domains resolve
// to the default profile rather than erroring.
func (h *Handlers) GetProvider(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Providers.Resolve(urlParam(r, "domain")))
}

// MetricsSummary returns the latest value and count per recorded metric.
func (h *Handlers) MetricsSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Monitor.Summary())
}

// MetricsThresholds sweeps recorded metrics against the fixed targets.
func (h *Handlers) MetricsThresholds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Monitor.CheckThresholds(r.Context()))
}

// Health reports process liveness plus connection state of attachments.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}
	if h.Queue != nil {
		status["nats_connected"] = h.Queue.IsConnected()
	}
	if h.Hub != nil {
		status["ws_connections"] = h.Hub.ConnectionCount()
	}
	if h.Store != nil {
		if n, err := h.Store.Len(r.Context()); err == nil {
			status["context_entries"] = n
		}
	}
	writeJSON(w, http.StatusOK, status)
}
