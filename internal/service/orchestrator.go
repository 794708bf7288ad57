package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/epicflowhq/epicflow/internal/adapter/otel"
	"github.com/epicflowhq/epicflow/internal/adapter/ws"
	"github.com/epicflowhq/epicflow/internal/domain/epic"
	"github.com/epicflowhq/epicflow/internal/domain/orchestration"
	"github.com/epicflowhq/epicflow/internal/domain/routing"
	"github.com/epicflowhq/epicflow/internal/domain/strategy"
	"github.com/epicflowhq/epicflow/internal/port/broadcast"
	"github.com/epicflowhq/epicflow/internal/port/cache"
	"github.com/epicflowhq/epicflow/internal/port/classifier"
	"github.com/epicflowhq/epicflow/internal/port/contextstore"
	"github.com/epicflowhq/epicflow/internal/port/health"
	"github.com/epicflowhq/epicflow/internal/port/messagequeue"
)

// OrchestratorService runs the full decision pipeline for one work item:
// classify, preserve context, reason strategically, derive routing,
// resolve the provider profile, and assemble the result. It never fails;
// every step has a safe degraded default.
type OrchestratorService struct {
	classifier classifier.Classifier
	store      contextstore.Store
	strategy   *StrategyService
	providers  *ProviderService
	monitor    *MonitorService
	health     health.Checker

	// Optional collaborators; all post-assembly and best-effort.
	cache       cache.Cache
	cacheTTL    time.Duration
	queue       messagequeue.Queue
	broadcaster broadcast.Broadcaster
	metrics     *otel.Metrics

	group singleflight.Group
	now   func() time.Time // for testing
}

// NewOrchestratorService creates the orchestration service with its
// required collaborators. Optional ones attach via setters.
func NewOrchestratorService(
	cls classifier.Classifier,
	store contextstore.Store,
	strat *StrategyService,
	providers *ProviderService,
	monitor *MonitorService,
	checker health.Checker,
) *OrchestratorService {
	return &OrchestratorService{
		classifier: cls,
		store:      store,
		strategy:   strat,
		providers:  providers,
		monitor:    monitor,
		health:     checker,
		now:        time.Now,
	}
}

// SetCache attaches the result cache. Identical re-submissions for the
// same issue short-circuit while the entry lives.
func (s *OrchestratorService) SetCache(c cache.Cache, ttl time.Duration) {
	s.cache = c
	s.cacheTTL = ttl
}

// SetQueue attaches the message queue that carries routing decisions to
// the worker-dispatch system.
func (s *OrchestratorService) SetQueue(q messagequeue.Queue) {
	s.queue = q
}

// SetBroadcaster attaches the hub that receives decision events.
func (s *OrchestratorService) SetBroadcaster(b broadcast.Broadcaster) {
	s.broadcaster = b
}

// SetMetrics attaches otel instruments.
func (s *OrchestratorService) SetMetrics(m *otel.Metrics) {
	s.metrics = m
}

// Orchestrate produces a routing decision for the work item. Concurrent
// identical calls collapse to a single execution; the collapse keys on
// the same content fingerprint as the cache, so an edited epic submitted
// while its previous version is in flight gets its own run.
func (s *OrchestratorService) Orchestrate(ctx context.Context, item epic.WorkItem) orchestration.Result {
	mode := item.AnalysisMode
	if !mode.Valid() {
		slog.Warn("unknown analysis mode, degrading to full orchestration",
			"issue", item.IssueNumber, "mode", string(mode))
		mode = epic.ModeFullOrchestration
	}
	item.AnalysisMode = mode

	key := cacheKey(item)
	v, _, _ := s.group.Do(key, func() (any, error) {
		return s.orchestrate(ctx, item, key), nil
	})
	return v.(orchestration.Result)
}

func (s *OrchestratorService) orchestrate(ctx context.Context, item epic.WorkItem, key string) orchestration.Result {
	ctx, span := otel.StartOrchestrationSpan(ctx, item.IssueNumber, string(item.AnalysisMode))
	defer span.End()
	if cached, ok := s.cachedResult(ctx, key); ok {
		s.monitor.RecordMetric(MetricContextHitRate, 1)
		if s.metrics != nil {
			s.metrics.CacheHits.Add(ctx, 1)
		}
		return cached
	}
	s.monitor.RecordMetric(MetricContextHitRate, 0)

	start := s.now()

	// Step 2: classify and preserve context before any reasoning, so a
	// re-query during strategy work already sees this item.
	clsCtx, clsSpan := otel.StartClassifySpan(ctx, item.IssueNumber)
	analysis := s.classifier.Analyze(clsCtx, item)
	clsSpan.End()

	if err := s.store.Store(ctx, epic.ContextEntry{
		IssueNumber: item.IssueNumber,
		Input:       item,
		Analysis:    analysis,
		UpdatedAt:   s.now(),
	}); err != nil {
		slog.Warn("context store write failed", "issue", item.IssueNumber, "error", err)
	}

	// Step 3: strategic reasoning, scoped by analysis mode.
	var strat strategy.Analysis
	switch item.AnalysisMode {
	case epic.ModeEpicInterpretation:
		strat = s.strategy.Baseline(analysis)
	case epic.ModeAgentRouting:
		strat = s.strategy.Analyze(item, analysis)
		strat.StrategicRecommendations = alwaysOnRecommendations(strat.StrategicRecommendations)
	case epic.ModeFullOrchestration:
		strat = s.strategy.Analyze(item, analysis)
	}

	// Step 4: routing derivation from the fixed worker tables.
	route := s.deriveRouting(analysis, strat)

	// Step 6 (part): provider resolution with health-driven fallback.
	providerUsed, fallbacksUsed := s.resolveProvider(ctx, item, analysis)

	elapsed := s.now().Sub(start).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}

	result := orchestration.Result{
		ID:                    uuid.NewString(),
		EpicAnalysis:          analysis,
		StrategicAnalysis:     strat,
		RoutingRecommendation: route,
		AIInsights:            buildInsights(analysis, strat, route),
		OrchestrationMetrics: orchestration.Metrics{
			ProcessingTimeMs: elapsed,
			// Equal to the analysis confidence by construction.
			ConfidenceScore: analysis.Confidence,
			FallbacksUsed:   fallbacksUsed,
			ProviderUsed:    providerUsed,
		},
	}

	s.cacheResult(ctx, key, result)
	s.publishAndRecord(ctx, item, result)

	return result
}

// deriveRouting maps the classified type through the worker tables and
// shapes execution from the resource plan. Hybrid is reserved for
// multi-agent work carrying high risk: parallel discovery, sequential
// commit.
func (s *OrchestratorService) deriveRouting(analysis epic.Analysis, strat strategy.Analysis) routing.Recommendation {
	primary := s.providers.PrimaryWorker(analysis.EpicType)

	var secondary []string
	agents := strat.ResourceOptimization.RecommendedAgents
	if agents > 1 {
		secondary = s.providers.SecondaryWorkers(analysis.EpicType, agents-1)
	}

	execStrategy := routing.StrategySequential
	switch {
	case agents > 1 && strat.RiskAssessment.Level == epic.LevelHigh:
		execStrategy = routing.StrategyHybrid
	case strat.ResourceOptimization.ParallelExecution:
		execStrategy = routing.StrategyParallel
	}

	reasoning := fmt.Sprintf("%s epic routed to %s: %s complexity (score %d), %s risk",
		analysis.EpicType, primary,
		analysis.ComplexityLevel, analysis.ComplexityScore,
		strat.RiskAssessment.Level)

	return routing.Recommendation{
		Primary:            primary,
		Secondary:          secondary,
		Reasoning:          reasoning,
		ExecutionStrategy:  execStrategy,
		MonitoringRequired: strat.ResourceOptimization.MonitoringLevel != strategy.MonitoringStandard,
	}
}

// resolveProvider looks up the profile for the epic's domain and, when
// the health checker flags the primary provider, substitutes its
// fallback. A fallback that is itself unavailable still wins: the call
// must return a provider identity, never block.
func (s *OrchestratorService) resolveProvider(ctx context.Context, item epic.WorkItem, analysis epic.Analysis) (string, []string) {
	resCtx, span := otel.StartProviderResolveSpan(ctx, string(analysis.EpicType))
	defer span.End()

	profile := s.providers.Resolve(string(analysis.EpicType))
	fallbacksUsed := []string{}

	if s.health != nil && !s.health.Available(resCtx, profile.Provider) && profile.Fallback != nil {
		slog.Info("provider unavailable, substituting fallback",
			"issue", item.IssueNumber,
			"primary", profile.Provider,
			"fallback", profile.Fallback.Provider)
		fallbacksUsed = append(fallbacksUsed, profile.Provider)
		s.publishFallback(ctx, item, profile.Domain, profile.Provider, profile.Fallback.Provider)
		profile = *profile.Fallback
	}

	return profile.Provider + "/" + profile.Model, fallbacksUsed
}

// buildInsights condenses both analyses for downstream consumers.
func buildInsights(analysis epic.Analysis, strat strategy.Analysis, route routing.Recommendation) orchestration.AIInsights {
	predictors := make([]string, 0, len(strat.StrategicRecommendations))
	for _, rec := range strat.StrategicRecommendations {
		predictors = append(predictors, rec.ExpectedImpact)
	}

	approach := fmt.Sprintf("%s execution via %s", route.ExecutionStrategy, route.Primary)
	if len(route.Secondary) > 0 {
		approach += " with " + strings.Join(route.Secondary, ", ")
	}

	return orchestration.AIInsights{
		InterpretationAccuracy: analysis.Confidence,
		ComplexityAssessment: fmt.Sprintf("%s complexity (score %d)",
			analysis.ComplexityLevel, analysis.ComplexityScore),
		SuggestedApproach: approach,
		RiskFactors:       strat.RiskAssessment.Factors,
		SuccessPredictors: predictors,
	}
}

// alwaysOnRecommendations trims the list to the unconditional pair.
func alwaysOnRecommendations(recs []strategy.Recommendation) []strategy.Recommendation {
	out := recs[:0:0]
	for _, r := range recs {
		if r.Category == "Delivery Strategy" || r.Category == "Quality Assurance" {
			out = append(out, r)
		}
	}
	return out
}

// cacheKey fingerprints the full request content so edited resubmissions
// of the same issue miss the cache.
func cacheKey(item epic.WorkItem) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%s|%s|%s|%s",
		item.IssueNumber, item.Title, item.Body,
		strings.Join(item.Labels, ","), strings.Join(item.Assignees, ","),
		item.AnalysisMode)
	return fmt.Sprintf("epic:%d:%x", item.IssueNumber, h.Sum(nil)[:12])
}

func (s *OrchestratorService) cachedResult(ctx context.Context, key string) (orchestration.Result, bool) {
	if s.cache == nil {
		return orchestration.Result{}, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return orchestration.Result{}, false
	}
	var res orchestration.Result
	if err := json.Unmarshal(data, &res); err != nil {
		slog.Warn("corrupt cached result dropped", "key", key, "error", err)
		_ = s.cache.Delete(ctx, key)
		return orchestration.Result{}, false
	}
	return res, true
}

func (s *OrchestratorService) cacheResult(ctx context.Context, key string, res orchestration.Result) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		slog.Warn("marshal result for cache failed", "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		slog.Warn("cache result failed", "key", key, "error", err)
	}
}

// publishAndRecord runs every post-assembly side effect: queue
// publications, dashboard broadcast, and metric recording. All are
// best-effort; a routing decision is never failed by its reporting.
func (s *OrchestratorService) publishAndRecord(ctx context.Context, item epic.WorkItem, res orchestration.Result) {
	s.publishJSON(ctx, messagequeue.SubjectEpicAnalyzed, messagequeue.EpicAnalyzedPayload{
		IssueNumber:     item.IssueNumber,
		EpicType:        string(res.EpicAnalysis.EpicType),
		Confidence:      res.EpicAnalysis.Confidence,
		ComplexityLevel: string(res.EpicAnalysis.ComplexityLevel),
		Keywords:        res.EpicAnalysis.Keywords,
	})
	s.publishJSON(ctx, messagequeue.SubjectEpicRouted, messagequeue.EpicRoutedPayload{
		ResultID:          res.ID,
		IssueNumber:       item.IssueNumber,
		EpicType:          string(res.EpicAnalysis.EpicType),
		Primary:           res.RoutingRecommendation.Primary,
		Secondary:         res.RoutingRecommendation.Secondary,
		ExecutionStrategy: string(res.RoutingRecommendation.ExecutionStrategy),
		MonitoringLevel:   string(res.StrategicAnalysis.ResourceOptimization.MonitoringLevel),
		ProviderUsed:      res.OrchestrationMetrics.ProviderUsed,
		ProcessingTimeMs:  res.OrchestrationMetrics.ProcessingTimeMs,
	})

	if s.broadcaster != nil {
		s.broadcaster.BroadcastEvent(ctx, ws.EventEpicAnalyzed, ws.EpicAnalyzedEvent{
			IssueNumber:     item.IssueNumber,
			EpicType:        string(res.EpicAnalysis.EpicType),
			Confidence:      res.EpicAnalysis.Confidence,
			ComplexityLevel: string(res.EpicAnalysis.ComplexityLevel),
		})
		s.broadcaster.BroadcastEvent(ctx, ws.EventEpicRouted, ws.EpicRoutedEvent{
			ResultID:          res.ID,
			IssueNumber:       item.IssueNumber,
			Primary:           res.RoutingRecommendation.Primary,
			Secondary:         res.RoutingRecommendation.Secondary,
			ExecutionStrategy: string(res.RoutingRecommendation.ExecutionStrategy),
			MonitoringLevel:   string(res.StrategicAnalysis.ResourceOptimization.MonitoringLevel),
		})
	}

	s.monitor.RecordMetric(MetricNLPAccuracy, res.EpicAnalysis.Confidence)
	routed := 0.0
	if res.RoutingRecommendation.Primary != "" {
		routed = 1.0
	}
	s.monitor.RecordMetric(MetricRoutingSuccess, routed)
	s.monitor.RecordMetric(MetricProcessingMs, float64(res.OrchestrationMetrics.ProcessingTimeMs))

	if s.metrics != nil {
		s.metrics.EpicsOrchestrated.Add(ctx, 1)
		s.metrics.ProcessingTime.Record(ctx, float64(res.OrchestrationMetrics.ProcessingTimeMs))
		s.metrics.Confidence.Record(ctx, res.EpicAnalysis.Confidence)
		if len(res.OrchestrationMetrics.FallbacksUsed) > 0 {
			s.metrics.FallbacksUsed.Add(ctx, int64(len(res.OrchestrationMetrics.FallbacksUsed)))
		}
	}
}

func (s *OrchestratorService) publishFallback(ctx context.Context, item epic.WorkItem, domain, primary, fallback string) {
	s.publishJSON(ctx, messagequeue.SubjectProviderFallback, messagequeue.ProviderFallbackPayload{
		IssueNumber:      item.IssueNumber,
		Domain:           domain,
		PrimaryProvider:  primary,
		FallbackProvider: fallback,
	})
}

func (s *OrchestratorService) publishJSON(ctx context.Context, subject string, payload any) {
	if s.queue == nil || !s.queue.IsConnected() {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal queue payload", "subject", subject, "error", err)
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		slog.Warn("queue publish failed", "subject", subject, "error", err)
	}
}
