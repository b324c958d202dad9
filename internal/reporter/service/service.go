// Package service implements C4's task lifecycle: one cancellable
// ticker-driven goroutine per (intent, KPIProfile), tracked under a single
// mutex, the same stopChan/sync.Mutex/sync.WaitGroup shape the teacher's
// background-flush workers use (internal/repository/aiops/langfuse.go).
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/intend-project/inserv-orch/internal/reporter/domain"
	"github.com/intend-project/inserv-orch/internal/turtle"
)

// task is one running Observation Task.
type task struct {
	kpiName       string
	conditionID   string
	objectiveName string
	namespace     string
	unit          string
	frequency     time.Duration
	query         string
	endpoint      string
	stop          chan struct{}

	// limiter floors the poll rate at one tick per frequency even if a
	// supervisor restart were to rebuild this task with a tighter ticker;
	// the ticker alone already enforces this in the steady state, the
	// limiter guards the restart case.
	limiter *rate.Limiter
}

// Service implements domain.Service.
type Service struct {
	querier       domain.PrometheusQuerier
	graph         domain.GraphInserter
	metaRegistrar domain.MetadataRegistrar
	repository    string // graphdb repository name, for the federated query template

	minFrequency time.Duration
	maxFrequency time.Duration
	defaultFreq  time.Duration

	mu            sync.Mutex
	activeThreads map[string]map[string]*task // intentID -> kpiName -> task

	metadata *metadataCache
	wg       sync.WaitGroup
	logger   *slog.Logger
}

// NewService builds the Observation Reporter.
func NewService(querier domain.PrometheusQuerier, graph domain.GraphInserter, metaRegistrar domain.MetadataRegistrar, metadata *metadataCache, repository string, minFrequency, maxFrequency, defaultFrequency int, logger *slog.Logger) *Service {
	return &Service{
		querier:       querier,
		graph:         graph,
		metaRegistrar: metaRegistrar,
		repository:    repository,
		minFrequency:  time.Duration(minFrequency) * time.Second,
		maxFrequency:  time.Duration(maxFrequency) * time.Second,
		defaultFreq:   time.Duration(defaultFrequency) * time.Second,
		activeThreads: make(map[string]map[string]*task),
		metadata:      metadata,
		logger:        logger,
	}
}

var _ domain.Service = (*Service)(nil)

// StartReporting starts one task per KPIProfile mappable to a Condition
// (§4.4.1, §4.4.2). KPIProfiles that can't be mapped are skipped with a
// warning, never fatal to the others.
func (s *Service) StartReporting(ctx context.Context, req domain.StartRequest) error {
	intent, err := turtle.ParseIntent(req.TurtleBody)
	if err != nil {
		return fmt.Errorf("parsing intent for reporting: %w", err)
	}
	objectives, err := turtle.ParseDeploymentExpectationObjectives(req.TurtleBody)
	if err != nil {
		return fmt.Errorf("parsing objectives for reporting: %w", err)
	}

	s.mu.Lock()
	if s.activeThreads[req.IntentID] == nil {
		s.activeThreads[req.IntentID] = make(map[string]*task)
	}
	s.mu.Unlock()

	for _, profile := range req.KPIProfiles {
		if profile.Query == "" {
			s.logger.Warn("KPIProfile has no query, rejecting at startup", "kpi", profile.Name)
			continue
		}

		conditionID, objectiveName, ok := mapKPIToCondition(intent, req.IDOObjectives, profile.Name)
		if !ok {
			s.logger.Warn("could not map KPI to a Condition, skipping", "kpi", profile.Name, "intent_id", req.IntentID)
			continue
		}

		unit := determineUnit(objectives, objectiveName, profile.Type)
		frequency := s.clampFrequency(profile.ReportingFrequency)

		t := &task{
			kpiName:       profile.Name,
			conditionID:   conditionID,
			objectiveName: objectiveName,
			namespace:     req.Namespace,
			unit:          unit,
			frequency:     frequency,
			query:         profile.Query,
			endpoint:      profile.Endpoint,
			stop:          make(chan struct{}),
			limiter:       rate.NewLimiter(rate.Every(frequency), 1),
		}

		s.mu.Lock()
		if existing, running := s.activeThreads[req.IntentID][profile.Name]; running {
			close(existing.stop)
		}
		s.activeThreads[req.IntentID][profile.Name] = t
		s.mu.Unlock()

		s.wg.Add(1)
		go s.runTask(req.IntentID, t)
	}

	return nil
}

// StopReporting marks every task for intentID as not-running; each loop
// exits cleanly within one frequency interval.
func (s *Service) StopReporting(intentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.activeThreads[intentID] {
		close(t.stop)
	}
	delete(s.activeThreads, intentID)
}

func (s *Service) clampFrequency(requested int) time.Duration {
	if requested == 0 {
		return s.defaultFreq
	}
	freq := time.Duration(requested) * time.Second
	if freq < s.minFrequency {
		return s.minFrequency
	}
	if freq > s.maxFrequency {
		return s.maxFrequency
	}
	return freq
}

func (s *Service) runTask(intentID string, t *task) {
	defer s.wg.Done()

	s.registerMetadataOnce(context.Background(), t)

	ticker := time.NewTicker(t.frequency)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			s.tick(intentID, t)
		}
	}
}

func (s *Service) registerMetadataOnce(ctx context.Context, t *task) {
	name := metricName(t.objectiveName, t.conditionID)
	if _, err := s.metadata.registerOnce(ctx, s.metaRegistrar, name, s.repository); err != nil {
		s.logger.Warn("metric metadata registration failed", "metric", name, "error", err)
	}
}

func (s *Service) tick(intentID string, t *task) {
	if !t.limiter.Allow() {
		s.logger.Debug("tick suppressed by rate limiter floor", "intent_id", intentID, "kpi", t.kpiName)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sample, err := s.querier.Query(ctx, t.query, t.endpoint, t.namespace)
	if err != nil {
		s.logger.Warn("observation poll failed, continuing", "intent_id", intentID, "kpi", t.kpiName, "error", err)
		return
	}
	if !sample.HasSample {
		s.logger.Debug("no sample for this tick", "intent_id", intentID, "kpi", t.kpiName)
		return
	}

	ttl := renderObservation(t.objectiveName, t.conditionID, sample.Value, t.unit, time.Unix(sample.Timestamp, 0))
	if _, err := s.graph.StoreIntent(ctx, ttl); err != nil {
		s.logger.Warn("failed to store observation", "intent_id", intentID, "kpi", t.kpiName, "error", err)
	}
}
