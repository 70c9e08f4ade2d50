package core

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/olistclean/internal/logging"
)

// DefaultRunTimeout is the maximum duration of one background run.
const DefaultRunTimeout = 30 * time.Minute

// DefaultHistorySize is the number of run reports kept in memory.
const DefaultHistorySize = 20

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Source            Source
	Sink              Sink
	TranslationSource string
	Progress          io.Writer // progress text of every run; nil discards
	RunTimeout        time.Duration
	HistorySize       int
	Limiter           *RunLimiter       // nil admits one run at a time
	Tables            []TableDefinition // nil runs every registered table
}

// Service runs the pipeline on demand and keeps recent run reports.
// It is safe for concurrent use.
type Service struct {
	source      Source
	sink        Sink
	translation string
	progress    io.Writer
	runTimeout  time.Duration
	historySize int
	limiter     *RunLimiter
	tables      []TableDefinition

	// runsCtx parents every background run; cancelRuns aborts them.
	runsCtx    context.Context
	cancelRuns context.CancelFunc

	mu      sync.RWMutex
	reports []*RunReport // oldest first
}

// NewService creates a new Service instance.
func NewService(opts ServiceOptions) *Service {
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = DefaultRunTimeout
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}
	if opts.Limiter == nil {
		opts.Limiter = NewRunLimiter(DefaultMaxConcurrentRuns)
	}

	runsCtx, cancelRuns := context.WithCancel(context.Background())

	return &Service{
		runsCtx:     runsCtx,
		cancelRuns:  cancelRuns,
		source:      opts.Source,
		sink:        opts.Sink,
		translation: opts.TranslationSource,
		progress:    opts.Progress,
		runTimeout:  opts.RunTimeout,
		historySize: opts.HistorySize,
		limiter:     opts.Limiter,
		tables:      opts.Tables,
	}
}

// ListTables returns information about all registered tables in execution order.
func (s *Service) ListTables() []TableInfo {
	defs := s.definitions()
	infos := make([]TableInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// ListTablesByPhase returns tables organized by phase.
func (s *Service) ListTablesByPhase() map[Phase][]TableInfo {
	result := make(map[Phase][]TableInfo)
	for _, info := range s.ListTables() {
		result[info.Phase] = append(result[info.Phase], info)
	}
	return result
}

// RunSync executes a run in the calling goroutine.
// Fails with ErrRunInProgress when no run slot is free.
func (s *Service) RunSync(ctx context.Context) (*RunReport, error) {
	if !s.limiter.TryAcquire() {
		return nil, ErrRunInProgress
	}
	defer s.limiter.Release()

	runID := logging.RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logging.ContextWithRunID(ctx, runID)
	}
	s.store(&RunReport{RunID: runID, Status: RunRunning, StartedAt: time.Now().UTC(), Stages: []StageReport{}})

	report, err := s.pipeline().Run(ctx)
	s.store(report)
	return report, err
}

// StartRun begins an asynchronous run and returns its id immediately.
// The run outlives ctx but keeps its values (request id) and is bounded
// by the run timeout. Fails with ErrRunInProgress when no slot is free.
func (s *Service) StartRun(ctx context.Context) (string, error) {
	if !s.limiter.TryAcquire() {
		return "", ErrRunInProgress
	}

	runID := uuid.NewString()
	runCtx, cancel := context.WithTimeout(
		logging.ContextWithRunID(context.WithoutCancel(ctx), runID),
		s.runTimeout,
	)
	stop := context.AfterFunc(s.runsCtx, cancel)

	s.store(&RunReport{RunID: runID, Status: RunRunning, StartedAt: time.Now().UTC(), Stages: []StageReport{}})

	go func() {
		defer s.limiter.Release()
		defer cancel()
		defer stop()

		report, err := s.pipeline().Run(runCtx)
		if err != nil {
			logging.FromContext(runCtx).Error("background run failed", "error", err)
		}
		s.store(report)
	}()

	return runID, nil
}

// Report returns the report of a run by id.
func (s *Service) Report(runID string) (*RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.reports) - 1; i >= 0; i-- {
		if s.reports[i].RunID == runID {
			return s.reports[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
}

// LatestReport returns the most recently started run.
func (s *Service) LatestReport() (*RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.reports) == 0 {
		return nil, ErrRunNotFound
	}
	return s.reports[len(s.reports)-1], nil
}

// Reports returns the kept run reports, newest first.
func (s *Service) Reports() []*RunReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*RunReport, len(s.reports))
	for i, r := range s.reports {
		out[len(s.reports)-1-i] = r
	}
	return out
}

// LimiterStatus returns the run limiter state.
func (s *Service) LimiterStatus() RunLimiterStatus {
	return s.limiter.Status()
}

// WaitForRuns blocks until active runs finish or ctx is done.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// CancelRuns cancels every background run started by StartRun, now and in
// the future. Cancelled runs end with status aborted. Used on shutdown so
// no run keeps writing after the sinks are closed.
func (s *Service) CancelRuns() {
	s.cancelRuns()
}

func (s *Service) definitions() []TableDefinition {
	if s.tables == nil {
		return All()
	}
	defs := append([]TableDefinition(nil), s.tables...)
	sortDefinitions(defs)
	return defs
}

func (s *Service) pipeline() *Pipeline {
	return NewPipeline(s.source, s.sink, PipelineOptions{
		TranslationSource: s.translation,
		Progress:          s.progress,
		Tables:            s.tables,
	})
}

// store inserts or replaces a report by run id. Reports are never mutated
// after they are stored.
func (s *Service) store(report *RunReport) {
	if report == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.reports {
		if r.RunID == report.RunID {
			s.reports[i] = report
			return
		}
	}

	s.reports = append(s.reports, report)
	if len(s.reports) > s.historySize {
		s.reports = append([]*RunReport(nil), s.reports[len(s.reports)-s.historySize:]...)
	}
}
