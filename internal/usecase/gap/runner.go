package gap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/simcheck/internal/domain"
	domgap "github.com/kailas-cloud/simcheck/internal/domain/gap"
	"github.com/kailas-cloud/simcheck/internal/logger"
	"github.com/kailas-cloud/simcheck/internal/metrics"
)

const interruptedReason = "interrupted by restart"

// Runner executes gap analyses in the background and tracks them in a RunStore.
type Runner struct {
	analyzer *Analyzer
	planner  *Planner
	store    RunStore
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.Mutex
	active map[string]context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a runner.
func NewRunner(analyzer *Analyzer, planner *Planner, store RunStore, logger *zap.Logger) *Runner {
	return &Runner{
		analyzer: analyzer,
		planner:  planner,
		store:    store,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		active:   make(map[string]context.CancelFunc),
	}
}

// RecoverInterrupted fails runs left "running" by a previous process.
func (r *Runner) RecoverInterrupted(ctx context.Context) error {
	runs, err := r.store.List(ctx, 0)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	for i := range runs {
		run := &runs[i]
		if run.Status != domgap.RunRunning {
			continue
		}
		r.finish(run, domgap.RunFailed, interruptedReason)
		if err := r.store.Update(ctx, run); err != nil {
			return fmt.Errorf("fail run %s: %w", run.ID, err)
		}
		r.logger.Warn("marked interrupted gap run as failed", zap.String("run_id", run.ID))
	}
	return nil
}

// Start plans req, stores a new run and analyses it in the background.
// The returned run is a snapshot taken before analysis begins.
func (r *Runner) Start(ctx context.Context, req Request) (*domgap.Run, error) {
	params, job, err := r.planner.Plan(req)
	if err != nil {
		return nil, err
	}

	now := r.now()
	run := &domgap.Run{
		ID:            uuid.NewString(),
		Params:        params,
		Status:        domgap.RunRunning,
		Combinations:  len(job.Combinations),
		Batches:       r.analyzer.batchCount(len(job.Combinations)),
		FailedBatches: []int{},
		Gaps:          []domgap.Gap{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.store.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	snapshot := *run

	runCtx, cancel := context.WithCancel(context.Background())
	runCtx = logger.ContextWithLogger(runCtx, r.logger.With(zap.String("run_id", run.ID)))

	r.mu.Lock()
	r.active[run.ID] = cancel
	r.mu.Unlock()

	r.wg.Add(1)
	metrics.GapRunsActive.Inc()
	go func() {
		defer r.wg.Done()
		defer metrics.GapRunsActive.Dec()
		defer r.release(run.ID)
		r.execute(runCtx, run, job)
	}()

	logger.FromContext(ctx).Info("gap run started",
		zap.String("run_id", run.ID),
		zap.String("variant", string(params.Variant)),
		zap.Int("combinations", run.Combinations),
	)
	return &snapshot, nil
}

// Get returns the stored state of a run.
func (r *Runner) Get(ctx context.Context, id string) (*domgap.Run, error) {
	run, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// List returns the most recent runs first.
func (r *Runner) List(ctx context.Context, limit int) ([]domgap.Run, error) {
	runs, err := r.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Cancel asks a running analysis to stop at its next batch boundary.
func (r *Runner) Cancel(ctx context.Context, id string) error {
	r.mu.Lock()
	cancel, ok := r.active[id]
	r.mu.Unlock()
	if ok {
		cancel()
		logger.FromContext(ctx).Info("gap run cancel requested", zap.String("run_id", id))
		return nil
	}

	if _, err := r.store.Get(ctx, id); err != nil {
		return fmt.Errorf("get run %s: %w", id, err)
	}
	return fmt.Errorf("%w: %s", domain.ErrRunFinished, id)
}

// Wait blocks until every background run has finished.
func (r *Runner) Wait() { r.wg.Wait() }

// Shutdown cancels all active runs and waits for them to persist their
// partial results, or for ctx to end.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	for _, cancel := range r.active {
		cancel()
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for gap runs: %w", ctx.Err())
	}
}

func (r *Runner) execute(ctx context.Context, run *domgap.Run, job Job) {
	log := logger.FromContext(ctx)
	persistCtx := context.WithoutCancel(ctx)

	defer func() {
		if p := recover(); p != nil {
			log.Error("gap run panicked", zap.Any("panic", p))
			r.finish(run, domgap.RunFailed, fmt.Sprintf("internal error: %v", p))
			r.persist(persistCtx, run)
		}
	}()

	job.OnBatch = func(b BatchReport) {
		run.Analyzed = b.Analyzed
		run.BatchesDone++
		if b.Err != nil {
			run.FailedBatches = append(run.FailedBatches, b.Batch)
		} else {
			run.Gaps = append(run.Gaps, b.Gaps...)
			SortGaps(run.Gaps)
		}
		run.Stats = domgap.Summarize(run.Gaps)
		run.UpdatedAt = r.now()
		r.persist(persistCtx, run)
	}

	res := r.analyzer.Analyze(ctx, job)

	run.Gaps = res.Gaps
	run.Stats = res.Stats
	run.Analyzed = res.Analyzed
	run.BatchesDone = res.BatchesDone
	run.FailedBatches = res.FailedBatches
	status := domgap.RunCompleted
	if res.Cancelled {
		status = domgap.RunCancelled
	}
	r.finish(run, status, "")
	r.persist(persistCtx, run)
}

func (r *Runner) finish(run *domgap.Run, status domgap.RunStatus, reason string) {
	now := r.now()
	run.Status = status
	run.Error = reason
	run.UpdatedAt = now
	run.FinishedAt = &now
}

func (r *Runner) persist(ctx context.Context, run *domgap.Run) {
	if err := r.store.Update(ctx, run); err != nil {
		logger.FromContext(ctx).Error("persist gap run", zap.Error(err))
	}
}

func (r *Runner) release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cancel, ok := r.active[id]; ok {
		cancel()
		delete(r.active, id)
	}
}
