package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the vector index is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentIndex     = "index"
	ComponentEmbedding = "embedding"
	ComponentRuns      = "gap_runs"
)

const defaultCheckTimeout = 5 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	index     Pinger
	embedding EmbeddingChecker
	runs      Pinger
	timeout   time.Duration
}

// New creates a Service. embedding and runs can be nil.
func New(index Pinger, embedding EmbeddingChecker, runs Pinger) *Service {
	return &Service{index: index, embedding: embedding, runs: runs, timeout: defaultCheckTimeout}
}

// WithTimeout bounds each component check.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs all component checks concurrently.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	var mu sync.Mutex
	var g errgroup.Group

	run := func(name string, check func(context.Context) error) {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			res := CheckOK
			if check(cctx) != nil {
				res = CheckError
			}
			mu.Lock()
			checks[name] = res
			mu.Unlock()
			return nil
		})
	}

	run(ComponentIndex, s.index.Ping)
	if s.embedding != nil {
		run(ComponentEmbedding, s.embedding.HealthCheck)
	}
	if s.runs != nil {
		run(ComponentRuns, s.runs.Ping)
	}
	_ = g.Wait()

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[ComponentIndex] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}
