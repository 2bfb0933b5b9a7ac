// Package service runs uploaded batches through the pipeline and keeps the
// results for querying.
package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/bankrecon/internal/core"
	"github.com/JonMunkholm/bankrecon/internal/ingest"
	"github.com/JonMunkholm/bankrecon/internal/logging"
	"github.com/JonMunkholm/bankrecon/internal/metrics"
	"github.com/google/uuid"
)

// Options configures a Service. Zero values select defaults.
type Options struct {
	MaxConcurrent int
	MaxWait       time.Duration
	Timeout       time.Duration

	Ingest    ingest.Options
	Reconcile core.ReconcileOptions

	AnomalyThreshold float64
	TopCities        int
	MaxRetained      int

	// Clock overrides the processor's time source.
	Clock core.Clock
}

// Service processes batches and serves queries over retained runs.
type Service struct {
	opts    Options
	limiter *BatchLimiter
	runs    *RunStore
	now     func() time.Time
}

// New creates a Service.
func New(opts Options) *Service {
	s := &Service{
		opts:    opts,
		limiter: NewBatchLimiter(opts.MaxConcurrent, opts.MaxWait),
		runs:    NewRunStore(opts.MaxRetained),
		now:     time.Now,
	}
	if opts.Clock != nil {
		s.now = opts.Clock.Now
	}
	return s
}

// Process reads a CSV batch from r, runs the pipeline and stores the run.
// size is the upload size if known, or 0; it only feeds logging.
func (s *Service) Process(ctx context.Context, fileName string, r io.Reader, size int64) (*Run, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	id := uuid.New().String()
	logger := logging.WithFields(ctx, "run_id", id, "file", fileName)
	logger.Info("batch started", "size_bytes", size)

	raws, err := ingest.ReadRecords(ctx, r, s.opts.Ingest)
	if err != nil {
		logger.Warn("batch rejected", "error", err)
		return nil, err
	}

	proc := core.NewProcessor(
		core.WithLogger(logger),
		core.WithReconcileOptions(s.opts.Reconcile),
		core.WithClock(s.opts.Clock),
	)
	result, err := proc.ProcessRecords(ctx, raws)
	if err != nil {
		logger.Warn("batch aborted", "error", err)
		return nil, fmt.Errorf("process %s: %w", fileName, err)
	}

	run := &Run{ID: id, FileName: fileName, CreatedAt: s.now().UTC(), Result: result}
	for _, old := range s.runs.Add(run) {
		logger.Debug("run evicted", "evicted_run_id", old)
	}
	return run, nil
}

// Get returns a stored run.
func (s *Service) Get(id string) (*Run, error) {
	return s.runs.Get(id)
}

// List returns summaries of the stored runs, newest first.
func (s *Service) List() []RunSummary {
	return s.runs.List()
}

// Transactions returns a run's cleaned transactions narrowed by f.
func (s *Service) Transactions(id string, f metrics.Filter) ([]core.CleanedTransaction, error) {
	run, err := s.runs.Get(id)
	if err != nil {
		return nil, err
	}
	return f.Apply(run.Result.Cleaned), nil
}

// Metrics computes the metrics report for a run.
func (s *Service) Metrics(ctx context.Context, id string, f metrics.Filter) (*metrics.Report, error) {
	run, err := s.runs.Get(id)
	if err != nil {
		return nil, err
	}
	return metrics.Compute(ctx, run.Result.Cleaned, metrics.Options{
		Filter:           f,
		AnomalyThreshold: s.opts.AnomalyThreshold,
		TopCities:        s.opts.TopCities,
	})
}

// Anomalies returns the anomalous transactions of a run.
func (s *Service) Anomalies(id string) ([]metrics.Anomaly, error) {
	run, err := s.runs.Get(id)
	if err != nil {
		return nil, err
	}
	return metrics.DetectAnomalies(run.Result.Cleaned, s.opts.AnomalyThreshold), nil
}

// CustomerLTV returns one customer's lifetime value within a run.
func (s *Service) CustomerLTV(id string, customerID int64) (float64, error) {
	run, err := s.runs.Get(id)
	if err != nil {
		return 0, err
	}
	return metrics.CustomerLTV(customerID, run.Result.Cleaned), nil
}

// LimiterStatus reports batch slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForBatches blocks until in-flight batches finish or ctx is done.
func (s *Service) WaitForBatches(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
