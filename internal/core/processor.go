package core

// processor.go wires the pipeline stages together.
//
// A batch flows through:
//  1. Map: keyed rows become RawRecords
//  2. Validate and clean: failing rows are tallied by error kind
//  3. Dedup: repeated transaction ids are dropped
//  4. Reconcile: per-customer balance checks over the deduplicated set
//
// The context is checked between stages so a cancelled request stops at the
// next stage boundary. Malformed data never produces an error; the only
// error Process returns is the context's.

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// Stage names reported in ProcessingStats.Stages.
const (
	StageClean     = "validate_clean"
	StageDedup     = "dedup"
	StageReconcile = "reconcile"
)

// Processor runs the ingestion pipeline. It holds no per-batch state and is
// safe for concurrent use.
type Processor struct {
	clock     Clock
	logger    *slog.Logger
	reconcile ReconcileOptions
}

// Option configures a Processor.
type Option func(*Processor)

// WithClock sets the time source used for stage and total timings.
func WithClock(c Clock) Option {
	return func(p *Processor) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithLogger sets the logger used for stage and summary logging.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithReconcileOptions sets the reconciliation tolerance and worker count.
func WithReconcileOptions(opts ReconcileOptions) Option {
	return func(p *Processor) {
		p.reconcile = opts
	}
}

// NewProcessor creates a Processor with the system clock and default logger.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		clock:  SystemClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process maps rows to RawRecords and runs the pipeline over them.
func (p *Processor) Process(ctx context.Context, rows []map[string]any) (*ProcessResult, error) {
	raws := make([]RawRecord, len(rows))
	for i, row := range rows {
		raws[i] = MapRow(row)
	}
	return p.ProcessRecords(ctx, raws)
}

// ProcessRecords runs the pipeline over already-mapped records.
func (p *Processor) ProcessRecords(ctx context.Context, raws []RawRecord) (*ProcessResult, error) {
	start := p.clock.Now()
	stats := ProcessingStats{
		TotalRecords:     len(raws),
		ValidationErrors: make(map[ErrorKind]int),
	}

	stageStart := start
	endStage := func(name string) {
		now := p.clock.Now()
		d := now.Sub(stageStart)
		stats.Stages = append(stats.Stages, StageTiming{Stage: name, DurationMs: d.Milliseconds()})
		p.logger.Debug("pipeline stage complete", "stage", name, "duration_ms", d.Milliseconds())
		stageStart = now
	}

	// Validate and clean
	cleaned := make([]CleanedTransaction, 0, len(raws))
	for _, raw := range raws {
		res := ValidateTransaction(raw)
		if !res.Valid {
			stats.InvalidRecords++
			for _, kind := range res.Errors {
				stats.ValidationErrors[kind]++
			}
			continue
		}

		ct, ok := CleanTransaction(raw)
		if !ok {
			stats.InvalidRecords++
			stats.ValidationErrors[ErrCleanFailed]++
			continue
		}
		cleaned = append(cleaned, ct)
	}
	dataset := ValidateDataset(raws)
	endStage(StageClean)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Dedup
	deduped := Deduplicate(cleaned)
	stats.DuplicateRecords = len(deduped.DuplicateIDs)
	stats.ValidRecords = len(deduped.Unique)
	endStage(StageDedup)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Reconcile
	issues, err := Reconcile(ctx, deduped.Unique, p.reconcile)
	if err != nil {
		return nil, err
	}
	stats.ReconciliationIssues = issues
	endStage(StageReconcile)

	stats.ProcessingTimeMs = roundMillis(p.clock.Now().Sub(start))

	p.logger.Info("batch processed",
		"total", stats.TotalRecords,
		"valid", stats.ValidRecords,
		"invalid", stats.InvalidRecords,
		"duplicates", stats.DuplicateRecords,
		"reconciliation_issues", len(stats.ReconciliationIssues),
		"duration_ms", stats.ProcessingTimeMs,
	)

	return &ProcessResult{
		Cleaned:      deduped.Unique,
		Stats:        stats,
		DuplicateIDs: deduped.DuplicateIDs,
		Dataset:      dataset,
	}, nil
}

// ProcessTransactions runs the pipeline with default settings and no
// deadline. It always returns a well-formed result.
func ProcessTransactions(rows []map[string]any) *ProcessResult {
	res, err := NewProcessor().Process(context.Background(), rows)
	if err != nil {
		// Unreachable: a background context is never cancelled.
		return &ProcessResult{Stats: ProcessingStats{
			TotalRecords:         len(rows),
			ValidationErrors:     map[ErrorKind]int{},
			ReconciliationIssues: []ReconciliationIssue{},
		}}
	}
	return res
}

func roundMillis(d time.Duration) int64 {
	return int64(math.Round(float64(d) / float64(time.Millisecond)))
}
