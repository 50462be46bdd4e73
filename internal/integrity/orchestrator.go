// Package integrity orchestrates the full document integrity pipeline:
// batched parallel validation, full-dataset duplicate detection and
// metadata normalization, quality scoring, and report assembly.
package integrity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/integrity-cli/internal/config"
	"github.com/sells-group/integrity-cli/internal/dedup"
	"github.com/sells-group/integrity-cli/internal/model"
	"github.com/sells-group/integrity-cli/internal/normalize"
	"github.com/sells-group/integrity-cli/internal/quality"
	"github.com/sells-group/integrity-cli/internal/validate"
)

// Orchestrator runs integrity checks end to end. The tuned config is
// read-only for the lifetime of the Orchestrator; batch workers share
// nothing mutable beyond their pre-assigned result slots.
type Orchestrator struct {
	cfg        config.IntegrityConfig
	validator  *validate.Validator
	detector   *dedup.Detector
	normalizer *normalize.Normalizer
	scorer     *quality.Scorer
}

// RunOptions carries per-run overrides. The zero value means "use the
// tuned config".
type RunOptions struct {
	// BatchSize overrides the tuned batch size when > 0.
	BatchSize int
	// QualityThreshold, when > 0, adds a recommendation if the overall
	// score falls below it.
	QualityThreshold float64
}

// New creates an Orchestrator from the tuned config, duplicate
// detection settings, and scoring weights.
func New(cfg config.IntegrityConfig, dedupCfg config.DedupConfig, weights config.QualityWeights) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		validator:  validate.New(cfg.Rules),
		detector:   dedup.New(dedupCfg),
		normalizer: normalize.New(cfg.Rules),
		scorer:     quality.New(weights),
	}
}

// ValidateBatch validates records in input order.
func (o *Orchestrator) ValidateBatch(records []model.DocumentRecord) []model.ValidationResult {
	return o.validator.ValidateBatch(records)
}

// DetectDuplicates runs duplicate detection over the full record set.
func (o *Orchestrator) DetectDuplicates(ctx context.Context, collection string, records []model.DocumentRecord) model.DuplicateReport {
	return o.detector.DetectDuplicates(ctx, collection, records)
}

// NormalizeMetadata runs metadata normalization over the full set.
func (o *Orchestrator) NormalizeMetadata(records []model.DocumentRecord) model.NormalizedMetadata {
	return o.normalizer.Normalize(records)
}

// CalculateQualityScore reduces validation and duplicate results into a
// quality score.
func (o *Orchestrator) CalculateQualityScore(results []model.ValidationResult, dup *model.DuplicateReport) model.QualityScore {
	return o.scorer.Score(results, dup)
}

// RunIntegrityCheck runs the full pipeline and returns one report.
// Every stage after batching degrades per its own contract rather than
// aborting; the only fatal condition is an unreadable record set
// (a nil slice). Callers that fetched zero records pass an empty,
// non-nil slice and receive a structurally complete empty report.
func (o *Orchestrator) RunIntegrityCheck(ctx context.Context, collection string, records []model.DocumentRecord, opts *RunOptions) (*model.IntegrityReport, error) {
	if records == nil {
		return nil, eris.New("integrity: record set is unreadable")
	}
	if opts == nil {
		opts = &RunOptions{}
	}
	start := time.Now()

	batchSize := o.cfg.Batch.BatchSize
	if opts.BatchSize > 0 {
		batchSize = opts.BatchSize
	}
	if batchSize < 1 {
		batchSize = 1
	}
	parallelism := o.cfg.Batch.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	log := zap.L().With(
		zap.String("collection", collection),
		zap.Int("documents", len(records)),
	)
	log.Info("integrity: starting check",
		zap.Int("batch_size", batchSize),
		zap.Int("parallelism", parallelism),
	)

	results, batchCount, incomplete := o.runValidation(ctx, records, batchSize, parallelism)

	dupReport := o.detector.DetectDuplicates(ctx, collection, records)
	normReport := o.normalizer.Normalize(records)
	score := o.scorer.Score(results, &dupReport)

	recommendations := append([]string(nil), score.Recommendations...)
	if opts.QualityThreshold > 0 && score.OverallScore < opts.QualityThreshold {
		recommendations = append(recommendations, fmt.Sprintf(
			"overall quality %.2f is below the configured threshold %.2f",
			score.OverallScore, opts.QualityThreshold,
		))
	}

	summary := buildSummary(results, dupReport, time.Since(start), batchCount, batchSize, parallelism)

	report := &model.IntegrityReport{
		ID:                 uuid.NewString(),
		CollectionName:     collection,
		TotalDocuments:     len(records),
		ValidationResults:  results,
		DuplicateReport:    dupReport,
		QualityScore:       score,
		NormalizedMetadata: normReport,
		ProcessingSummary:  summary,
		Recommendations:    recommendations,
		Incomplete:         incomplete,
		Timestamp:          time.Now().UTC(),
	}

	log.Info("integrity: check complete",
		zap.Float64("overall_score", score.OverallScore),
		zap.String("level", string(score.Level)),
		zap.Int("duplicates", dupReport.DuplicatesFound),
		zap.Bool("incomplete", incomplete),
		zap.Duration("elapsed", summary.TotalTime),
	)
	return report, nil
}

// batchRange is one contiguous slice of the input assigned to a worker.
type batchRange struct {
	start, end int
}

// runValidation dispatches one task per batch onto a worker pool
// bounded by parallelism. Each task writes into a pre-assigned slice of
// the shared results, indexed by input position, so merged output
// preserves input order no matter which batch finishes first and no
// locking is needed.
//
// Cancellation is observed between batch submissions: remaining batches
// are not submitted and their documents receive synthetic failed
// results so document counts always reconcile, with the run flagged
// incomplete.
func (o *Orchestrator) runValidation(ctx context.Context, records []model.DocumentRecord, batchSize, parallelism int) ([]model.ValidationResult, int, bool) {
	batches := splitBatches(len(records), batchSize)
	results := make([]model.ValidationResult, len(records))
	submitted := make([]bool, len(batches))

	g := new(errgroup.Group)
	g.SetLimit(parallelism)

	cancelled := false
	for bi, b := range batches {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		submitted[bi] = true
		g.Go(func() error {
			o.validateBatchInto(records, b, results)
			return nil
		})
	}
	_ = g.Wait()

	if cancelled {
		for bi, b := range batches {
			if submitted[bi] {
				continue
			}
			for i := b.start; i < b.end; i++ {
				results[i] = syntheticFailure(records[i],
					"integrity check cancelled before this batch was validated")
			}
		}
	}
	return results, len(batches), cancelled
}

// validateBatchInto validates one batch, converting any panic into
// synthetic failed results for the whole batch so a malformed batch
// never takes down the run or skews document counts.
func (o *Orchestrator) validateBatchInto(records []model.DocumentRecord, b batchRange, results []model.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("integrity: batch validation failed",
				zap.Int("batch_start", b.start),
				zap.Any("panic", r),
			)
			for i := b.start; i < b.end; i++ {
				results[i] = syntheticFailure(records[i],
					fmt.Sprintf("batch validation failed: %v", r))
			}
		}
	}()
	for i := b.start; i < b.end; i++ {
		results[i] = o.validator.Validate(records[i])
	}
}

func syntheticFailure(record model.DocumentRecord, issue string) model.ValidationResult {
	return model.ValidationResult{
		DocumentID: record.ID,
		Status:     model.StatusFailed,
		Score:      0,
		Issues:     []string{issue},
		Metadata:   record.MetadataSnapshot(),
	}
}

func splitBatches(total, batchSize int) []batchRange {
	if total == 0 {
		return nil
	}
	batches := make([]batchRange, 0, (total+batchSize-1)/batchSize)
	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		batches = append(batches, batchRange{start: start, end: end})
	}
	return batches
}

func buildSummary(results []model.ValidationResult, dup model.DuplicateReport, elapsed time.Duration, batchCount, batchSize, parallelism int) model.ProcessingSummary {
	summary := model.ProcessingSummary{
		TotalTime:   elapsed,
		BatchCount:  batchCount,
		BatchSize:   batchSize,
		Parallelism: parallelism,
	}
	summary.DocumentCount = len(results)
	if len(results) > 0 {
		passed := 0
		for _, r := range results {
			if r.Status == model.StatusPassed {
				passed++
			}
		}
		summary.ValidationPassRate = float64(passed) / float64(len(results))
	}
	if dup.TotalChecked > 0 {
		summary.DuplicateRate = float64(dup.DuplicatesFound) / float64(dup.TotalChecked)
	}
	if secs := elapsed.Seconds(); secs > 0 {
		summary.DocsPerSecond = float64(len(results)) / secs
	}
	return summary
}
