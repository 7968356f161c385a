// Package scheduling runs the six-stage APS pipeline that turns decade
// plans into executable MES work orders.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planfab/aps-engine/internal/application/common"
	"github.com/planfab/aps-engine/internal/application/scheduling/correct"
	"github.com/planfab/aps-engine/internal/application/scheduling/generate"
	"github.com/planfab/aps-engine/internal/application/scheduling/merge"
	"github.com/planfab/aps-engine/internal/application/scheduling/preprocess"
	"github.com/planfab/aps-engine/internal/application/scheduling/psync"
	"github.com/planfab/aps-engine/internal/application/scheduling/split"
	"github.com/planfab/aps-engine/internal/domain/order"
	"github.com/planfab/aps-engine/internal/domain/plan"
	"github.com/planfab/aps-engine/internal/domain/refdata"
	"github.com/planfab/aps-engine/internal/domain/shared"
)

// RunPersister writes one run's MES orders and schedule summaries in a
// single transaction keyed by task id. A nil persister skips persistence
// (library/test use).
type RunPersister interface {
	PersistRun(ctx context.Context, taskID string, orders []order.MesOrder, summaries []order.ScheduleSummary) error
}

// Orchestrator executes the pipeline stages in order, collecting
// per-stage metrics. Reference data is snapshotted once at entry and
// treated as immutable for the run.
type Orchestrator struct {
	cfg      Config
	refData  refdata.ReferenceDataPort
	sequence refdata.SequencePort
	persist  RunPersister
	clock    shared.Clock
}

// NewOrchestrator creates an orchestrator. refData may be nil when no
// reference store is available; correction then degrades to pass-through.
func NewOrchestrator(cfg Config, refData refdata.ReferenceDataPort, sequence refdata.SequencePort, persist RunPersister, clock shared.Clock) *Orchestrator {
	if cfg.RunDeadline <= 0 {
		cfg.RunDeadline = time.Hour
	}
	return &Orchestrator{cfg: cfg, refData: refData, sequence: sequence, persist: persist, clock: clock}
}

// Run executes one scheduling run over the raw plan rows. A fatal stage
// error aborts the run with Success=false and no persistence; per-row
// and per-order problems are collected on the result instead.
func (o *Orchestrator) Run(ctx context.Context, rows []plan.PlanRow, taskID string) (*PipelineResult, error) {
	if taskID == "" {
		taskID = uuid.New().String()
	}
	ctx, cancel := context.WithTimeout(ctx, o.cfg.RunDeadline)
	defer cancel()

	logger := common.LoggerFromContext(ctx)
	result := &PipelineResult{TaskID: taskID}

	snapshot, err := o.loadSnapshot(ctx)
	if err != nil {
		return o.fail(result, "reference data", err), nil
	}

	// Stage 1: preprocess
	report, err := runStage(ctx, result, "preprocess", len(rows), func() (plan.PreprocessReport, error) {
		return preprocess.NewPreprocessor().Run(rows), nil
	}, func(r plan.PreprocessReport) (int, int) { return len(r.Processed), len(r.Errors) })
	if err != nil {
		return o.fail(result, "preprocess", err), nil
	}
	result.RowErrors = report.Errors

	// Stage 2: merge
	merged, err := runStage(ctx, result, "merge", len(report.Processed), func() ([]plan.MergedPlan, error) {
		if !o.cfg.MergeEnabled {
			return passthroughMerge(report.Processed), nil
		}
		return merge.NewMerger(o.cfg.SpecialBrands, o.clock).Run(report.Processed), nil
	}, func(m []plan.MergedPlan) (int, int) { return len(m), 0 })
	if err != nil {
		return o.fail(result, "merge", err), nil
	}

	// Stage 3: split
	splitResult, err := runStage(ctx, result, "split", len(merged), func() (split.Result, error) {
		if !o.cfg.SplitEnabled {
			return passthroughSplit(merged), nil
		}
		return split.NewSplitter(o.clock).Run(merged, snapshot), nil
	}, func(r split.Result) (int, int) { return len(r.Packers) + len(r.Feeders), len(r.Warnings) })
	if err != nil {
		return o.fail(result, "split", err), nil
	}
	result.Warnings = append(result.Warnings, splitResult.Warnings...)
	splitOrders := append(append([]order.SplitOrder{}, splitResult.Packers...), splitResult.Feeders...)

	// Stage 4: time correction
	corrected, err := runStage(ctx, result, "correct", len(splitOrders), func() ([]order.CorrectedOrder, error) {
		if !o.cfg.CorrectionEnabled {
			return passthroughCorrect(splitOrders), nil
		}
		opts := correct.Options{
			SpeedToleranceMinutes:    o.cfg.SpeedToleranceMinutes,
			SetupMinutesDefault:      o.cfg.SetupMinutesDefault,
			ChangeoverMinutesDefault: o.cfg.ChangeoverMinutesDefault,
			ShiftClampMaxHours:       o.cfg.ShiftClampMaxHours,
		}
		return correct.NewCorrector(opts).Run(splitOrders, snapshot), nil
	}, func(c []order.CorrectedOrder) (int, int) { return len(c), 0 })
	if err != nil {
		return o.fail(result, "correct", err), nil
	}

	// Stage 5: parallel synchronisation
	synced, err := runStage(ctx, result, "synchronise", len(corrected), func() ([]order.SyncedOrder, error) {
		if !o.cfg.ParallelEnabled {
			return passthroughSync(corrected), nil
		}
		return psync.NewSynchroniser(o.clock).Run(corrected), nil
	}, func(s []order.SyncedOrder) (int, int) { return len(s), 0 })
	if err != nil {
		return o.fail(result, "synchronise", err), nil
	}
	for _, so := range synced {
		result.Warnings = append(result.Warnings, so.Warnings...)
	}

	// Stage 6: work-order generation
	generated, err := runStage(ctx, result, "generate", len(synced), func() (generate.Result, error) {
		return generate.NewGenerator(o.sequence, o.clock).Run(ctx, synced, taskID)
	}, func(r generate.Result) (int, int) { return len(r.MesOrders), len(r.Fallbacks) })
	if err != nil {
		return o.fail(result, "generate", err), nil
	}
	result.MesOrders = generated.MesOrders
	result.Summaries = generated.Summaries
	result.Fallbacks = generated.Fallbacks
	result.Warnings = append(result.Warnings, generated.Warnings...)

	if o.persist != nil {
		if err := o.persist.PersistRun(ctx, taskID, result.MesOrders, result.Summaries); err != nil {
			return o.fail(result, "persist", err), nil
		}
	}

	result.Success = true
	logger.Log("INFO", "scheduling run completed", map[string]interface{}{
		"task_id":    taskID,
		"mes_orders": len(result.MesOrders),
		"summaries":  len(result.Summaries),
	})
	return result, nil
}

// loadSnapshot fetches the per-run reference data snapshot. A nil port
// yields an empty snapshot: every correction sub-step then degrades to
// skip-on-missing-data.
func (o *Orchestrator) loadSnapshot(ctx context.Context) (*refdata.Snapshot, error) {
	if o.refData == nil {
		return refdata.NewSnapshot(nil, nil, nil, nil), nil
	}
	snapshot, err := o.refData.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data snapshot: %w", err)
	}
	return snapshot, nil
}

// fail finalises the result for a fatal stage error. Cancellation is
// reported separately from other failures.
func (o *Orchestrator) fail(result *PipelineResult, stage string, err error) *PipelineResult {
	result.Success = false
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		result.Cancelled = true
	}
	result.Error = fmt.Sprintf("stage %s: %v", stage, err)
	return result
}

// runStage wraps one stage with cancellation checking and metrics
// collection
func runStage[T any](ctx context.Context, result *PipelineResult, name string, inputCount int, fn func() (T, error), counts func(T) (int, int)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	started := time.Now()
	out, err := fn()
	if err != nil {
		return zero, err
	}

	outputCount, errorCount := counts(out)
	result.StageMetrics = append(result.StageMetrics, StageMetrics{
		Stage:       name,
		InputCount:  inputCount,
		OutputCount: outputCount,
		Duration:    time.Since(started),
		ErrorCount:  errorCount,
	})
	result.StagesCompleted++
	return out, nil
}

// passthroughMerge wraps each preprocessed plan unchanged when merging
// is disabled
func passthroughMerge(plans []plan.PreprocessedPlan) []plan.MergedPlan {
	merged := make([]plan.MergedPlan, 0, len(plans))
	for _, p := range plans {
		merged = append(merged, plan.MergedPlan{
			WorkOrderNr:   p.WorkOrderNr,
			ArticleNr:     p.ArticleNr,
			ProductCode:   p.ProductCode,
			PackageType:   p.PackageType,
			Specification: p.Specification,
			QuantityTotal: p.QuantityTotal,
			FinalQuantity: p.FinalQuantity,
			MakerCode:     p.MakerCode,
			FeederCode:    p.FeederCode,
			PlannedStart:  p.PlannedStart,
			PlannedEnd:    p.PlannedEnd,
			MergedCount:   1,
		})
	}
	return merged
}

// passthroughSplit converts merged plans into packer orders only when
// splitting is disabled; maker code lists are decomposed later by the
// generator
func passthroughSplit(merged []plan.MergedPlan) split.Result {
	var result split.Result
	for _, m := range merged {
		result.Packers = append(result.Packers, order.SplitOrder{
			WorkOrderNr:       m.WorkOrderNr,
			WorkOrderType:     order.WorkOrderTypePacking,
			SourceWorkOrderNr: m.WorkOrderNr,
			ArticleNr:         m.ArticleNr,
			ProductCode:       m.ProductCode,
			MakerCode:         m.MakerCode,
			FeederCode:        m.FeederCode,
			QuantityTotal:     m.QuantityTotal,
			FinalQuantity:     m.FinalQuantity,
			PlannedStart:      m.PlannedStart,
			PlannedEnd:        m.PlannedEnd,
			TotalMakers:       len(m.MakerCodes()),
		})
	}
	return result
}

// passthroughCorrect wraps split orders unchanged when correction is
// disabled
func passthroughCorrect(orders []order.SplitOrder) []order.CorrectedOrder {
	corrected := make([]order.CorrectedOrder, 0, len(orders))
	for _, o := range orders {
		corrected = append(corrected, order.CorrectedOrder{
			SplitOrder:    o,
			OriginalStart: o.PlannedStart,
			OriginalEnd:   o.PlannedEnd,
		})
	}
	return corrected
}

// passthroughSync wraps corrected orders unchanged when synchronisation
// is disabled
func passthroughSync(orders []order.CorrectedOrder) []order.SyncedOrder {
	synced := make([]order.SyncedOrder, 0, len(orders))
	for _, o := range orders {
		synced = append(synced, order.SyncedOrder{CorrectedOrder: o})
	}
	return synced
}
