// Package split decomposes merged plans into per-machine work orders,
// resolving feeder-time conflicts along the way.
package split

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planfab/aps-engine/internal/domain/order"
	"github.com/planfab/aps-engine/internal/domain/plan"
	"github.com/planfab/aps-engine/internal/domain/refdata"
	"github.com/planfab/aps-engine/internal/domain/shared"
	"github.com/planfab/aps-engine/pkg/utils"
)

// Result is the splitter's output: packer orders (one per maker code)
// and feeder orders (one per feeder group), plus non-fatal warnings.
type Result struct {
	Packers  []order.SplitOrder
	Feeders  []order.SplitOrder
	Warnings []string
}

// Splitter is the third pipeline stage. Merged plans are partitioned by
// feeder; time conflicts on each feeder are resolved first-come by
// planned start, then one feeder order per group and one packer order
// per maker code are emitted.
type Splitter struct {
	clock shared.Clock
}

// NewSplitter creates a splitter
func NewSplitter(clock shared.Clock) *Splitter {
	return &Splitter{clock: clock}
}

// Run splits the merged plans. snapshot may be nil; machine-relation
// validation is skipped when no relation data is available.
func (s *Splitter) Run(merged []plan.MergedPlan, snapshot *refdata.Snapshot) Result {
	var result Result

	groups := make(map[string][]plan.MergedPlan)
	feederCodes := make([]string, 0)
	for _, m := range merged {
		if m.FeederCode == "" {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("plan %s has no feeder code, skipped", m.WorkOrderNr))
			continue
		}
		if _, seen := groups[m.FeederCode]; !seen {
			feederCodes = append(feederCodes, m.FeederCode)
		}
		groups[m.FeederCode] = append(groups[m.FeederCode], m)
	}
	// Deterministic group order keeps the per-run number sequences stable
	sort.Strings(feederCodes)

	now := s.clock.Now()
	seq := &runSequence{ts: now}

	for _, feederCode := range feederCodes {
		s.splitGroup(feederCode, groups[feederCode], snapshot, seq, &result)
	}

	return result
}

// resolvedPlan is a merged plan with its feeder-conflict-free window
type resolvedPlan struct {
	plan     plan.MergedPlan
	interval shared.Interval
	adjusted bool
}

// splitGroup resolves feeder conflicts within one feeder group and emits
// the group's feeder order plus per-maker packer orders
func (s *Splitter) splitGroup(feederCode string, plans []plan.MergedPlan, snapshot *refdata.Snapshot, seq *runSequence, result *Result) {
	sort.Slice(plans, func(i, j int) bool { return plans[i].PlannedStart.Before(plans[j].PlannedStart) })

	schedule := newFeederSchedule()
	resolved := make([]resolvedPlan, 0, len(plans))
	for _, p := range plans {
		interval, adjusted := schedule.book(shared.NewInterval(p.PlannedStart, p.PlannedEnd))
		resolved = append(resolved, resolvedPlan{plan: p, interval: interval, adjusted: adjusted})
	}

	feeder := s.buildFeederOrder(feederCode, resolved, seq, result)
	result.Feeders = append(result.Feeders, feeder)

	for _, r := range resolved {
		s.emitPackerOrders(r, feeder, snapshot, seq, result)
	}
}

// buildFeederOrder aggregates the group's resolved plans into one
// feeder order
func (s *Splitter) buildFeederOrder(feederCode string, resolved []resolvedPlan, seq *runSequence, result *Result) order.SplitOrder {
	first := resolved[0]
	feeder := order.SplitOrder{
		WorkOrderNr:       order.FormatFeederNr(seq.ts, seq.nextFeeder()),
		WorkOrderType:     order.WorkOrderTypeFeeding,
		SourceWorkOrderNr: first.plan.WorkOrderNr,
		ArticleNr:         first.plan.ArticleNr,
		ProductCode:       first.plan.ProductCode,
		FeederCode:        feederCode,
		PlannedStart:      first.interval.Start,
		PlannedEnd:        first.interval.End,
	}

	makerSet := make(map[string]struct{})
	articles := make(map[string]struct{})
	var totalHours decimal.Decimal
	for _, r := range resolved {
		feeder.QuantityTotal += r.plan.QuantityTotal
		feeder.FinalQuantity += r.plan.FinalQuantity
		if r.interval.Start.Before(feeder.PlannedStart) {
			feeder.PlannedStart = r.interval.Start
		}
		if r.interval.End.After(feeder.PlannedEnd) {
			feeder.PlannedEnd = r.interval.End
		}
		articles[r.plan.ArticleNr] = struct{}{}
		for _, maker := range r.plan.MakerCodes() {
			makerSet[maker] = struct{}{}
		}
		totalHours = totalHours.Add(decimal.NewFromFloat(r.interval.Duration().Hours()))
	}

	if len(articles) > 1 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("feeder %s group contains %d distinct products", feederCode, len(articles)))
	}

	feeder.AssociatedMakers = make([]string, 0, len(makerSet))
	for maker := range makerSet {
		feeder.AssociatedMakers = append(feeder.AssociatedMakers, maker)
	}
	sort.Strings(feeder.AssociatedMakers)

	if totalHours.IsPositive() {
		feeder.TobaccoConsumptionRate = decimal.NewFromInt(feeder.QuantityTotal).Div(totalHours).Round(4)
	}

	return feeder
}

// emitPackerOrders emits one packer order per maker code of the resolved
// plan, sharing the plan's quantity with the remainder on the first maker
func (s *Splitter) emitPackerOrders(r resolvedPlan, feeder order.SplitOrder, snapshot *refdata.Snapshot, seq *runSequence, result *Result) {
	makers := r.plan.MakerCodes()
	if len(makers) == 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("plan %s has no maker code, no packer orders emitted", r.plan.WorkOrderNr))
		return
	}

	k := int64(len(makers))
	for i, maker := range makers {
		packer := order.SplitOrder{
			WorkOrderNr:       order.FormatPackerNr(seq.ts, seq.nextPacker()),
			WorkOrderType:     order.WorkOrderTypePacking,
			SourceWorkOrderNr: r.plan.WorkOrderNr,
			ArticleNr:         r.plan.ArticleNr,
			ProductCode:       r.plan.ProductCode,
			MakerCode:         maker,
			FeederCode:        feeder.FeederCode,
			QuantityTotal:     utils.SplitShare(r.plan.QuantityTotal, k, i),
			FinalQuantity:     utils.SplitShare(r.plan.FinalQuantity, k, i),
			PlannedStart:      r.interval.Start,
			PlannedEnd:        r.interval.End,
			SplitSequence:     i + 1,
			TotalMakers:       int(k),
			InputPlanID:       feeder.WorkOrderNr,
		}
		if r.adjusted {
			packer.ScheduleAdjusted = true
			packer.AdjustReason = fmt.Sprintf("shifted to resolve feeder %s time conflict", feeder.FeederCode)
		}
		if snapshot != nil && snapshot.HasRelations() && !snapshot.RelationExists(feeder.FeederCode, maker) {
			packer.AddWarning(fmt.Sprintf("maker %s is not related to feeder %s", maker, feeder.FeederCode))
		}
		result.Packers = append(result.Packers, packer)
	}
}

// runSequence allocates the per-run 4-digit number sequences for packer
// and feeder work orders, stamped with the run start time
type runSequence struct {
	ts      time.Time
	packers int
	feeders int
}

func (s *runSequence) nextPacker() int {
	s.packers++
	return s.packers
}

func (s *runSequence) nextFeeder() int {
	s.feeders++
	return s.feeders
}
