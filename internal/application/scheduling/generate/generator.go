// Package generate materialises MES-compliant work orders and schedule
// summaries from synchronised orders.
package generate

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/planfab/aps-engine/internal/domain/order"
	"github.com/planfab/aps-engine/internal/domain/plan"
	"github.com/planfab/aps-engine/internal/domain/refdata"
	"github.com/planfab/aps-engine/internal/domain/shared"
	"github.com/planfab/aps-engine/pkg/utils"
)

// Result is the generator's output. Fallbacks records every order whose
// plan id had to be generated from a random suffix because the sequence
// service failed; such orders are flagged FALLBACK and the failures must
// be surfaced to the caller.
type Result struct {
	MesOrders []order.MesOrder
	Summaries []order.ScheduleSummary
	Fallbacks []string
	Warnings  []string
}

// Generator is the sixth pipeline stage: it reconstructs HWS (feeder)
// and HJB (packer) MES records from synchronised orders and emits the
// per-(maker, feeder) schedule summaries.
type Generator struct {
	sequence refdata.SequencePort
	clock    shared.Clock
}

// NewGenerator creates a generator
func NewGenerator(sequence refdata.SequencePort, clock shared.Clock) *Generator {
	return &Generator{sequence: sequence, clock: clock}
}

// Run generates MES orders and summaries for one scheduling run.
// HWS records are emitted run-wide, exactly one per feeder: a feeder
// order aggregates every work order it feeds, so several logical work
// orders may link to the same HWS record. Output is sorted by plan id
// (orders) and by work order number, maker, feeder (summaries) so runs
// over identical input are reproducible.
func (g *Generator) Run(ctx context.Context, synced []order.SyncedOrder, taskID string) (Result, error) {
	var result Result

	var feederOrders []order.SyncedOrder
	groups := make(map[string][]order.SyncedOrder)
	keys := make([]string, 0)
	for _, o := range synced {
		if o.IsFeeder() {
			feederOrders = append(feederOrders, o)
			continue
		}
		if _, seen := groups[o.SourceWorkOrderNr]; !seen {
			keys = append(keys, o.SourceWorkOrderNr)
		}
		groups[o.SourceWorkOrderNr] = append(groups[o.SourceWorkOrderNr], o)
	}
	sort.Strings(keys)

	rng := rand.New(rand.NewSource(g.clock.Now().UnixNano()))

	links, err := g.emitFeederRecords(ctx, feederOrders, groups, keys, rng, &result)
	if err != nil {
		return result, err
	}

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		for _, mes := range g.packerRecords(ctx, key, groups[key], links, rng, &result) {
			result.MesOrders = append(result.MesOrders, mes)
		}
		result.Summaries = append(result.Summaries,
			buildSummaries(key, groups[key], distinctFeederCodes(groups[key]), taskID)...)
	}

	sort.Slice(result.MesOrders, func(i, j int) bool {
		return result.MesOrders[i].PlanID < result.MesOrders[j].PlanID
	})
	sort.Slice(result.Summaries, func(i, j int) bool {
		a, b := result.Summaries[i], result.Summaries[j]
		if a.WorkOrderNr != b.WorkOrderNr {
			return a.WorkOrderNr < b.WorkOrderNr
		}
		if a.MakerCode != b.MakerCode {
			return a.MakerCode < b.MakerCode
		}
		return a.FeederCode < b.FeederCode
	})

	return result, nil
}

// feederLinks resolves packer orders to the HWS plan id of the feeder
// that supplies them, by feeder work-order number or by feeder code
type feederLinks struct {
	byNr   map[string]string
	byCode map[string]string
}

// emitFeederRecords emits exactly one HWS record per feeder for the
// whole run. Feeder orders are aggregated by feeder code; when the run
// carries none (splitting disabled) the records are derived from the
// packer orders instead.
func (g *Generator) emitFeederRecords(ctx context.Context, feederOrders []order.SyncedOrder, groups map[string][]order.SyncedOrder, keys []string, rng *rand.Rand, result *Result) (feederLinks, error) {
	links := feederLinks{byNr: make(map[string]string), byCode: make(map[string]string)}

	type hwsSource struct {
		article    string
		sourceNr   string
		quantity   int64
		start, end time.Time
		memberNrs  []string
	}
	sources := make(map[string]*hwsSource)
	codes := make([]string, 0)

	collect := func(o order.SyncedOrder) {
		if o.FeederCode == "" {
			return
		}
		src, seen := sources[o.FeederCode]
		if !seen {
			sources[o.FeederCode] = &hwsSource{
				article:   o.ArticleNr,
				sourceNr:  o.SourceWorkOrderNr,
				quantity:  o.QuantityTotal,
				start:     o.PlannedStart,
				end:       o.PlannedEnd,
				memberNrs: []string{o.WorkOrderNr},
			}
			codes = append(codes, o.FeederCode)
			return
		}
		src.quantity += o.QuantityTotal
		if o.PlannedStart.Before(src.start) {
			src.start = o.PlannedStart
		}
		if o.PlannedEnd.After(src.end) {
			src.end = o.PlannedEnd
		}
		src.memberNrs = append(src.memberNrs, o.WorkOrderNr)
	}

	if len(feederOrders) > 0 {
		sort.Slice(feederOrders, func(i, j int) bool {
			return feederOrders[i].WorkOrderNr < feederOrders[j].WorkOrderNr
		})
		for _, f := range feederOrders {
			collect(f)
		}
	} else {
		for _, key := range keys {
			for _, o := range groups[key] {
				collect(o)
			}
		}
	}
	sort.Strings(codes)

	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			return links, err
		}
		src := sources[code]
		planID := g.nextPlanID(ctx, order.MesKindFeeder, rng, result)
		links.byCode[code] = planID.id
		for _, nr := range src.memberNrs {
			links.byNr[nr] = planID.id
		}

		result.MesOrders = append(result.MesOrders, order.MesOrder{
			PlanID:            planID.id,
			ProductionLine:    code,
			MaterialCode:      src.article,
			Quantity:          src.quantity,
			PlanStartTime:     src.start.Format(order.MesTimeFormat),
			PlanEndTime:       src.end.Format(order.MesTimeFormat),
			PlanDate:          src.start.Format(order.MesDateFormat),
			Unit:              order.UnitKilogram,
			OrderType:         planID.orderType,
			Kind:              order.MesKindFeeder,
			SourceWorkOrderNr: src.sourceNr,
			PlannedStart:      src.start,
			PlannedEnd:        src.end,
		})
	}
	return links, nil
}

// packerRecords emits the HJB records for a group's packer orders. When
// the splitter was skipped an order may still carry a multi-maker code
// list; it is decomposed here with the same remainder-first quantity
// split the splitter uses.
func (g *Generator) packerRecords(ctx context.Context, key string, packerOrders []order.SyncedOrder, links feederLinks, rng *rand.Rand, result *Result) []order.MesOrder {
	type makerShare struct {
		source   order.SyncedOrder
		maker    string
		quantity int64
	}

	shares := make([]makerShare, 0, len(packerOrders))
	seen := make(map[string]int) // maker -> index in shares
	for _, o := range packerOrders {
		makers := plan.SplitMachineCodes(o.MakerCode)
		if len(makers) == 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("order %s has no maker code, no HJB emitted", o.WorkOrderNr))
			continue
		}
		k := int64(len(makers))
		for i, maker := range makers {
			qty := utils.SplitShare(o.FinalQuantity, k, i)
			if idx, dup := seen[maker]; dup {
				shares[idx].quantity += qty
				continue
			}
			seen[maker] = len(shares)
			shares = append(shares, makerShare{source: o, maker: maker, quantity: qty})
		}
	}

	records := make([]order.MesOrder, 0, len(shares))
	for _, share := range shares {
		inputPlanID := ""
		if id, ok := links.byNr[share.source.InputPlanID]; ok {
			inputPlanID = id
		} else if id, ok := links.byCode[share.source.FeederCode]; ok {
			inputPlanID = id
		}

		planID := g.nextPlanID(ctx, order.MesKindPacker, rng, result)
		mes := order.MesOrder{
			PlanID:            planID.id,
			ProductionLine:    share.maker,
			MaterialCode:      share.source.ArticleNr,
			Quantity:          share.quantity,
			PlanStartTime:     share.source.PlannedStart.Format(order.MesTimeFormat),
			PlanEndTime:       share.source.PlannedEnd.Format(order.MesTimeFormat),
			PlanDate:          share.source.PlannedStart.Format(order.MesDateFormat),
			Unit:              order.UnitBox,
			OrderType:         planID.orderType,
			Kind:              order.MesKindPacker,
			SourceWorkOrderNr: key,
			PlannedStart:      share.source.PlannedStart,
			PlannedEnd:        share.source.PlannedEnd,
		}
		if inputPlanID != "" {
			mes.InputBatch = &order.InputBatch{InputPlanID: inputPlanID}
		}
		records = append(records, mes)
	}
	return records
}

type allocatedID struct {
	id        string
	orderType string
}

// nextPlanID allocates the next MES plan id, falling back to a random
// 9-digit suffix when the sequence service is unavailable. Duplicates in
// the fallback space are tolerated in recovery scenarios but every
// fallback is surfaced through the result.
func (g *Generator) nextPlanID(ctx context.Context, kind order.MesKind, rng *rand.Rand, result *Result) allocatedID {
	next, err := g.sequence.Next(ctx, kind.SequenceKind())
	if err == nil {
		return allocatedID{id: order.FormatPlanID(kind, next)}
	}

	id := order.FormatPlanID(kind, uint64(rng.Int63n(1_000_000_000)))
	result.Fallbacks = append(result.Fallbacks,
		fmt.Sprintf("%s: sequence allocation failed (%v), random suffix used", id, err))
	return allocatedID{id: id, orderType: order.OrderTypeFallback}
}

// distinctFeederCodes returns the orders' distinct feeder codes sorted
func distinctFeederCodes(orders []order.SyncedOrder) []string {
	seen := make(map[string]struct{})
	codes := make([]string, 0)
	for _, o := range orders {
		if o.FeederCode == "" {
			continue
		}
		if _, dup := seen[o.FeederCode]; dup {
			continue
		}
		seen[o.FeederCode] = struct{}{}
		codes = append(codes, o.FeederCode)
	}
	sort.Strings(codes)
	return codes
}

// buildSummaries emits one summary per (maker, feeder) pair in the
// cartesian product of the group's distinct codes, carrying the group's
// aggregated quantities and widest window
func buildSummaries(key string, packerOrders []order.SyncedOrder, feederCodes []string, taskID string) []order.ScheduleSummary {
	makerSet := make(map[string]struct{})
	makers := make([]string, 0)
	var finalQty, totalQty int64
	window := shared.NewInterval(packerOrders[0].PlannedStart, packerOrders[0].PlannedEnd)
	for _, o := range packerOrders {
		finalQty += o.FinalQuantity
		totalQty += o.QuantityTotal
		if o.PlannedStart.Before(window.Start) {
			window.Start = o.PlannedStart
		}
		if o.PlannedEnd.After(window.End) {
			window.End = o.PlannedEnd
		}
		for _, maker := range plan.SplitMachineCodes(o.MakerCode) {
			if _, seen := makerSet[maker]; !seen {
				makerSet[maker] = struct{}{}
				makers = append(makers, maker)
			}
		}
	}
	sort.Strings(makers)

	summaries := make([]order.ScheduleSummary, 0, len(makers)*len(feederCodes))
	for _, maker := range makers {
		for _, feeder := range feederCodes {
			summaries = append(summaries, order.ScheduleSummary{
				WorkOrderNr:    key,
				ArticleNr:      packerOrders[0].ArticleNr,
				FinalQuantity:  finalQty,
				QuantityTotal:  totalQty,
				MakerCode:      maker,
				FeederCode:     feeder,
				PlannedStart:   window.Start,
				PlannedEnd:     window.End,
				TaskID:         taskID,
				ScheduleStatus: order.ScheduleStatusCompleted,
			})
		}
	}
	return summaries
}
