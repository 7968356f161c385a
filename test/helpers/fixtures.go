package helpers

import (
	"time"

	"github.com/planfab/aps-engine/internal/domain/plan"
)

// PlanRowOption mutates a fixture row
type PlanRowOption func(*plan.PlanRow)

// NewPlanRow builds a valid single-maker plan row; options override fields
func NewPlanRow(opts ...PlanRowOption) plan.PlanRow {
	row := plan.PlanRow{
		WorkOrderNr:   "WO-2026-0001",
		ArticleNr:     "利群（硬）",
		PackageType:   "条盒",
		Specification: "84mm",
		QuantityTotal: 200,
		FinalQuantity: 200,
		MakerCode:     "C11",
		FeederCode:    "F01",
		PlannedStart:  plan.Timestamp{Time: time.Date(2026, 8, 21, 8, 0, 0, 0, time.Local)},
		PlannedEnd:    plan.Timestamp{Time: time.Date(2026, 8, 21, 16, 0, 0, 0, time.Local)},
	}
	for _, opt := range opts {
		opt(&row)
	}
	return row
}

// WithWorkOrderNr sets the work order number
func WithWorkOrderNr(nr string) PlanRowOption {
	return func(r *plan.PlanRow) { r.WorkOrderNr = nr }
}

// WithArticle sets the article
func WithArticle(article string) PlanRowOption {
	return func(r *plan.PlanRow) { r.ArticleNr = article }
}

// WithMakers sets the maker code list
func WithMakers(makers string) PlanRowOption {
	return func(r *plan.PlanRow) { r.MakerCode = makers }
}

// WithFeeder sets the feeder code
func WithFeeder(feeder string) PlanRowOption {
	return func(r *plan.PlanRow) { r.FeederCode = feeder }
}

// WithQuantities sets total and final quantities
func WithQuantities(total, final int64) PlanRowOption {
	return func(r *plan.PlanRow) {
		r.QuantityTotal = plan.Quantity(total)
		r.FinalQuantity = plan.Quantity(final)
	}
}

// WithWindow sets the planned window
func WithWindow(start, end time.Time) PlanRowOption {
	return func(r *plan.PlanRow) {
		r.PlannedStart = plan.Timestamp{Time: start}
		r.PlannedEnd = plan.Timestamp{Time: end}
	}
}
