// Package preprocess normalises and validates raw decade-plan rows
// before they enter the scheduling pipeline.
package preprocess

import (
	"strings"
	"unicode"

	"github.com/planfab/aps-engine/internal/domain/plan"
)

// Preprocessor is the first pipeline stage: row cleanup, field mapping,
// type coercion, and business-rule validation. It never aborts; bad rows
// are recorded per-row and the stage continues.
type Preprocessor struct{}

// NewPreprocessor creates a preprocessor
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{}
}

// Run preprocesses the raw rows in input order
func (p *Preprocessor) Run(rows []plan.PlanRow) plan.PreprocessReport {
	report := plan.PreprocessReport{
		Processed: make([]plan.PreprocessedPlan, 0, len(rows)),
	}

	for i, row := range rows {
		if row.IsEmpty() {
			report.Dropped++
			continue
		}

		if strings.TrimSpace(row.WorkOrderNr) == "" {
			report.Rejected++
			report.Errors = append(report.Errors, plan.RowError{
				RowIndex: i,
				Reason:   "work_order_nr is blank",
			})
			continue
		}

		report.Processed = append(report.Processed, preprocessRow(row))
	}

	return report
}

func preprocessRow(row plan.PlanRow) plan.PreprocessedPlan {
	return plan.PreprocessedPlan{
		WorkOrderNr:    strings.TrimSpace(row.WorkOrderNr),
		ArticleNr:      row.ArticleNr,
		ProductCode:    row.ArticleNr,
		PackageType:    row.PackageType,
		Specification:  row.Specification,
		QuantityTotal:  row.QuantityTotal.Int64(),
		FinalQuantity:  row.FinalQuantity.Int64(),
		PlanQuantity:   coerceQuantity(row.QuantityTotal.Int64()),
		MakerCode:      row.MakerCode,
		FeederCode:     row.FeederCode,
		MachineType:    inferMachineType(row.MakerCode),
		IsMultiMachine: strings.Contains(row.MakerCode, ","),
		PlannedStart:   row.PlannedStart.Time,
		PlannedEnd:     row.PlannedEnd.Time,
	}
}

// coerceQuantity clamps negative quantities to zero
func coerceQuantity(q int64) int64 {
	if q < 0 {
		return 0
	}
	return q
}

// inferMachineType classifies the machine code: codes starting with "C"
// or containing any digit are maker machines; empty codes default to
// MAKER as well.
func inferMachineType(makerCode string) plan.MachineType {
	trimmed := strings.TrimSpace(makerCode)
	if trimmed == "" {
		return plan.MachineTypeMaker
	}
	if strings.HasPrefix(trimmed, "C") {
		return plan.MachineTypeMaker
	}
	for _, r := range trimmed {
		if unicode.IsDigit(r) {
			return plan.MachineTypeMaker
		}
	}
	return plan.MachineTypeFeeder
}
