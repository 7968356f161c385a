package scheduling

import (
	"time"

	"github.com/planfab/aps-engine/internal/domain/order"
	"github.com/planfab/aps-engine/internal/domain/plan"
)

// StageMetrics records one stage's execution
type StageMetrics struct {
	Stage       string                 `json:"stage"`
	InputCount  int                    `json:"input_count"`
	OutputCount int                    `json:"output_count"`
	Duration    time.Duration          `json:"duration_seconds"`
	ErrorCount  int                    `json:"error_count"`
	Custom      map[string]interface{} `json:"custom_metrics,omitempty"`
}

// PipelineResult is the single structure the orchestrator returns.
// Per-row and per-order problems are collected here; only fatal stage
// errors set Success=false.
type PipelineResult struct {
	TaskID          string
	Success         bool
	Cancelled       bool
	Error           string
	StagesCompleted int

	MesOrders []order.MesOrder
	Summaries []order.ScheduleSummary

	StageMetrics []StageMetrics
	RowErrors    []plan.RowError
	Warnings     []string
	Fallbacks    []string
}
