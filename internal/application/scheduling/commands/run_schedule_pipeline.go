package commands

import (
	"context"
	"fmt"

	"github.com/planfab/aps-engine/internal/application/common"
	"github.com/planfab/aps-engine/internal/application/scheduling"
	"github.com/planfab/aps-engine/internal/domain/plan"
	"github.com/planfab/aps-engine/internal/domain/refdata"
	"github.com/planfab/aps-engine/internal/domain/shared"
)

// RunSchedulePipelineCommand requests one full scheduling run over a
// batch of raw decade-plan rows
type RunSchedulePipelineCommand struct {
	TaskID string // Optional; a UUID is assigned when empty
	Rows   []plan.PlanRow
}

// RunSchedulePipelineResponse carries the run result
type RunSchedulePipelineResponse struct {
	Result *scheduling.PipelineResult
}

// RunSchedulePipelineHandler executes the six-stage pipeline through the
// orchestrator
type RunSchedulePipelineHandler struct {
	cfg      scheduling.Config
	refData  refdata.ReferenceDataPort
	sequence refdata.SequencePort
	persist  scheduling.RunPersister
	clock    shared.Clock
}

// NewRunSchedulePipelineHandler creates the handler
func NewRunSchedulePipelineHandler(
	cfg scheduling.Config,
	refData refdata.ReferenceDataPort,
	sequence refdata.SequencePort,
	persist scheduling.RunPersister,
	clock shared.Clock,
) *RunSchedulePipelineHandler {
	return &RunSchedulePipelineHandler{
		cfg:      cfg,
		refData:  refData,
		sequence: sequence,
		persist:  persist,
		clock:    clock,
	}
}

// Handle runs the pipeline for the command's rows
func (h *RunSchedulePipelineHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RunSchedulePipelineCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RunSchedulePipelineCommand, got %T", request)
	}

	orchestrator := scheduling.NewOrchestrator(h.cfg, h.refData, h.sequence, h.persist, h.clock)
	result, err := orchestrator.Run(ctx, cmd.Rows, cmd.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to run scheduling pipeline: %w", err)
	}

	return &RunSchedulePipelineResponse{Result: result}, nil
}
