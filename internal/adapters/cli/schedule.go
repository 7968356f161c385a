package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/planfab/aps-engine/internal/adapters/persistence"
	"github.com/planfab/aps-engine/internal/application/common"
	"github.com/planfab/aps-engine/internal/application/scheduling"
	"github.com/planfab/aps-engine/internal/application/scheduling/commands"
	"github.com/planfab/aps-engine/internal/domain/plan"
	"github.com/planfab/aps-engine/internal/domain/refdata"
	"github.com/planfab/aps-engine/internal/domain/shared"
	"github.com/planfab/aps-engine/internal/infrastructure/config"
	"github.com/planfab/aps-engine/internal/infrastructure/database"
	"github.com/planfab/aps-engine/internal/infrastructure/logging"
)

// NewScheduleCommand creates the schedule command
func NewScheduleCommand() *cobra.Command {
	var (
		inputPath string
		taskID    string
		dryRun    bool
		output    string
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the scheduling pipeline over a decade-plan file",
		Long: `Read raw plan rows from a JSON file, run the six-stage pipeline
and write the resulting MES work orders and schedule summaries to the
database. With --dry-run nothing is persisted and the generated orders
are printed instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readPlanRows(inputPath)
			if err != nil {
				return err
			}

			cfg := config.MustLoadConfig(configPath)
			clock := &shared.RealClock{}

			var refData refdata.ReferenceDataPort
			var sequence refdata.SequencePort = refdata.NewInMemorySequence()
			var persister scheduling.RunPersister

			if !dryRun {
				db, err := database.NewConnection(&cfg.Database)
				if err != nil {
					return fmt.Errorf("failed to connect to database: %w", err)
				}
				defer database.Close(db)

				refData = persistence.NewGormReferenceDataRepository(db)
				sequence = persistence.NewGormSequenceRepository(db, clock)
				persister = persistence.NewGormScheduleRunRepository(db, clock)
			}

			mediator := common.NewMediator()
			handler := commands.NewRunSchedulePipelineHandler(
				cfg.Pipeline.ToScheduling(), refData, sequence, persister, clock)
			if err := mediator.Register(
				reflect.TypeOf(&commands.RunSchedulePipelineCommand{}), handler); err != nil {
				return fmt.Errorf("failed to register pipeline handler: %w", err)
			}

			ctx := common.WithLogger(context.Background(), logging.NewRunLogger(cfg.Logging))
			response, err := mediator.Send(ctx, &commands.RunSchedulePipelineCommand{
				TaskID: taskID,
				Rows:   rows,
			})
			if err != nil {
				return err
			}

			result := response.(*commands.RunSchedulePipelineResponse).Result
			return printResult(result, output)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Path to the plan rows JSON file (required)")
	cmd.Flags().StringVar(&taskID, "task-id", "", "Task id for this run (default: random UUID)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run without a database; print orders instead of persisting")
	cmd.Flags().StringVarP(&output, "output", "o", "summary", "Output format: summary or json")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// readPlanRows loads and decodes the raw plan rows
func readPlanRows(path string) ([]plan.PlanRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	var rows []plan.PlanRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse plan rows: %w", err)
	}
	return rows, nil
}

// printResult writes the run outcome to stdout
func printResult(result *scheduling.PipelineResult, format string) error {
	if format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	status := "FAILED"
	if result.Success {
		status = "OK"
	} else if result.Cancelled {
		status = "CANCELLED"
	}

	fmt.Printf("Task %s: %s\n", result.TaskID, status)
	if result.Error != "" {
		fmt.Printf("  Error: %s\n", result.Error)
	}
	for _, m := range result.StageMetrics {
		fmt.Printf("  %-12s %4d -> %4d  (%s)\n", m.Stage, m.InputCount, m.OutputCount, m.Duration)
	}
	fmt.Printf("  MES orders:  %d\n", len(result.MesOrders))
	fmt.Printf("  Summaries:   %d\n", len(result.Summaries))
	if len(result.RowErrors) > 0 {
		fmt.Printf("  Rejected rows: %d\n", len(result.RowErrors))
		if verbose {
			for _, e := range result.RowErrors {
				fmt.Printf("    row %d (%s): %s\n", e.RowIndex, e.WorkOrderNr, e.Reason)
			}
		}
	}
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	for _, f := range result.Fallbacks {
		fmt.Printf("  fallback: %s\n", f)
	}

	if !result.Success {
		return fmt.Errorf("scheduling run did not complete")
	}
	return nil
}
