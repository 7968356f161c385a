package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planfab/aps-engine/internal/infrastructure/config"
	"github.com/planfab/aps-engine/internal/infrastructure/database"
)

// NewMigrateCommand creates the migrate command
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  `Run GORM auto-migration for the scheduling and reference tables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoadConfig(configPath)

			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close(db)

			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Println("✓ Database schema is up to date")
			return nil
		},
	}

	return cmd
}
