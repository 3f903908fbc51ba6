package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sprintdesk/internal/config"
	"sprintdesk/internal/store"
)

func newMigrateCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	var dryRun bool
	var inspect bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run or inspect database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := storeOptions(cfg)
			if err != nil {
				return err
			}

			if inspect || dryRun {
				db, err := store.OpenRawDB(opts)
				if err != nil {
					return err
				}
				defer db.Close()

				plan, err := store.MigrationPlan(cmd.Context(), db, opts.Dialect)
				if err != nil {
					return fmt.Errorf("inspect migrations: %w", err)
				}
				return writeMigrationPlan(plan, flags)
			}

			// Run migrations (same as what happens on server start).
			st, err := store.OpenWithOptions(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			defer st.Close()

			if flags.structured() {
				plan, err := st.MigrationPlan(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(plan)
			}

			fmt.Println("Migrations applied successfully.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show pending migrations without applying")
	cmd.Flags().BoolVar(&inspect, "inspect", false, "show migration status")

	return cmd
}

func writeMigrationPlan(plan *store.MigrationStatus, flags *globalFlags) error {
	if flags.structured() {
		return writeJSON(plan)
	}

	fmt.Printf("Dialect: %s\n", plan.Dialect)
	fmt.Printf("Current version: %d\n", plan.CurrentVersion)
	fmt.Printf("Available version: %d\n", plan.AvailableVersion)
	if len(plan.Pending) == 0 {
		fmt.Println("No pending migrations.")
		return nil
	}
	fmt.Printf("Pending migrations: %d\n", len(plan.Pending))
	for _, m := range plan.Pending {
		fmt.Printf("  %d: %s\n", m.Version, m.Description)
	}
	return nil
}
