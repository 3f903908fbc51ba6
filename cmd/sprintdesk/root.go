package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sprintdesk/internal/config"
	"sprintdesk/internal/format"
)

// globalFlags carries the persistent flags shared by every command.
type globalFlags struct {
	jsonOutput bool
	yamlOutput bool
	logLevel   string
	actorID    int64
}

// structured reports whether output should be machine readable.
func (g *globalFlags) structured() bool {
	return g.jsonOutput || g.yamlOutput
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "sprintdesk",
		Short:         "Sprint planning, time tracking and delivery analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.jsonOutput && flags.yamlOutput {
				return errors.New("--json and --yaml are mutually exclusive")
			}
			if flags.actorID < 0 {
				return fmt.Errorf("invalid --actor %d", flags.actorID)
			}
			warning, err := configureLoggerForCLI(flags.logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			outputFormatter = format.New(flags.yamlOutput)
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&flags.jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().BoolVar(&flags.yamlOutput, "yaml", false, "output YAML")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().Int64Var(&flags.actorID, "actor", 0, "acting user id sent with requests")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newMigrateCmd(cfg, flags),
		newConfigCmd(cfg, flags),
		newProjectCmd(cfg, flags),
		newOverviewCmd(cfg, flags),
		newBoardCmd(cfg, flags),
		newSprintCmd(cfg, flags),
		newTaskCmd(cfg, flags),
		newTimeCmd(cfg, flags),
		newRiskCmd(cfg, flags),
		newChangeRequestCmd(cfg, flags),
	)

	return cmd
}
