package main

import (
	"github.com/spf13/cobra"

	"sprintdesk/internal/api"
	"sprintdesk/internal/config"
)

type timeLogOptions struct {
	userID     int64
	minutes    int
	started    string
	ended      string
	billable   bool
	hourlyRate float64
	notes      string
}

func newTimeCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Log time against tasks",
	}
	cmd.AddCommand(newTimeLogCmd(cfg, flags))
	return cmd
}

func newTimeLogCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	opts := &timeLogOptions{}
	cmd := &cobra.Command{
		Use:   "log <project-id> <task-id>",
		Short: "Log a time entry; minutes are derived from --start/--end when omitted",
		Args:  requireExactlyArgs(2, "project id and task id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "project id", "task id")
			if err != nil {
				return err
			}

			f := &flagSetter{cmd: cmd}
			req := api.TimeLogRequest{
				UserID:     idPtrFlag(f, "user", opts.userID),
				StartedAt:  timePtrFlag(f, "start", opts.started),
				EndedAt:    timePtrFlag(f, "end", opts.ended),
				Billable:   opts.billable,
				HourlyRate: floatPtrFlag(f, "rate", opts.hourlyRate),
				Notes:      stringPtrFlag(f, "notes", opts.notes),
			}
			if f.changed("minutes") {
				req.MinutesSpent = &opts.minutes
			}
			if f.err != nil {
				return f.err
			}

			return withClient(cmd.Context(), cfg, flags, func(client *api.Client) error {
				result, err := client.LogTime(cmd.Context(), ids[0], ids[1], req)
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeJSON(result)
				}
				return writePlain("logged %d min on #%d; task total %s\n", result.Entry.MinutesSpent, result.Task.ID,
					formatTimeSummary(result.Task.TimeSummary))
			})
		},
	}

	cmd.Flags().Int64Var(&opts.userID, "user", 0, "user id (defaults to --actor)")
	cmd.Flags().IntVarP(&opts.minutes, "minutes", "m", 0, "minutes spent (1-1440)")
	cmd.Flags().StringVar(&opts.started, "start", "", "start timestamp")
	cmd.Flags().StringVar(&opts.ended, "end", "", "end timestamp")
	cmd.Flags().BoolVar(&opts.billable, "billable", false, "mark the entry billable")
	cmd.Flags().Float64Var(&opts.hourlyRate, "rate", 0, "hourly rate")
	cmd.Flags().StringVar(&opts.notes, "notes", "", "notes")
	return cmd
}
