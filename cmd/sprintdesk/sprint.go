package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"sprintdesk/internal/api"
	"sprintdesk/internal/config"
)

type sprintCmdOptions struct {
	name           string
	goal           string
	status         string
	start          string
	end            string
	velocityTarget float64
}

func newSprintCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sprint",
		Short: "Manage sprints",
	}
	cmd.AddCommand(
		newSprintCreateCmd(cfg, flags),
		newSprintShowCmd(cfg, flags),
		newSprintUpdateCmd(cfg, flags),
	)
	return cmd
}

func newSprintCreateCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	opts := &sprintCmdOptions{}
	cmd := &cobra.Command{
		Use:   "create <project-id> <name>",
		Short: "Create a sprint",
		Args:  requireAtLeastArgs(2, "project id and sprint name are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}

			f := &flagSetter{cmd: cmd}
			req := api.SprintCreateRequest{
				Name:           strings.Join(args[1:], " "),
				Goal:           stringPtrFlag(f, "goal", opts.goal),
				Status:         stringPtrFlag(f, "status", opts.status),
				StartDate:      timePtrFlag(f, "start", opts.start),
				EndDate:        timePtrFlag(f, "end", opts.end),
				VelocityTarget: floatPtrFlag(f, "velocity", opts.velocityTarget),
			}
			if f.err != nil {
				return f.err
			}

			return withClient(cmd.Context(), cfg, flags, func(client *api.Client) error {
				sprint, err := client.CreateSprint(cmd.Context(), projectID, req)
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeJSON(sprint)
				}
				return writePlain("%d\n", sprint.ID)
			})
		},
	}

	bindSprintFlags(cmd, opts, false)
	return cmd
}

func newSprintShowCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id> <sprint-id>",
		Short: "Show a sprint snapshot with metrics and burndown",
		Args:  requireExactlyArgs(2, "project id and sprint id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "project id", "sprint id")
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), cfg, flags, func(client *api.Client) error {
				sprint, err := client.GetSprint(cmd.Context(), ids[0], ids[1])
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeJSON(sprint)
				}
				lines := sprintSummaryLines(sprint)
				for _, task := range sprint.Tasks {
					lines = append(lines, "  "+formatTaskLine(task))
				}
				return writeLines(lines)
			})
		},
	}
}

func newSprintUpdateCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	opts := &sprintCmdOptions{}
	cmd := &cobra.Command{
		Use:   "update <project-id> <sprint-id>",
		Short: "Update sprint fields; pass none to clear a date",
		Args:  requireExactlyArgs(2, "project id and sprint id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "project id", "sprint id")
			if err != nil {
				return err
			}

			f := &flagSetter{cmd: cmd}
			req := api.SprintUpdateRequest{
				Name:           optionalString(f, "name", opts.name),
				Goal:           optionalString(f, "goal", opts.goal),
				Status:         optionalString(f, "status", opts.status),
				StartDate:      optionalTime(f, "start", opts.start),
				EndDate:        optionalTime(f, "end", opts.end),
				VelocityTarget: optionalFloat(f, "velocity", opts.velocityTarget),
			}
			if f.err != nil {
				return f.err
			}
			if !hasSprintUpdateFields(req) {
				return errors.New("no fields to update")
			}

			return withClient(cmd.Context(), cfg, flags, func(client *api.Client) error {
				sprint, err := client.UpdateSprint(cmd.Context(), ids[0], ids[1], req)
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeJSON(sprint)
				}
				return writeLines(sprintSummaryLines(sprint))
			})
		},
	}

	bindSprintFlags(cmd, opts, true)
	return cmd
}

func bindSprintFlags(cmd *cobra.Command, opts *sprintCmdOptions, update bool) {
	if update {
		cmd.Flags().StringVar(&opts.name, "name", "", "sprint name")
	}
	cmd.Flags().StringVar(&opts.goal, "goal", "", "sprint goal")
	cmd.Flags().StringVarP(&opts.status, "status", "s", "", "sprint status (planning, active, completed, cancelled)")
	cmd.Flags().StringVar(&opts.start, "start", "", "start date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&opts.end, "end", "", "end date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().Float64Var(&opts.velocityTarget, "velocity", 0, "velocity target in story points")
}

func hasSprintUpdateFields(req api.SprintUpdateRequest) bool {
	return req.Name.Set || req.Goal.Set || req.Status.Set || req.StartDate.Set || req.EndDate.Set || req.VelocityTarget.Set
}
