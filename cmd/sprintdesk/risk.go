package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"sprintdesk/internal/api"
	"sprintdesk/internal/config"
)

type riskCmdOptions struct {
	title          string
	description    string
	sprintID       int64
	taskID         int64
	probability    float64
	severity       float64
	impact         string
	status         string
	ownerID        int64
	mitigationPlan string
	loggedAt       string
	reviewAt       string
}

func newRiskCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Track project and sprint risks",
	}
	cmd.AddCommand(
		newRiskListCmd(cfg, flags),
		newRiskCreateCmd(cfg, flags),
		newRiskUpdateCmd(cfg, flags),
	)
	return cmd
}

func newRiskListCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	var sprintID int64

	cmd := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List risks with a severity summary",
		Args:  requireExactlyArgs(1, "project id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			f := &flagSetter{cmd: cmd}
			sprint := idPtrFlag(f, "sprint", sprintID)
			if f.err != nil {
				return f.err
			}

			return withClient(cmd.Context(), cfg, flags, func(client *api.Client) error {
				resp, err := client.ListRisks(cmd.Context(), projectID, sprint)
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeJSON(resp)
				}
				lines := []string{formatRiskSummary(resp.Summary)}
				for _, risk := range resp.Risks {
					lines = append(lines, formatRiskLine(risk))
				}
				return writeLines(lines)
			})
		},
	}

	cmd.Flags().Int64Var(&sprintID, "sprint", 0, "only risks of this sprint")
	return cmd
}

func newRiskCreateCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	opts := &riskCmdOptions{}
	cmd := &cobra.Command{
		Use:   "create <project-id> <title>",
		Short: "Log a risk; severity is derived from probability and impact when omitted",
		Args:  requireAtLeastArgs(2, "project id and title are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}

			f := &flagSetter{cmd: cmd}
			req := api.RiskCreateRequest{
				Title:          strings.Join(args[1:], " "),
				Description:    stringPtrFlag(f, "description", opts.description),
				SprintID:       idPtrFlag(f, "sprint", opts.sprintID),
				TaskID:         idPtrFlag(f, "task", opts.taskID),
				Probability:    floatPtrFlag(f, "probability", opts.probability),
				SeverityScore:  floatPtrFlag(f, "severity", opts.severity),
				Impact:         stringPtrFlag(f, "impact", opts.impact),
				Status:         stringPtrFlag(f, "status", opts.status),
				OwnerID:        idPtrFlag(f, "owner", opts.ownerID),
				MitigationPlan: stringPtrFlag(f, "mitigation", opts.mitigationPlan),
				LoggedAt:       timePtrFlag(f, "logged", opts.loggedAt),
				ReviewAt:       timePtrFlag(f, "review", opts.reviewAt),
			}
			if f.err != nil {
				return f.err
			}

			return withClient(cmd.Context(), cfg, flags, func(client *api.Client) error {
				risk, err := client.CreateRisk(cmd.Context(), projectID, req)
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeJSON(risk)
				}
				return writePlain("%s\n", formatRiskLine(risk))
			})
		},
	}

	bindRiskFlags(cmd, opts, false)
	return cmd
}

func newRiskUpdateCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	opts := &riskCmdOptions{}
	cmd := &cobra.Command{
		Use:   "update <project-id> <risk-id>",
		Short: "Update risk fields; --sprint 0 or --task 0 detaches the risk",
		Args:  requireExactlyArgs(2, "project id and risk id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "project id", "risk id")
			if err != nil {
				return err
			}

			f := &flagSetter{cmd: cmd}
			req := api.RiskUpdateRequest{
				Title:          optionalString(f, "title", opts.title),
				Description:    optionalString(f, "description", opts.description),
				SprintID:       optionalID(f, "sprint", opts.sprintID),
				TaskID:         optionalID(f, "task", opts.taskID),
				Probability:    optionalFloat(f, "probability", opts.probability),
				SeverityScore:  optionalFloat(f, "severity", opts.severity),
				Impact:         optionalString(f, "impact", opts.impact),
				Status:         optionalString(f, "status", opts.status),
				OwnerID:        optionalID(f, "owner", opts.ownerID),
				MitigationPlan: optionalString(f, "mitigation", opts.mitigationPlan),
				ReviewAt:       optionalTime(f, "review", opts.reviewAt),
			}
			if f.err != nil {
				return f.err
			}
			if !hasRiskUpdateFields(req) {
				return errors.New("no fields to update")
			}

			return withClient(cmd.Context(), cfg, flags, func(client *api.Client) error {
				risk, err := client.UpdateRisk(cmd.Context(), ids[0], ids[1], req)
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeJSON(risk)
				}
				return writePlain("%s\n", formatRiskLine(risk))
			})
		},
	}

	bindRiskFlags(cmd, opts, true)
	return cmd
}

func hasRiskUpdateFields(req api.RiskUpdateRequest) bool {
	return req.Title.Set || req.Description.Set || req.SprintID.Set || req.TaskID.Set || req.Probability.Set ||
		req.SeverityScore.Set || req.Impact.Set || req.Status.Set || req.OwnerID.Set || req.MitigationPlan.Set ||
		req.ReviewAt.Set
}

func bindRiskFlags(cmd *cobra.Command, opts *riskCmdOptions, update bool) {
	if update {
		cmd.Flags().StringVar(&opts.title, "title", "", "risk title")
	} else {
		cmd.Flags().StringVar(&opts.loggedAt, "logged", "", "when the risk was logged (defaults to now)")
	}
	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "risk description")
	cmd.Flags().Int64Var(&opts.sprintID, "sprint", 0, "sprint id")
	cmd.Flags().Int64Var(&opts.taskID, "task", 0, "task id")
	cmd.Flags().Float64Var(&opts.probability, "probability", 0, "probability between 0 and 1")
	cmd.Flags().Float64Var(&opts.severity, "severity", 0, "severity score between 0 and 100")
	cmd.Flags().StringVar(&opts.impact, "impact", "", "impact (low, medium, high, critical)")
	cmd.Flags().StringVarP(&opts.status, "status", "s", "", "status (open, mitigating, resolved, closed)")
	cmd.Flags().Int64Var(&opts.ownerID, "owner", 0, "owner user id")
	cmd.Flags().StringVar(&opts.mitigationPlan, "mitigation", "", "mitigation plan")
	cmd.Flags().StringVar(&opts.reviewAt, "review", "", "next review date")
}
