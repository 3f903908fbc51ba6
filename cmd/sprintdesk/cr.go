package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sprintdesk/internal/api"
	"sprintdesk/internal/config"
)

func newChangeRequestCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cr",
		Aliases: []string{"change-request"},
		Short:   "Raise and decide change requests",
	}
	cmd.AddCommand(
		newChangeRequestListCmd(cfg, flags),
		newChangeRequestCreateCmd(cfg, flags),
		newChangeRequestApproveCmd(cfg, flags),
	)
	return cmd
}

func newChangeRequestListCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	var sprintID int64

	cmd := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List change requests",
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
				crs, err := client.ListChangeRequests(cmd.Context(), projectID, sprint)
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeJSON(crs)
				}
				for _, cr := range crs {
					if err := writePlain("%s\n", formatChangeRequestLine(cr)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&sprintID, "sprint", 0, "only change requests of this sprint")
	return cmd
}

func newChangeRequestCreateCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	var description string
	var sprintID int64
	var status string
	var requestedBy int64

	cmd := &cobra.Command{
		Use:   "create <project-id> <title>",
		Short: "Raise a change request",
		Args:  requireAtLeastArgs(2, "project id and title are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}

			f := &flagSetter{cmd: cmd}
			req := api.ChangeRequestCreateRequest{
				Title:         strings.Join(args[1:], " "),
				Description:   stringPtrFlag(f, "description", description),
				SprintID:      idPtrFlag(f, "sprint", sprintID),
				Status:        stringPtrFlag(f, "status", status),
				RequestedByID: idPtrFlag(f, "requested-by", requestedBy),
			}
			if f.err != nil {
				return f.err
			}

			return withClient(cmd.Context(), cfg, flags, func(client *api.Client) error {
				cr, err := client.CreateChangeRequest(cmd.Context(), projectID, req)
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeJSON(cr)
				}
				return writePlain("%d\n", cr.ID)
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "description")
	cmd.Flags().Int64Var(&sprintID, "sprint", 0, "sprint id")
	cmd.Flags().StringVarP(&status, "status", "s", "", "initial status (pending_approval, approved, rejected)")
	cmd.Flags().Int64Var(&requestedBy, "requested-by", 0, "requesting user id (defaults to --actor)")
	return cmd
}

func newChangeRequestApproveCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	var approvedBy int64
	var status string
	var documentURL string
	var trailJSON string
	var notes string
	var metaKV []string
	var metaJSON string

	cmd := &cobra.Command{
		Use:   "approve <project-id> <change-request-id>",
		Short: "Record an approval decision (use --status rejected to reject)",
		Args:  requireExactlyArgs(2, "project id and change request id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "project id", "change request id")
			if err != nil {
				return err
			}

			f := &flagSetter{cmd: cmd}
			req := api.ChangeRequestApproveRequest{
				ApprovedByID:     idPtrFlag(f, "approved-by", approvedBy),
				Status:           stringPtrFlag(f, "status", status),
				ESignDocumentURL: stringPtrFlag(f, "document-url", documentURL),
				DecisionNotes:    stringPtrFlag(f, "notes", notes),
			}
			if f.err != nil {
				return f.err
			}
			if trailJSON != "" {
				var trail any
				if err := json.Unmarshal([]byte(trailJSON), &trail); err != nil {
					return fmt.Errorf("invalid --audit-trail: %w", err)
				}
				req.ESignAuditTrail = trail
			}
			if len(metaKV) > 0 || metaJSON != "" {
				m, err := parseMetadataFlags(metaKV, metaJSON)
				if err != nil {
					return err
				}
				req.ApprovalMetadata = m
			}

			return withClient(cmd.Context(), cfg, flags, func(client *api.Client) error {
				cr, err := client.ApproveChangeRequest(cmd.Context(), ids[0], ids[1], req)
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeJSON(cr)
				}
				return writePlain("%s\n", formatChangeRequestLine(cr))
			})
		},
	}

	cmd.Flags().Int64Var(&approvedBy, "approved-by", 0, "approver user id (defaults to --actor)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "decision (approved, rejected)")
	cmd.Flags().StringVar(&documentURL, "document-url", "", "signed document URL")
	cmd.Flags().StringVar(&trailJSON, "audit-trail", "", "e-sign audit trail as JSON")
	cmd.Flags().StringVar(&notes, "notes", "", "decision notes")
	cmd.Flags().StringSliceVar(&metaKV, "meta", nil, "approval metadata key=value (repeatable)")
	cmd.Flags().StringVar(&metaJSON, "meta-json", "", "approval metadata as JSON object")
	return cmd
}
