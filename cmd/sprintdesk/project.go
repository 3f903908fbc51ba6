package main

import (
	"strings"

	"github.com/spf13/cobra"

	"sprintdesk/internal/api"
	"sprintdesk/internal/config"
)

func newProjectCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Create and list projects",
	}
	cmd.AddCommand(newProjectCreateCmd(cfg, flags), newProjectListCmd(cfg, flags))
	return cmd
}

func newProjectCreateCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  requireAtLeastArgs(1, "project name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.ProjectCreateRequest{Name: strings.Join(args, " ")}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			return withClient(cmd.Context(), cfg, flags, func(client *api.Client) error {
				project, err := client.CreateProject(cmd.Context(), req)
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeJSON(project)
				}
				return writePlain("%d\n", project.ID)
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "project description")
	return cmd
}

func newProjectListCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), cfg, flags, func(client *api.Client) error {
				projects, err := client.ListProjects(cmd.Context())
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeJSON(projects)
				}
				for _, project := range projects {
					if err := writePlain("%s\n", formatProjectLine(project)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newOverviewCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "overview <project-id>",
		Short: "Show the project overview across sprints and backlog",
		Args:  requireExactlyArgs(1, "project id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), cfg, flags, func(client *api.Client) error {
				overview, err := client.ProjectOverview(cmd.Context(), projectID)
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeJSON(overview)
				}
				return writeLines(overviewLines(overview))
			})
		},
	}
}
