package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"sprintdesk/internal/api"
	"sprintdesk/internal/config"
)

type taskCmdOptions struct {
	title         string
	description   string
	sprintID      int64
	status        string
	priority      string
	storyPoints   float64
	sequence      int
	assigneeID    int64
	reporterID    int64
	due           string
	started       string
	completed     string
	blockedReason string
	deps          string
	metaKV        []string
	metaJSON      string
}

func newTaskCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage sprint and backlog tasks",
	}
	cmd.AddCommand(
		newTaskCreateCmd(cfg, flags),
		newTaskShowCmd(cfg, flags),
		newTaskUpdateCmd(cfg, flags),
	)
	return cmd
}

func newTaskCreateCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	opts := &taskCmdOptions{}
	cmd := &cobra.Command{
		Use:   "create <project-id> <title>",
		Short: "Create a task in a sprint or the backlog",
		Args:  requireAtLeastArgs(2, "project id and title are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			req, err := buildTaskCreateRequest(cmd, opts, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			return withClient(cmd.Context(), cfg, flags, func(client *api.Client) error {
				task, err := client.CreateTask(cmd.Context(), projectID, req)
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeJSON(task)
				}
				return writePlain("%d\n", task.ID)
			})
		},
	}

	bindTaskFlags(cmd, opts, false)
	return cmd
}

func buildTaskCreateRequest(cmd *cobra.Command, opts *taskCmdOptions, title string) (api.TaskCreateRequest, error) {
	f := &flagSetter{cmd: cmd}
	req := api.TaskCreateRequest{
		Title:         title,
		Description:   stringPtrFlag(f, "description", opts.description),
		SprintID:      idPtrFlag(f, "sprint", opts.sprintID),
		Status:        stringPtrFlag(f, "status", opts.status),
		Priority:      stringPtrFlag(f, "priority", opts.priority),
		StoryPoints:   floatPtrFlag(f, "points", opts.storyPoints),
		AssigneeID:    idPtrFlag(f, "assignee", opts.assigneeID),
		ReporterID:    idPtrFlag(f, "reporter", opts.reporterID),
		DueDate:       timePtrFlag(f, "due", opts.due),
		StartedAt:     timePtrFlag(f, "started", opts.started),
		CompletedAt:   timePtrFlag(f, "completed", opts.completed),
		BlockedReason: stringPtrFlag(f, "blocked-reason", opts.blockedReason),
	}
	if f.changed("sequence") {
		req.Sequence = &opts.sequence
	}
	if f.changed("deps") {
		deps, err := parseIDList(opts.deps)
		if err != nil {
			return api.TaskCreateRequest{}, err
		}
		req.Dependencies = deps
	}
	if len(opts.metaKV) > 0 || opts.metaJSON != "" {
		m, err := parseMetadataFlags(opts.metaKV, opts.metaJSON)
		if err != nil {
			return api.TaskCreateRequest{}, err
		}
		req.Metadata = m
	}
	return req, f.err
}

func newTaskShowCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id> <task-id>",
		Short: "Show a task with dependencies and logged time",
		Args:  requireExactlyArgs(2, "project id and task id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "project id", "task id")
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), cfg, flags, func(client *api.Client) error {
				task, err := client.GetTask(cmd.Context(), ids[0], ids[1])
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeJSON(task)
				}
				return writeTaskDetail(task)
			})
		},
	}
}

func newTaskUpdateCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	opts := &taskCmdOptions{}
	cmd := &cobra.Command{
		Use:   "update <project-id> <task-id>",
		Short: "Update task fields; --sprint 0 moves the task to the backlog",
		Args:  requireExactlyArgs(2, "project id and task id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "project id", "task id")
			if err != nil {
				return err
			}
			req, err := buildTaskUpdateRequest(cmd, opts)
			if err != nil {
				return err
			}
			if !hasTaskUpdateFields(req) {
				return errors.New("no fields to update")
			}

			return withClient(cmd.Context(), cfg, flags, func(client *api.Client) error {
				task, err := client.UpdateTask(cmd.Context(), ids[0], ids[1], req)
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeJSON(task)
				}
				return writeTaskDetail(task)
			})
		},
	}

	bindTaskFlags(cmd, opts, true)
	return cmd
}

func buildTaskUpdateRequest(cmd *cobra.Command, opts *taskCmdOptions) (api.TaskUpdateRequest, error) {
	f := &flagSetter{cmd: cmd}
	req := api.TaskUpdateRequest{
		Title:         optionalString(f, "title", opts.title),
		Description:   optionalString(f, "description", opts.description),
		SprintID:      optionalID(f, "sprint", opts.sprintID),
		Status:        optionalString(f, "status", opts.status),
		Priority:      optionalString(f, "priority", opts.priority),
		StoryPoints:   optionalFloat(f, "points", opts.storyPoints),
		AssigneeID:    optionalID(f, "assignee", opts.assigneeID),
		ReporterID:    optionalID(f, "reporter", opts.reporterID),
		DueDate:       optionalTime(f, "due", opts.due),
		StartedAt:     optionalTime(f, "started", opts.started),
		CompletedAt:   optionalTime(f, "completed", opts.completed),
		BlockedReason: optionalString(f, "blocked-reason", opts.blockedReason),
	}
	if f.changed("sequence") {
		req.Sequence = api.Some(opts.sequence)
	}
	if f.changed("deps") {
		deps, err := parseIDList(opts.deps)
		if err != nil {
			return api.TaskUpdateRequest{}, err
		}
		req.Dependencies = api.Some(deps)
	}
	if len(opts.metaKV) > 0 || opts.metaJSON != "" {
		m, err := parseMetadataFlags(opts.metaKV, opts.metaJSON)
		if err != nil {
			return api.TaskUpdateRequest{}, err
		}
		req.Metadata = api.Some(m)
	}
	return req, f.err
}

func hasTaskUpdateFields(req api.TaskUpdateRequest) bool {
	return req.Title.Set || req.Description.Set || req.SprintID.Set || req.Status.Set || req.Priority.Set ||
		req.StoryPoints.Set || req.Sequence.Set || req.AssigneeID.Set || req.ReporterID.Set || req.DueDate.Set ||
		req.StartedAt.Set || req.CompletedAt.Set || req.BlockedReason.Set || req.Metadata.Set || req.Dependencies.Set
}

func bindTaskFlags(cmd *cobra.Command, opts *taskCmdOptions, update bool) {
	if update {
		cmd.Flags().StringVar(&opts.title, "title", "", "task title")
	}
	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "task description")
	cmd.Flags().Int64Var(&opts.sprintID, "sprint", 0, "sprint id (0 on update moves to backlog)")
	cmd.Flags().StringVarP(&opts.status, "status", "s", "", "status (backlog, ready, in_progress, review, blocked, done)")
	cmd.Flags().StringVarP(&opts.priority, "priority", "p", "", "priority (low, medium, high, urgent)")
	cmd.Flags().Float64Var(&opts.storyPoints, "points", 0, "story points")
	cmd.Flags().IntVar(&opts.sequence, "sequence", 0, "ordering within the sprint or backlog")
	cmd.Flags().Int64Var(&opts.assigneeID, "assignee", 0, "assignee user id")
	cmd.Flags().Int64Var(&opts.reporterID, "reporter", 0, "reporter user id")
	cmd.Flags().StringVar(&opts.due, "due", "", "due date")
	cmd.Flags().StringVar(&opts.started, "started", "", "started at")
	cmd.Flags().StringVar(&opts.completed, "completed", "", "completed at")
	cmd.Flags().StringVar(&opts.blockedReason, "blocked-reason", "", "why the task is blocked")
	cmd.Flags().StringVar(&opts.deps, "deps", "", "comma separated ids of tasks this one depends on")
	cmd.Flags().StringSliceVar(&opts.metaKV, "meta", nil, "metadata key=value (repeatable)")
	cmd.Flags().StringVar(&opts.metaJSON, "meta-json", "", "metadata as JSON object")
}
