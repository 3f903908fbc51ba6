package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"sprintdesk/internal/api"
	"sprintdesk/internal/config"
	"sprintdesk/internal/models"
)

const boardColumnWidth = 28

var (
	boardTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	boardHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9FAFB"))
	boardMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	boardDoneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	boardBlockStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	boardColumnStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#374151")).
				Padding(0, 1).
				Width(boardColumnWidth)
)

func newBoardCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "board <project-id> <sprint-id>",
		Short: "Render a sprint's kanban board",
		Args:  requireExactlyArgs(2, "project id and sprint id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "project id", "sprint id")
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), cfg, flags, func(client *api.Client) error {
				snapshot, err := client.GetSprint(cmd.Context(), ids[0], ids[1])
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeJSON(snapshot.Kanban)
				}
				return writePlain("%s\n", renderBoard(snapshot))
			})
		},
	}
}

// renderBoard lays the kanban columns out side by side under a sprint header.
func renderBoard(snapshot api.SprintSnapshotView) string {
	header := boardTitleStyle.Render(fmt.Sprintf("#%d %s", snapshot.ID, snapshot.Name)) + " " +
		boardMutedStyle.Render(fmt.Sprintf("[%s] %d/%d done, %s/%s pts", snapshot.Status,
			snapshot.Metrics.CompletedTasks, snapshot.Metrics.TotalTasks,
			formatNumber(snapshot.Metrics.CompletedStoryPoints), formatNumber(snapshot.Metrics.TotalStoryPoints)))

	columns := make([]string, 0, len(snapshot.Kanban))
	for _, column := range snapshot.Kanban {
		columns = append(columns, renderBoardColumn(column))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, lipgloss.JoinHorizontal(lipgloss.Top, columns...))
}

func renderBoardColumn(column api.KanbanColumnView) string {
	lines := []string{
		boardHeaderStyle.Render(fmt.Sprintf("%s (%d)", column.Label, len(column.Tasks))),
		boardMutedStyle.Render(formatNumber(column.StoryPoints) + " pts"),
	}
	if len(column.Tasks) == 0 {
		lines = append(lines, boardMutedStyle.Render("empty"))
	}
	for _, task := range column.Tasks {
		lines = append(lines, renderBoardCard(task))
	}
	return boardColumnStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderBoardCard(task api.TaskView) string {
	text := fmt.Sprintf("#%d %s", task.ID, task.Title)
	if task.StoryPoints != nil {
		text += fmt.Sprintf(" (%s)", formatNumber(*task.StoryPoints))
	}
	switch task.Status {
	case models.TaskDone:
		return boardDoneStyle.Render(text)
	case models.TaskBlocked:
		return boardBlockStyle.Render(text)
	default:
		return text
	}
}
