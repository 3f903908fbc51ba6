package main

import (
	"strings"
	"testing"

	"sprintdesk/internal/analytics"
	"sprintdesk/internal/api"
	"sprintdesk/internal/models"
)

func TestRenderBoardShowsColumnsAndCards(t *testing.T) {
	points := 3.0
	snapshot := api.SprintSnapshotView{
		SprintView: api.SprintView{ID: 7, Name: "Sprint 1", Status: models.SprintActive},
		Metrics:    analytics.SprintMetrics{TotalTasks: 2, CompletedTasks: 1, TotalStoryPoints: 5, CompletedStoryPoints: 3},
		Kanban: []api.KanbanColumnView{
			{Status: models.TaskBacklog, Label: "Backlog"},
			{Status: models.TaskInProgress, Label: "Doing", StoryPoints: 2, Tasks: []api.TaskView{
				{ID: 11, Title: "Wire API", Status: models.TaskInProgress},
			}},
			{Status: models.TaskDone, Label: "Done", StoryPoints: 3, Tasks: []api.TaskView{
				{ID: 12, Title: "Schema", Status: models.TaskDone, StoryPoints: &points},
			}},
		},
	}

	out := renderBoard(snapshot)
	for _, want := range []string{"#7 Sprint 1", "1/2 done", "Backlog (0)", "empty", "Doing (1)", "#11 Wire API", "Done (1)", "#12 Schema (3)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("board output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderBoardWithoutColumns(t *testing.T) {
	out := renderBoard(api.SprintSnapshotView{SprintView: api.SprintView{ID: 1, Name: "Empty"}})
	if !strings.Contains(out, "#1 Empty") {
		t.Fatalf("expected header, got %q", out)
	}
}
