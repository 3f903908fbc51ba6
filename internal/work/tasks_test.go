package work

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sprintdesk/internal/api"
	"sprintdesk/internal/models"
	"sprintdesk/internal/store"
)

func TestCreateTaskDefaults(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.CreateSprintTask(f.ctx, f.project.ID, api.TaskCreateRequest{Title: " Write docs "}, ptr(int64(3)))
	require.NoError(t, err)
	second := f.createTask(t, api.TaskCreateRequest{Title: "Review docs"})

	require.Equal(t, "Write docs", first.Title)
	require.Equal(t, models.TaskBacklog, first.Status)
	require.Equal(t, "Backlog", first.StatusLabel)
	require.Equal(t, models.PriorityMedium, first.Priority)
	require.Equal(t, 1, first.Sequence)
	require.Equal(t, 2, second.Sequence)
	require.NotNil(t, first.ReporterID)
	require.Equal(t, int64(3), *first.ReporterID)
	require.Nil(t, first.CompletedAt)
	require.Empty(t, first.Dependencies)
	require.NotNil(t, first.Metadata)
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t)
	other, err := f.svc.CreateProject(f.ctx, api.ProjectCreateRequest{Name: "Other"})
	require.NoError(t, err)
	foreignSprint, err := f.svc.CreateSprint(f.ctx, other.ID, api.SprintCreateRequest{Name: "Foreign"}, nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		req  api.TaskCreateRequest
	}{
		{name: "empty title", req: api.TaskCreateRequest{Title: ""}},
		{name: "bad status", req: api.TaskCreateRequest{Title: "t", Status: ptr("doing")}},
		{name: "bad priority", req: api.TaskCreateRequest{Title: "t", Priority: ptr("critical")}},
		{name: "negative points", req: api.TaskCreateRequest{Title: "t", StoryPoints: ptr(-2.0)}},
		{name: "foreign sprint", req: api.TaskCreateRequest{Title: "t", SprintID: &foreignSprint.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateSprintTask(f.ctx, f.project.ID, tt.req, nil)
			require.True(t, IsValidation(err), "got %v", err)
		})
	}

	tasks, err := f.st.ListTasks(f.ctx, store.TaskFilter{ProjectID: f.project.ID})
	require.NoError(t, err)
	require.Empty(t, tasks, "failed creates must not leave rows behind")
}

func TestCreateTaskDependenciesAreSanitized(t *testing.T) {
	f := newFixture(t)
	other, err := f.svc.CreateProject(f.ctx, api.ProjectCreateRequest{Name: "Other"})
	require.NoError(t, err)
	foreign, err := f.svc.CreateSprintTask(f.ctx, other.ID, api.TaskCreateRequest{Title: "foreign"}, nil)
	require.NoError(t, err)

	valid := f.createTask(t, api.TaskCreateRequest{Title: "valid"})
	task := f.createTask(t, api.TaskCreateRequest{
		Title:        "dependent",
		Dependencies: []int64{999999, valid.ID, foreign.ID, valid.ID, 0, -4},
	})
	require.Equal(t, []int64{valid.ID}, task.Dependencies)

	got, err := f.svc.GetSprintTask(f.ctx, f.project.ID, valid.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{task.ID}, got.Dependents)
}

func TestUpdateTaskReplacesDependencies(t *testing.T) {
	f := newFixture(t)
	a := f.createTask(t, api.TaskCreateRequest{Title: "a"})
	b := f.createTask(t, api.TaskCreateRequest{Title: "b"})
	task := f.createTask(t, api.TaskCreateRequest{Title: "c", Dependencies: []int64{a.ID}})

	updated, err := f.svc.UpdateSprintTask(f.ctx, f.project.ID, task.ID, api.TaskUpdateRequest{
		Dependencies: api.Some([]int64{task.ID, 999999, b.ID}),
	})
	require.NoError(t, err)
	require.Equal(t, []int64{b.ID}, updated.Dependencies)
	require.Equal(t, "c", updated.Title)

	again, err := f.svc.UpdateSprintTask(f.ctx, f.project.ID, task.ID, api.TaskUpdateRequest{
		Dependencies: api.Some([]int64{b.ID}),
	})
	require.NoError(t, err)
	require.Equal(t, []int64{b.ID}, again.Dependencies)

	cleared, err := f.svc.UpdateSprintTask(f.ctx, f.project.ID, task.ID, api.TaskUpdateRequest{
		Dependencies: api.Null[[]int64](),
	})
	require.NoError(t, err)
	require.Empty(t, cleared.Dependencies)
}

func TestUpdateTaskAutoCompletes(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, api.TaskCreateRequest{Title: "finish", Status: ptr("in_progress")})
	require.Nil(t, task.CompletedAt)

	f.advance(2 * time.Hour)
	done, err := f.svc.UpdateSprintTask(f.ctx, f.project.ID, task.ID, api.TaskUpdateRequest{Status: api.Some("done")})
	require.NoError(t, err)
	require.Equal(t, models.TaskDone, done.Status)
	require.NotNil(t, done.CompletedAt)
	require.True(t, done.CompletedAt.Equal(f.now), "completedAt %v, want %v", done.CompletedAt, f.now)

	reopened, err := f.svc.UpdateSprintTask(f.ctx, f.project.ID, task.ID, api.TaskUpdateRequest{Status: api.Some("review")})
	require.NoError(t, err)
	require.NotNil(t, reopened.CompletedAt, "moving away from done keeps completedAt unless nulled")

	cleared, err := f.svc.UpdateSprintTask(f.ctx, f.project.ID, task.ID, api.TaskUpdateRequest{CompletedAt: api.Null[api.Timestamp]()})
	require.NoError(t, err)
	require.Nil(t, cleared.CompletedAt)
}

func TestUpdateTaskDoneRequiresCompletion(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, api.TaskCreateRequest{Title: "finish", Status: ptr("review")})

	_, err := f.svc.UpdateSprintTask(f.ctx, f.project.ID, task.ID, api.TaskUpdateRequest{
		Status:      api.Some("done"),
		CompletedAt: api.Null[api.Timestamp](),
	})
	require.True(t, IsValidation(err), "got %v", err)

	stored, err := f.svc.GetSprintTask(f.ctx, f.project.ID, task.ID)
	require.NoError(t, err)
	require.Equal(t, models.TaskReview, stored.Status)

	done, err := f.svc.UpdateSprintTask(f.ctx, f.project.ID, task.ID, api.TaskUpdateRequest{Status: api.Some("done")})
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)

	_, err = f.svc.UpdateSprintTask(f.ctx, f.project.ID, task.ID, api.TaskUpdateRequest{CompletedAt: api.Null[api.Timestamp]()})
	require.True(t, IsValidation(err), "got %v", err)

	stored, err = f.svc.GetSprintTask(f.ctx, f.project.ID, task.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CompletedAt)
}

func TestUpdateTaskValidationAndLookup(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, api.TaskCreateRequest{Title: "t"})

	_, err := f.svc.UpdateSprintTask(f.ctx, f.project.ID, 999, api.TaskUpdateRequest{Title: api.Some("x")})
	require.True(t, IsNotFound(err), "got %v", err)

	_, err = f.svc.UpdateSprintTask(f.ctx, f.project.ID, task.ID, api.TaskUpdateRequest{Title: api.Some(" ")})
	require.True(t, IsValidation(err), "got %v", err)

	_, err = f.svc.UpdateSprintTask(f.ctx, f.project.ID, task.ID, api.TaskUpdateRequest{Status: api.Null[string]()})
	require.True(t, IsValidation(err), "got %v", err)

	_, err = f.svc.UpdateSprintTask(f.ctx, f.project.ID, task.ID, api.TaskUpdateRequest{SprintID: api.Some(int64(42))})
	require.True(t, IsValidation(err), "got %v", err)

	_, err = f.svc.GetSprintTask(f.ctx, f.project.ID+1, task.ID)
	require.True(t, IsNotFound(err), "got %v", err)
}

func TestUpdateTaskMovesBetweenSprintAndBacklog(t *testing.T) {
	f := newFixture(t)
	sprint := f.createSprint(t, api.SprintCreateRequest{Name: "S"})
	task := f.createTask(t, api.TaskCreateRequest{Title: "t", StoryPoints: ptr(3.0)})

	moved, err := f.svc.UpdateSprintTask(f.ctx, f.project.ID, task.ID, api.TaskUpdateRequest{
		SprintID:    api.Some(sprint.ID),
		StoryPoints: api.Null[float64](),
		Priority:    api.Some("urgent"),
	})
	require.NoError(t, err)
	require.NotNil(t, moved.SprintID)
	require.Equal(t, sprint.ID, *moved.SprintID)
	require.Nil(t, moved.StoryPoints)
	require.Equal(t, models.PriorityUrgent, moved.Priority)

	back, err := f.svc.UpdateSprintTask(f.ctx, f.project.ID, task.ID, api.TaskUpdateRequest{SprintID: api.Null[int64]()})
	require.NoError(t, err)
	require.Nil(t, back.SprintID)
}
