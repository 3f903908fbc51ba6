package work

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sprintdesk/internal/api"
	"sprintdesk/internal/store"
)

type fixture struct {
	ctx     context.Context
	st      *store.Store
	svc     *Service
	now     time.Time
	project api.ProjectView
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "work.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := &fixture{
		ctx: context.Background(),
		st:  st,
		now: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC),
	}
	f.svc = New(st, WithClock(func() time.Time { return f.now }))
	f.project, err = f.svc.CreateProject(f.ctx, api.ProjectCreateRequest{Name: "Apollo"})
	require.NoError(t, err)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) createTask(t *testing.T, req api.TaskCreateRequest) api.TaskView {
	t.Helper()
	task, err := f.svc.CreateSprintTask(f.ctx, f.project.ID, req, nil)
	require.NoError(t, err)
	return task
}

func (f *fixture) createSprint(t *testing.T, req api.SprintCreateRequest) api.SprintSnapshotView {
	t.Helper()
	sprint, err := f.svc.CreateSprint(f.ctx, f.project.ID, req, nil)
	require.NoError(t, err)
	return sprint
}

func ptr[T any](v T) *T { return &v }

func date(year int, month time.Month, day int) *api.Timestamp {
	ts := api.Date(year, month, day)
	return &ts
}

func at(t time.Time) *api.Timestamp {
	ts := api.At(t)
	return &ts
}

func TestErrorKinds(t *testing.T) {
	require.True(t, IsValidation(validationErrorf("bad %s", "input")))
	require.True(t, IsNotFound(notFoundErrorf("missing")))
	require.Equal(t, KindUnknown, KindOf(context.Canceled))
	require.Equal(t, "not_found", KindNotFound.String())

	wrapped := validation(context.DeadlineExceeded)
	require.ErrorIs(t, wrapped, context.DeadlineExceeded)
	require.Equal(t, context.DeadlineExceeded.Error(), wrapped.Error())
}

func TestCreateProjectRequiresName(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateProject(f.ctx, api.ProjectCreateRequest{Name: "  "})
	require.True(t, IsValidation(err), "got %v", err)

	projects, err := f.svc.ListProjects(f.ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "Apollo", projects[0].Name)

	_, err = f.svc.GetProject(f.ctx, 999)
	require.True(t, IsNotFound(err), "got %v", err)
}
