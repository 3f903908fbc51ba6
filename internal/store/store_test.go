package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"sprintdesk/internal/models"
)

// testStore creates a temporary store for testing.
func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func seedProject(t *testing.T, q Queries, name string) *models.Project {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	project := &models.Project{Name: name, CreatedAt: now, UpdatedAt: now}
	if err := q.CreateProject(context.Background(), project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return project
}

func seedTask(t *testing.T, q Queries, projectID int64, title string, mutate func(*models.SprintTask)) *models.SprintTask {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	task := &models.SprintTask{
		ProjectID: projectID,
		Title:     title,
		Status:    models.TaskBacklog,
		Priority:  models.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if mutate != nil {
		mutate(task)
	}
	if err := q.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("create task %q: %v", title, err)
	}
	return task
}

func ptr[T any](v T) *T { return &v }

func TestCreateAndGetProject(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	project := seedProject(t, st, "Apollo")
	if project.ID == 0 {
		t.Fatal("expected project id to be assigned")
	}

	got, err := st.GetProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Name != "Apollo" {
		t.Fatalf("unexpected project: %+v", got)
	}

	missing, err := st.GetProject(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing project, got %+v", missing)
	}

	seedProject(t, st, "Gemini")
	all, err := st.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].Name != "Apollo" {
		t.Fatalf("unexpected projects: %+v", all)
	}
}

func TestSprintRoundTripAndOrdering(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	project := seedProject(t, st, "Apollo")
	now := time.Now().UTC().Truncate(time.Millisecond)

	mk := func(name string, start *time.Time) *models.SprintCycle {
		sprint := &models.SprintCycle{
			ProjectID:      project.ID,
			Name:           name,
			Status:         models.SprintPlanning,
			StartDate:      start,
			VelocityTarget: 21.5,
			CreatedByID:    ptr(int64(7)),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := st.CreateSprint(ctx, sprint); err != nil {
			t.Fatalf("create sprint %s: %v", name, err)
		}
		return sprint
	}

	undated := mk("undated", nil)
	late := mk("late", ptr(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	early := mk("early", ptr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	sprints, err := st.ListSprints(ctx, project.ID)
	if err != nil {
		t.Fatalf("list sprints: %v", err)
	}
	var order []int64
	for _, sprint := range sprints {
		order = append(order, sprint.ID)
	}
	if diff := cmp.Diff([]int64{early.ID, late.ID, undated.ID}, order); diff != "" {
		t.Fatalf("sprint order mismatch (-want +got):\n%s", diff)
	}

	late.Status = models.SprintActive
	late.Goal = "ship it"
	late.EndDate = ptr(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC))
	if err := st.UpdateSprint(ctx, late); err != nil {
		t.Fatalf("update sprint: %v", err)
	}

	got, err := st.GetSprint(ctx, project.ID, late.ID)
	if err != nil {
		t.Fatalf("get sprint: %v", err)
	}
	if got.Status != models.SprintActive || got.Goal != "ship it" || got.EndDate == nil || got.VelocityTarget != 21.5 {
		t.Fatalf("unexpected sprint after update: %+v", got)
	}
	if got.CreatedByID == nil || *got.CreatedByID != 7 {
		t.Fatalf("expected created by 7, got %v", got.CreatedByID)
	}

	other := seedProject(t, st, "Other")
	foreign, err := st.GetSprint(ctx, other.ID, late.ID)
	if err != nil {
		t.Fatalf("get foreign sprint: %v", err)
	}
	if foreign != nil {
		t.Fatal("sprint must not resolve through another project")
	}
}

func TestTaskRoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	project := seedProject(t, st, "Apollo")
	completed := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

	task := seedTask(t, st, project.ID, "Wire burndown", func(task *models.SprintTask) {
		task.Status = models.TaskDone
		task.Priority = models.PriorityHigh
		task.StoryPoints = ptr(5.5)
		task.Sequence = 3
		task.AssigneeID = ptr(int64(11))
		task.CompletedAt = &completed
		task.Metadata = map[string]any{"labels": []any{"ui"}}
	})

	got, err := st.GetTask(ctx, project.ID, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != models.TaskDone || got.Priority != models.PriorityHigh {
		t.Fatalf("unexpected enums: %+v", got)
	}
	if got.StoryPoints == nil || *got.StoryPoints != 5.5 {
		t.Fatalf("unexpected story points: %v", got.StoryPoints)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(completed) {
		t.Fatalf("unexpected completed at: %v", got.CompletedAt)
	}
	if diff := cmp.Diff(map[string]any{"labels": []any{"ui"}}, got.Metadata); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}

	got.StoryPoints = nil
	got.CompletedAt = nil
	got.Status = models.TaskReview
	if err := st.UpdateTask(ctx, got); err != nil {
		t.Fatalf("update task: %v", err)
	}
	updated, err := st.GetTask(ctx, project.ID, task.ID)
	if err != nil {
		t.Fatalf("get updated task: %v", err)
	}
	if updated.StoryPoints != nil || updated.CompletedAt != nil || updated.Status != models.TaskReview {
		t.Fatalf("expected cleared fields, got %+v", updated)
	}
}

func TestListTasksBacklogOrdering(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	project := seedProject(t, st, "Apollo")
	sprint := &models.SprintCycle{ProjectID: project.ID, Name: "S1", Status: models.SprintActive}
	if err := st.CreateSprint(ctx, sprint); err != nil {
		t.Fatalf("create sprint: %v", err)
	}

	low := seedTask(t, st, project.ID, "low", func(task *models.SprintTask) { task.Priority = models.PriorityLow; task.Sequence = 1 })
	urgent := seedTask(t, st, project.ID, "urgent", func(task *models.SprintTask) { task.Priority = models.PriorityUrgent; task.Sequence = 9 })
	mediumLate := seedTask(t, st, project.ID, "medium late", func(task *models.SprintTask) { task.Sequence = 5 })
	mediumEarly := seedTask(t, st, project.ID, "medium early", func(task *models.SprintTask) { task.Sequence = 2 })
	seedTask(t, st, project.ID, "in sprint", func(task *models.SprintTask) { task.SprintID = &sprint.ID })

	backlog, err := st.ListTasks(ctx, TaskFilter{ProjectID: project.ID, Backlog: true})
	if err != nil {
		t.Fatalf("list backlog: %v", err)
	}
	var order []int64
	for _, task := range backlog {
		order = append(order, task.ID)
	}
	if diff := cmp.Diff([]int64{urgent.ID, mediumEarly.ID, mediumLate.ID, low.ID}, order); diff != "" {
		t.Fatalf("backlog order mismatch (-want +got):\n%s", diff)
	}

	inSprint, err := st.ListTasks(ctx, TaskFilter{ProjectID: project.ID, SprintID: &sprint.ID})
	if err != nil {
		t.Fatalf("list sprint tasks: %v", err)
	}
	if len(inSprint) != 1 || inSprint[0].Title != "in sprint" {
		t.Fatalf("unexpected sprint tasks: %+v", inSprint)
	}

	all, err := st.ListTasks(ctx, TaskFilter{ProjectID: project.ID})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 tasks, got %d", len(all))
	}

	next, err := st.NextTaskSequence(ctx, project.ID)
	if err != nil {
		t.Fatalf("next sequence: %v", err)
	}
	if next != 10 {
		t.Fatalf("expected next sequence 10, got %d", next)
	}
}

func TestDependenciesAreIdempotentAndProjectScoped(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	project := seedProject(t, st, "Apollo")
	other := seedProject(t, st, "Other")

	a := seedTask(t, st, project.ID, "A", nil)
	b := seedTask(t, st, project.ID, "B", nil)
	c := seedTask(t, st, project.ID, "C", nil)
	foreign := seedTask(t, st, other.ID, "foreign", nil)

	resolved, err := st.ProjectTaskIDs(ctx, project.ID, []int64{c.ID, b.ID, foreign.ID, 424242})
	if err != nil {
		t.Fatalf("resolve ids: %v", err)
	}
	if diff := cmp.Diff([]int64{b.ID, c.ID}, resolved); diff != "" {
		t.Fatalf("resolved ids mismatch (-want +got):\n%s", diff)
	}

	for i := 0; i < 2; i++ {
		if err := st.AddDependencies(ctx, a.ID, []int64{b.ID, c.ID}); err != nil {
			t.Fatalf("add dependencies (run %d): %v", i, err)
		}
	}

	deps, err := st.ListDependencies(ctx, []int64{a.ID})
	if err != nil {
		t.Fatalf("list deps: %v", err)
	}
	want := []models.Dependency{{TaskID: a.ID, DependsOnTaskID: b.ID}, {TaskID: a.ID, DependsOnTaskID: c.ID}}
	if diff := cmp.Diff(want, deps); diff != "" {
		t.Fatalf("deps mismatch (-want +got):\n%s", diff)
	}

	if err := st.ReplaceDependencies(ctx, a.ID, []int64{c.ID}); err != nil {
		t.Fatalf("replace deps: %v", err)
	}
	deps, err = st.ListDependencies(ctx, []int64{c.ID})
	if err != nil {
		t.Fatalf("list deps by dependent: %v", err)
	}
	if diff := cmp.Diff([]models.Dependency{{TaskID: a.ID, DependsOnTaskID: c.ID}}, deps); diff != "" {
		t.Fatalf("deps after replace mismatch (-want +got):\n%s", diff)
	}

	if err := st.ReplaceDependencies(ctx, a.ID, nil); err != nil {
		t.Fatalf("clear deps: %v", err)
	}
	deps, err = st.ListDependencies(ctx, []int64{a.ID})
	if err != nil {
		t.Fatalf("list deps after clear: %v", err)
	}
	if len(deps) != 0 {
		t.Fatalf("expected no deps, got %+v", deps)
	}
}

func TestTimeEntries(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	project := seedProject(t, st, "Apollo")
	task := seedTask(t, st, project.ID, "A", nil)
	started := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	ended := started.Add(90 * time.Minute)

	entry := &models.TimeEntry{
		TaskID:       task.ID,
		UserID:       3,
		MinutesSpent: 90,
		Billable:     true,
		HourlyRate:   100,
		StartedAt:    &started,
		EndedAt:      &ended,
		Notes:        "pairing",
		CreatedAt:    ended,
	}
	if err := st.CreateTimeEntry(ctx, entry); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if entry.ID == 0 {
		t.Fatal("expected entry id")
	}

	entries, err := st.ListTimeEntries(ctx, []int64{task.ID})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if !got.Billable || got.MinutesSpent != 90 || got.HourlyRate != 100 || got.Notes != "pairing" {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got.StartedAt == nil || !got.StartedAt.Equal(started) {
		t.Fatalf("unexpected started at: %v", got.StartedAt)
	}
}

func TestRisksAndChangeRequests(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	project := seedProject(t, st, "Apollo")
	sprint := &models.SprintCycle{ProjectID: project.ID, Name: "S1", Status: models.SprintActive}
	if err := st.CreateSprint(ctx, sprint); err != nil {
		t.Fatalf("create sprint: %v", err)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)

	risk := &models.SprintRisk{
		ProjectID:     project.ID,
		SprintID:      &sprint.ID,
		Title:         "Vendor delay",
		Probability:   0.4,
		SeverityScore: 30,
		Impact:        models.ImpactHigh,
		Status:        models.RiskOpen,
		LoggedAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := st.CreateRisk(ctx, risk); err != nil {
		t.Fatalf("create risk: %v", err)
	}
	projectRisk := &models.SprintRisk{ProjectID: project.ID, Title: "Hiring", Impact: models.ImpactLow, Status: models.RiskOpen, LoggedAt: now}
	if err := st.CreateRisk(ctx, projectRisk); err != nil {
		t.Fatalf("create project risk: %v", err)
	}

	risk.Status = models.RiskMitigating
	risk.MitigationPlan = "second vendor"
	if err := st.UpdateRisk(ctx, risk); err != nil {
		t.Fatalf("update risk: %v", err)
	}
	gotRisk, err := st.GetRisk(ctx, project.ID, risk.ID)
	if err != nil {
		t.Fatalf("get risk: %v", err)
	}
	if gotRisk.Status != models.RiskMitigating || gotRisk.MitigationPlan != "second vendor" {
		t.Fatalf("unexpected risk: %+v", gotRisk)
	}

	sprintRisks, err := st.ListRisks(ctx, project.ID, &sprint.ID)
	if err != nil {
		t.Fatalf("list sprint risks: %v", err)
	}
	if len(sprintRisks) != 1 {
		t.Fatalf("expected 1 sprint risk, got %d", len(sprintRisks))
	}
	allRisks, err := st.ListRisks(ctx, project.ID, nil)
	if err != nil {
		t.Fatalf("list risks: %v", err)
	}
	if len(allRisks) != 2 {
		t.Fatalf("expected 2 risks, got %d", len(allRisks))
	}

	cr := &models.ChangeRequest{
		ProjectID:        project.ID,
		SprintID:         &sprint.ID,
		Title:            "Add export",
		Status:           models.ChangePendingApproval,
		RequestedByID:    ptr(int64(2)),
		ApprovalMetadata: map[string]any{"channel": "email"},
		ESignAuditTrail:  []any{map[string]any{"event": "sent"}},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := st.CreateChangeRequest(ctx, cr); err != nil {
		t.Fatalf("create change request: %v", err)
	}

	approvedAt := now.Add(time.Hour)
	cr.Status = models.ChangeApproved
	cr.ApprovedByID = ptr(int64(9))
	cr.ApprovedAt = &approvedAt
	cr.ESignAuditDigest = "abc123"
	if err := st.UpdateChangeRequest(ctx, cr); err != nil {
		t.Fatalf("update change request: %v", err)
	}

	got, err := st.GetChangeRequest(ctx, project.ID, cr.ID)
	if err != nil {
		t.Fatalf("get change request: %v", err)
	}
	if got.Status != models.ChangeApproved || got.ApprovedByID == nil || *got.ApprovedByID != 9 {
		t.Fatalf("unexpected change request: %+v", got)
	}
	if diff := cmp.Diff(map[string]any{"channel": "email"}, got.ApprovalMetadata); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{map[string]any{"event": "sent"}}, got.ESignAuditTrail); diff != "" {
		t.Fatalf("audit trail mismatch (-want +got):\n%s", diff)
	}
	if got.ESignAuditDigest != "abc123" {
		t.Fatalf("expected digest to persist, got %q", got.ESignAuditDigest)
	}

	list, err := st.ListChangeRequests(ctx, project.ID, nil)
	if err != nil {
		t.Fatalf("list change requests: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 change request, got %d", len(list))
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	project := seedProject(t, st, "Apollo")
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(q Queries) error {
		seedTask(t, q, project.ID, "doomed", nil)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	tasks, err := st.ListTasks(ctx, TaskFilter{ProjectID: project.ID})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected rollback, found %d tasks", len(tasks))
	}

	err = st.WithTx(ctx, func(q Queries) error {
		seedTask(t, q, project.ID, "kept", nil)
		return nil
	})
	if err != nil {
		t.Fatalf("commit tx: %v", err)
	}
	tasks, err = st.ListTasks(ctx, TaskFilter{ProjectID: project.ID})
	if err != nil {
		t.Fatalf("list tasks after commit: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 committed task, got %d", len(tasks))
	}
}
