package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"sprintdesk/internal/models"
)

const postgresIntegrationEnvKey = "SPRINTDESK_PG_INTEGRATION"

func newPostgresTestStore(t *testing.T, ctx context.Context) *Store {
	t.Helper()
	if os.Getenv(postgresIntegrationEnvKey) != "1" {
		t.Skipf("set %s=1 to run PostgreSQL integration tests", postgresIntegrationEnvKey)
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get postgres host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get postgres port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/test?sslmode=disable", host, port.Port())
	st, err := OpenWithOptions(ctx, Options{Dialect: DialectPostgres, DSN: dsn, MaxConns: 4})
	if err != nil {
		t.Fatalf("open postgres store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newPostgresTestStore(t, ctx)

	project := seedProject(t, st, "Apollo")
	a := seedTask(t, st, project.ID, "A", func(task *models.SprintTask) { task.StoryPoints = ptr(3.0) })
	b := seedTask(t, st, project.ID, "B", nil)

	err := st.WithTx(ctx, func(q Queries) error {
		if err := q.AddDependencies(ctx, b.ID, []int64{a.ID}); err != nil {
			return err
		}
		return q.AddDependencies(ctx, b.ID, []int64{a.ID})
	})
	if err != nil {
		t.Fatalf("add dependencies: %v", err)
	}

	deps, err := st.ListDependencies(ctx, []int64{a.ID, b.ID})
	if err != nil {
		t.Fatalf("list deps: %v", err)
	}
	if len(deps) != 1 || deps[0].TaskID != b.ID || deps[0].DependsOnTaskID != a.ID {
		t.Fatalf("unexpected deps: %+v", deps)
	}

	got, err := st.GetTask(ctx, project.ID, a.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.StoryPoints == nil || *got.StoryPoints != 3 {
		t.Fatalf("unexpected story points: %v", got.StoryPoints)
	}

	plan, err := st.MigrationPlan(ctx)
	if err != nil {
		t.Fatalf("migration plan: %v", err)
	}
	if len(plan.Pending) != 0 || plan.Dialect != DialectPostgres {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestPostgresNativeTimestamps(t *testing.T) {
	ctx := context.Background()
	st := newPostgresTestStore(t, ctx)

	var dataType string
	err := st.conn.QueryRowContext(ctx, `
		SELECT data_type FROM information_schema.columns
		WHERE table_name = 'sprint_tasks' AND column_name = 'completed_at'`).Scan(&dataType)
	if err != nil {
		t.Fatalf("inspect column: %v", err)
	}
	if dataType != "timestamp with time zone" {
		t.Fatalf("completed_at type = %q", dataType)
	}

	project := seedProject(t, st, "Apollo")
	completed := time.Date(2024, 1, 3, 7, 30, 0, 0, time.FixedZone("EST", -5*3600))
	task := seedTask(t, st, project.ID, "A", func(task *models.SprintTask) {
		task.Status = models.TaskDone
		task.CompletedAt = &completed
	})

	got, err := st.GetTask(ctx, project.ID, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(completed) || got.CompletedAt.Location() != time.UTC {
		t.Fatalf("unexpected completed at: %v", got.CompletedAt)
	}
	if !got.CreatedAt.Equal(task.CreatedAt) {
		t.Fatalf("created at = %v, want %v", got.CreatedAt, task.CreatedAt)
	}
}
