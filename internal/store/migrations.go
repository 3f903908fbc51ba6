package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Migration represents a schema migration step.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// MigrationStatus reports the current and available migration versions.
type MigrationStatus struct {
	Dialect          Dialect         `json:"dialect" yaml:"dialect"`
	CurrentVersion   int             `json:"current_version" yaml:"current_version"`
	AvailableVersion int             `json:"available_version" yaml:"available_version"`
	Pending          []MigrationInfo `json:"pending" yaml:"pending"`
}

// MigrationInfo describes a single migration.
type MigrationInfo struct {
	Version     int    `json:"version" yaml:"version"`
	Description string `json:"description" yaml:"description"`
}

// sqliteMigrations is the ordered list of SQLite schema migrations.
var sqliteMigrations = []Migration{
	{
		Version:     1,
		Description: "initial schema: projects, sprints, tasks, dependencies and time entries",
		SQL: `
CREATE TABLE IF NOT EXISTS projects (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  description TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sprint_cycles (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  project_id INTEGER NOT NULL,
  name TEXT NOT NULL,
  goal TEXT,
  status TEXT NOT NULL,
  start_date TEXT,
  end_date TEXT,
  velocity_target REAL NOT NULL DEFAULT 0,
  created_by_id INTEGER,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS sprint_tasks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  project_id INTEGER NOT NULL,
  sprint_id INTEGER,
  title TEXT NOT NULL,
  description TEXT,
  status TEXT NOT NULL,
  priority TEXT NOT NULL,
  story_points REAL,
  sequence INTEGER NOT NULL DEFAULT 0,
  assignee_id INTEGER,
  reporter_id INTEGER,
  due_date TEXT,
  started_at TEXT,
  completed_at TEXT,
  blocked_reason TEXT,
  metadata TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
  FOREIGN KEY (sprint_id) REFERENCES sprint_cycles(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS sprint_task_dependencies (
  task_id INTEGER NOT NULL,
  depends_on_task_id INTEGER NOT NULL,
  UNIQUE(task_id, depends_on_task_id),
  FOREIGN KEY (task_id) REFERENCES sprint_tasks(id) ON DELETE CASCADE,
  FOREIGN KEY (depends_on_task_id) REFERENCES sprint_tasks(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS sprint_task_time_entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  task_id INTEGER NOT NULL,
  user_id INTEGER NOT NULL,
  minutes_spent INTEGER NOT NULL,
  billable INTEGER NOT NULL DEFAULT 0,
  hourly_rate REAL NOT NULL DEFAULT 0,
  started_at TEXT,
  ended_at TEXT,
  notes TEXT,
  created_at TEXT NOT NULL,
  FOREIGN KEY (task_id) REFERENCES sprint_tasks(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sprint_cycles_project ON sprint_cycles(project_id);
CREATE INDEX IF NOT EXISTS idx_sprint_tasks_project_sprint ON sprint_tasks(project_id, sprint_id);
CREATE INDEX IF NOT EXISTS idx_task_deps_task ON sprint_task_dependencies(task_id);
CREATE INDEX IF NOT EXISTS idx_task_deps_depends_on ON sprint_task_dependencies(depends_on_task_id);
CREATE INDEX IF NOT EXISTS idx_time_entries_task ON sprint_task_time_entries(task_id);
`,
	},
	{
		Version:     2,
		Description: "risks and change requests",
		SQL: `
CREATE TABLE IF NOT EXISTS sprint_risks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  project_id INTEGER NOT NULL,
  sprint_id INTEGER,
  task_id INTEGER,
  title TEXT NOT NULL,
  description TEXT,
  probability REAL NOT NULL DEFAULT 0,
  severity_score REAL NOT NULL DEFAULT 0,
  impact TEXT NOT NULL,
  status TEXT NOT NULL,
  owner_id INTEGER,
  mitigation_plan TEXT,
  logged_at TEXT NOT NULL,
  review_at TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
  FOREIGN KEY (sprint_id) REFERENCES sprint_cycles(id) ON DELETE SET NULL,
  FOREIGN KEY (task_id) REFERENCES sprint_tasks(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS change_requests (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  project_id INTEGER NOT NULL,
  sprint_id INTEGER,
  title TEXT NOT NULL,
  description TEXT,
  status TEXT NOT NULL,
  requested_by_id INTEGER,
  approved_by_id INTEGER,
  approved_at TEXT,
  approval_metadata TEXT,
  esign_document_url TEXT,
  esign_audit_trail TEXT,
  decision_notes TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
  FOREIGN KEY (sprint_id) REFERENCES sprint_cycles(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_sprint_risks_project ON sprint_risks(project_id, sprint_id);
CREATE INDEX IF NOT EXISTS idx_change_requests_project ON change_requests(project_id, sprint_id);
`,
	},
	{
		Version:     3,
		Description: "e-sign audit trail digest",
		SQL: `
ALTER TABLE change_requests ADD COLUMN esign_audit_digest TEXT;
`,
	},
	{
		Version:     4,
		Description: "native timestamp columns",
		// SQLite keeps RFC 3339 text.
		SQL: ``,
	},
}

// postgresMigrations mirrors sqliteMigrations for PostgreSQL.
var postgresMigrations = []Migration{
	{
		Version:     1,
		Description: "initial schema: projects, sprints, tasks, dependencies and time entries",
		SQL: `
CREATE TABLE IF NOT EXISTS projects (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sprint_cycles (
  id BIGSERIAL PRIMARY KEY,
  project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  goal TEXT,
  status TEXT NOT NULL,
  start_date TEXT,
  end_date TEXT,
  velocity_target DOUBLE PRECISION NOT NULL DEFAULT 0,
  created_by_id BIGINT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sprint_tasks (
  id BIGSERIAL PRIMARY KEY,
  project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  sprint_id BIGINT REFERENCES sprint_cycles(id) ON DELETE SET NULL,
  title TEXT NOT NULL,
  description TEXT,
  status TEXT NOT NULL,
  priority TEXT NOT NULL,
  story_points DOUBLE PRECISION,
  sequence INTEGER NOT NULL DEFAULT 0,
  assignee_id BIGINT,
  reporter_id BIGINT,
  due_date TEXT,
  started_at TEXT,
  completed_at TEXT,
  blocked_reason TEXT,
  metadata TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sprint_task_dependencies (
  task_id BIGINT NOT NULL REFERENCES sprint_tasks(id) ON DELETE CASCADE,
  depends_on_task_id BIGINT NOT NULL REFERENCES sprint_tasks(id) ON DELETE CASCADE,
  UNIQUE(task_id, depends_on_task_id)
);

CREATE TABLE IF NOT EXISTS sprint_task_time_entries (
  id BIGSERIAL PRIMARY KEY,
  task_id BIGINT NOT NULL REFERENCES sprint_tasks(id) ON DELETE CASCADE,
  user_id BIGINT NOT NULL,
  minutes_spent INTEGER NOT NULL,
  billable INTEGER NOT NULL DEFAULT 0,
  hourly_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
  started_at TEXT,
  ended_at TEXT,
  notes TEXT,
  created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sprint_cycles_project ON sprint_cycles(project_id);
CREATE INDEX IF NOT EXISTS idx_sprint_tasks_project_sprint ON sprint_tasks(project_id, sprint_id);
CREATE INDEX IF NOT EXISTS idx_task_deps_task ON sprint_task_dependencies(task_id);
CREATE INDEX IF NOT EXISTS idx_task_deps_depends_on ON sprint_task_dependencies(depends_on_task_id);
CREATE INDEX IF NOT EXISTS idx_time_entries_task ON sprint_task_time_entries(task_id);
`,
	},
	{
		Version:     2,
		Description: "risks and change requests",
		SQL: `
CREATE TABLE IF NOT EXISTS sprint_risks (
  id BIGSERIAL PRIMARY KEY,
  project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  sprint_id BIGINT REFERENCES sprint_cycles(id) ON DELETE SET NULL,
  task_id BIGINT REFERENCES sprint_tasks(id) ON DELETE SET NULL,
  title TEXT NOT NULL,
  description TEXT,
  probability DOUBLE PRECISION NOT NULL DEFAULT 0,
  severity_score DOUBLE PRECISION NOT NULL DEFAULT 0,
  impact TEXT NOT NULL,
  status TEXT NOT NULL,
  owner_id BIGINT,
  mitigation_plan TEXT,
  logged_at TEXT NOT NULL,
  review_at TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS change_requests (
  id BIGSERIAL PRIMARY KEY,
  project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  sprint_id BIGINT REFERENCES sprint_cycles(id) ON DELETE SET NULL,
  title TEXT NOT NULL,
  description TEXT,
  status TEXT NOT NULL,
  requested_by_id BIGINT,
  approved_by_id BIGINT,
  approved_at TEXT,
  approval_metadata TEXT,
  esign_document_url TEXT,
  esign_audit_trail TEXT,
  decision_notes TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sprint_risks_project ON sprint_risks(project_id, sprint_id);
CREATE INDEX IF NOT EXISTS idx_change_requests_project ON change_requests(project_id, sprint_id);
`,
	},
	{
		Version:     3,
		Description: "e-sign audit trail digest",
		SQL: `
ALTER TABLE change_requests ADD COLUMN IF NOT EXISTS esign_audit_digest TEXT;
`,
	},
	{
		Version:     4,
		Description: "native timestamp columns",
		SQL: `
ALTER TABLE projects
  ALTER COLUMN created_at TYPE TIMESTAMPTZ USING created_at::timestamptz,
  ALTER COLUMN updated_at TYPE TIMESTAMPTZ USING updated_at::timestamptz;
ALTER TABLE sprint_cycles
  ALTER COLUMN start_date TYPE TIMESTAMPTZ USING start_date::timestamptz,
  ALTER COLUMN end_date TYPE TIMESTAMPTZ USING end_date::timestamptz,
  ALTER COLUMN created_at TYPE TIMESTAMPTZ USING created_at::timestamptz,
  ALTER COLUMN updated_at TYPE TIMESTAMPTZ USING updated_at::timestamptz;
ALTER TABLE sprint_tasks
  ALTER COLUMN due_date TYPE TIMESTAMPTZ USING due_date::timestamptz,
  ALTER COLUMN started_at TYPE TIMESTAMPTZ USING started_at::timestamptz,
  ALTER COLUMN completed_at TYPE TIMESTAMPTZ USING completed_at::timestamptz,
  ALTER COLUMN created_at TYPE TIMESTAMPTZ USING created_at::timestamptz,
  ALTER COLUMN updated_at TYPE TIMESTAMPTZ USING updated_at::timestamptz;
ALTER TABLE sprint_task_time_entries
  ALTER COLUMN started_at TYPE TIMESTAMPTZ USING started_at::timestamptz,
  ALTER COLUMN ended_at TYPE TIMESTAMPTZ USING ended_at::timestamptz,
  ALTER COLUMN created_at TYPE TIMESTAMPTZ USING created_at::timestamptz;
ALTER TABLE sprint_risks
  ALTER COLUMN logged_at TYPE TIMESTAMPTZ USING logged_at::timestamptz,
  ALTER COLUMN review_at TYPE TIMESTAMPTZ USING review_at::timestamptz,
  ALTER COLUMN created_at TYPE TIMESTAMPTZ USING created_at::timestamptz,
  ALTER COLUMN updated_at TYPE TIMESTAMPTZ USING updated_at::timestamptz;
ALTER TABLE change_requests
  ALTER COLUMN approved_at TYPE TIMESTAMPTZ USING approved_at::timestamptz,
  ALTER COLUMN created_at TYPE TIMESTAMPTZ USING created_at::timestamptz,
  ALTER COLUMN updated_at TYPE TIMESTAMPTZ USING updated_at::timestamptz;
`,
	},
}

const migrationsTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at TEXT NOT NULL
);
`

func migrationsFor(dialect Dialect) []Migration {
	source := sqliteMigrations
	if dialect == DialectPostgres {
		source = postgresMigrations
	}
	sorted := make([]Migration, len(source))
	copy(sorted, source)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })
	return sorted
}

// ensureMigrationsTable creates the schema_migrations table if it doesn't exist.
func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, migrationsTableSQL)
	return err
}

// currentVersion returns the highest applied migration version, or 0 if none.
func currentVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// runMigrations applies all pending migrations in order.
func runMigrations(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	current, err := currentVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	record := rebind(dialect, "INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)")
	for _, m := range migrationsFor(dialect) {
		if m.Version <= current {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if strings.TrimSpace(m.SQL) != "" {
			if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
			}
		}

		if _, err := tx.ExecContext(ctx, record, m.Version, formatTime(time.Now())); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// MigrationPlan returns the current migration status without applying anything.
func MigrationPlan(ctx context.Context, db *sql.DB, dialect Dialect) (*MigrationStatus, error) {
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return nil, err
	}

	current, err := currentVersion(ctx, db)
	if err != nil {
		return nil, err
	}

	sorted := migrationsFor(dialect)
	available := 0
	if len(sorted) > 0 {
		available = sorted[len(sorted)-1].Version
	}

	pending := []MigrationInfo{}
	for _, m := range sorted {
		if m.Version > current {
			pending = append(pending, MigrationInfo{Version: m.Version, Description: m.Description})
		}
	}

	return &MigrationStatus{
		Dialect:          dialect,
		CurrentVersion:   current,
		AvailableVersion: available,
		Pending:          pending,
	}, nil
}
