package store

import (
	"context"
	"database/sql"
	"net/url"
	"path/filepath"
	"testing"
)

func testRawDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	u := url.URL{Scheme: "file", Path: path}
	db, err := sql.Open("sqlite", u.String())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func latestVersion(dialect Dialect) int {
	all := migrationsFor(dialect)
	return all[len(all)-1].Version
}

func TestRunMigrationsFreshDB(t *testing.T) {
	db := testRawDB(t)
	ctx := context.Background()

	if err := runMigrations(ctx, db, DialectSQLite); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	version, err := currentVersion(ctx, db)
	if err != nil {
		t.Fatalf("current version: %v", err)
	}
	if version != latestVersion(DialectSQLite) {
		t.Fatalf("expected version %d, got %d", latestVersion(DialectSQLite), version)
	}

	for _, table := range []string{"projects", "sprint_cycles", "sprint_tasks", "sprint_task_dependencies", "sprint_task_time_entries", "sprint_risks", "change_requests"} {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count); err != nil {
			t.Fatalf("check %s: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("table %s not created", table)
		}
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db := testRawDB(t)
	ctx := context.Background()

	if err := runMigrations(ctx, db, DialectSQLite); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := runMigrations(ctx, db, DialectSQLite); err != nil {
		t.Fatalf("second run: %v", err)
	}

	var rows int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&rows); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if rows != len(sqliteMigrations) {
		t.Fatalf("expected %d recorded migrations, got %d", len(sqliteMigrations), rows)
	}
}

func TestMigrationPlan(t *testing.T) {
	db := testRawDB(t)
	ctx := context.Background()

	plan, err := MigrationPlan(ctx, db, DialectSQLite)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.CurrentVersion != 0 {
		t.Fatalf("expected current 0, got %d", plan.CurrentVersion)
	}
	if plan.AvailableVersion != latestVersion(DialectSQLite) {
		t.Fatalf("expected available %d, got %d", latestVersion(DialectSQLite), plan.AvailableVersion)
	}
	if len(plan.Pending) != len(sqliteMigrations) {
		t.Fatalf("expected %d pending, got %d", len(sqliteMigrations), len(plan.Pending))
	}

	if err := runMigrations(ctx, db, DialectSQLite); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	plan, err = MigrationPlan(ctx, db, DialectSQLite)
	if err != nil {
		t.Fatalf("plan after migrate: %v", err)
	}
	if len(plan.Pending) != 0 {
		t.Fatalf("expected no pending migrations, got %+v", plan.Pending)
	}
}

func TestDialectMigrationsStayAligned(t *testing.T) {
	sqlite := migrationsFor(DialectSQLite)
	postgres := migrationsFor(DialectPostgres)
	if len(sqlite) != len(postgres) {
		t.Fatalf("sqlite has %d migrations, postgres has %d", len(sqlite), len(postgres))
	}
	for i := range sqlite {
		if sqlite[i].Version != postgres[i].Version || sqlite[i].Description != postgres[i].Description {
			t.Fatalf("migration %d differs: %+v vs %+v", i, sqlite[i].Version, postgres[i].Version)
		}
	}
}

func TestRebind(t *testing.T) {
	query := "SELECT id FROM sprint_tasks WHERE project_id = ? AND id IN (?,?)"
	if got := rebind(DialectSQLite, query); got != query {
		t.Fatalf("sqlite query should be unchanged, got %q", got)
	}
	want := "SELECT id FROM sprint_tasks WHERE project_id = $1 AND id IN ($2,$3)"
	if got := rebind(DialectPostgres, query); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestParseDialect(t *testing.T) {
	cases := map[string]Dialect{
		"":           DialectSQLite,
		"sqlite":     DialectSQLite,
		" Postgres ": DialectPostgres,
		"postgresql": DialectPostgres,
		"pgx":        DialectPostgres,
	}
	for raw, want := range cases {
		got, err := ParseDialect(raw)
		if err != nil {
			t.Fatalf("ParseDialect(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseDialect(%q) = %s, want %s", raw, got, want)
		}
	}
	if _, err := ParseDialect("mysql"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
