package main

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func TestParseID(t *testing.T) {
	if id, err := parseID(" 42 ", "project id"); err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (err: %v)", id, err)
	}
	for _, raw := range []string{"", "0", "-3", "abc"} {
		if _, err := parseID(raw, "project id"); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseIDList(t *testing.T) {
	ids, err := parseIDList("3, 4,,5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ids) != 3 || ids[0] != 3 || ids[2] != 5 {
		t.Fatalf("unexpected ids %v", ids)
	}
	ids, err = parseIDList("")
	if err != nil || len(ids) != 0 {
		t.Fatalf("expected empty list, got %v (err: %v)", ids, err)
	}
	if _, err := parseIDList("1,x"); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestParseTimeFlag(t *testing.T) {
	got, err := parseTimeFlag("2024-01-05", "start")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if !got.DateOnly || got.String() != "2024-01-05" {
		t.Fatalf("expected a calendar date, got %+v", got)
	}
	got, err = parseTimeFlag("2024-01-05T09:30:00+02:00", "start")
	if err != nil {
		t.Fatalf("parse timestamp: %v", err)
	}
	if got.DateOnly || !got.Time.Equal(time.Date(2024, 1, 5, 7, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp %v", got)
	}
	if _, err := parseTimeFlag("yesterday", "start"); err == nil {
		t.Fatal("expected error for free-form date")
	}
}

func TestParseMetadataFlags(t *testing.T) {
	m, err := parseMetadataFlags([]string{"env=prod", "ticket=OPS-1"}, `{"env":"dev","count":2}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m["env"] != "prod" || m["ticket"] != "OPS-1" || m["count"] != float64(2) {
		t.Fatalf("unexpected metadata %v", m)
	}
	if _, err := parseMetadataFlags([]string{"=x"}, ""); err == nil {
		t.Fatal("expected error for empty key")
	}
	if _, err := parseMetadataFlags(nil, "{"); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestFlagSetterOptionals(t *testing.T) {
	var sprint int64
	var due string
	var title string
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().Int64Var(&sprint, "sprint", 0, "")
	cmd.Flags().StringVar(&due, "due", "", "")
	cmd.Flags().StringVar(&title, "title", "", "")
	if err := cmd.Flags().Parse([]string{"--sprint", "0", "--due", "none"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	f := &flagSetter{cmd: cmd}
	sprintOpt := optionalID(f, "sprint", sprint)
	if !sprintOpt.Set || sprintOpt.Valid {
		t.Fatalf("expected explicit null sprint, got %+v", sprintOpt)
	}
	dueOpt := optionalTime(f, "due", due)
	if !dueOpt.Set || dueOpt.Valid {
		t.Fatalf("expected explicit null due date, got %+v", dueOpt)
	}
	if titleOpt := optionalString(f, "title", title); titleOpt.Set {
		t.Fatalf("expected absent title, got %+v", titleOpt)
	}
	if f.err != nil {
		t.Fatalf("unexpected error: %v", f.err)
	}
}
