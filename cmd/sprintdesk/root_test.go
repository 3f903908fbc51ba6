package main

import (
	"strings"
	"testing"

	"sprintdesk/internal/config"
)

func TestRootRejectsConflictingOutputFlags(t *testing.T) {
	cmd := newRootCmd(&config.Config{})
	cmd.SetArgs([]string{"project", "list", "--json", "--yaml"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("expected mutually exclusive error, got %v", err)
	}
}

func TestRootRejectsNegativeActor(t *testing.T) {
	cmd := newRootCmd(&config.Config{})
	cmd.SetArgs([]string{"project", "list", "--actor=-2"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "invalid --actor") {
		t.Fatalf("expected invalid actor error, got %v", err)
	}
}

func TestTaskUpdateRequiresFields(t *testing.T) {
	cmd := newRootCmd(&config.Config{})
	cmd.SetArgs([]string{"task", "update", "1", "2"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "no fields to update") {
		t.Fatalf("expected no fields error, got %v", err)
	}
}

func TestRiskUpdateRejectsBadReviewDate(t *testing.T) {
	cmd := newRootCmd(&config.Config{})
	cmd.SetArgs([]string{"risk", "update", "1", "2", "--review", "tomorrow"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected invalid date error")
	}
}
