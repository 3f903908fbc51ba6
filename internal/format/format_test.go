package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	Name   string   `json:"name"`
	Count  int      `json:"count"`
	Zip    string   `json:"zip"`
	Tags   []string `json:"tags"`
	Parent *sample  `json:"parent,omitempty"`
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (JSONFormatter{}).Write(&buf, sample{Name: "a", Count: 1, Tags: []string{}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{"name":"a","count":1,"zip":"","tags":[]}` + "\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestYAMLFormatterKeepsFieldOrder(t *testing.T) {
	var buf bytes.Buffer
	payload := sample{
		Name:   "Sprint 1",
		Count:  3,
		Zip:    "01234",
		Tags:   []string{"x"},
		Parent: &sample{Name: "root", Tags: []string{}},
	}
	if err := (YAMLFormatter{}).Write(&buf, payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := buf.String()
	want := strings.Join([]string{
		"name: Sprint 1",
		"count: 3",
		`zip: "01234"`,
		"tags:",
		"  - x",
		"parent:",
		"  name: root",
		"  count: 0",
		`  zip: ""`,
		"  tags: []",
		"",
	}, "\n")
	if out != want {
		t.Fatalf("unexpected yaml:\n%s\nwant:\n%s", out, want)
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(true).(YAMLFormatter); !ok {
		t.Fatal("expected yaml formatter")
	}
	if _, ok := New(false).(JSONFormatter); !ok {
		t.Fatal("expected json formatter")
	}
}
