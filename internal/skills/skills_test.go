package skills

import (
	"strings"
	"testing"
)

func TestAddNormalizesAndDeduplicates(t *testing.T) {
	var calls [][]string
	s := New()
	s.Changed = func(items []string) { calls = append(calls, items) }

	if !s.Add("  Python ") {
		t.Fatalf("expected python to be added")
	}
	if s.Add("PYTHON") {
		t.Fatalf("expected duplicate to be ignored")
	}
	if s.Add("   ") {
		t.Fatalf("expected empty skill to be ignored")
	}
	if !s.Add("React") {
		t.Fatalf("expected react to be added")
	}

	if len(calls) != 2 {
		t.Fatalf("expected 2 change notifications, got %d", len(calls))
	}
	if strings.Join(calls[1], ",") != "python,react" {
		t.Fatalf("unexpected items: %v", calls[1])
	}
	if s.Add(" REACT ") {
		t.Fatalf("expected normalized duplicate to be ignored")
	}
}

func TestRemove(t *testing.T) {
	s := New("go", "sql", "docker")
	notified := 0
	s.Changed = func([]string) { notified++ }

	if !s.Remove(" SQL ") {
		t.Fatalf("expected sql to be removed")
	}
	if s.Remove("sql") {
		t.Fatalf("expected second remove to be a no-op")
	}
	if notified != 1 {
		t.Fatalf("expected 1 notification, got %d", notified)
	}
	if got := strings.Join(s.Items(), ","); got != "go,docker" {
		t.Fatalf("unexpected items: %s", got)
	}
}

func TestItemsKeepInsertionOrder(t *testing.T) {
	s := New("react", "aws", "go")
	if got := strings.Join(s.Items(), ","); got != "react,aws,go" {
		t.Fatalf("expected insertion order to be kept, got %s", got)
	}
}

func TestTags(t *testing.T) {
	if got := New().Tags(); got != "(no skills selected)" {
		t.Fatalf("unexpected empty tags: %q", got)
	}
	if got := New("Go", "Kubernetes").Tags(); got != "[go] [kubernetes]" {
		t.Fatalf("unexpected tags: %q", got)
	}
}

func TestZeroValueSet(t *testing.T) {
	var s Set
	if !s.Add("go") {
		t.Fatalf("expected zero value set to accept skills")
	}
	if got := strings.Join(s.Items(), ","); got != "go" {
		t.Fatalf("unexpected items: %s", got)
	}
}
