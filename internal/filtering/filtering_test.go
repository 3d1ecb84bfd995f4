package filtering

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-screener/internal/files"
)

var mod = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func file(name string, size int64) *files.File {
	return &files.File{Name: name, Size: size, ModTime: mod}
}

func names(list []*files.File) []string {
	out := make([]string, 0, len(list))
	for _, f := range list {
		out = append(out, f.Name)
	}
	return out
}

func TestExtensionsFilter(t *testing.T) {
	f := NewExtensions(nil)
	kept, step := f.Apply(nil, []*files.File{
		file("a.PDF", 1),
		file("b.docx", 1),
		file("c.txt", 1),
		file("d.doc", 1),
		file("noext", 1),
	})

	got := names(kept)
	if len(got) != 2 || got[0] != "a.PDF" || got[1] != "b.docx" {
		t.Fatalf("unexpected kept files: %v", got)
	}
	if step.Initial != 5 || step.Dropped != 3 || step.Left != 2 {
		t.Fatalf("unexpected step: %+v", step)
	}
}

func TestExtensionsFilterNormalizesConfig(t *testing.T) {
	f := NewExtensions([]string{" .TXT ", "txt", ""})
	kept, _ := f.Apply(nil, []*files.File{file("notes.txt", 1), file("cv.pdf", 1)})
	if len(kept) != 1 || kept[0].Name != "notes.txt" {
		t.Fatalf("unexpected kept files: %v", names(kept))
	}

	status := f.(statusProvider).Status()
	if status.Details["allowed"] != "txt" {
		t.Fatalf("unexpected allowed detail: %q", status.Details["allowed"])
	}
}

func TestDuplicatesFilter(t *testing.T) {
	staged := []*files.File{file("a.pdf", 1)}
	kept, step := NewDuplicates().Apply(staged, []*files.File{
		file("a.pdf", 1),
		file("b.pdf", 1),
		file("b.pdf", 1),
		file("a.pdf", 2),
	})

	got := names(kept)
	if len(got) != 2 || got[0] != "b.pdf" || got[1] != "a.pdf" {
		t.Fatalf("unexpected kept files: %v", got)
	}
	if step.Dropped != 2 {
		t.Fatalf("expected 2 dropped, got %d", step.Dropped)
	}
}

func TestMaxSizeFilter(t *testing.T) {
	disabled := NewMaxSize(0)
	if disabled.IsEnabled() {
		t.Fatalf("expected filter to be disabled without a limit")
	}

	f := NewMaxSize(10)
	kept, step := f.Apply(nil, []*files.File{file("small.pdf", 10), file("big.pdf", 11)})
	if len(kept) != 1 || kept[0].Name != "small.pdf" {
		t.Fatalf("unexpected kept files: %v", names(kept))
	}
	if step.DroppedNames[0] != "big.pdf" {
		t.Fatalf("unexpected dropped names: %v", step.DroppedNames)
	}
}

func TestRunSkipsDisabledAndLogsDrops(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	steps := []Filter{NewExtensions(nil), NewDuplicates(), NewMaxSize(0)}
	result := Run(logger, steps, nil, []*files.File{file("a.pdf", 100), file("a.txt", 1), file("a.pdf", 100)})

	if len(result) != 1 {
		t.Fatalf("expected 1 file, got %d", len(result))
	}

	entries := observed.FilterMessage("dropping files").All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 drop entries, got %d", len(entries))
	}
	if entries[0].ContextMap()["filter"] != "extensions" {
		t.Fatalf("unexpected filter field: %v", entries[0].ContextMap()["filter"])
	}
}

func TestDisableByNameAndDescribe(t *testing.T) {
	steps := []Filter{NewExtensions(nil), NewMaxSize(5), NewDuplicates()}
	DisableByName(steps, "max_size", "turned off")

	statuses := Describe(steps)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if statuses[1].Enabled || statuses[1].Reason != "turned off" {
		t.Fatalf("unexpected max_size status: %+v", statuses[1])
	}
	if statuses[2].Name != "duplicates" || !statuses[2].Enabled {
		t.Fatalf("unexpected duplicates status: %+v", statuses[2])
	}
}
