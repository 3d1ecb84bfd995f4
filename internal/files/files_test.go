package files

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestKeyIncludesNameSizeAndModTime(t *testing.T) {
	mod := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	a := &File{Name: "cv.pdf", Size: 10, ModTime: mod, Path: "/a/cv.pdf"}
	b := &File{Name: "cv.pdf", Size: 10, ModTime: mod, Path: "/b/cv.pdf"}
	c := &File{Name: "cv.pdf", Size: 11, ModTime: mod}
	d := &File{Name: "cv.pdf", Size: 10, ModTime: mod.Add(time.Second)}

	if a.Key() != b.Key() {
		t.Fatalf("expected path to be ignored in key")
	}
	if a.Key() == c.Key() {
		t.Fatalf("expected size to change the key")
	}
	if a.Key() == d.Key() {
		t.Fatalf("expected modification time to change the key")
	}
}

func TestExt(t *testing.T) {
	tests := []struct {
		name   string
		expect string
	}{
		{name: "CV.PDF", expect: "pdf"},
		{name: "resume.Docx", expect: "docx"},
		{name: "noext", expect: ""},
		{name: "archive.tar.gz", expect: "gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &File{Name: tt.name}
			if got := f.Ext(); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestHumanSize(t *testing.T) {
	if got := HumanSize(512); got != "512 B" {
		t.Fatalf("unexpected size: %q", got)
	}
	if got := HumanSize(2048); got != "2.0 KB" {
		t.Fatalf("unexpected size: %q", got)
	}
	if got := HumanSize(3 << 20); got != "3.0 MB" {
		t.Fatalf("unexpected size: %q", got)
	}
}

func TestLabel(t *testing.T) {
	f := &File{Name: "cv.pdf", Size: 2048, Pages: 2}
	if got := f.Label(); got != "cv.pdf (2.0 KB), 2 p." {
		t.Fatalf("unexpected label: %q", got)
	}

	f.Pages = 0
	if got := f.Label(); got != "cv.pdf (2.0 KB)" {
		t.Fatalf("unexpected label: %q", got)
	}
}

func TestCollectExpandsDirectories(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.docx"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	single := filepath.Join(t.TempDir(), "single.pdf")
	if err := os.WriteFile(single, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	collected := Collect([]string{dir, single, filepath.Join(dir, "missing.pdf")}, nil)
	if len(collected) != 3 {
		t.Fatalf("expected 3 files, got %d", len(collected))
	}

	if collected[0].Name != "a.docx" || collected[1].Name != "b.pdf" || collected[2].Name != "single.pdf" {
		t.Fatalf("unexpected order: %s, %s, %s", collected[0].Name, collected[1].Name, collected[2].Name)
	}

	if collected[2].Size != 1 {
		t.Fatalf("expected size 1, got %d", collected[2].Size)
	}
}

type stubInspector struct {
	fail map[string]bool
}

func (s stubInspector) Inspect(f *File) (*File, error) {
	if s.fail[f.Name] {
		return f, errors.New("broken")
	}
	out := *f
	out.Pages = 3
	return &out, nil
}

func TestInspectAllKeepsFailedEntries(t *testing.T) {
	list := []*File{{Name: "ok.pdf"}, {Name: "bad.pdf"}}

	inspected := InspectAll(stubInspector{fail: map[string]bool{"bad.pdf": true}}, list, nil)
	if len(inspected) != 2 {
		t.Fatalf("expected 2 files, got %d", len(inspected))
	}
	if inspected[0].Pages != 3 {
		t.Fatalf("expected pages to be recorded")
	}
	if inspected[1].Pages != 0 {
		t.Fatalf("expected failed entry to be unchanged")
	}
	if list[0].Pages != 0 {
		t.Fatalf("expected input to stay untouched")
	}
}

func TestPDFInspectorSkipsOtherTypes(t *testing.T) {
	f := &File{Name: "cv.docx", Path: "/does/not/exist"}
	got, err := PDFInspector{}.Inspect(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != f {
		t.Fatalf("expected the same file back")
	}
}
