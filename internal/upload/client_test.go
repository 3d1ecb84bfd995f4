package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spigell/resume-screener/internal/files"
)

func writeFile(t *testing.T, name, content string) *files.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	f, err := files.FromPath(path)
	if err != nil {
		t.Fatalf("stat file: %v", err)
	}
	return f
}

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(nil, srv.URL, 0)
}

func TestUploadSendsMultipartField(t *testing.T) {
	var gotName, gotContent, gotPath string
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		file, header, err := r.FormFile(FieldName)
		if err != nil {
			http.Error(w, `{"error": "No file uploaded"}`, http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotName = header.Filename
		gotContent = string(data)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results": [{"name": "Jane Doe", "email": "jane@example.com", "skills": ["Go", "SQL"]}]}`)
	})

	f := writeFile(t, "jane.pdf", "%PDF-1.4 test")
	r, err := client.Upload(context.Background(), f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/upload" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotName != "jane.pdf" || gotContent != "%PDF-1.4 test" {
		t.Fatalf("unexpected upload: %q %q", gotName, gotContent)
	}
	if r.Filename != "jane.pdf" || r.Name != "Jane Doe" || len(r.Skills) != 2 {
		t.Fatalf("unexpected resume: %+v", r)
	}
	if r.Phone != "" || r.Education == nil {
		t.Fatalf("expected defaults for missing fields: %+v", r)
	}
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		isShape bool
		contain []string
	}{
		{
			name:    "server error with message",
			status:  http.StatusInternalServerError,
			body:    `{"error": "Failed to parse resume"}`,
			contain: []string{"cv.pdf", "500", "Failed to parse resume"},
		},
		{
			name:    "bad request without json",
			status:  http.StatusBadRequest,
			body:    `oops`,
			contain: []string{"cv.pdf", "400", "oops"},
		},
		{
			name:    "error with success status",
			status:  http.StatusOK,
			body:    `{"error": "No file selected"}`,
			contain: []string{"cv.pdf", "No file selected"},
		},
		{
			name:    "two results",
			status:  http.StatusOK,
			body:    `{"results": [{"name": "a"}, {"name": "b"}]}`,
			isShape: true,
			contain: []string{"cv.pdf", "expected 1 result, got 2"},
		},
		{
			name:    "no results",
			status:  http.StatusOK,
			body:    `{"results": []}`,
			isShape: true,
			contain: []string{"cv.pdf"},
		},
		{
			name:    "bare object",
			status:  http.StatusOK,
			body:    `{"name": "a"}`,
			isShape: true,
			contain: []string{"missing results array"},
		},
		{
			name:    "result is not an object",
			status:  http.StatusOK,
			body:    `{"results": ["a"]}`,
			isShape: true,
			contain: []string{"not an object"},
		},
		{
			name:    "invalid json",
			status:  http.StatusOK,
			body:    `{"results": [`,
			isShape: true,
			contain: []string{"not valid JSON"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := client.Upload(context.Background(), writeFile(t, "cv.pdf", "x"))
			if err == nil {
				t.Fatalf("expected error")
			}
			if errors.Is(err, ErrUnexpectedShape) != tt.isShape {
				t.Fatalf("unexpected shape classification for %v", err)
			}
			for _, part := range tt.contain {
				if !strings.Contains(err.Error(), part) {
					t.Fatalf("expected %q in error %q", part, err.Error())
				}
			}
		})
	}
}

func TestUploadStatusErrorFields(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Upload(context.Background(), writeFile(t, "cv.pdf", "x"))

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %T", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway || statusErr.Filename != "cv.pdf" {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
}

func TestUploadSingleAcceptsBareObject(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"name": "Solo", "skills": ["Go"], "ai_summary": "Summary"}`)
	})

	r, err := client.UploadSingle(context.Background(), writeFile(t, "solo.pdf", "x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Name != "Solo" || r.AISummary != "Summary" {
		t.Fatalf("unexpected resume: %+v", r)
	}

	enveloped := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"results": [{"name": "Wrapped"}]}`)
	})
	r, err = enveloped.UploadSingle(context.Background(), writeFile(t, "wrapped.pdf", "x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Name != "Wrapped" {
		t.Fatalf("unexpected resume: %+v", r)
	}

	broken := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[1, 2]`)
	})
	if _, err := broken.UploadSingle(context.Background(), writeFile(t, "broken.pdf", "x")); !errors.Is(err, ErrUnexpectedShape) {
		t.Fatalf("expected shape error, got %v", err)
	}
}

func TestUploadMissingFile(t *testing.T) {
	client := New(nil, "http://127.0.0.1:1", 0)
	_, err := client.Upload(context.Background(), &files.File{Name: "gone.pdf", Path: filepath.Join(t.TempDir(), "gone.pdf")})
	if err == nil || !strings.Contains(err.Error(), "gone.pdf") {
		t.Fatalf("expected error mentioning the file, got %v", err)
	}
}

func TestUploadURL(t *testing.T) {
	c := New(nil, "http://example.com/", 0)
	if got := c.uploadURL(); got != "http://example.com/upload" {
		t.Fatalf("unexpected url: %s", got)
	}

	c.UploadPath = "api/parse"
	if got := c.uploadURL(); got != "http://example.com/api/parse" {
		t.Fatalf("unexpected url: %s", got)
	}

	if got := New(nil, "  ", 0).Endpoint; got != DefaultEndpoint {
		t.Fatalf("expected default endpoint, got %s", got)
	}
}
