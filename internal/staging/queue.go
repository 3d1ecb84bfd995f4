// Package staging holds the files selected for upload.
package staging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/files"
	"github.com/spigell/resume-screener/internal/filtering"
)

// DefaultMaxFiles is the largest number of files that can be staged at once.
const DefaultMaxFiles = 50

// Selection is the rendered state of the queue handed to the Changed hook.
type Selection struct {
	Lines         []string
	Count         int
	SubmitEnabled bool
	SubmitLabel   string
}

// Hooks are the side effects of queue mutations.
type Hooks struct {
	// Changed is called after every successful mutation.
	Changed func(Selection)
	// Alert reports a rejected operation to the user.
	Alert func(message string)
}

// Queue is the deduplicated, bounded list of staged files.
type Queue struct {
	mu       sync.Mutex
	items    []*files.File
	maxFiles int
	steps    []filtering.Filter
	hooks    Hooks
	logger   *zap.Logger
}

// New creates a queue. A non-positive maxFiles falls back to DefaultMaxFiles.
func New(maxFiles int, steps []filtering.Filter, hooks Hooks, logger *zap.Logger) *Queue {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if steps == nil {
		steps = []filtering.Filter{
			filtering.NewExtensions(nil),
			filtering.NewDuplicates(),
		}
	}

	for _, status := range filtering.Describe(steps) {
		logger.Debug("staging filter",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	return &Queue{
		maxFiles: maxFiles,
		steps:    steps,
		hooks:    hooks,
		logger:   logger,
	}
}

// Add stages the candidates that pass the filters. It returns false and leaves the
// queue unchanged when the resulting total would exceed the limit.
func (q *Queue) Add(candidates ...*files.File) bool {
	q.mu.Lock()

	accepted := filtering.Run(q.logger, q.steps, q.items, candidates)

	if len(q.items)+len(accepted) > q.maxFiles {
		q.mu.Unlock()
		q.logger.Warn("rejecting files",
			zap.String("reason", "too many files"),
			zap.Int("staged", len(q.items)),
			zap.Int("candidates", len(accepted)),
			zap.Int("limit", q.maxFiles),
		)
		q.alert(fmt.Sprintf("You can upload at most %d files at once.", q.maxFiles))
		return false
	}

	next := make([]*files.File, 0, len(q.items)+len(accepted))
	next = append(next, q.items...)
	next = append(next, accepted...)
	q.items = next

	selection := q.selection()
	q.mu.Unlock()

	q.logger.Debug("files staged", zap.Int("added", len(accepted)), zap.Int("staged", selection.Count))
	q.changed(selection)
	return true
}

// Remove drops the file at index. It returns false for an out-of-range index.
func (q *Queue) Remove(index int) bool {
	q.mu.Lock()

	if index < 0 || index >= len(q.items) {
		q.mu.Unlock()
		return false
	}

	next := make([]*files.File, 0, len(q.items)-1)
	next = append(next, q.items[:index]...)
	next = append(next, q.items[index+1:]...)
	q.items = next

	selection := q.selection()
	q.mu.Unlock()

	q.changed(selection)
	return true
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.items = nil
	selection := q.selection()
	q.mu.Unlock()

	q.changed(selection)
}

// Files returns a copy of the staged files in selection order.
func (q *Queue) Files() []*files.File {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*files.File, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Selection renders the current state without triggering hooks.
func (q *Queue) Selection() Selection {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.selection()
}

func (q *Queue) selection() Selection {
	lines := make([]string, 0, len(q.items))
	for i, f := range q.items {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, f.Label()))
	}

	return Selection{
		Lines:         lines,
		Count:         len(q.items),
		SubmitEnabled: len(q.items) > 0,
		SubmitLabel:   SubmitLabel(len(q.items)),
	}
}

func (q *Queue) changed(s Selection) {
	if q.hooks.Changed != nil {
		q.hooks.Changed(s)
	}
}

func (q *Queue) alert(message string) {
	if q.hooks.Alert != nil {
		q.hooks.Alert(message)
	}
}

// SubmitLabel is the text of the submit action for count staged files.
func SubmitLabel(count int) string {
	switch count {
	case 0:
		return "Select files to upload"
	case 1:
		return "Upload 1 file"
	default:
		return fmt.Sprintf("Upload %d files", count)
	}
}
