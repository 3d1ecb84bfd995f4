package filtering

import (
	"strconv"
	"strings"

	"github.com/spigell/resume-screener/internal/files"
)

// DefaultExtensions is the allow-list used when none is configured.
var DefaultExtensions = []string{"pdf", "docx"}

type extensionFilter struct {
	allowed map[string]struct{}
	names   []string
}

// NewExtensions creates a filter that drops candidates whose extension is not allowed.
// Extensions are compared case-insensitively, with or without a leading dot.
func NewExtensions(allowed []string) Filter {
	if len(allowed) == 0 {
		allowed = DefaultExtensions
	}

	f := &extensionFilter{allowed: make(map[string]struct{}, len(allowed))}
	for _, ext := range allowed {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if ext == "" {
			continue
		}
		if _, ok := f.allowed[ext]; ok {
			continue
		}
		f.allowed[ext] = struct{}{}
		f.names = append(f.names, ext)
	}
	return f
}

func (f *extensionFilter) Name() string { return "extensions" }

func (f *extensionFilter) Disable(string) {}

func (f *extensionFilter) IsEnabled() bool { return true }

func (f *extensionFilter) Apply(_, candidates []*files.File) ([]*files.File, Step) {
	kept := make([]*files.File, 0, len(candidates))
	var dropped []string
	for _, c := range candidates {
		if _, ok := f.allowed[c.Ext()]; ok {
			kept = append(kept, c)
			continue
		}
		dropped = append(dropped, c.Name)
	}

	return kept, Step{Initial: len(candidates), Dropped: len(dropped), Left: len(kept), DroppedNames: dropped}
}

func (f *extensionFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true, Details: map[string]string{
		"allowed": strings.Join(f.names, ","),
	}}
}

type duplicatesFilter struct{}

// NewDuplicates creates a filter that drops candidates already staged or repeated
// within the same candidate list.
func NewDuplicates() Filter {
	return &duplicatesFilter{}
}

func (f *duplicatesFilter) Name() string { return "duplicates" }

func (f *duplicatesFilter) Disable(string) {}

func (f *duplicatesFilter) IsEnabled() bool { return true }

func (f *duplicatesFilter) Apply(staged, candidates []*files.File) ([]*files.File, Step) {
	seen := make(map[string]struct{}, len(staged)+len(candidates))
	for _, s := range staged {
		seen[s.Key()] = struct{}{}
	}

	kept := make([]*files.File, 0, len(candidates))
	var dropped []string
	for _, c := range candidates {
		key := c.Key()
		if _, ok := seen[key]; ok {
			dropped = append(dropped, c.Name)
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, c)
	}

	return kept, Step{Initial: len(candidates), Dropped: len(dropped), Left: len(kept), DroppedNames: dropped}
}

type maxSizeFilter struct {
	limit    int64
	disabled bool
	reason   string
}

// NewMaxSize creates a filter that drops candidates larger than limit bytes.
// A non-positive limit disables the filter.
func NewMaxSize(limit int64) Filter {
	f := &maxSizeFilter{limit: limit}
	if limit <= 0 {
		f.Disable("no size limit configured")
	}
	return f
}

func (f *maxSizeFilter) Name() string { return "max_size" }

func (f *maxSizeFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *maxSizeFilter) IsEnabled() bool { return !f.disabled }

func (f *maxSizeFilter) Apply(_, candidates []*files.File) ([]*files.File, Step) {
	kept := make([]*files.File, 0, len(candidates))
	var dropped []string
	for _, c := range candidates {
		if c.Size > f.limit {
			dropped = append(dropped, c.Name)
			continue
		}
		kept = append(kept, c)
	}

	return kept, Step{Initial: len(candidates), Dropped: len(dropped), Left: len(kept), DroppedNames: dropped}
}

func (f *maxSizeFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: map[string]string{
		"limit_bytes": strconv.FormatInt(f.limit, 10),
	}}
}
