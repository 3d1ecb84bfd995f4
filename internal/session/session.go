// Package session wires the staging queue, skill filter, uploads and rendering
// into one screening session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/files"
	"github.com/spigell/resume-screener/internal/filtering"
	"github.com/spigell/resume-screener/internal/matching"
	"github.com/spigell/resume-screener/internal/render"
	"github.com/spigell/resume-screener/internal/resume"
	"github.com/spigell/resume-screener/internal/skills"
	"github.com/spigell/resume-screener/internal/staging"
	"github.com/spigell/resume-screener/internal/upload"
	"github.com/spigell/resume-screener/internal/utils"
)

// DefaultFade is how long an accordion transition takes.
const DefaultFade = 300 * time.Millisecond

// ErrNoRow is returned when a details toggle points outside the visible rows.
var ErrNoRow = errors.New("no such row")

type Config struct {
	MaxFiles     int
	BatchSize    int
	Extensions   []string
	MaxFileSize  int64
	Skills       []string
	MatchingOnly bool
	Debounce     time.Duration
	Fade         time.Duration

	// DisabledFilters names staging filters to switch off. Filters that cannot
	// be disabled ignore it.
	DisabledFilters []string

	// Summarizer fills empty AI summaries after an upload. Optional.
	Summarizer ai.Summarizer
}

// Hooks are the outputs of a session. All are optional.
type Hooks struct {
	Selection func(staging.Selection)
	Alert     func(message string)
	Progress  func(done, total int, filename string)
	Skills    func(tags string)
	Render    func(render.View)
}

// Session is the state of one screening run.
type Session struct {
	mu           sync.Mutex
	results      []*resume.Resume
	matchingOnly bool

	queue        *staging.Queue
	skills       *skills.Set
	scorer       *matching.Scorer
	orchestrator *upload.Orchestrator
	summarizer   ai.Summarizer
	accordion    *render.Accordion
	debouncer    *render.Debouncer

	fade   time.Duration
	hooks  Hooks
	logger *zap.Logger
}

func New(uploader upload.Uploader, cfg Config, hooks Hooks, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = render.DefaultDebounce
	}
	if cfg.Fade < 0 {
		cfg.Fade = 0
	}

	s := &Session{
		matchingOnly: cfg.MatchingOnly,
		skills:       skills.New(cfg.Skills...),
		scorer:       matching.NewScorer(),
		summarizer:   cfg.Summarizer,
		accordion:    render.NewAccordion(),
		fade:         cfg.Fade,
		hooks:        hooks,
		logger:       logger,
	}

	steps := []filtering.Filter{
		filtering.NewExtensions(cfg.Extensions),
		filtering.NewDuplicates(),
		filtering.NewMaxSize(cfg.MaxFileSize),
	}
	for _, name := range cfg.DisabledFilters {
		filtering.DisableByName(steps, name, "disabled in configuration")
	}
	s.queue = staging.New(cfg.MaxFiles, steps, staging.Hooks{
		Changed: hooks.Selection,
		Alert:   s.alert,
	}, logger)

	s.orchestrator = upload.NewOrchestrator(uploader, cfg.BatchSize, upload.Hooks{
		Progress: hooks.Progress,
	}, logger)

	s.skills.Changed = s.skillsChanged
	s.debouncer = render.NewDebouncer(cfg.Debounce, s.render)

	return s
}

// Stage adds files to the queue.
func (s *Session) Stage(list ...*files.File) bool {
	ok := s.queue.Add(list...)
	s.logger.Debug("staging files",
		zap.Int("candidates", len(list)),
		zap.Int("staged", s.queue.Len()),
		zap.Bool("accepted", ok),
	)
	return ok
}

// Unstage removes the staged file at index.
func (s *Session) Unstage(index int) bool {
	return s.queue.Remove(index)
}

func (s *Session) ClearStaged() {
	s.queue.Clear()
}

func (s *Session) Staged() []*files.File {
	return s.queue.Files()
}

func (s *Session) Selection() staging.Selection {
	return s.queue.Selection()
}

// AddSkill commits one required skill. Results are rescored when the set changes.
func (s *Session) AddSkill(raw string) bool {
	return s.skills.Add(raw)
}

func (s *Session) RemoveSkill(raw string) bool {
	return s.skills.Remove(raw)
}

func (s *Session) Skills() []string {
	return s.skills.Items()
}

func (s *Session) SetMatchingOnly(on bool) {
	s.mu.Lock()
	changed := s.matchingOnly != on
	s.matchingOnly = on
	s.mu.Unlock()

	if changed {
		s.debouncer.Trigger()
	}
}

func (s *Session) MatchingOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matchingOnly
}

// Submit uploads the staged files and replaces the results with what came back.
// On a done context the résumés parsed so far still replace the results.
func (s *Session) Submit(ctx context.Context) ([]*resume.Resume, error) {
	parsed, err := s.orchestrator.Submit(ctx, s.queue.Files())
	switch {
	case errors.Is(err, upload.ErrNoFiles):
		s.alert("Please select at least one file.")
		return nil, err
	case errors.Is(err, upload.ErrInFlight):
		s.alert("An upload is already in progress.")
		return nil, err
	case err != nil:
		s.logger.Warn("upload interrupted", zap.Int("parsed", len(parsed)), zap.Error(err))
	}

	if err == nil && s.summarizer != nil {
		ai.FillSummaries(ctx, s.summarizer, parsed, s.logger)
	}

	s.scorer.ApplyAll(parsed, s.skills.Items())

	s.mu.Lock()
	s.results = parsed
	s.mu.Unlock()

	s.accordion.Reset()
	s.debouncer.Trigger()

	return s.Results(), err
}

// Rescore recomputes every result against the current skill set.
func (s *Session) Rescore() {
	required := s.skills.Items()

	s.mu.Lock()
	s.scorer.ApplyAll(s.results, required)
	count := len(s.results)
	s.mu.Unlock()

	s.logger.Debug("rescored",
		zap.Int("resumes", count),
		zap.Strings("skills", required),
		zap.Int("computations", s.scorer.Computations()),
	)

	s.debouncer.Trigger()
}

// ToggleDetails opens or closes the details of the visible row at index and
// waits for the transition to finish.
func (s *Session) ToggleDetails(ctx context.Context, index int) error {
	view := s.View()
	rows := render.Rows(view.Resumes, view.MatchingOnly)
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("%w: %d", ErrNoRow, index+1)
	}

	row := rows[index]
	key := row.ID()
	state := s.accordion.Toggle(key)
	s.logger.Debug("toggling details", zap.String("filename", row.Filename), zap.Stringer("state", state))
	s.debouncer.Trigger()

	if err := utils.WaitFor(ctx, s.fade); err != nil {
		return err
	}

	s.accordion.Settle(key)
	s.debouncer.Trigger()
	return nil
}

// Results returns a snapshot of the current results. Rescoring does not touch
// the returned values.
func (s *Session) Results() []*resume.Resume {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*resume.Resume, 0, len(s.results))
	for _, r := range s.results {
		snapshot := *r
		out = append(out, &snapshot)
	}
	return out
}

// View is the current render input.
func (s *Session) View() render.View {
	expanded, _ := s.accordion.Open()

	return render.View{
		Resumes:      s.Results(),
		Skills:       s.skills.Items(),
		MatchingOnly: s.MatchingOnly(),
		Expanded:     expanded,
	}
}

// Expanded returns the résumé whose details are open, or nil.
func (s *Session) Expanded() *resume.Resume {
	id, ok := s.accordion.Open()
	if !ok {
		return nil
	}
	results := resume.Results{Items: s.Results()}
	return results.FindByID(id)
}

// Flush renders immediately if a render is pending.
func (s *Session) Flush() {
	s.debouncer.Flush()
}

// Close drops a pending render.
func (s *Session) Close() {
	if s.orchestrator.InFlight() {
		s.logger.Warn("closing with an upload in progress")
	}
	s.debouncer.Stop()
}

func (s *Session) skillsChanged(_ []string) {
	s.scorer.Reset()
	if s.hooks.Skills != nil {
		s.hooks.Skills(s.skills.Tags())
	}
	s.Rescore()
}

func (s *Session) render() {
	if s.hooks.Render != nil {
		s.hooks.Render(s.View())
	}
}

func (s *Session) alert(message string) {
	s.logger.Warn("alert", zap.String("message", message))
	if s.hooks.Alert != nil {
		s.hooks.Alert(message)
	}
}
