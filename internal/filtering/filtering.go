// Package filtering runs the checks a candidate file must pass before it is staged.
package filtering

import (
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/files"
)

// Filter represents a single filtering step applied to candidate files before staging.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	// Apply returns the candidates that survive the step. staged holds the files
	// already in the queue and must not be modified.
	Apply(staged, candidates []*files.File) ([]*files.File, Step)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
	// DroppedNames lists the dropped candidates for logging.
	DroppedNames []string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the surviving candidates.
func Run(logger *zap.Logger, steps []Filter, staged, candidates []*files.File) []*files.File {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info := step.Apply(staged, candidates)

		logger.Debug("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		if info.Dropped > 0 {
			logger.Info("dropping files",
				zap.String("filter", step.Name()),
				zap.Strings("files", info.DroppedNames),
			)
		}

		candidates = next
	}

	return candidates
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
