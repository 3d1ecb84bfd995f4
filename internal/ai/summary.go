// Package ai fills in résumé summaries the parsing server left empty.
package ai

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/resume"
)

// Summarizer writes a short summary of one résumé.
type Summarizer interface {
	Summarize(ctx context.Context, r *resume.Resume) (string, error)
}

// FillSummaries asks s for a summary of every résumé without one and returns how
// many were filled. Failures are logged and leave the summary empty. It stops early
// when ctx is done.
func FillSummaries(ctx context.Context, s Summarizer, list []*resume.Resume, log *zap.Logger) int {
	if s == nil {
		return 0
	}
	log = logger.WithFields(log)

	filled := 0
	for _, r := range list {
		if r == nil || strings.TrimSpace(r.AISummary) != "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			log.Warn("stopping summaries", zap.Error(err))
			return filled
		}

		summary, err := s.Summarize(ctx, r)
		if err != nil {
			log.Warn("summary failed", logger.Filename(r.Filename), zap.Error(err))
			continue
		}

		r.AISummary = strings.TrimSpace(summary)
		if r.AISummary != "" {
			filled++
		}
	}

	if filled > 0 {
		log.Info("summaries generated", zap.Int("count", filled))
	}
	return filled
}
