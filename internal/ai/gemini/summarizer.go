package gemini

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/resume"
	"github.com/spigell/resume-screener/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

//go:embed prompt.md
var systemPrompt string

const defaultMaxLogLength = 200

// Summarizer writes résumé summaries with Gemini. Answers are cached by the
// hash of the résumé payload.
type Summarizer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int

	mu    sync.RWMutex
	cache map[string]string
}

func NewSummarizer(generator contentGenerator, log *zap.Logger, maxLogLength int) *Summarizer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Summarizer{
		generator: generator,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLength,
		cache:     make(map[string]string),
	}
}

type summaryPayload struct {
	Name           string              `json:"name"`
	Education      []resume.Education  `json:"education"`
	WorkExperience []resume.Experience `json:"work_experience"`
	Skills         []string            `json:"skills"`
}

func (s *Summarizer) Summarize(ctx context.Context, r *resume.Resume) (string, error) {
	if r == nil {
		return "", errors.New("resume is required")
	}

	payload, err := json.MarshalIndent(summaryPayload{
		Name:           r.Name,
		Education:      r.Education,
		WorkExperience: r.WorkExperience,
		Skills:         r.Skills,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal resume payload: %w", err)
	}

	sum := sha256.Sum256(payload)
	key := hex.EncodeToString(sum[:])

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		s.logger.Debug("summary cache hit", logger.Filename(r.Filename))
		return cached, nil
	}

	message := string(payload)
	s.logger.Debug("gemini summary request",
		logger.Filename(r.Filename),
		zap.Int("payload_length", utf8.RuneCountInString(message)),
		zap.String("payload_preview", utils.TruncateForLog(message, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, systemPrompt, message)
	if err != nil {
		return "", err
	}

	summary := cleanSummary(raw)
	s.logger.Debug("gemini summary response",
		logger.Filename(r.Filename),
		zap.String("response_preview", utils.TruncateForLog(summary, s.maxLogLen)),
	)

	if summary == "" {
		return "", errors.New("gemini returned an empty summary")
	}

	s.mu.Lock()
	s.cache[key] = summary
	s.mu.Unlock()

	return summary, nil
}

// cleanSummary strips code fences and joins the answer into one paragraph.
func cleanSummary(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```text")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.Join(strings.Fields(raw), " ")
}
