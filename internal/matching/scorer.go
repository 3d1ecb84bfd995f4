// Package matching scores parsed résumés against a required skill set.
package matching

import (
	"crypto/sha256"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/spigell/resume-screener/internal/resume"
)

// Result is the outcome of scoring one résumé against a skill set.
type Result struct {
	Score                int
	MatchingSkills       []string
	MissingSkills        []string
	HasAllRequiredSkills bool
}

var separators = regexp.MustCompile(`[-_\s]+`)

// Normalize lowercases and trims a skill and collapses runs of hyphens,
// underscores and whitespace into a single space.
func Normalize(skill string) string {
	return strings.TrimSpace(separators.ReplaceAllString(strings.ToLower(strings.TrimSpace(skill)), " "))
}

// Scorer computes match results and caches them by résumé content and skill set.
type Scorer struct {
	mu           sync.RWMutex
	cache        map[string]Result
	computations int
}

func NewScorer() *Scorer {
	return &Scorer{cache: make(map[string]Result)}
}

// Score returns the match result for r against required. Repeated calls with the
// same résumé content and skill set are served from the cache, with the skill
// lists following the order of required.
func (s *Scorer) Score(r *resume.Resume, required []string) Result {
	if len(required) == 0 {
		return emptyResult()
	}

	key := cacheKey(r, required)

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return cached.inOrder(required)
	}

	result := compute(r, required)

	s.mu.Lock()
	if s.cache == nil {
		s.cache = make(map[string]Result)
	}
	s.cache[key] = result
	s.computations++
	s.mu.Unlock()

	return result.clone()
}

// Apply scores r and writes the result into its score fields.
func (s *Scorer) Apply(r *resume.Resume, required []string) {
	if r == nil {
		return
	}
	result := s.Score(r, required)
	r.MatchScore = result.Score
	r.MatchingSkills = result.MatchingSkills
	r.MissingSkills = result.MissingSkills
	r.HasAllRequiredSkills = result.HasAllRequiredSkills
}

// ApplyAll rescores every résumé.
func (s *Scorer) ApplyAll(list []*resume.Resume, required []string) {
	for _, r := range list {
		s.Apply(r, required)
	}
}

// Reset drops all cached results.
func (s *Scorer) Reset() {
	s.mu.Lock()
	s.cache = make(map[string]Result)
	s.mu.Unlock()
}

// Computations reports how many times the matching loop ran.
func (s *Scorer) Computations() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.computations
}

func compute(r *resume.Resume, required []string) Result {
	var resumeSkills []string
	if r != nil {
		resumeSkills = r.Skills
	}

	normalized := make(map[string]struct{}, len(resumeSkills))
	tokens := make([]string, 0, len(resumeSkills))
	for _, skill := range resumeSkills {
		n := Normalize(skill)
		if n == "" {
			continue
		}
		if _, ok := normalized[n]; ok {
			continue
		}
		normalized[n] = struct{}{}
		tokens = append(tokens, n)
	}

	matches := make([]string, 0, len(required))
	missing := make([]string, 0, len(required))
	for _, skill := range required {
		n := Normalize(skill)
		if n != "" && (exact(normalized, n) || partial(tokens, n)) {
			matches = append(matches, skill)
			continue
		}
		missing = append(missing, skill)
	}

	all := len(matches) == len(required)
	score := 100
	if !all {
		score = int(math.Round(100 * float64(len(matches)) / float64(len(required))))
	}

	return Result{
		Score:                score,
		MatchingSkills:       matches,
		MissingSkills:        missing,
		HasAllRequiredSkills: all,
	}
}

func exact(set map[string]struct{}, skill string) bool {
	_, ok := set[skill]
	return ok
}

func partial(tokens []string, skill string) bool {
	for _, token := range tokens {
		if strings.Contains(skill, token) || strings.Contains(token, skill) {
			return true
		}
	}
	return false
}

func emptyResult() Result {
	return Result{
		MatchingSkills: []string{},
		MissingSkills:  []string{},
	}
}

func (r Result) clone() Result {
	out := r
	out.MatchingSkills = append([]string{}, r.MatchingSkills...)
	out.MissingSkills = append([]string{}, r.MissingSkills...)
	return out
}

// inOrder rebuilds the skill lists of a cached result in the order of required.
func (r Result) inOrder(required []string) Result {
	matched := make(map[string]struct{}, len(r.MatchingSkills))
	for _, skill := range r.MatchingSkills {
		matched[Normalize(skill)] = struct{}{}
	}

	out := r
	out.MatchingSkills = make([]string, 0, len(r.MatchingSkills))
	out.MissingSkills = make([]string, 0, len(r.MissingSkills))
	for _, skill := range required {
		if _, ok := matched[Normalize(skill)]; ok {
			out.MatchingSkills = append(out.MatchingSkills, skill)
			continue
		}
		out.MissingSkills = append(out.MissingSkills, skill)
	}
	return out
}

// cacheKey hashes the résumé identity and the sorted skill set.
func cacheKey(r *resume.Resume, required []string) string {
	h := sha256.New()

	if r != nil {
		fmt.Fprintf(h, "id:%s\n", r.ID())
		skills := make([]string, 0, len(r.Skills))
		for _, skill := range r.Skills {
			skills = append(skills, Normalize(skill))
		}
		fmt.Fprintf(h, "skills:%s\n", strings.Join(skills, "\x1f"))
	}

	sorted := append([]string{}, required...)
	sort.Strings(sorted)
	fmt.Fprintf(h, "required:%s\n", strings.Join(sorted, "\x1f"))

	return fmt.Sprintf("%x", h.Sum(nil))
}
