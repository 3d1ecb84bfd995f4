// Package skills keeps the set of required skills résumés are matched against.
package skills

import (
	"strings"
	"sync"
)

// Set is the required skill set. Skills are stored normalized, in insertion order.
type Set struct {
	mu    sync.RWMutex
	items []string
	index map[string]struct{}

	// Changed is called after every successful Add or Remove.
	Changed func(items []string)
}

func New(initial ...string) *Set {
	s := &Set{index: make(map[string]struct{})}
	for _, raw := range initial {
		s.add(raw)
	}
	return s
}

// Normalize trims and lowercases a raw skill.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Add inserts the normalized skill. Empty or already present skills are ignored.
func (s *Set) Add(raw string) bool {
	s.mu.Lock()
	added := s.add(raw)
	items := s.snapshotOrdered()
	s.mu.Unlock()

	if added && s.Changed != nil {
		s.Changed(items)
	}
	return added
}

func (s *Set) add(raw string) bool {
	skill := Normalize(raw)
	if skill == "" {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[skill]; ok {
		return false
	}
	s.index[skill] = struct{}{}
	s.items = append(s.items, skill)
	return true
}

// Remove deletes the normalized skill if present.
func (s *Set) Remove(raw string) bool {
	skill := Normalize(raw)

	s.mu.Lock()
	if _, ok := s.index[skill]; !ok {
		s.mu.Unlock()
		return false
	}

	delete(s.index, skill)
	next := make([]string, 0, len(s.items)-1)
	for _, item := range s.items {
		if item != skill {
			next = append(next, item)
		}
	}
	s.items = next
	items := s.snapshotOrdered()
	s.mu.Unlock()

	if s.Changed != nil {
		s.Changed(items)
	}
	return true
}

// Items returns the skills in insertion order.
func (s *Set) Items() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotOrdered()
}

// Tags renders the skill tags in display order.
func (s *Set) Tags() string {
	items := s.Items()
	if len(items) == 0 {
		return "(no skills selected)"
	}

	tags := make([]string, 0, len(items))
	for _, item := range items {
		tags = append(tags, "["+item+"]")
	}
	return strings.Join(tags, " ")
}

func (s *Set) snapshotOrdered() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
