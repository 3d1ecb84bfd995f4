// Package resume models the parsed résumé records returned by the upload endpoint.
package resume

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// UnknownName is shown for résumés the server could not find a name in.
const UnknownName = "Unknown"

type Education struct {
	Degree string `json:"degree" mapstructure:"degree"`
}

type Experience struct {
	Description string `json:"description" mapstructure:"description"`
}

// Resume is one parsed résumé record plus its score against the current skill set.
type Resume struct {
	Filename       string       `json:"filename"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	Phone          string       `json:"phone"`
	Education      []Education  `json:"education"`
	WorkExperience []Experience `json:"work_experience"`
	Skills         []string     `json:"skills"`
	AISummary      string       `json:"ai_summary,omitempty"`

	MatchScore           int      `json:"matchScore"`
	MatchingSkills       []string `json:"matchingSkills"`
	MissingSkills        []string `json:"missingSkills"`
	HasAllRequiredSkills bool     `json:"hasAllRequiredSkills"`

	// Source is the key of the staged file the record was parsed from. Two
	// uploads can share a filename, never a source.
	Source string `json:"-"`
}

// ID identifies the record among one submission's results. It falls back to
// the filename for records that were not uploaded from a staged file.
func (r *Resume) ID() string {
	if r.Source != "" {
		return r.Source
	}
	return r.Filename
}

type Results struct {
	Items []*Resume
}

// FromRaw builds a résumé from one decoded upload result. Missing or malformed
// optional fields are defaulted so renderers never deal with absent values.
func FromRaw(filename string, raw map[string]any) *Resume {
	if raw == nil {
		raw = map[string]any{}
	}

	r := &Resume{
		Filename:       filename,
		Name:           collapseSpaces(valueAsString(raw["name"])),
		Email:          strings.TrimSpace(valueAsString(raw["email"])),
		Phone:          strings.TrimSpace(valueAsString(raw["phone"])),
		Education:      decodeEducation(raw["education"]),
		WorkExperience: decodeExperience(raw["work_experience"]),
		Skills:         decodeSkills(raw["skills"]),
		AISummary:      strings.TrimSpace(valueAsString(raw["ai_summary"])),
	}

	if r.Name == "" {
		r.Name = UnknownName
	}

	r.ResetScore()

	return r
}

// ResetScore puts the score fields into the empty-skill-set state.
func (r *Resume) ResetScore() {
	r.MatchScore = 0
	r.MatchingSkills = []string{}
	r.MissingSkills = []string{}
	r.HasAllRequiredSkills = false
}

func decodeEducation(v any) []Education {
	entries := make([]Education, 0)
	list, ok := v.([]any)
	if !ok {
		return entries
	}

	for _, item := range list {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				entries = append(entries, Education{Degree: s})
			}
			continue
		}

		var edu Education
		if err := mapstructure.WeakDecode(item, &edu); err != nil {
			continue
		}
		edu.Degree = strings.TrimSpace(edu.Degree)
		if edu.Degree != "" {
			entries = append(entries, edu)
		}
	}

	return entries
}

func decodeExperience(v any) []Experience {
	entries := make([]Experience, 0)
	list, ok := v.([]any)
	if !ok {
		return entries
	}

	for _, item := range list {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				entries = append(entries, Experience{Description: s})
			}
			continue
		}

		var exp Experience
		if err := mapstructure.WeakDecode(item, &exp); err != nil {
			continue
		}
		exp.Description = strings.TrimSpace(exp.Description)
		if exp.Description != "" {
			entries = append(entries, exp)
		}
	}

	return entries
}

// decodeSkills keeps only the string entries of a skills array. Anything that is
// not an array yields no skills.
func decodeSkills(v any) []string {
	skills := make([]string, 0)
	list, ok := v.([]any)
	if !ok {
		return skills
	}

	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}

	return skills
}

func valueAsString(v any) string {
	if v == nil {
		return ""
	}

	switch typed := v.(type) {
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (r *Results) Len() int {
	return len(r.Items)
}

func (r *Results) Filenames() []string {
	names := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		names = append(names, item.Filename)
	}
	return names
}

// FindByID returns the record with the given ID, or nil.
func (r *Results) FindByID(id string) *Resume {
	for _, item := range r.Items {
		if item.ID() == id {
			return item
		}
	}
	return nil
}

// DumpToTmpFile writes the results as indented JSON into a new temporary file.
func (r *Results) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "resumes_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.Items); err != nil {
		return "", err
	}
	return file.Name(), nil
}
