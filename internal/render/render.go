// Package render turns parsed résumés and their scores into text, HTML and JSON reports.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spigell/resume-screener/internal/resume"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatHTML = "html"

	notProvided = "Not provided"
)

// View is everything a renderer needs.
type View struct {
	Resumes      []*resume.Resume
	Skills       []string
	MatchingOnly bool
	// Expanded is the ID of the row whose details are open, if any.
	Expanded string
}

// IsExpanded reports whether r is the row with open details.
func (v View) IsExpanded(r *resume.Resume) bool {
	return r != nil && v.Expanded != "" && r.ID() == v.Expanded
}

// Rows orders résumés by full match first, then by matching skill count, and drops
// partial matches when matchingOnly is set. The input slice is not modified.
func Rows(list []*resume.Resume, matchingOnly bool) []*resume.Resume {
	rows := make([]*resume.Resume, 0, len(list))
	for _, r := range list {
		if r == nil {
			continue
		}
		if matchingOnly && !r.HasAllRequiredSkills {
			continue
		}
		rows = append(rows, r)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].HasAllRequiredSkills != rows[j].HasAllRequiredSkills {
			return rows[i].HasAllRequiredSkills
		}
		return len(rows[i].MatchingSkills) > len(rows[j].MatchingSkills)
	})

	return rows
}

// Write renders the view in the given format.
func Write(w io.Writer, format string, v View) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return Text(w, v)
	case FormatJSON:
		return JSON(w, v)
	case FormatHTML:
		return HTML(w, v)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// Text writes the summary table followed by one detail section per row.
func Text(w io.Writer, v View) error {
	rows := Rows(v.Resumes, v.MatchingOnly)

	fmt.Fprintf(w, "Required skills: %s\n", skillTags(v.Skills))
	fmt.Fprintf(w, "Showing %d of %d résumés", len(rows), len(v.Resumes))
	if v.MatchingOnly {
		fmt.Fprint(w, " (matching only)")
	}
	fmt.Fprint(w, "\n\n")

	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No résumés to show.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tFILE\tNAME\tEMAIL\tSCORE\tMATCHING\tMISSING")
	for i, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			r.Filename,
			r.Name,
			orDash(r.Email),
			scoreLabel(r, len(v.Skills)),
			orDash(strings.Join(r.MatchingSkills, ", ")),
			orDash(strings.Join(r.MissingSkills, ", ")),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for i, r := range rows {
		fmt.Fprintln(w)
		if !v.IsExpanded(r) {
			fmt.Fprintf(w, "[+] %d. %s (%s)\n", i+1, r.Name, r.Filename)
			continue
		}

		fmt.Fprintf(w, "[-] %d. %s (%s)\n", i+1, r.Name, r.Filename)
		if err := Sections(indent(w, "    "), r); err != nil {
			return err
		}
	}

	return nil
}

// Sections writes the full details of one résumé.
func Sections(w io.Writer, r *resume.Resume) error {
	var b strings.Builder

	b.WriteString("Personal Info\n")
	fmt.Fprintf(&b, "  Name:  %s\n", r.Name)
	fmt.Fprintf(&b, "  Email: %s\n", orValue(r.Email, notProvided))
	fmt.Fprintf(&b, "  Phone: %s\n", orValue(r.Phone, notProvided))

	b.WriteString("Education\n")
	degrees := make([]string, 0, len(r.Education))
	for _, e := range r.Education {
		degrees = append(degrees, e.Degree)
	}
	writeList(&b, degrees)

	b.WriteString("Work Experience\n")
	descriptions := make([]string, 0, len(r.WorkExperience))
	for _, e := range r.WorkExperience {
		descriptions = append(descriptions, e.Description)
	}
	writeList(&b, descriptions)

	b.WriteString("Skills\n")
	if len(r.Skills) == 0 {
		b.WriteString("  (none)\n")
	} else {
		fmt.Fprintf(&b, "  %s\n", strings.Join(r.Skills, ", "))
	}

	if len(r.MatchingSkills)+len(r.MissingSkills) > 0 {
		b.WriteString("Skill Match\n")
		fmt.Fprintf(&b, "  Score:    %d%%\n", r.MatchScore)
		fmt.Fprintf(&b, "  Matching: %s\n", orDash(strings.Join(r.MatchingSkills, ", ")))
		fmt.Fprintf(&b, "  Missing:  %s\n", orDash(strings.Join(r.MissingSkills, ", ")))
	}

	if r.AISummary != "" {
		b.WriteString("AI Summary\n")
		fmt.Fprintf(&b, "  %s\n", r.AISummary)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

type jsonReport struct {
	Skills       []string         `json:"skills"`
	MatchingOnly bool             `json:"matchingOnly"`
	Total        int              `json:"total"`
	Results      []*resume.Resume `json:"results"`
}

// JSON writes the ordered and filtered rows as an indented JSON document.
func JSON(w io.Writer, v View) error {
	skills := v.Skills
	if skills == nil {
		skills = []string{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Skills:       skills,
		MatchingOnly: v.MatchingOnly,
		Total:        len(v.Resumes),
		Results:      Rows(v.Resumes, v.MatchingOnly),
	})
}

func writeList(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

func scoreLabel(r *resume.Resume, required int) string {
	if required == 0 {
		return "-"
	}
	if r.HasAllRequiredSkills {
		return "100% ✓"
	}
	return fmt.Sprintf("%d%%", r.MatchScore)
}

func skillTags(skills []string) string {
	if len(skills) == 0 {
		return "(none)"
	}
	tags := make([]string, 0, len(skills))
	for _, s := range skills {
		tags = append(tags, "["+s+"]")
	}
	return strings.Join(tags, " ")
}

func orDash(s string) string {
	return orValue(s, "-")
}

func orValue(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

type indentWriter struct {
	w      io.Writer
	prefix string
}

func indent(w io.Writer, prefix string) io.Writer {
	return &indentWriter{w: w, prefix: prefix}
}

func (iw *indentWriter) Write(p []byte) (int, error) {
	lines := strings.SplitAfter(string(p), "\n")
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		b.WriteString(iw.prefix)
		b.WriteString(line)
	}
	if _, err := io.WriteString(iw.w, b.String()); err != nil {
		return 0, err
	}
	return len(p), nil
}
