package render

import (
	"html/template"
	"io"

	"github.com/spigell/resume-screener/internal/resume"
)

type htmlRow struct {
	Index    int
	Resume   *resume.Resume
	Expanded bool
	Score    string
}

type htmlPage struct {
	Skills       []string
	MatchingOnly bool
	Total        int
	Rows         []htmlRow
}

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Résumé screening report</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: .4rem .6rem; text-align: left; }
tr.match { background: #eefbea; }
.tag { display: inline-block; background: #e4ecff; border-radius: 4px; padding: 0 .4rem; margin-right: .3rem; }
details { margin: .8rem 0; }
</style>
</head>
<body>
<h1>Résumé screening report</h1>
<p>Required skills: {{range .Skills}}<span class="tag">{{.}}</span>{{else}}none{{end}}</p>
<p>Showing {{len .Rows}} of {{.Total}} résumés{{if .MatchingOnly}} (matching only){{end}}</p>
{{if .Rows}}
<table>
<thead><tr><th>#</th><th>File</th><th>Name</th><th>Email</th><th>Score</th><th>Matching</th><th>Missing</th></tr></thead>
<tbody>
{{range .Rows}}<tr{{if .Resume.HasAllRequiredSkills}} class="match"{{end}}><td>{{.Index}}</td><td>{{.Resume.Filename}}</td><td>{{.Resume.Name}}</td><td>{{.Resume.Email}}</td><td>{{.Score}}</td><td>{{range .Resume.MatchingSkills}}<span class="tag">{{.}}</span>{{end}}</td><td>{{range .Resume.MissingSkills}}<span class="tag">{{.}}</span>{{end}}</td></tr>
{{end}}</tbody>
</table>
{{range .Rows}}
<details{{if .Expanded}} open{{end}}>
<summary>{{.Index}}. {{.Resume.Name}} ({{.Resume.Filename}})</summary>
<h3>Personal Info</h3>
<p>Name: {{.Resume.Name}}</p>
<p>Email: {{with .Resume.Email}}{{.}}{{else}}Not provided{{end}}</p>
<p>Phone: {{with .Resume.Phone}}{{.}}{{else}}Not provided{{end}}</p>
<h3>Education</h3>
<ul>{{range .Resume.Education}}<li>{{.Degree}}</li>{{end}}</ul>
<h3>Work Experience</h3>
<ul>{{range .Resume.WorkExperience}}<li>{{.Description}}</li>{{end}}</ul>
<h3>Skills</h3>
<ul>{{range .Resume.Skills}}<li>{{.}}</li>{{end}}</ul>
{{with .Resume.AISummary}}<h3>AI Summary</h3>
<p>{{.}}</p>{{end}}
</details>
{{end}}
{{else}}
<p>No résumés to show.</p>
{{end}}
</body>
</html>
`))

// HTML writes the view as a standalone HTML report. All résumé fields are escaped.
func HTML(w io.Writer, v View) error {
	rows := Rows(v.Resumes, v.MatchingOnly)

	p := htmlPage{
		Skills:       v.Skills,
		MatchingOnly: v.MatchingOnly,
		Total:        len(v.Resumes),
		Rows:         make([]htmlRow, 0, len(rows)),
	}
	for i, r := range rows {
		p.Rows = append(p.Rows, htmlRow{
			Index:    i + 1,
			Resume:   r,
			Expanded: v.IsExpanded(r),
			Score:    scoreLabel(r, len(v.Skills)),
		})
	}

	return page.Execute(w, p)
}
