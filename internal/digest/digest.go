// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest renders fetched articles into the HTML email body.
package digest

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/pdiddy/arxiv-notify/pkg/types"
)

const titlePrefix = "ArXiVAI Bot Email"

// dateLayout renders dates as "October 19, 2026".
const dateLayout = "January 02, 2006"

// timestampLayout renders article update times.
const timestampLayout = "2006-01-02 15:04:05-07:00"

// Subject returns the email subject for a digest sent on date.
func Subject(date time.Time) string {
	return fmt.Sprintf("%s - %s", titlePrefix, date.Format(dateLayout))
}

var digestTmpl = template.Must(template.New("digest").Funcs(template.FuncMap{
	"stamp": func(t time.Time) template.HTML { return template.HTML(t.Format(timestampLayout)) },
}).Parse(`<h2> {{.Heading}} </h2>
{{range .Sections -}}
<h3>{{.Keyword}}</h3>
<ul>
{{range .Articles -}}
<li>
	<b><u>{{.Title}}</u></b><br>
<a href="{{.Link}}">{{.Link}}</a>&nbsp;&nbsp;&nbsp;&nbsp;{{stamp .Updated}}
<br>
{{.Abstract}}
</li>
<br>
{{end -}}
</ul>
{{end -}}
`))

// Render writes the digest for sections to w. Sections keep their order;
// a keyword with no articles still gets a heading and an empty list.
func Render(w io.Writer, date time.Time, sections []types.KeywordDigest) error {
	data := struct {
		Heading  string
		Sections []types.KeywordDigest
	}{
		Heading:  Subject(date),
		Sections: sections,
	}
	if err := digestTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering digest: %w", err)
	}
	return nil
}

// RenderString is Render into a string.
func RenderString(date time.Time, sections []types.KeywordDigest) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, date, sections); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Count returns the total number of articles across sections.
func Count(sections []types.KeywordDigest) int {
	n := 0
	for _, s := range sections {
		n += len(s.Articles)
	}
	return n
}
