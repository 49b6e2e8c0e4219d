package digest

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/Adda-Baaj/khobor-mailer/internal/domain"
)

//go:embed digest.html
var digestTemplate string

// DateLayout is the header date format.
const DateLayout = "2006-01-02"

// Renderer turns a Digest into the HTML mail body.
type Renderer struct {
	tmpl *template.Template
}

type cardView struct {
	Title   string
	Summary []string
	URL     string
}

type sectionView struct {
	Heading string
	Cards   []cardView
}

type digestView struct {
	Date     string
	Sections []sectionView
}

// NewRenderer parses the embedded digest template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("digest").Parse(digestTemplate)
	if err != nil {
		return nil, fmt.Errorf("template parse: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render produces the digest document. Titles, summaries and URLs are
// escaped by the template; summary lines are joined with <br>.
func (r *Renderer) Render(d domain.Digest) (string, error) {
	view := digestView{
		Date:     d.Date.Format(DateLayout),
		Sections: make([]sectionView, 0, len(d.Sections)),
	}

	for _, sec := range d.Sections {
		sv := sectionView{Heading: sec.Heading, Cards: make([]cardView, 0, len(sec.Cards))}
		for _, c := range sec.Cards {
			sv.Cards = append(sv.Cards, cardView{
				Title:   c.Article.Title,
				Summary: summaryLines(c.Summary),
				URL:     c.Article.URL,
			})
		}
		view.Sections = append(view.Sections, sv)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("template execute: %w", err)
	}
	return buf.String(), nil
}

func summaryLines(summary string) []string {
	summary = strings.ReplaceAll(summary, "\r\n", "\n")
	return strings.Split(summary, "\n")
}
