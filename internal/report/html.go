package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed template.html
var htmlTemplate string

var pageTemplate = template.Must(template.New("audit").Funcs(template.FuncMap{
	"compliance": func(a *Audit, topic string) ComplianceEntry { return a.Compliance[topic] },
}).Parse(htmlTemplate))

// GenerateHTML renders the audit as a standalone HTML page.
func (g *Generator) GenerateHTML(w io.Writer, audit *Audit) error {
	if err := pageTemplate.Execute(w, audit); err != nil {
		return fmt.Errorf("report: render html: %w", err)
	}
	return nil
}
