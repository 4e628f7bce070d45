package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/raysh454/rgaalint/internal/dictionary"
	"github.com/raysh454/rgaalint/internal/logging"
	"github.com/raysh454/rgaalint/internal/model"
	"github.com/raysh454/rgaalint/internal/utils"
)

// ErrNoFormatSpecified is returned by GenerateAudit when no output format
// is selected.
var ErrNoFormatSpecified = errors.New("no output format specified")

// Options selects the output formats of GenerateAudit.
type Options struct {
	HTML bool
	JSON bool
	CLI  bool

	// BaseURL names the output files, scheme stripped. Empty means "audit".
	BaseURL   string
	OutputDir string

	// Stdout receives the console table. Defaults to os.Stdout.
	Stdout io.Writer
}

// Audit is the complete report handed to every renderer.
type Audit struct {
	Pages      PageReports                `json:"pages"`
	Compliance map[string]ComplianceEntry `json:"compliance"`
	Topics     []string                   `json:"-"`
}

// Generator renders audits. It is safe for concurrent use.
type Generator struct {
	dict   *dictionary.Dictionary
	logger logging.Logger
}

func NewGenerator(dict *dictionary.Dictionary, logger logging.Logger) *Generator {
	if dict == nil {
		dict = dictionary.Default()
	}
	logger = logging.OrNop(logger)
	return &Generator{
		dict:   dict,
		logger: logger.With(logging.Field{Key: "component", Value: "report"}),
	}
}

// Build maps results and scores compliance without rendering anything.
func (g *Generator) Build(results []model.PageResult) *Audit {
	pages := MapResults(results)
	return &Audit{
		Pages:      pages,
		Compliance: ComputeCompliance(pages, g.dict),
		Topics:     g.dict.Topics(),
	}
}

// GenerateAudit builds the audit and writes each selected format. HTML and
// JSON land in OutputDir as <base>.html and <base>.json.
// It returns the written file paths.
func (g *Generator) GenerateAudit(results []model.PageResult, opts Options) ([]string, error) {
	if !opts.HTML && !opts.JSON && !opts.CLI {
		return nil, ErrNoFormatSpecified
	}
	audit := g.Build(results)
	base := utils.OutputBaseName(opts.BaseURL)

	var written []string
	if opts.HTML {
		path := filepath.Join(opts.OutputDir, base+".html")
		if err := writeFile(path, func(w io.Writer) error { return g.GenerateHTML(w, audit) }); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if opts.JSON {
		path := filepath.Join(opts.OutputDir, base+".json")
		if err := writeFile(path, func(w io.Writer) error { return g.GenerateJSON(w, audit) }); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if opts.CLI {
		out := opts.Stdout
		if out == nil {
			out = os.Stdout
		}
		if err := g.GenerateCLI(out, audit); err != nil {
			return written, err
		}
	}
	g.logger.Info("audit generated",
		logging.Field{Key: "pages", Value: len(audit.Pages)},
		logging.Field{Key: "files", Value: written})
	return written, nil
}

// GenerateJSON writes the pages as an indented JSON object keyed by page
// URL, each page keyed by rule id. Compliance is left to the HTML and
// console renderers.
func (g *Generator) GenerateJSON(w io.Writer, audit *Audit) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(audit.Pages); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

func writeFile(path string, render func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report: create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
