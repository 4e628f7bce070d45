package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raysh454/rgaalint/internal/app"
	"github.com/raysh454/rgaalint/internal/collector"
	"github.com/raysh454/rgaalint/internal/model"
	"github.com/raysh454/rgaalint/internal/report"
)

// ErrIssuesFound makes check exit non-zero when violations remain.
var ErrIssuesFound = errors.New("accessibility issues found")

func (r *runner) auditCmd() *cobra.Command {
	var pageURL string
	cmd := &cobra.Command{
		Use:   "audit <url|file.html>",
		Short: "Audit a single page from a URL or a local HTML file",
		Long: `Audit one page. A path to an existing file is parsed as HTML in DOM
mode; anything else is treated as a URL and fetched with the configured
backend (in virtual mode the page is rendered and captured by the browser).

Examples:
  rgaalint audit https://example.com --html --json
  rgaalint audit ./index.html --url https://example.com/`,
		Args: cobra.ExactArgs(1),
		RunE: r.withApp(func(cmd *cobra.Command, args []string) error {
			target := args[0]
			body, err := os.ReadFile(target)
			var a *app.Audit
			switch {
			case err == nil:
				u := pageURL
				if u == "" {
					u, err = fileURL(target)
					if err != nil {
						return err
					}
				}
				a, err = r.app.Orch.AuditHTML(cmd.Context(), u, body)
			case errors.Is(err, fs.ErrNotExist):
				a, err = r.app.Orch.AuditURL(cmd.Context(), target)
			}
			if err != nil {
				return err
			}
			return r.report(cmd, a)
		}),
	}
	cmd.Flags().StringVar(&pageURL, "url", "", "URL recorded for a local file (default file://<path>)")
	return cmd
}

func (r *runner) checkCmd() *cobra.Command {
	var allowIssues bool
	cmd := &cobra.Command{
		Use:   "check <virtual.json|->",
		Short: "Audit virtual page captures and fail on violations",
		Long: `Audit one or more pages captured as virtual JSON records (a single page
object or an array of them, "-" reads stdin). Rules always run in virtual
mode. The command exits non-zero when any violation is found, which makes
it usable as a CI gate.`,
		Args: cobra.ExactArgs(1),
		RunE: r.withApp(func(cmd *cobra.Command, args []string) error {
			pages, err := readVirtualPages(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if len(pages) == 0 {
				return fmt.Errorf("%s: no pages", args[0])
			}

			combined := &app.Audit{Target: pages[0].URL, Mode: model.ModeVirtual}
			for i := range pages {
				a, err := r.app.Orch.AuditVirtual(cmd.Context(), &pages[i])
				if err != nil {
					return err
				}
				combined.Pages = append(combined.Pages, a.Pages...)
			}
			if err := r.report(cmd, combined); err != nil {
				return err
			}

			issues := 0
			for _, p := range combined.Pages {
				issues += p.Result.Count()
			}
			if issues > 0 && !allowIssues {
				return fmt.Errorf("%w: %d violations on %d pages", ErrIssuesFound, issues, len(combined.Pages))
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&allowIssues, "allow-issues", false, "Exit zero even when violations are found")
	return cmd
}

func (r *runner) siteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "site <url>",
		Short: "Crawl a site and audit every page found",
		Long: `Crawl same-host links from the start URL up to --depth levels and audit
every discovered page. Results are stored in the history as they are
produced when --store is set.`,
		Args: cobra.ExactArgs(1),
		RunE: r.withApp(func(cmd *cobra.Command, args []string) error {
			progress := func(stage string, done, total int) {
				fmt.Fprintf(cmd.ErrOrStderr(), "\r%-9s %d/%d", stage, done, total)
				if done == total {
					fmt.Fprintln(cmd.ErrOrStderr())
				}
			}
			a, err := r.app.Orch.AuditSite(cmd.Context(), args[0], progress)
			if err != nil {
				return err
			}
			return r.report(cmd, a)
		}),
	}
}

// report renders a in the configured formats and lists written files.
func (r *runner) report(cmd *cobra.Command, a *app.Audit) error {
	rc := r.cfg.ReportCfg
	files, err := r.app.Orch.Report(a, report.Options{
		HTML:      rc.HTML,
		JSON:      rc.JSON,
		CLI:       rc.CLI,
		OutputDir: rc.OutputDir,
		Stdout:    cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", f)
	}
	if a.RunID != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "stored as run %s\n", a.RunID)
	}
	return nil
}

func fileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// readVirtualPages decodes a single capture or an array of captures.
func readVirtualPages(stdin io.Reader, path string) ([]collector.VirtualPage, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var pages []collector.VirtualPage
		if err := json.Unmarshal(trimmed, &pages); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return pages, nil
	}
	var page collector.VirtualPage
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return []collector.VirtualPage{page}, nil
}
