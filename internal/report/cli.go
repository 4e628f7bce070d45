package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"
)

const defaultTermWidth = 80

// GenerateCLI prints a compliance table followed by one table per page
// listing every offending element under its rule.
func (g *Generator) GenerateCLI(w io.Writer, audit *Audit) error {
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	width := termWidth(w)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Topic", "Criteria", "Compliance", "Rules in error"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, topic := range audit.Topics {
		e := audit.Compliance[topic]
		pct := strconv.Itoa(e.Percentage) + "%"
		if e.Compliance {
			pct = green(pct)
		} else {
			pct = red(pct)
		}
		data = append(data, []string{topic, strconv.Itoa(e.CriteriaCount), pct, strings.Join(e.RuleInError, ", ")})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, page := range audit.Pages {
		fmt.Fprintf(w, "\n%s (%d issues)\n", page.URL, page.IssueCount())
		if len(page.Rules) == 0 {
			fmt.Fprintln(w, green("no issues"))
			continue
		}
		pt := tablewriter.NewWriter(w)
		pt.Header([]string{"Rule", "Message", "Element"})
		var rows [][]string
		for _, r := range page.Rules {
			rule, msg := r.Rule, truncate(r.Message, (width-20)/2)
			for _, issue := range r.Issues {
				rows = append(rows, []string{rule, msg, truncate(oneLine(issue.Element), (width-20)/2)})
				// rule and message only head the first row of a group
				rule, msg = "", ""
			}
		}
		if err := pt.Bulk(rows); err != nil {
			return err
		}
		if err := pt.Render(); err != nil {
			return err
		}
	}
	return nil
}

func termWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultTermWidth
	}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
		return width
	}
	return defaultTermWidth
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	if max < 10 {
		max = 10
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
