package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/raysh454/rgaalint/internal/model"
)

// DiffRuns compares the violations of two stored runs line by line.
func (r *Registry) DiffRuns(ctx context.Context, baseID, headID string) (*RunDiff, error) {
	base, err := r.GetRun(ctx, baseID)
	if err != nil {
		return nil, fmt.Errorf("base run %s: %w", baseID, err)
	}
	head, err := r.GetRun(ctx, headID)
	if err != nil {
		return nil, fmt.Errorf("head run %s: %w", headID, err)
	}
	return diffPages(baseID, headID, base.Pages, head.Pages), nil
}

func diffPages(baseID, headID string, base, head []model.PageResult) *RunDiff {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(issueLines(base), issueLines(head))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	out := &RunDiff{BaseID: baseID, HeadID: headID, Chunks: []Chunk{}}
	for _, d := range diffs {
		var kind string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = "added"
		case diffmatchpatch.DiffDelete:
			kind = "removed"
		default:
			continue
		}
		n := strings.Count(d.Text, "\n")
		if n == 0 {
			continue
		}
		if kind == "added" {
			out.Added += n
		} else {
			out.Removed += n
		}
		out.Chunks = append(out.Chunks, Chunk{Type: kind, Content: d.Text})
	}
	return out
}

// issueLines renders one line per violation, sorted, so that diffs do not
// depend on crawl order.
func issueLines(pages []model.PageResult) string {
	var lines []string
	for _, p := range pages {
		p.Result.Each(func(rule string, vs []model.Violation) {
			for _, v := range vs {
				el := strings.Join(strings.Fields(v.Element), " ")
				lines = append(lines, p.URL+" | "+rule+" | "+el)
			}
		})
	}
	sort.Strings(lines)
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return sb.String()
}
