package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/raysh454/rgaalint/internal/app"
	"github.com/raysh454/rgaalint/internal/registry"
)

func (r *runner) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and compare stored audits (requires --store)",
	}
	cmd.AddCommand(r.historyListCmd(), r.historyShowCmd(), r.historyDiffCmd(), r.historyDeleteCmd())
	return cmd
}

func (r *runner) historyListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list [target]",
		Short: "List stored audits, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: r.withApp(func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			runs, err := r.app.Orch.ListRuns(cmd.Context(), target, limit)
			if err != nil {
				return err
			}
			return printRuns(cmd, runs)
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of audits listed (0 = all)")
	return cmd
}

func printRuns(cmd *cobra.Command, runs []registry.Run) error {
	if len(runs) == 0 {
		cmd.Println("no stored audits")
		return nil
	}
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header([]string{"ID", "Target", "Mode", "Created", "Pages", "Violations"})
	var rows [][]string
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.Target,
			run.Mode.String(),
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			strconv.Itoa(run.PageCount),
			strconv.Itoa(run.ViolationCount),
		})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func (r *runner) historyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Render a stored audit in the configured formats",
		Args:  cobra.ExactArgs(1),
		RunE: r.withApp(func(cmd *cobra.Command, args []string) error {
			run, err := r.app.Orch.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return r.report(cmd, &app.Audit{Target: run.Target, Mode: run.Mode, Pages: run.Pages})
		}),
	}
}

func (r *runner) historyDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <base-id> <head-id>",
		Short: "Show violations fixed and introduced between two audits",
		Args:  cobra.ExactArgs(2),
		RunE: r.withApp(func(cmd *cobra.Command, args []string) error {
			diff, err := r.app.Orch.DiffRuns(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			added := color.New(color.FgRed).SprintFunc()
			removed := color.New(color.FgGreen).SprintFunc()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s -> %s: %d new, %d fixed\n", diff.BaseID, diff.HeadID, diff.Added, diff.Removed)
			for _, c := range diff.Chunks {
				for _, line := range strings.Split(strings.TrimSuffix(c.Content, "\n"), "\n") {
					switch c.Type {
					case "added":
						fmt.Fprintln(out, added("+ "+line))
					case "removed":
						fmt.Fprintln(out, removed("- "+line))
					}
				}
			}
			return nil
		}),
	}
}

func (r *runner) historyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored audit",
		Args:  cobra.ExactArgs(1),
		RunE: r.withApp(func(cmd *cobra.Command, args []string) error {
			if err := r.app.Orch.DeleteRun(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Printf("deleted %s\n", args[0])
			return nil
		}),
	}
}
