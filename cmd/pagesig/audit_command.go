package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pagesig/internal/audit"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var tolerance int
	var failingOnly bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Measure per-label signature accuracy over the annotated corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace()
			if err != nil {
				return err
			}
			tol, err := toleranceFlag(cmd, tolerance, ws.cfg)
			if err != nil {
				return err
			}

			engine := audit.New(ws.images, ws.logger)
			report, err := engine.Run(cmd.Context(), ws.corpus, ws.signatures, tol)
			if err != nil {
				return fmt.Errorf("audit: %w", err)
			}
			totals := report.Totals()
			if failingOnly {
				report.Results = report.Failing()
				if report.Results == nil {
					report.Results = []audit.Result{}
				}
			}

			if jsonOut {
				return writeJSON(cmd, auditJSON{Report: report, Totals: totals})
			}
			printAuditReport(cmd.OutOrStdout(), report, totals)
			return nil
		},
	}

	cmd.Flags().IntVarP(&tolerance, "tolerance", "t", 0, "Per-channel colour tolerance (default from config)")
	cmd.Flags().BoolVar(&failingOnly, "failing", false, "Only show labels with misclassified screenshots")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the report as JSON")
	return cmd
}

type auditJSON struct {
	audit.Report
	Totals audit.Totals `json:"totals"`
}

// printAuditReport renders results with a footer of corpus-wide totals,
// which may cover more labels than the rows when --failing is set.
func printAuditReport(out io.Writer, report audit.Report, totals audit.Totals) {
	if totals.Labels == 0 {
		fmt.Fprintln(out, "No labels to audit (labels need both annotations and a signature)")
		return
	}
	if len(report.Results) == 0 {
		fmt.Fprintf(out, "All %d labels classify every screenshot correctly at tolerance %d\n", totals.Labels, report.Tolerance)
		return
	}

	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		rows = append(rows, []string{
			res.Label,
			strconv.Itoa(res.Correct),
			strconv.Itoa(res.Incorrect),
			formatPercent(res.Percent),
			strings.Join(res.FailedImages, ", "),
		})
	}
	footer := []string{
		"Total",
		strconv.Itoa(totals.Correct),
		strconv.Itoa(totals.Incorrect),
		formatPercent(totals.Percent),
		"",
	}

	fmt.Fprintf(out, "Tolerance: %d\n", report.Tolerance)
	fmt.Fprint(out, renderTableWithFooter(
		[]string{"Label", "Correct", "Incorrect", "Percent", "Failed Images"},
		rows,
		footer,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	fmt.Fprintln(out)
}
