package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/programme-lv/kernval/api"
	"github.com/programme-lv/kernval/internal/report"
	"github.com/programme-lv/kernval/internal/xdg"
	"github.com/urfave/cli/v3"
)

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "inspect saved run reports",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "print the summary and failing cases of a saved report",
				ArgsUsage: "<path or run id>",
				Action:    reportShowAction,
			},
		},
	}
}

func reportShowAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("expected exactly one report path or run id")
	}
	r, err := report.Load(reportPath(cmd.Args().First()))
	if err != nil {
		return err
	}
	outputReport(os.Stdout, r)
	return nil
}

// reportPath treats arg as a run id when no such file exists.
func reportPath(arg string) string {
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	return filepath.Join(xdg.NewXDGDirs().ReportDir(), report.DefaultName(arg))
}

func outputReport(out io.Writer, r api.RunReport) {
	summary := newTable(out, nil)
	summary.AppendRows([]table.Row{
		{"Run", r.RunID},
		{"Board", r.Board},
		{"DType", r.DType},
		{"Accuracy", r.Accuracy},
		{"Status", r.Status},
		{"Cases", fmt.Sprintf("%d passed, %d failed, %d total", r.Passed, r.Failed, r.Total)},
		{"Duration", (time.Duration(r.TotalTimeMs) * time.Millisecond).String()},
	})
	if r.PlanID != "" {
		summary.AppendRow(table.Row{"Plan", r.PlanID})
	}
	if r.Compilation.Error != nil {
		summary.AppendRow(table.Row{"Build", *r.Compilation.Error})
	}
	if r.DegradedReason != nil {
		summary.AppendRow(table.Row{"Degraded", *r.DegradedReason})
	}
	summary.Render()

	if r.Failed == 0 {
		return
	}
	failed := newTable(out, table.Row{"ID", "Failure", "Message"})
	for _, c := range r.Cases {
		if !c.Passed {
			failed.AppendRow(table.Row{c.ID, c.Failure, c.Message})
		}
	}
	failed.Render()
}
