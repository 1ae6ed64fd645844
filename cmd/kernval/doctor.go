package main

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/programme-lv/kernval/internal/emulator"
	"github.com/programme-lv/kernval/internal/environment"
	"github.com/urfave/cli/v3"
)

type health int

const (
	healthOK health = iota
	healthWarn
	healthError
)

func (h health) String() string {
	switch h {
	case healthOK:
		return "OKAY"
	case healthWarn:
		return "WARN"
	}
	return "ERROR"
}

func (h health) color() text.Color {
	switch h {
	case healthOK:
		return text.FgHiGreen
	case healthWarn:
		return text.FgHiYellow
	}
	return text.FgHiRed
}

type feedbackRow struct {
	unit    string
	health  health
	message string
}

func doctorCommand() *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "check that the emulators, interpreter and kernel sources are available",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "board",
				Usage:   "only check this board's emulator",
				Sources: cli.EnvVars("KERNVAL_BOARD"),
			},
			&cli.StringFlag{
				Name:    "interpreter",
				Value:   environment.DefaultInterpreter,
				Sources: cli.EnvVars("KERNVAL_INTERPRETER"),
			},
		},
		Action: doctorAction,
	}
}

func doctorAction(ctx context.Context, cmd *cli.Command) error {
	cat, _, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	resolver := cat.Resolver()

	var boards []emulator.Board
	if name := cmd.String("board"); name != "" {
		b, err := resolver.Board(name)
		if err != nil {
			return err
		}
		boards = []emulator.Board{b}
	} else {
		boards = resolver.Boards()
	}

	srcDir := cmd.String("src-dir")
	feedback := []feedbackRow{
		lookPath("interpreter", cmd.String("interpreter"), healthError),
		lookPath("make", "make", healthWarn),
		fileExists("Makefile", filepath.Join(srcDir, "Makefile"), healthWarn),
		fileExists("oracle scripts", filepath.Join(srcDir, "tests"), healthError),
	}
	for _, b := range boards {
		unit := "board " + b.Name
		if b.BaseCommand == "" {
			feedback = append(feedback, feedbackRow{unit: unit, health: healthOK, message: "runs natively"})
			continue
		}
		feedback = append(feedback, lookPath(unit, b.BaseCommand, healthWarn))
	}

	outputFeedback(os.Stdout, feedback)
	for _, row := range feedback {
		if row.health == healthError {
			return cli.Exit("", 1)
		}
	}
	return nil
}

func lookPath(unit, name string, missing health) feedbackRow {
	path, err := exec.LookPath(name)
	if err != nil {
		return feedbackRow{unit: unit, health: missing, message: err.Error()}
	}
	return feedbackRow{unit: unit, health: healthOK, message: path}
}

func fileExists(unit, path string, missing health) feedbackRow {
	if _, err := os.Stat(path); err != nil {
		return feedbackRow{unit: unit, health: missing, message: err.Error()}
	}
	return feedbackRow{unit: unit, health: healthOK, message: path}
}

func outputFeedback(out io.Writer, feedback []feedbackRow) {
	t := newTable(out, table.Row{"Unit", "Health", "Message"})
	for _, row := range feedback {
		t.AppendRow(table.Row{row.unit, row.health, row.message})
	}
	healthColumn := table.ColumnConfig{Name: "Health", Align: text.AlignCenter}
	if colored(out) {
		healthColumn.Transformer = func(v interface{}) string {
			h, ok := v.(health)
			if !ok {
				return ""
			}
			return h.color().Sprint(h)
		}
	}
	t.SetColumnConfigs([]table.ColumnConfig{healthColumn})
	t.Render()
}
