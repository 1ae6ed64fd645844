package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/emulator"
	"github.com/urfave/cli/v3"
)

func boardsCommand() *cli.Command {
	return &cli.Command{
		Name:   "boards",
		Usage:  "print every board with its resolved emulator command lines",
		Action: boardsAction,
	}
}

func boardsAction(ctx context.Context, cmd *cli.Command) error {
	cat, _, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	outputBoards(os.Stdout, cat.Resolver())
	return nil
}

func outputBoards(out io.Writer, resolver *emulator.Resolver) {
	t := newTable(out, table.Row{"Board", "Vector", "VLen", "Emulator", "Library"})
	for _, b := range resolver.Boards() {
		vlens := b.MatrixVLens()
		if len(vlens) == 0 {
			vlens = []internal.VLen{internal.VLenNone}
		}
		for _, v := range vlens {
			cfg, err := resolver.Resolve(b.Name, v)
			var line string
			if err != nil {
				line = "error: " + err.Error()
			} else {
				line = emulator.CommandLine(cfg)
			}
			t.AppendRow(table.Row{b.Name, b.Vector, v, line, orDash(b.LibraryTarget)})
		}
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Name: "Board", AutoMerge: true}})
	t.Render()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
