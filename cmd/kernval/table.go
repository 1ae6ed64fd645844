package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
)

// newTable renders to out, colored only when out is a terminal. A nil
// header leaves the table without one.
func newTable(out io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	if header != nil {
		t.AppendHeader(header)
	}
	if colored(out) {
		t.SetStyle(table.StyleColoredDark)
	} else {
		t.SetStyle(table.StyleLight)
	}
	return t
}

func colored(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && !color.NoColor && isatty.IsTerminal(f.Fd())
}
