package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/catalog"
	"github.com/programme-lv/kernval/internal/matrix"
	"github.com/urfave/cli/v3"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "print the case matrix for a board",
		Flags: append(boardFlags(), &cli.BoolFlag{
			Name:  "count",
			Usage: "only print the number of cases",
		}),
		Action: listAction,
	}
}

func listAction(ctx context.Context, cmd *cli.Command) error {
	cat, _, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	dtype := internal.DType(cmd.Int("dtype"))
	if !dtype.Valid() {
		return fmt.Errorf("dtype %d must be one of 8, 16, 32", dtype)
	}
	board, err := cat.Resolver().Board(cmd.String("board"))
	if err != nil {
		return err
	}

	cases, err := matrix.Build(cat, board, dtype)
	if err != nil {
		return err
	}
	cases, err = matrix.Filter(cases, cmd.StringSlice("only"))
	if err != nil {
		return err
	}

	if cmd.Bool("count") {
		fmt.Println(len(cases))
		return nil
	}

	return outputCases(os.Stdout, cat, cases)
}

func outputCases(out io.Writer, cat *catalog.Catalog, cases []internal.TestCase) error {
	t := newTable(out, table.Row{"ID", "Operator", "VLen", "Variant", "Binary"})
	for _, tc := range cases {
		op, err := cat.Lookup(tc.Operator)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{tc.ID, tc.Operator, tc.VLen, orDash(tc.Variant), op.BinaryName(tc.DType)})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(cases)})
	t.Render()
	return nil
}
