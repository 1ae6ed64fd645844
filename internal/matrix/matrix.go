// Package matrix expands the operator catalog into the ordered case list of
// a run.
package matrix

import (
	"errors"
	"fmt"
	"path"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/catalog"
	"github.com/programme-lv/kernval/internal/emulator"
)

var ErrDuplicateCase = errors.New("duplicate case id")

// Build expands every operator that supports board and dtype, in catalog
// order, then vlen ascending, then variant in declaration order.
//
// Operators with a vlen axis take the board's vlen set and produce nothing
// on a scalar board. The result is identical for identical inputs.
func Build(cat *catalog.Catalog, board emulator.Board, dtype internal.DType) ([]internal.TestCase, error) {
	if !dtype.Valid() {
		return nil, fmt.Errorf("invalid dtype %d", dtype)
	}

	var ops []catalog.Operator
	total := 0
	for _, op := range cat.Operators() {
		if op.SupportsDType(dtype) && op.SupportsBoard(board.Name) {
			ops = append(ops, op)
			total += Count(op, board)
		}
	}

	cases := make([]internal.TestCase, 0, total)
	ids := mapset.NewThreadUnsafeSetWithSize[string](total)

	for _, op := range ops {

		vlens := []internal.VLen{internal.VLenNone}
		if op.VLenAxis {
			vlens = board.MatrixVLens()
		}
		variants := op.Variants
		if len(variants) == 0 {
			variants = []string{""}
		}

		for _, vlen := range vlens {
			for _, variant := range variants {
				tc := internal.NewTestCase(op.Name, dtype, vlen, variant)
				if !ids.Add(tc.ID) {
					return nil, fmt.Errorf("%w: %s", ErrDuplicateCase, tc.ID)
				}
				cases = append(cases, tc)
			}
		}
	}
	return cases, nil
}

// Filter keeps the cases whose id or operator matches one of the glob
// patterns, preserving order. No patterns keeps everything.
func Filter(cases []internal.TestCase, patterns []string) ([]internal.TestCase, error) {
	if len(patterns) == 0 {
		return cases, nil
	}
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("bad filter pattern %q: %w", p, err)
		}
	}

	out := make([]internal.TestCase, 0, len(cases))
	for _, tc := range cases {
		for _, p := range patterns {
			idOk, _ := path.Match(p, tc.ID)
			opOk, _ := path.Match(p, tc.Operator)
			if idOk || opOk {
				out = append(out, tc)
				break
			}
		}
	}
	return out, nil
}

// Count is V*L for a vlen-axis operator and V otherwise, with V at least 1.
func Count(op catalog.Operator, board emulator.Board) int {
	v := max(len(op.Variants), 1)
	if !op.VLenAxis {
		return v
	}
	return v * len(board.MatrixVLens())
}
