// Package report persists run reports as JSON, zstd-compressed when the
// file name ends in ".zst".
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/programme-lv/kernval/api"
)

const zstdExt = ".zst"

func compressed(path string) bool {
	return strings.HasSuffix(path, zstdExt)
}

// Write encodes r into w, compressing the stream when compress is set.
func Write(w io.Writer, r api.RunReport, compress bool) error {
	if !compress {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := json.NewEncoder(zw).Encode(r); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return zw.Close()
}

// Read decodes a report written by Write.
func Read(rd io.Reader, compress bool) (api.RunReport, error) {
	var r api.RunReport
	if compress {
		zr, err := zstd.NewReader(rd)
		if err != nil {
			return r, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer zr.Close()
		rd = zr
	}
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return r, fmt.Errorf("failed to decode report: %w", err)
	}
	return r, nil
}

// Save writes r to path, creating parent directories. The file is written
// under a temporary name and renamed into place.
func Save(path string, r api.RunReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, r, compressed(path)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move report into place: %w", err)
	}
	return nil
}

func Load(path string) (api.RunReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return api.RunReport{}, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()
	return Read(f, compressed(path))
}

// DefaultName is the file name a run's report gets inside the report
// directory.
func DefaultName(runID string) string {
	return "run-" + runID + ".json" + zstdExt
}
