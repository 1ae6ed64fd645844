package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/programme-lv/kernval/internal/catalog"
	"github.com/programme-lv/kernval/internal/xdg"
	"github.com/urfave/cli/v3"
)

// loadCatalog merges the --catalog file, or the user catalog when present,
// over the built-in tables.
func loadCatalog(cmd *cli.Command) (*catalog.Catalog, string, error) {
	path := cmd.String("catalog")
	if path == "" {
		user := xdg.NewXDGDirs().CatalogFile()
		if _, err := os.Stat(user); errors.Is(err, fs.ErrNotExist) {
			return catalog.Default(), "", nil
		}
		path = user
	}
	c, err := catalog.LoadFile(path)
	if err != nil {
		return nil, "", err
	}
	slog.Debug("loaded catalog", "path", path, "operators", len(c.Operators()))
	return c, path, nil
}
