package embedded

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-i2p/boardcfg/lib/board"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// CatalogFS embeds the built-in catalog at compile time.
//
//go:embed all:catalog
var CatalogFS embed.FS

const root = "catalog"

// Catalog returns the built-in catalog as a filesystem rooted at the
// directory holding common.yaml.
func Catalog() (fs.FS, error) {
	return fs.Sub(CatalogFS, root)
}

// Open loads the built-in catalog.
func Open() (*board.Catalog, error) {
	fsys, err := Catalog()
	if err != nil {
		return nil, err
	}
	return board.Open(fsys)
}

// Extract copies the built-in catalog into destDir, mirroring its layout.
// Existing files are kept unless overwrite is set; the returned slice lists
// the files that were written, relative to destDir.
func Extract(destDir string, overwrite bool) ([]string, error) {
	var written []string
	err := fs.WalkDir(CatalogFS, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, filepath.FromSlash(path))
		if err != nil {
			return err
		}
		destPath := filepath.Join(destDir, relPath)

		if d.IsDir() {
			return os.MkdirAll(destPath, 0o755)
		}

		if !overwrite {
			if _, err := os.Stat(destPath); err == nil {
				log.WithFields(logger.Fields{
					"at":     "embedded.Extract",
					"reason": "exists",
					"path":   destPath,
				}).Debug("keeping existing catalog file")
				return nil
			} else if !errors.Is(err, fs.ErrNotExist) {
				return err
			}
		}

		data, err := CatalogFS.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(destPath, data, 0o644); err != nil {
			return err
		}
		written = append(written, relPath)
		return nil
	})
	if err != nil {
		return written, oops.In("embedded").With("dest", destDir).Wrapf(err, "extract catalog")
	}

	log.WithFields(logger.Fields{
		"at":     "embedded.Extract",
		"reason": "extracted",
		"dest":   destDir,
		"files":  len(written),
	}).Info("built-in catalog extracted")
	return written, nil
}
