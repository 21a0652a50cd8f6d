package header

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-i2p/boardcfg/lib/resolver"
	"github.com/go-i2p/logger"
	"github.com/google/renameio/v2"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// FilePermissions is the mode of generated headers.
const FilePermissions = 0o644

// WriteFile renders the header for board and atomically replaces path with it.
// The file is left untouched when its content would not change; changed
// reports whether a write happened.
func WriteFile(path, board string, r *resolver.Resolved, opts Options) (changed bool, err error) {
	data, err := Bytes(board, r, opts)
	if err != nil {
		return false, oops.In("header").With("board", board).Wrapf(err, "render header")
	}

	existing, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(existing, data):
		log.WithFields(logger.Fields{
			"at":     "header.WriteFile",
			"reason": "unchanged",
			"path":   path,
		}).Debug("header up to date")
		return false, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, oops.In("header").With("path", path).Wrapf(err, "read existing header")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, oops.In("header").With("path", path).Wrapf(err, "create output directory")
	}

	// renameio handles temp file creation, fsync and atomic rename
	pending, err := renameio.NewPendingFile(path, renameio.WithStaticPermissions(FilePermissions))
	if err != nil {
		return false, oops.In("header").With("path", path).Wrapf(err, "create pending header")
	}
	defer func() {
		if cerr := pending.Cleanup(); cerr != nil {
			log.WithError(cerr).Debug("cleanup pending header")
		}
	}()

	if _, err := pending.Write(data); err != nil {
		return false, oops.In("header").With("path", path).Wrapf(err, "write header")
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return false, oops.In("header").With("path", path).Wrapf(err, "replace header")
	}

	log.WithFields(logger.Fields{
		"at":     "header.WriteFile",
		"reason": "written",
		"path":   path,
		"board":  board,
		"digest": r.DigestHex(),
	}).Info("header written")
	return true, nil
}
