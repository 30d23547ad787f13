package artifact

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/matzehuels/mavenbuild/pkg/errors"
)

// Walk recursively visits every regular file under root and indexes the
// artifacts it finds.
//
// Directories are visited in lexical order. When two files of the same kind
// share a logical key the one visited last is kept and the replacement is
// logged. Unreadable subdirectories are logged and skipped; only a failure on
// root itself aborts the walk.
func Walk(ctx context.Context, fsys afero.Fs, root string, logger *log.Logger) (*Index, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	root = filepath.Clean(root)
	idx := newIndex()

	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "walk %s", root)
			}
			logger.Warn("unreadablePath", "path", path, "err", err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		kind, ok := KindOf(info.Name())
		if !ok {
			return nil
		}
		key, ok := DeriveKey(info.Name(), kind)
		if !ok {
			logger.Warn("unkeyableArtifact", "kind", kind, "path", path)
			idx.unkeyable = append(idx.unkeyable, Unkeyable{Path: path, Kind: kind})
			return nil
		}

		f := File{Path: path, Kind: kind, Scope: scopeOf(root, path), Key: key}
		if prev, replaced := idx.put(f); replaced {
			logger.Warn("duplicateArtifact", "kind", kind, "key", f.LogicalKey(), "kept", path, "dropped", prev.Path)
		} else {
			logger.Debug("artifactFound", "kind", kind, "key", f.LogicalKey(), "path", path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// scopeOf returns the slash-separated directory of path relative to root,
// or "" for files directly under root.
func scopeOf(root, path string) string {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}
