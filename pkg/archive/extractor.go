package archive

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/matzehuels/mavenbuild/pkg/artifact"
	"github.com/matzehuels/mavenbuild/pkg/errors"
)

// DefaultBufferSize is the size of the copy buffer used for every entry.
const DefaultBufferSize = 32 * 1024

// Layout of a module directory.
const (
	ManifestName  = "pom.xml"
	JavaSourceDir = "src/main/java"
	WebSourceDir  = "src/main/webapp"
)

// Manifest describes the pom.xml left in a module directory after a war or
// jar has been unpacked.
type Manifest struct {
	Path    string        // <module>/pom.xml
	Archive string        // archive the manifest came from
	Kind    artifact.Kind // KindWar or KindJar
	Present bool          // the archive contained a pom.xml

	// Bundled lists the .jar entries of a war, relative to src/main/webapp.
	// It is nil for jars.
	Bundled []string
}

// ManifestFunc is called after each war or jar has been unpacked.
type ManifestFunc func(ctx context.Context, m Manifest)

// Nested records the outcome of a nested archive that failed.
type Nested struct {
	Kind  artifact.Kind
	Entry string
	Err   error
}

// Result summarizes one extraction, nested archives included.
type Result struct {
	Files   int      // regular files written
	Dirs    int      // directory entries created
	Bytes   int64    // bytes written
	Unsafe  []string // entries skipped because they would escape the module
	Nested  []Nested // nested archives that failed
	Visited int      // nested archives unpacked
}

// Options configures an Extractor.
type Options struct {
	// BufferSize is the copy buffer size (default DefaultBufferSize).
	BufferSize int

	// Logger receives per-archive diagnostics. Nil discards them.
	Logger *log.Logger
}

// Extractor unpacks archives from and to an afero filesystem.
// It is safe for concurrent use as long as concurrent calls target
// different module directories.
type Extractor struct {
	fs         afero.Fs
	bufferSize int
	logger     *log.Logger
}

// NewExtractor creates an extractor working on fsys.
func NewExtractor(fsys afero.Fs, opts Options) *Extractor {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Extractor{fs: fsys, bufferSize: opts.BufferSize, logger: opts.Logger}
}

// Extract unpacks the archive src of the given kind into moduleDir.
// onManifest may be nil.
func (e *Extractor) Extract(ctx context.Context, kind artifact.Kind, src, moduleDir string, onManifest ManifestFunc) (*Result, error) {
	x := &extraction{
		Extractor:  e,
		buf:        make([]byte, e.bufferSize),
		res:        &Result{},
		onManifest: onManifest,
	}
	if err := x.extract(ctx, kind, src, moduleDir); err != nil {
		return x.res, err
	}
	return x.res, nil
}

// extraction is the state of one top-level Extract call.
type extraction struct {
	*Extractor
	buf        []byte
	res        *Result
	onManifest ManifestFunc
}

func (x *extraction) extract(ctx context.Context, kind artifact.Kind, src, moduleDir string) error {
	switch kind {
	case artifact.KindDar:
		x.logger.Info("extractingDarFile", "dar", filepath.Base(src))
		return x.unwrap(ctx, src, moduleDir, artifact.KindEar)
	case artifact.KindEar:
		x.logger.Info("extractingEarFile", "ear", filepath.Base(src))
		return x.unwrap(ctx, src, moduleDir, artifact.KindWar)
	case artifact.KindWar:
		x.logger.Info("extractingWarFile", "war", filepath.Base(src))
		return x.unpack(ctx, kind, src, moduleDir, WebSourceDir)
	case artifact.KindJar:
		x.logger.Debug("extractingJarFile", "jar", filepath.Base(src))
		return x.unpack(ctx, kind, src, moduleDir, JavaSourceDir)
	default:
		return errors.New(errors.ErrCodeUnsupported, "cannot extract %s archives", kind)
	}
}

// open opens a ZIP archive on the extractor's filesystem.
func (x *extraction) open(src string) (*zip.Reader, io.Closer, error) {
	f, err := x.fs.Open(src)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeArchive, err, "open %s", src)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(errors.ErrCodeArchive, err, "stat %s", src)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(errors.ErrCodeArchive, err, "read %s", src)
	}
	return zr, f, nil
}

// unwrap handles dar and ear archives: every entry of the inner kind is
// written next to the module, unpacked recursively, then removed.
func (x *extraction) unwrap(ctx context.Context, src, moduleDir string, inner artifact.Kind) error {
	zr, closer, err := x.open(src)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := x.fs.MkdirAll(moduleDir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeArchive, err, "create %s", moduleDir)
	}

	for _, zf := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !strings.HasSuffix(strings.ToLower(zf.Name), inner.Suffix()) {
			continue
		}
		if !x.safe(zf.Name, src) {
			continue
		}

		tmp := filepath.Join(moduleDir, path.Base(zf.Name))
		if err := x.copyEntry(zf, tmp); err != nil {
			return errors.Wrap(errors.ErrCodeArchive, err, "write %s from %s", zf.Name, src)
		}
		x.res.Visited++

		if err := x.extract(ctx, inner, tmp, moduleDir); err != nil {
			if ctx.Err() != nil {
				x.fs.Remove(tmp)
				return err
			}
			x.logger.Error("nestedArchiveFailed", "kind", inner, "entry", zf.Name, "err", err)
			x.res.Nested = append(x.res.Nested, Nested{Kind: inner, Entry: zf.Name, Err: err})
		}
		if err := x.fs.Remove(tmp); err != nil {
			x.logger.Warn("removeNestedArchiveFailed", "path", tmp, "err", err)
		}
	}
	return nil
}

// unpack handles war and jar archives: directories are recreated and files
// written under moduleDir/sourceDir, except pom.xml which goes to the module
// root.
func (x *extraction) unpack(ctx context.Context, kind artifact.Kind, src, moduleDir, sourceDir string) error {
	zr, closer, err := x.open(src)
	if err != nil {
		return err
	}
	defer closer.Close()

	root := filepath.Join(moduleDir, filepath.FromSlash(sourceDir))
	manifest := Manifest{
		Path:    filepath.Join(moduleDir, ManifestName),
		Archive: src,
		Kind:    kind,
	}
	if kind == artifact.KindWar {
		manifest.Bundled = []string{}
	}

	for _, zf := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !x.safe(zf.Name, src) {
			continue
		}

		target := filepath.Join(root, filepath.FromSlash(zf.Name))
		if strings.HasSuffix(zf.Name, "/") {
			if err := x.fs.MkdirAll(target, 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeArchive, err, "create %s", target)
			}
			x.res.Dirs++
			continue
		}

		if path.Base(zf.Name) == ManifestName {
			target = manifest.Path
			manifest.Present = true
		} else if kind == artifact.KindWar && strings.HasSuffix(strings.ToLower(zf.Name), artifact.KindJar.Suffix()) {
			manifest.Bundled = append(manifest.Bundled, zf.Name)
		}

		if err := x.copyEntry(zf, target); err != nil {
			return errors.Wrap(errors.ErrCodeArchive, err, "write %s from %s", zf.Name, src)
		}
	}

	if x.onManifest != nil {
		x.onManifest(ctx, manifest)
	}
	return nil
}

// safe reports whether an entry may be joined onto a destination directory.
func (x *extraction) safe(name, src string) bool {
	if err := errors.ValidateEntryPath(name); err != nil {
		x.logger.Warn("unsafeEntry", "archive", filepath.Base(src), "entry", name, "err", err)
		x.res.Unsafe = append(x.res.Unsafe, name)
		return false
	}
	return true
}

// copyEntry streams one entry to target through the shared buffer.
func (x *extraction) copyEntry(zf *zip.File, target string) error {
	if err := x.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	r, err := zf.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := x.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	n, err := io.CopyBuffer(w, r, x.buf)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	x.res.Files++
	x.res.Bytes += n
	return nil
}
