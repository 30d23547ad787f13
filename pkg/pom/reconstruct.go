package pom

import (
	"bytes"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/matzehuels/mavenbuild/pkg/errors"
)

// Reconstruct rewrites the manifest at path in place and returns the fields
// that were carried over.
//
// The replacement is written to a temporary file in the same directory and
// renamed over the original, so a failed rewrite leaves the original intact.
func Reconstruct(fsys afero.Fs, path string, bundled []string, opts RenderOptions) (*Fields, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifest, err, "read %s", path)
	}
	fields, err := Parse(Decode(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifest, err, "parse %s", path)
	}

	if err := write(fsys, path, fields, bundled, opts); err != nil {
		return nil, err
	}
	return fields, nil
}

// Synthesize writes the default manifest at path for an archive that carried
// none. It reports false without touching the file when path already exists.
func Synthesize(fsys afero.Fs, path string, bundled []string, opts RenderOptions) (bool, error) {
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeManifest, err, "stat %s", path)
	}
	if exists {
		return false, nil
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, errors.Wrap(errors.ErrCodeManifest, err, "create %s", filepath.Dir(path))
	}
	if err := write(fsys, path, &Fields{}, bundled, opts); err != nil {
		return false, err
	}
	return true, nil
}

// write renders fields into a temporary file next to path and renames it
// over path.
func write(fsys afero.Fs, path string, fields *Fields, bundled []string, opts RenderOptions) error {
	tmp, err := afero.TempFile(fsys, filepath.Dir(path), ".pom-*.xml")
	if err != nil {
		return errors.Wrap(errors.ErrCodeManifest, err, "create temp file for %s", path)
	}
	tmpName := tmp.Name()

	err = Render(tmp, fields, bundled, opts)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = fsys.Rename(tmpName, path)
	}
	if err != nil {
		fsys.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeManifest, err, "write %s", path)
	}
	return nil
}

var encodingAttr = regexp.MustCompile(`^\s*<\?xml[^>]*\sencoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

// Decode returns a UTF-8 reader over a manifest. A byte order mark wins over
// the encoding named in the XML declaration; unknown encodings are read as
// UTF-8.
func Decode(data []byte) io.Reader {
	var enc encoding.Encoding = unicode.UTF8
	if m := encodingAttr.FindSubmatch(data[:min(len(data), 512)]); m != nil {
		name := strings.ToLower(string(m[1]))
		if e, err := htmlindex.Get(name); err == nil {
			enc = e
		}
	}
	return transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(enc.NewDecoder()))
}
