package archive

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/matzehuels/mavenbuild/pkg/artifact"
	"github.com/matzehuels/mavenbuild/pkg/errors"
)

type entry struct {
	name string
	body string
}

// buildZip returns an archive holding entries in order. Names ending in "/"
// become directory entries.
func buildZip(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("create %s: %v", e.name, err)
		}
		if e.body != "" {
			if _, err := w.Write([]byte(e.body)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func put(t *testing.T, fsys afero.Fs, path string, data []byte) {
	t.Helper()
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func collect(ms *[]Manifest) ManifestFunc {
	return func(_ context.Context, m Manifest) { *ms = append(*ms, m) }
}

func sampleWar(t *testing.T) []byte {
	return buildZip(t,
		entry{"css/", ""},
		entry{"index.jsp", "<html/>"},
		entry{"WEB-INF/web.xml", "<web-app/>"},
		entry{"WEB-INF/lib/foo-1.2.jar", "jar"},
		entry{"META-INF/maven/com.acme/web/pom.xml", "<project/>"},
	)
}

func TestExtractWar(t *testing.T) {
	fsys := afero.NewMemMapFs()
	put(t, fsys, "/in/web-1.0.war", sampleWar(t))

	var manifests []Manifest
	res, err := NewExtractor(fsys, Options{}).Extract(context.Background(), artifact.KindWar, "/in/web-1.0.war", "/out/web", collect(&manifests))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if got := readFile(t, fsys, "/out/web/src/main/webapp/index.jsp"); got != "<html/>" {
		t.Errorf("index.jsp = %q", got)
	}
	if got := readFile(t, fsys, "/out/web/pom.xml"); got != "<project/>" {
		t.Errorf("pom.xml = %q", got)
	}
	if ok, _ := afero.Exists(fsys, "/out/web/src/main/webapp/WEB-INF/lib/foo-1.2.jar"); !ok {
		t.Error("bundled jar not written")
	}
	if ok, _ := afero.DirExists(fsys, "/out/web/src/main/webapp/css"); !ok {
		t.Error("directory entry not created")
	}
	if ok, _ := afero.Exists(fsys, "/out/web/src/main/webapp/META-INF/maven/com.acme/web/pom.xml"); ok {
		t.Error("pom.xml should be redirected to the module root")
	}

	if res.Files != 4 || res.Dirs != 1 {
		t.Errorf("Files, Dirs = %d, %d; want 4, 1", res.Files, res.Dirs)
	}
	if res.Bytes != int64(len("<html/>")+len("<web-app/>")+len("jar")+len("<project/>")) {
		t.Errorf("Bytes = %d", res.Bytes)
	}

	want := []Manifest{{
		Path:    "/out/web/pom.xml",
		Archive: "/in/web-1.0.war",
		Kind:    artifact.KindWar,
		Present: true,
		Bundled: []string{"WEB-INF/lib/foo-1.2.jar"},
	}}
	if diff := cmp.Diff(want, manifests); diff != "" {
		t.Errorf("manifests mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractJar(t *testing.T) {
	fsys := afero.NewMemMapFs()
	put(t, fsys, "/in/lib-2.0.jar", buildZip(t,
		entry{"com/acme/Lib.class", "cafebabe"},
		entry{"META-INF/MANIFEST.MF", "Manifest-Version: 1.0"},
	))

	var manifests []Manifest
	_, err := NewExtractor(fsys, Options{BufferSize: 4}).Extract(context.Background(), artifact.KindJar, "/in/lib-2.0.jar", "/out/lib", collect(&manifests))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if got := readFile(t, fsys, "/out/lib/src/main/java/com/acme/Lib.class"); got != "cafebabe" {
		t.Errorf("Lib.class = %q", got)
	}
	if len(manifests) != 1 {
		t.Fatalf("got %d manifests, want 1", len(manifests))
	}
	if manifests[0].Present {
		t.Error("jar without pom.xml reported a manifest")
	}
	if manifests[0].Bundled != nil {
		t.Errorf("jar Bundled = %v, want nil", manifests[0].Bundled)
	}
}

func TestExtractDarRecursesIntoEarAndWar(t *testing.T) {
	fsys := afero.NewMemMapFs()
	ear := buildZip(t,
		entry{"web-1.0.war", string(sampleWar(t))},
		entry{"lib/util-1.jar", "ignored"},
		entry{"META-INF/application.xml", "ignored"},
	)
	put(t, fsys, "/in/app-1.0.dar", buildZip(t,
		entry{"readme.txt", "ignored"},
		entry{"deploy/app-1.0.ear", string(ear)},
	))

	var manifests []Manifest
	res, err := NewExtractor(fsys, Options{}).Extract(context.Background(), artifact.KindDar, "/in/app-1.0.dar", "/out/app", collect(&manifests))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if got := readFile(t, fsys, "/out/app/src/main/webapp/index.jsp"); got != "<html/>" {
		t.Errorf("index.jsp = %q", got)
	}
	for _, p := range []string{"/out/app/app-1.0.ear", "/out/app/web-1.0.war", "/out/app/readme.txt", "/out/app/lib/util-1.jar"} {
		if ok, _ := afero.Exists(fsys, p); ok {
			t.Errorf("%s should not exist", p)
		}
	}
	if res.Visited != 2 {
		t.Errorf("Visited = %d, want 2", res.Visited)
	}
	if len(manifests) != 1 || manifests[0].Path != "/out/app/pom.xml" {
		t.Errorf("manifests = %+v", manifests)
	}
}

func TestExtractSkipsUnsafeEntries(t *testing.T) {
	fsys := afero.NewMemMapFs()
	put(t, fsys, "/in/evil-1.jar", buildZip(t,
		entry{"../../evil.txt", "pwned"},
		entry{"/abs.txt", "pwned"},
		entry{"ok.txt", "fine"},
	))

	res, err := NewExtractor(fsys, Options{}).Extract(context.Background(), artifact.KindJar, "/in/evil-1.jar", "/out/evil", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if diff := cmp.Diff([]string{"../../evil.txt", "/abs.txt"}, res.Unsafe); diff != "" {
		t.Errorf("Unsafe mismatch (-want +got):\n%s", diff)
	}
	if ok, _ := afero.Exists(fsys, "/out/evil.txt"); ok {
		t.Error("entry escaped the module directory")
	}
	if got := readFile(t, fsys, "/out/evil/src/main/java/ok.txt"); got != "fine" {
		t.Errorf("ok.txt = %q", got)
	}
}

func TestExtractCorruptArchive(t *testing.T) {
	fsys := afero.NewMemMapFs()
	put(t, fsys, "/in/broken-1.war", []byte("not a zip"))

	_, err := NewExtractor(fsys, Options{}).Extract(context.Background(), artifact.KindWar, "/in/broken-1.war", "/out/broken", nil)
	if !errors.Is(err, errors.ErrCodeArchive) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeArchive)
	}
}

func TestExtractNestedFailureKeepsGoing(t *testing.T) {
	fsys := afero.NewMemMapFs()
	put(t, fsys, "/in/app-1.ear", buildZip(t,
		entry{"broken-1.war", "not a zip"},
		entry{"web-1.0.war", string(sampleWar(t))},
	))

	res, err := NewExtractor(fsys, Options{}).Extract(context.Background(), artifact.KindEar, "/in/app-1.ear", "/out/app", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Nested) != 1 || res.Nested[0].Entry != "broken-1.war" {
		t.Fatalf("Nested = %+v", res.Nested)
	}
	if !errors.Is(res.Nested[0].Err, errors.ErrCodeArchive) {
		t.Errorf("nested err = %v", res.Nested[0].Err)
	}
	if ok, _ := afero.Exists(fsys, "/out/app/src/main/webapp/index.jsp"); !ok {
		t.Error("sibling war was not extracted")
	}
	if ok, _ := afero.Exists(fsys, "/out/app/broken-1.war"); ok {
		t.Error("failed nested archive was not removed")
	}
}

func TestExtractUnsupportedKind(t *testing.T) {
	_, err := NewExtractor(afero.NewMemMapFs(), Options{}).Extract(context.Background(), artifact.KindPOM, "/in/a-1.pom.xml", "/out/a", nil)
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeUnsupported)
	}
}

func TestExtractCanceled(t *testing.T) {
	fsys := afero.NewMemMapFs()
	put(t, fsys, "/in/web-1.0.war", sampleWar(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := NewExtractor(fsys, Options{}).Extract(ctx, artifact.KindWar, "/in/web-1.0.war", "/out/web", func(context.Context, Manifest) { called = true })
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if called {
		t.Error("manifest callback ran after cancellation")
	}
}
