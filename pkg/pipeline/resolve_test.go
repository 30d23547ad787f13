package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/mavenbuild/pkg/artifact"
)

func file(kind artifact.Kind, scope, name, version string) artifact.File {
	p := "/drop/"
	if scope != "" {
		p += scope + "/"
	}
	return artifact.File{
		Path:  p + name + "-" + version + kind.Suffix(),
		Kind:  kind,
		Scope: scope,
		Key:   artifact.Key{Name: name, Version: version},
	}
}

func TestResolve(t *testing.T) {
	dar := file(artifact.KindDar, "", "app", "1.0")
	appJar := file(artifact.KindJar, "", "app", "1.0")
	appEar := file(artifact.KindEar, "", "app", "1.0")
	appWar := file(artifact.KindWar, "", "app", "1.0")
	shopEar := file(artifact.KindEar, "r1", "shop", "2")
	shopWar := file(artifact.KindWar, "r1", "shop", "2")
	webWar := file(artifact.KindWar, "", "web", "3")
	webJar := file(artifact.KindJar, "", "web", "3")
	libJar := file(artifact.KindJar, "", "lib", "2.0")
	libPOM := file(artifact.KindPOM, "", "lib", "2.0")
	orphanPOM := file(artifact.KindPOM, "", "gone", "1")

	idx := artifact.NewIndex(dar, appJar, appEar, appWar, shopEar, shopWar, webWar, webJar, libJar, libPOM, orphanPOM)
	plan := Resolve(idx)

	want := []Step{
		{Pass: artifact.KindDar, Primary: dar, Merge: &appJar, Shadowed: []artifact.File{appEar, appWar}},
		{Pass: artifact.KindEar, Primary: shopEar, Shadowed: []artifact.File{shopWar}},
		{Pass: artifact.KindWar, Primary: webWar, Merge: &webJar},
		{Pass: artifact.KindJar, Primary: libJar, POM: &libPOM},
	}
	if diff := cmp.Diff(want, plan.Steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]artifact.File{orphanPOM}, plan.UnusedPOMs); diff != "" {
		t.Errorf("unused poms mismatch (-want +got):\n%s", diff)
	}
	if got := len(plan.Shadowed()); got != 3 {
		t.Errorf("Shadowed() = %d files, want 3", got)
	}
	if got := len(plan.Pass(artifact.KindJar)); got != 1 {
		t.Errorf("Pass(jar) = %d steps, want 1", got)
	}
}

func TestResolveScopesDoNotCorrelate(t *testing.T) {
	dar := file(artifact.KindDar, "a", "app", "1.0")
	jar := file(artifact.KindJar, "b", "app", "1.0")

	plan := Resolve(artifact.NewIndex(dar, jar))
	if len(plan.Steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(plan.Steps))
	}
	if plan.Steps[0].Merge != nil {
		t.Error("jar in another folder must not be merged into the dar")
	}
	if plan.Steps[1].Pass != artifact.KindJar {
		t.Errorf("second step pass = %s, want jar", plan.Steps[1].Pass)
	}
}

func TestPassesDoNotMutateInput(t *testing.T) {
	idx := artifact.NewIndex(
		file(artifact.KindDar, "", "app", "1"),
		file(artifact.KindJar, "", "app", "1"),
		file(artifact.KindEar, "", "app", "1"),
	)
	in := newRemaining(idx)

	_, out := darPass(idx, in)
	if len(in.jar) != 1 || len(in.ear) != 1 {
		t.Errorf("darPass modified its input: jar=%d ear=%d", len(in.jar), len(in.ear))
	}
	if len(out.jar) != 0 || len(out.ear) != 0 {
		t.Errorf("darPass left keys behind: jar=%d ear=%d", len(out.jar), len(out.ear))
	}
}

func TestStepModuleDir(t *testing.T) {
	s := Step{Primary: file(artifact.KindWar, "release/2024", "web", "1.0")}
	if got := s.ModuleDir(); got != "release/2024/web" {
		t.Errorf("ModuleDir = %q, want %q", got, "release/2024/web")
	}
	if got := s.Key(); got != "release/2024:web-1.0" {
		t.Errorf("Key = %q, want %q", got, "release/2024:web-1.0")
	}
}

func TestResolveEmpty(t *testing.T) {
	plan := Resolve(artifact.NewIndex())
	if len(plan.Steps) != 0 || len(plan.UnusedPOMs) != 0 {
		t.Errorf("empty index produced %+v", plan)
	}
}
