package artifact

import "testing"

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		filename string
		kind     Kind
		want     Key
		wantOK   bool
	}{
		// <name>-<version>.<ext>
		{"app-1.0.jar", KindJar, Key{"app", "1.0"}, true},
		{"app-1.0.dar", KindDar, Key{"app", "1.0"}, true},
		{"app-1.0.ear", KindEar, Key{"app", "1.0"}, true},
		{"app-1.0.war", KindWar, Key{"app", "1.0"}, true},
		{"lib-2.0.pom.xml", KindPOM, Key{"lib", "2.0"}, true},

		// Case-insensitive
		{"My-App-3.2.1.JAR", KindJar, Key{"my-app", "3.2.1"}, true},

		// Last plain hyphen is the separator
		{"commons-lang-2.6.jar", KindJar, Key{"commons-lang", "2.6"}, true},
		{"app-1.0-snapshot.war", KindWar, Key{"app-1.0", "snapshot"}, true},

		// <kind>- token takes precedence and is consumed
		{"shopdar-2.1.dar", KindDar, Key{"shop", "2.1"}, true},
		{"billingear-1.0-rc1.ear", KindEar, Key{"billing", "1.0-rc1"}, true},
		{"portalwar-4.war", KindWar, Key{"portal", "4"}, true},

		// EJB infix folds into a hyphen
		{"ordersejb-1.2.jar", KindJar, Key{"orders", "1.2"}, true},

		// Sources suffix is stripped whole
		{"app-1.0-sources.jar", KindJar, Key{"app", "1.0"}, true},
		{"app-sources.jar", KindJar, Key{}, false},

		// No separator
		{"app.jar", KindJar, Key{}, false},
		{"bundle.dar", KindDar, Key{}, false},
		{"-1.0.jar", KindJar, Key{}, false},

		// Leading <kind>- token leaves no name
		{"war-tools-1.0.war", KindWar, Key{}, false},
		{"jar-utils-2.0.jar", KindJar, Key{}, false},

		// Suffix does not match the kind
		{"app-1.0.war", KindJar, Key{}, false},
		{"app-1.0.jar", Kind("zip"), Key{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, ok := DeriveKey(tt.filename, tt.kind)
			if ok != tt.wantOK {
				t.Fatalf("DeriveKey(%q, %s) ok = %v, want %v", tt.filename, tt.kind, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("DeriveKey(%q, %s) = %+v, want %+v", tt.filename, tt.kind, got, tt.want)
			}
		})
	}
}

func TestDeriveKeyRecoversNameAndVersion(t *testing.T) {
	names := []string{"app", "core-api", "x", "billing-service"}
	versions := []string{"1.0", "2.3.4", "10", "1.0.0.final"}

	for _, kind := range []Kind{KindJar, KindDar, KindEar, KindWar} {
		for _, name := range names {
			for _, version := range versions {
				filename := name + "-" + version + kind.Suffix()
				got, ok := DeriveKey(filename, kind)
				if !ok {
					t.Errorf("DeriveKey(%q) returned no key", filename)
					continue
				}
				if got.Name != name || got.Version != version {
					t.Errorf("DeriveKey(%q) = %+v, want {%s %s}", filename, got, name, version)
				}
			}
		}
	}
}

func TestDeriveKeySourcesAndBinaryJar(t *testing.T) {
	bin, _ := DeriveKey("core-1.4.jar", KindJar)
	src, _ := DeriveKey("core-1.4-sources.jar", KindJar)
	if bin != src {
		t.Errorf("binary %+v and sources %+v should share a stem", bin, src)
	}

	// A sources jar of an unrelated stem keeps its own key.
	other, _ := DeriveKey("core-1.5-sources.jar", KindJar)
	if other == bin {
		t.Errorf("sources %+v should not match binary %+v", other, bin)
	}
}

func TestLogicalKey(t *testing.T) {
	k := Key{Name: "app", Version: "1.0"}

	if got := LogicalKey("", k); got != ":app-1.0" {
		t.Errorf("LogicalKey at root = %q, want %q", got, ":app-1.0")
	}
	if got := k.Scoped("release/2024"); got != "release/2024:app-1.0" {
		t.Errorf("Scoped = %q, want %q", got, "release/2024:app-1.0")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		filename string
		want     Kind
		wantOK   bool
	}{
		{"a-1.jar", KindJar, true},
		{"A-1.DAR", KindDar, true},
		{"a-1.ear", KindEar, true},
		{"a-1.war", KindWar, true},
		{"a-1.pom.xml", KindPOM, true},
		{"pom.xml", "", false},
		{"a-1.zip", "", false},
		{"README", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, ok := KindOf(tt.filename)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("KindOf(%q) = %q, %v; want %q, %v", tt.filename, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	if k, ok := ParseKind("WAR"); !ok || k != KindWar {
		t.Errorf("ParseKind(WAR) = %q, %v", k, ok)
	}
	if _, ok := ParseKind("zip"); ok {
		t.Error("ParseKind(zip) should fail")
	}
}
