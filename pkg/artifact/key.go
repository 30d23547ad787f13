package artifact

import "strings"

const (
	// sourcesSuffix marks a jar of sources. Its key boundary is computed
	// from this suffix instead of ".jar".
	sourcesSuffix = "-sources.jar"

	// ejbInfix is folded into a plain hyphen so EJB jars land in the same
	// key space as their sibling packagings.
	ejbInfix = "ejb-"
)

// Key is the (name, version) identity derived from an artifact filename.
type Key struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// String returns the unscoped key, "name-version".
func (k Key) String() string {
	return k.Name + "-" + k.Version
}

// Scoped returns the logical key of k inside the given scope prefix.
func (k Key) Scoped(scope string) string {
	return LogicalKey(scope, k)
}

// LogicalKey builds the folder-scoped identity used to correlate the same
// module across packaging levels.
func LogicalKey(scope string, k Key) string {
	return scope + ":" + k.String()
}

// DeriveKey extracts the module name and version from an artifact filename.
//
// The filename is lower-cased, then the kind's suffix is removed. The version
// separator is the hyphen of the last "<kind>-" token when present (so
// "shopdar-2.1.dar" yields "shop" and "2.1"), else the last hyphen. A name
// with no hyphen at all, or one that leaves the module name empty, cannot be
// keyed and DeriveKey returns false.
//
// Jar names get two extra rules: an "ejb-" infix becomes "-", and a
// "-sources.jar" suffix is stripped whole. A sources jar therefore shares its
// key with the binary jar only when the remaining stems happen to agree.
func DeriveKey(filename string, kind Kind) (Key, bool) {
	name := strings.ToLower(filename)
	suffix := kind.Suffix()
	if suffix == "" {
		return Key{}, false
	}

	if kind == KindJar {
		name = strings.ReplaceAll(name, ejbInfix, "-")
		if strings.HasSuffix(name, sourcesSuffix) {
			suffix = sourcesSuffix
		}
	}
	if !strings.HasSuffix(name, suffix) {
		return Key{}, false
	}
	stem := name[:len(name)-len(suffix)]

	token := string(kind) + "-"
	if i := strings.LastIndex(stem, token); i >= 0 {
		return newKey(stem[:i], stem[i+len(token):])
	}
	i := strings.LastIndex(stem, "-")
	if i < 0 {
		return Key{}, false
	}
	return newKey(stem[:i], stem[i+1:])
}

func newKey(name, version string) (Key, bool) {
	if name == "" {
		return Key{}, false
	}
	return Key{Name: name, Version: version}, true
}
