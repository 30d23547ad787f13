package artifact

import "strings"

// Kind identifies the packaging of an artifact file.
type Kind string

// Supported artifact kinds.
const (
	KindJar Kind = "jar"
	KindDar Kind = "dar"
	KindEar Kind = "ear"
	KindWar Kind = "war"
	KindPOM Kind = "pom"
)

// Kinds lists every kind in resolution order: the packagings from the
// richest to the most granular, then external manifests.
var Kinds = []Kind{KindDar, KindEar, KindWar, KindJar, KindPOM}

// suffixes maps each kind to the filename suffix that identifies it.
var suffixes = map[Kind]string{
	KindJar: ".jar",
	KindDar: ".dar",
	KindEar: ".ear",
	KindWar: ".war",
	KindPOM: ".pom.xml",
}

// Suffix returns the lower-case filename suffix of the kind.
func (k Kind) Suffix() string { return suffixes[k] }

// String returns the kind name.
func (k Kind) String() string { return string(k) }

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	_, ok := suffixes[k]
	return ok
}

// ParseKind converts a kind name such as "war" into a Kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(s))
	return k, k.Valid()
}

// KindOf classifies a filename by its case-insensitive suffix.
// It returns false for files that are not artifacts.
func KindOf(filename string) (Kind, bool) {
	name := strings.ToLower(filename)
	for _, k := range Kinds {
		if strings.HasSuffix(name, suffixes[k]) {
			return k, true
		}
	}
	return "", false
}
