package artifact

import (
	"path"
	"slices"

	"github.com/samber/lo"
)

// File is an artifact discovered by [Walk].
type File struct {
	Path  string `json:"path"` // path on the walked filesystem
	Kind  Kind   `json:"kind"`
	Scope string `json:"scope"` // slash-separated parent directory relative to the walk root, "" at the root
	Key   Key    `json:"key"`
}

// LogicalKey returns the scoped key of the file.
func (f File) LogicalKey() string {
	return LogicalKey(f.Scope, f.Key)
}

// ModuleDir returns the destination of the file's module relative to a
// content root: the scope (when non-empty) followed by the module name.
func (f File) ModuleDir() string {
	if f.Scope == "" {
		return f.Key.Name
	}
	return path.Join(f.Scope, f.Key.Name)
}

// Unkeyable is an artifact whose filename carries no version separator.
type Unkeyable struct {
	Path string `json:"path"`
	Kind Kind   `json:"kind"`
}

// Index holds one logical-key mapping per artifact kind.
// It is built once by [Walk] and never mutated afterwards.
type Index struct {
	byKind    map[Kind]map[string]File
	unkeyable []Unkeyable
}

// NewIndex creates an index from a list of files. Later files replace
// earlier ones with the same kind and logical key.
func NewIndex(files ...File) *Index {
	idx := newIndex()
	for _, f := range files {
		idx.put(f)
	}
	return idx
}

func newIndex() *Index {
	idx := &Index{byKind: make(map[Kind]map[string]File, len(Kinds))}
	for _, k := range Kinds {
		idx.byKind[k] = make(map[string]File)
	}
	return idx
}

// put inserts f and returns the file it replaced, if any.
func (x *Index) put(f File) (File, bool) {
	m := x.byKind[f.Kind]
	key := f.LogicalKey()
	prev, replaced := m[key]
	m[key] = f
	return prev, replaced
}

// Get returns the file of the given kind registered under a logical key.
func (x *Index) Get(kind Kind, key string) (File, bool) {
	f, ok := x.byKind[kind][key]
	return f, ok
}

// Has reports whether a file of the given kind exists for a logical key.
func (x *Index) Has(kind Kind, key string) bool {
	_, ok := x.byKind[kind][key]
	return ok
}

// Keys returns the logical keys of one kind in sorted order.
func (x *Index) Keys(kind Kind) []string {
	keys := lo.Keys(x.byKind[kind])
	slices.Sort(keys)
	return keys
}

// Len returns the number of files of one kind.
func (x *Index) Len(kind Kind) int {
	return len(x.byKind[kind])
}

// Total returns the number of indexed files across all kinds.
func (x *Index) Total() int {
	n := 0
	for _, m := range x.byKind {
		n += len(m)
	}
	return n
}

// Counts returns the number of indexed files per kind.
func (x *Index) Counts() map[Kind]int {
	return lo.MapValues(x.byKind, func(m map[string]File, _ Kind) int { return len(m) })
}

// Unkeyable returns the artifacts skipped because no key could be derived.
func (x *Index) Unkeyable() []Unkeyable {
	return slices.Clone(x.unkeyable)
}
