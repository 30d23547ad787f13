// Package artifact discovers Java deployment artifacts in a directory tree.
//
// # Overview
//
// Five kinds of files are recognized purely by case-insensitive suffix:
//
//   - jar (.jar): a single module, the most granular packaging
//   - war (.war): a web module with bundled WEB-INF/lib jars
//   - ear (.ear): one or more wars
//   - dar (.dar): one or more ears
//   - pom (.pom.xml): a project manifest stored next to the artifacts
//
// Every file is reduced to a [Key] (module name and version) by [DeriveKey].
// The key is scoped by the directory the file lives in, relative to the walk
// root, so that two subtrees can ship modules with the same base name:
//
//	release/app-1.0.dar   → "release:app-1.0"
//	release/app-1.0.jar   → "release:app-1.0"
//	app-1.0.jar           → ":app-1.0"
//
// Artifacts sharing a logical key are the same module at different
// packaging granularities. Deciding which one wins is left to the pipeline.
//
// # Walking
//
// [Walk] builds an immutable [Index] with one mapping per kind:
//
//	idx, err := artifact.Walk(ctx, afero.NewOsFs(), "/srv/drops", logger)
//	for _, key := range idx.Keys(artifact.KindDar) {
//	    f, _ := idx.Get(artifact.KindDar, key)
//	    fmt.Println(f.Path)
//	}
//
// Files whose name carries no version separator cannot be keyed; they are
// logged and listed by [Index.Unkeyable] instead of being indexed.
package artifact
