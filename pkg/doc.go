// Package pkg provides the core libraries for mavenbuild.
//
// # Overview
//
// mavenbuild turns a drop of binary release deliverables into Maven source
// modules: every jar, war, ear and dar found under a root is matched with
// its siblings by logical key, unpacked into a module directory and given a
// rebuilt pom.xml. The pkg directory is organized into these areas:
//
//  1. [artifact] - File name keys and the artifact index built by the walker
//  2. [archive] - ZIP extraction for the four archive kinds
//  3. [pom] - Manifest parsing, rendering and in-place reconstruction
//  4. [pipeline] - Orchestration (walk → resolve → extract) and the run report
//  5. [config] - File, environment and flag configuration
//  6. [errors], [observability], [buildinfo] - Shared infrastructure
//
// # Architecture
//
// The typical data flow through mavenbuild:
//
//	Release drop (root directory)
//	         ↓
//	    [artifact] package (walk, derive keys, index by kind)
//	         ↓
//	    [pipeline] package (resolve dar > ear > war > jar, merge and shadow)
//	         ↓
//	    [archive] package (unpack into <destination>/<scope>/<name>)
//	         ↓
//	    [pom] package (rebuild <module>/pom.xml)
//	         ↓
//	    Maven modules + run report
//
// # Quick Start
//
//	import "github.com/matzehuels/mavenbuild/pkg/pipeline"
//
//	runner := pipeline.NewRunner(logger)
//	report, err := runner.Execute(ctx, pipeline.Options{
//	    Root:        "/srv/drops/2024-06",
//	    Destination: "/srv/sources/2024-06",
//	    Workers:     4,
//	})
//	if err != nil {
//	    return err
//	}
//	for _, o := range report.Failed() {
//	    fmt.Println(o.Path, o.Reason)
//	}
//
// # Filesystems
//
// Every package that touches files takes an [afero.Fs]. Production code uses
// the OS filesystem; tests build release drops in memory.
//
// [afero.Fs]: https://pkg.go.dev/github.com/spf13/afero#Fs
package pkg
