// Package pom rebuilds minimal Maven manifests from the pom.xml files found
// inside deployed archives.
//
// A deployed pom usually points at parents, repositories and plugins that
// are not available where the extracted sources end up. [Reconstruct] keeps
// only what identifies the module (groupId, artifactId, version, packaging,
// name) and its properties, then writes a fresh manifest whose build section
// points at the canonical src/main/java and src/main/webapp layout.
//
// # Parsing
//
// The input is read line by line rather than as XML. Each recognized block
// tag (parent, properties, build, repositories, pluginRepositories,
// reporting, profiles, dependencies, dependencyManagement, scm, developers)
// toggles a flag when its open or close tag appears on a line. Lines inside a
// stripped block are dropped, the properties block is kept verbatim, and the
// scalar fields are captured from lines that start with their open tag. This
// tolerates the malformed and oddly encoded poms found in real archives.
//
// # Output
//
// [Render] emits the manifest in a fixed order with CRLF line endings by
// default. Jars bundled in a war can be declared as system-scoped
// dependencies pointing into src/main/webapp.
package pom
