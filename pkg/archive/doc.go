// Package archive unpacks Java archives into a Maven-style module layout.
//
// # Overview
//
// An [Extractor] streams a ZIP-format archive entry by entry through a single
// fixed-size buffer and writes what it finds under a module directory:
//
//	<module>/pom.xml
//	<module>/src/main/java/...     (jar entries)
//	<module>/src/main/webapp/...   (war entries)
//
// Multi-module packagings are unpacked recursively. A dar only contributes
// its .ear entries and an ear only its .war entries; each nested archive is
// written next to the module, unpacked into the same module directory and
// deleted afterwards.
//
// # Manifests
//
// Whenever a war or jar has been unpacked the extractor reports the module
// manifest through a [ManifestFunc] so the caller can rewrite it before the
// next archive lands in the same directory. Wars also report the jar entries
// they bundle (typically WEB-INF/lib/*.jar) as dependency candidates.
//
// # Failures
//
// A failure aborts only the archive being read. Failures of nested archives
// are collected in [Result.Nested] while the enclosing archive carries on
// with its remaining entries.
package archive
