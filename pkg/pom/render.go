package pom

import (
	"bufio"
	"io"
	"path"
	"strings"

	"github.com/matzehuels/mavenbuild/pkg/errors"
)

// Default render settings.
const (
	DefaultNewline        = "\r\n"
	DefaultBundledGroupID = "bundled"
)

const (
	xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`
	projectOpen    = `<project xmlns="http://maven.apache.org/POM/4.0.0" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://maven.apache.org/POM/4.0.0 http://maven.apache.org/xsd/maven-4.0.0.xsd">`
	modelVersion   = `<modelVersion>4.0.0</modelVersion>`
	webappDir      = "src/main/webapp"
)

// RenderOptions configures Render.
type RenderOptions struct {
	// Newline terminates every line but the last (default DefaultNewline).
	Newline string

	// BundledGroupID is the groupId declared for bundled jars
	// (default DefaultBundledGroupID).
	BundledGroupID string
}

// SetDefaults fills unset options.
func (o *RenderOptions) SetDefaults() {
	if o.Newline == "" {
		o.Newline = DefaultNewline
	}
	if o.BundledGroupID == "" {
		o.BundledGroupID = DefaultBundledGroupID
	}
}

// Validate checks the options after defaults have been applied.
func (o RenderOptions) Validate() error {
	if o.Newline != "\r\n" && o.Newline != "\n" {
		return errors.New(errors.ErrCodeInvalidInput, "newline must be CRLF or LF, got %q", o.Newline)
	}
	return errors.ValidateGroupID(o.BundledGroupID)
}

// Render writes the rebuilt manifest for f.
//
// bundled lists jar entries of a war relative to src/main/webapp; each one
// is declared as a system-scoped dependency. Pass nil for jars.
func Render(w io.Writer, f *Fields, bundled []string, opts RenderOptions) error {
	opts.SetDefaults()
	if f == nil {
		f = &Fields{}
	}

	bw := bufio.NewWriter(w)
	line := func(s string) { bw.WriteString(s + opts.Newline) }

	line(xmlDeclaration)
	line(projectOpen)
	line(modelVersion)
	line(or(f.GroupID, "<groupId>groupId</groupId>"))
	line(or(f.ArtifactID, "<artifactId>artifactId</artifactId>"))
	line(or(f.Packaging, "<packaging>jar</packaging>"))
	line(or(f.Version, "<version>version</version>"))
	line(or(f.Name, "<name>${artifactId}</name>"))
	for _, p := range f.Properties {
		line(p)
	}

	line("<build>")
	line("<sourceDirectory>src/main/java</sourceDirectory>")
	if f.WarPackaging {
		line("<plugins>")
		line("<plugin>")
		line("<artifactId>maven-war-plugin</artifactId>")
		line("<configuration>")
		line("<warSourceDirectory>" + webappDir + "</warSourceDirectory>")
		line("</configuration>")
		line("</plugin>")
		line("</plugins>")
	}
	line("</build>")

	if len(bundled) > 0 {
		line("<dependencies>")
		for _, entry := range bundled {
			artifactID, version := splitJarName(path.Base(entry))
			line("<dependency>")
			line("<groupId>" + escape(opts.BundledGroupID) + "</groupId>")
			line("<artifactId>" + escape(artifactID) + "</artifactId>")
			line("<version>" + escape(version) + "</version>")
			line("<scope>system</scope>")
			line("<systemPath>${project.basedir}/" + webappDir + "/" + escape(entry) + "</systemPath>")
			line("</dependency>")
		}
		line("</dependencies>")
	}

	bw.WriteString("</project>")
	return bw.Flush()
}

// splitJarName splits "foo-1.2.jar" into "foo" and "1.2". A name without a
// hyphen keeps its stem as artifactId and gets the placeholder version.
func splitJarName(base string) (artifactID, version string) {
	stem := base
	if strings.HasSuffix(strings.ToLower(stem), ".jar") {
		stem = stem[:len(stem)-len(".jar")]
	}
	i := strings.LastIndex(stem, "-")
	if i < 0 {
		return stem, "version"
	}
	artifactID, version = stem[:i], stem[i+1:]
	if version == "" {
		version = "version"
	}
	return artifactID, version
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return xmlEscaper.Replace(s) }

func or(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
