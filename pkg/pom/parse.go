package pom

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// Fields holds what survives from an existing manifest.
//
// Scalar fields keep the whole element line as found, for example
// "<version>1.0</version>", so values containing property references or
// odd whitespace are carried over untouched. An empty field means the
// element was not found.
type Fields struct {
	GroupID    string
	ArtifactID string
	Version    string
	Packaging  string
	Name       string

	// Properties holds the lines of the properties block, tags included,
	// with their original indentation.
	Properties []string

	// Parent holds the lines of the parent block. It is never emitted.
	Parent []string

	// WarPackaging is set once a packaging value containing "war" is seen.
	WarPackaging bool
}

type blockMode int

const (
	modeStrip blockMode = iota
	modeParent
	modeProperties
)

// blocks lists the recognized block tags in the order they are tested.
// A line toggles at most one block: the first entry whose open or close tag
// it contains.
var blocks = []struct {
	tag  string
	mode blockMode
}{
	{"parent", modeParent},
	{"properties", modeProperties},
	{"build", modeStrip},
	{"repositories", modeStrip},
	{"pluginRepositories", modeStrip},
	{"reporting", modeStrip},
	{"profiles", modeStrip},
	{"dependencies", modeStrip},
	{"dependencyManagement", modeStrip},
	{"scm", modeStrip},
	{"developers", modeStrip},
}

// scalars lists the captured elements in the order they are tested.
var scalars = [...]string{"groupId", "artifactId", "version", "packaging", "name"}

const packagingIndex = 3

func (f *Fields) scalar(i int) *string {
	switch i {
	case 0:
		return &f.GroupID
	case 1:
		return &f.ArtifactID
	case 2:
		return &f.Version
	case 3:
		return &f.Packaging
	default:
		return &f.Name
	}
}

// parser is the line state machine behind Parse.
type parser struct {
	f       *Fields
	inBlock []bool
	inValue [len(scalars)]bool
}

// Parse reads a manifest and returns the fields to carry over.
// Lines may end in "\n", "\r\n" or "\r".
func Parse(r io.Reader) (*Fields, error) {
	p := &parser{f: &Fields{}, inBlock: make([]bool, len(blocks))}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	sc.Split(scanLines)
	for sc.Scan() {
		p.line(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return p.f, nil
}

func (p *parser) line(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}

	for i, b := range blocks {
		if strings.Contains(line, "<"+b.tag+">") {
			p.inBlock[i] = true
			break
		}
		if strings.Contains(line, "</"+b.tag+">") {
			p.inBlock[i] = false
			switch b.mode {
			case modeParent:
				p.f.Parent = append(p.f.Parent, raw)
			case modeProperties:
				p.f.Properties = append(p.f.Properties, raw)
			}
			return
		}
	}

	switch {
	case p.inside(modeParent):
		p.f.Parent = append(p.f.Parent, raw)
	case p.inside(modeProperties):
		p.f.Properties = append(p.f.Properties, raw)
	case p.inside(modeStrip):
		return
	}

	p.capture(line)
}

// inside reports whether any block of the given mode is open.
func (p *parser) inside(mode blockMode) bool {
	for i, b := range blocks {
		if b.mode == mode && p.inBlock[i] {
			return true
		}
	}
	return false
}

// capture records scalar elements. A line opening a scalar replaces the
// previous value; other lines continue the first scalar still waiting for
// its close tag.
func (p *parser) capture(line string) {
	for i, tag := range scalars {
		if strings.HasPrefix(line, "<"+tag+">") {
			*p.f.scalar(i) = line
			closed := strings.HasSuffix(line, "</"+tag+">")
			p.inValue[i] = !closed
			if closed && i == packagingIndex {
				p.checkPackaging()
			}
			return
		}
	}

	for i, tag := range scalars {
		if !p.inValue[i] {
			continue
		}
		*p.f.scalar(i) += line
		if strings.HasSuffix(line, "</"+tag+">") {
			p.inValue[i] = false
			if i == packagingIndex {
				p.checkPackaging()
			}
		}
		return
	}
}

func (p *parser) checkPackaging() {
	if strings.Contains(strings.ToLower(p.f.Packaging), "war") {
		p.f.WarPackaging = true
	}
}

// scanLines splits on "\n", "\r\n" and a lone "\r".
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
