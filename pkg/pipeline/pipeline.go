// Package pipeline provides the extraction pipeline for mavenbuild.
//
// This package implements the complete walk → resolve → extract pipeline used
// by the CLI and the HTTP adapter. By centralizing this logic both entry
// points resolve overlapping artifacts the same way and produce the same
// report.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Walk: index every jar, dar, ear, war and external pom under the root
//  2. Resolve: decide which artifacts to extract, pass by pass
//     (dar > ear > war > jar), merging same-key jars and shadowing
//     lower-priority packagings
//  3. Extract: unpack each step into its module directory and rebuild the
//     module's pom.xml
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    Root:        "/srv/drops/2024-06",
//	    Destination: "/srv/sources/2024-06",
//	}
//	report, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Summary.Failed)
//
// Resolve only, without touching the destination:
//
//	plan, err := runner.Scan(ctx, opts)
package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/matzehuels/mavenbuild/pkg/archive"
	"github.com/matzehuels/mavenbuild/pkg/errors"
	"github.com/matzehuels/mavenbuild/pkg/pom"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, config and API
// =============================================================================

const (
	// DefaultWorkers extracts modules one at a time.
	DefaultWorkers = 1

	// MaxWorkers bounds concurrent module extraction.
	MaxWorkers = 64

	// DefaultBufferSize is the copy buffer size per extraction.
	DefaultBufferSize = archive.DefaultBufferSize

	// MaxBufferSize bounds the copy buffer size.
	MaxBufferSize = 16 * 1024 * 1024

	// DefaultBundledGroupID is the groupId declared for jars bundled in wars.
	DefaultBundledGroupID = pom.DefaultBundledGroupID

	// DefaultNewline is the line ending of rebuilt manifests.
	DefaultNewline = NewlineCRLF
)

// Newline names accepted by Options.Newline.
const (
	NewlineCRLF = "crlf"
	NewlineLF   = "lf"
)

var newlines = map[string]string{
	NewlineCRLF: "\r\n",
	NewlineLF:   "\n",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for an extraction run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Root is the absolute directory tree to scan.
	Root string `json:"root"`

	// Destination is the absolute content directory receiving the modules.
	Destination string `json:"destination,omitempty"`

	Workers        int    `json:"workers,omitempty"`
	BufferSize     int    `json:"buffer_size,omitempty"`
	BundledGroupID string `json:"bundled_group_id,omitempty"`
	Newline        string `json:"newline,omitempty"` // "crlf" or "lf"

	// Runtime options (not serialized)
	Fs     afero.Fs    `json:"-"`
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateNewline checks that a newline name is supported.
func ValidateNewline(name string) error {
	if _, ok := newlines[name]; !ok {
		return errors.New(errors.ErrCodeInvalidInput, "invalid newline: %q (must be one of: crlf, lf)", name)
	}
	return nil
}

// ValidateWorkers checks that a worker count is in range.
func ValidateWorkers(n int) error {
	if n < 1 || n > MaxWorkers {
		return errors.New(errors.ErrCodeInvalidInput, "workers must be between 1 and %d, got %d", MaxWorkers, n)
	}
	return nil
}

// ValidateBufferSize checks that a copy buffer size is in range.
func ValidateBufferSize(n int) error {
	if n < 512 || n > MaxBufferSize {
		return errors.New(errors.ErrCodeInvalidInput, "buffer size must be between 512 and %d bytes, got %d", MaxBufferSize, n)
	}
	return nil
}

// ValidateRoot checks that root is an absolute path to an existing directory
// on fsys. The log message keys match the ones reported to the host.
func ValidateRoot(fsys afero.Fs, root string) error {
	if err := errors.ValidateRoot(root); err != nil {
		return fmt.Errorf("extractionURLNotAbsoluteFailure: %w", err)
	}
	ok, err := afero.DirExists(fsys, root)
	if err != nil || !ok {
		return fmt.Errorf("extractionURLNotFoundFailure: %w",
			errors.Wrap(errors.ErrCodeFileNotFound, err, "root not found: %s", root))
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills unset options.
func (o *Options) SetDefaults() {
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.BufferSize == 0 {
		o.BufferSize = DefaultBufferSize
	}
	if o.BundledGroupID == "" {
		o.BundledGroupID = DefaultBundledGroupID
	}
	if o.Newline == "" {
		o.Newline = DefaultNewline
	}
	o.Newline = strings.ToLower(o.Newline)
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForScan checks the fields needed to walk and resolve.
func (o *Options) ValidateForScan() error {
	o.SetDefaults()
	return ValidateRoot(o.Fs, o.Root)
}

// ValidateAndSetDefaults checks required fields and applies defaults for a
// full run. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForScan(); err != nil {
		return err
	}
	if o.Destination == "" {
		return errors.New(errors.ErrCodeInvalidInput, "destination is required")
	}
	if err := errors.ValidateRoot(o.Destination); err != nil {
		return err
	}
	if err := ValidateWorkers(o.Workers); err != nil {
		return err
	}
	if err := ValidateBufferSize(o.BufferSize); err != nil {
		return err
	}
	if err := ValidateNewline(o.Newline); err != nil {
		return err
	}
	if err := o.RenderOptions().Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// RenderOptions returns the manifest render options for this run.
func (o *Options) RenderOptions() pom.RenderOptions {
	return pom.RenderOptions{
		Newline:        newlines[o.Newline],
		BundledGroupID: o.BundledGroupID,
	}
}
