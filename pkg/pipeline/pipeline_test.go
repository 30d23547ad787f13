package pipeline

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/matzehuels/mavenbuild/pkg/errors"
)

func TestValidateNewline(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"crlf", false},
		{"lf", false},
		{"CRLF", true}, // normalized by SetDefaults, not here
		{"cr", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateNewline(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateNewline(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestValidateWorkers(t *testing.T) {
	for _, n := range []int{1, 8, MaxWorkers} {
		if err := ValidateWorkers(n); err != nil {
			t.Errorf("ValidateWorkers(%d) = %v", n, err)
		}
	}
	for _, n := range []int{-1, 0, MaxWorkers + 1} {
		if err := ValidateWorkers(n); err == nil {
			t.Errorf("ValidateWorkers(%d) should fail", n)
		}
	}
}

func TestValidateRoot(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/drop", 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		root string
		code errors.Code
	}{
		{"/drop", ""},
		{"drop", errors.ErrCodeInvalidPath},
		{"", errors.ErrCodeInvalidPath},
		{"/missing", errors.ErrCodeFileNotFound},
	}

	for _, tt := range tests {
		err := ValidateRoot(fsys, tt.root)
		if got := errors.GetCode(err); got != tt.code {
			t.Errorf("ValidateRoot(%q) code = %q, want %q (err %v)", tt.root, got, tt.code, err)
		}
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/drop", 0o755); err != nil {
		t.Fatal(err)
	}

	opts := Options{Root: "/drop", Destination: "/out", Newline: "LF", Fs: fsys}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Workers != DefaultWorkers || opts.BufferSize != DefaultBufferSize || opts.BundledGroupID != DefaultBundledGroupID {
		t.Errorf("defaults not applied: %+v", opts)
	}
	if got := opts.RenderOptions().Newline; got != "\n" {
		t.Errorf("RenderOptions().Newline = %q, want LF", got)
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call failed: %v", err)
	}
}

func TestOptionsValidateErrors(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/drop", 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opts Options
	}{
		{"missing destination", Options{Root: "/drop"}},
		{"relative destination", Options{Root: "/drop", Destination: "out"}},
		{"too many workers", Options{Root: "/drop", Destination: "/out", Workers: MaxWorkers + 1}},
		{"tiny buffer", Options{Root: "/drop", Destination: "/out", BufferSize: 16}},
		{"bad newline", Options{Root: "/drop", Destination: "/out", Newline: "cr"}},
		{"bad group", Options{Root: "/drop", Destination: "/out", BundledGroupID: "a b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Fs = fsys
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
