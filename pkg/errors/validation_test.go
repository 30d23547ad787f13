package errors

import (
	"testing"
)

func TestValidateRoot(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"absolute", "/srv/artifacts", false},
		{"absolute nested", "/srv/artifacts/release-1", false},

		{"empty", "", true},
		{"relative", "artifacts", true},
		{"dot relative", "./artifacts", true},
		{"control char", "/srv/\x01artifacts", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoot(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRoot(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateRoot(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateWithin(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"base", "/srv/out", false},
		{"below", "/srv/out/release-1", false},
		{"cleaned", "/srv/out/a/../b", false},
		{"sibling prefix", "/srv/output", true},
		{"parent", "/srv", true},
		{"escape", "/srv/out/../etc", true},
		{"elsewhere", "/etc", true},
		{"relative", "out/x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWithin("/srv/out", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWithin(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateWithin(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateEntryPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"class file", "com/example/App.class", false},
		{"directory marker", "WEB-INF/lib/", false},
		{"dotted name", "META-INF/maven/com.example/app/pom.xml", false},
		{"double dot inside name", "docs/a..b.txt", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "../../etc/passwd", true},
		{"traversal in middle", "WEB-INF/../../x", true},
		{"backslash", "WEB-INF\\web.xml", true},
		{"null byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntryPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEntryPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGroupID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"bundled", false},
		{"com.example", false},
		{"org.apache-commons.lang_3", false},

		{"", true},
		{"com..example", true},
		{".com", true},
		{"com example", true},
		{"${project.groupId}", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateGroupID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGroupID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
