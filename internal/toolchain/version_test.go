package toolchain

import (
	"testing"
)

func TestParseVersionOutput(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    string
		wantErr bool
	}{
		{"forge style", "forge 0.2.0 (9fcd47a 2024-05-01T00:00:00.000000000Z)", "0.2.0", false},
		{"v prefix", "cast v1.0.0", "1.0.0", false},
		{"prerelease", "forge 1.0.0-nightly.20240501", "1.0.0-nightly.20240501", false},
		{"multiline", "forge 0.2.0\nbuild: release\n", "0.2.0", false},
		{"no version", "forge unknown build", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVersionOutput(tt.output)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", v)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.String() != tt.want {
				t.Errorf("version = %s, want %s", v, tt.want)
			}
		})
	}
}

func TestCheckConstraint(t *testing.T) {
	tests := []struct {
		name       string
		version    string
		constraint string
		want       bool
		wantErr    bool
	}{
		{"satisfies gte", "0.2.0", ">=0.2.0", true, false},
		{"below gte", "0.1.9", ">=0.2.0", false, false},
		{"range", "0.2.5", ">=0.2.0 <0.3.0", true, false},
		{"caret", "1.2.3", "^1.0.0", true, false},
		{"empty constraint passes", "0.0.1", "", true, false},
		{"malformed constraint", "1.0.0", "not-a-constraint", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVersionOutput("forge " + tt.version)
			if err != nil {
				t.Fatalf("parsing test version: %v", err)
			}
			ok, err := CheckConstraint(v, tt.constraint)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.want {
				t.Errorf("CheckConstraint(%s, %q) = %v, want %v", tt.version, tt.constraint, ok, tt.want)
			}
		})
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("a\nb\nc"); got != "a" {
		t.Errorf("firstLine = %q, want %q", got, "a")
	}
	if got := firstLine("single"); got != "single" {
		t.Errorf("firstLine = %q, want %q", got, "single")
	}
}
