package cli

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"fund-me", false},
		{"token", false},
		{"my-token-2", false},
		{"0x-utils", false},
		{"", true},
		{"FundMe", true},
		{"-leading-dash", true},
		{"has space", true},
		{"under_score", true},
		{"slash/name", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateName(tt.name)
			if tt.wantErr && err == nil {
				t.Errorf("validateName(%q) = nil, want error", tt.name)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validateName(%q) = %v, want nil", tt.name, err)
			}
		})
	}
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unix newline", "hello\n", "hello"},
		{"windows newline", "hello\r\n", "hello"},
		{"no trailing newline", "hello", "hello"},
		{"empty line", "\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readLine(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("readLine error: %v", err)
			}
			if got != tt.want {
				t.Errorf("readLine(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestReadLine_EmptyInput(t *testing.T) {
	if _, err := readLine(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input, got nil")
	}
}
