package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kiln-labs/kiln/internal/project"
)

func TestContractName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"fund-me", "FundMe"},
		{"token", "Token"},
		{"my-token-vault", "MyTokenVault"},
		{"a", "A"},
		{"double--dash", "DoubleDash"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ContractName(tt.in); got != tt.want {
				t.Errorf("ContractName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateProject(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fund-me")

	result, err := GenerateProject(NewData("fund-me", "0.8.19"), dir)
	if err != nil {
		t.Fatalf("GenerateProject error: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	wantFiles := []string{
		project.ManifestFileName,
		".gitignore",
		".env.example",
		"Makefile",
		"remappings.txt",
		"README.md",
		filepath.Join("src", "FundMe.sol"),
		filepath.Join("test", "FundMe.t.sol"),
		filepath.Join("script", "DeployFundMe.s.sol"),
	}
	for _, f := range wantFiles {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("expected file %s: %v", f, err)
		}
	}

	m, err := project.Parse(filepath.Join(dir, project.ManifestFileName))
	if err != nil {
		t.Fatalf("parsing generated manifest: %v", err)
	}
	if m.Name != "fund-me" {
		t.Errorf("manifest name = %q, want %q", m.Name, "fund-me")
	}
	if m.Solc != "0.8.19" {
		t.Errorf("manifest solc = %q, want %q", m.Solc, "0.8.19")
	}

	src, err := os.ReadFile(filepath.Join(dir, "src", "FundMe.sol"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(src), "contract FundMe") {
		t.Error("generated contract does not declare FundMe")
	}
	if strings.Contains(string(src), "__Name__") {
		t.Error("placeholder left in rendered contract")
	}
}

func TestGenerateProject_NonEmptyDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := GenerateProject(NewData("fund-me", "0.8.19"), dir); err == nil {
		t.Fatal("expected error for non-empty directory, got nil")
	}
}

func TestGenerateInto(t *testing.T) {
	dir := t.TempDir()
	data := NewData("price-feed", "0.8.19")

	result, err := GenerateInto("contract", data, dir)
	if err != nil {
		t.Fatalf("GenerateInto error: %v", err)
	}
	if len(result.Files) != 1 || result.Files[0] != "PriceFeed.sol" {
		t.Errorf("Files = %v, want [PriceFeed.sol]", result.Files)
	}

	content, err := os.ReadFile(filepath.Join(dir, "PriceFeed.sol"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "contract PriceFeed") {
		t.Error("generated contract does not declare PriceFeed")
	}
}

func TestGenerateInto_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	data := NewData("price-feed", "0.8.19")

	if _, err := GenerateInto("contract", data, dir); err != nil {
		t.Fatalf("first GenerateInto error: %v", err)
	}
	if _, err := GenerateInto("contract", data, dir); err == nil {
		t.Fatal("expected error on second generation, got nil")
	}
}

func TestGenerateInto_UnknownSet(t *testing.T) {
	if _, err := GenerateInto("nope", NewData("x", "0.8.19"), t.TempDir()); err == nil {
		t.Fatal("expected error for unknown template set, got nil")
	}
}

func TestGenerateInto_TestAndScriptSets(t *testing.T) {
	tests := []struct {
		set  string
		want string
	}{
		{"test", "PriceFeed.t.sol"},
		{"script", "PriceFeed.s.sol"},
	}

	for _, tt := range tests {
		t.Run(tt.set, func(t *testing.T) {
			dir := t.TempDir()
			result, err := GenerateInto(tt.set, NewData("price-feed", "0.8.19"), dir)
			if err != nil {
				t.Fatalf("GenerateInto error: %v", err)
			}
			if len(result.Files) != 1 || result.Files[0] != tt.want {
				t.Errorf("Files = %v, want [%s]", result.Files, tt.want)
			}
		})
	}
}
