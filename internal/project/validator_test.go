package project

import (
	"strings"
	"testing"
)

func TestValidate_ValidManifest(t *testing.T) {
	result, err := Validate([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if !result.Valid {
		t.Errorf("Valid = false, issues: %+v", result.Issues)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		wantPath string
	}{
		{
			"missing version",
			"name: my-project\n",
			"",
		},
		{
			"uppercase name",
			"name: MyProject\nversion: 1.0.0\n",
			"/name",
		},
		{
			"bad version format",
			"name: my-project\nversion: one\n",
			"/version",
		},
		{
			"network without rpc source",
			"name: my-project\nversion: 1.0.0\nnetworks:\n  sepolia:\n    chain_id: 11155111\n",
			"/networks/sepolia",
		},
		{
			"negative chain id",
			"name: my-project\nversion: 1.0.0\nnetworks:\n  local:\n    rpc_url: http://127.0.0.1:8545\n    chain_id: -1\n",
			"/networks/local/chain_id",
		},
		{
			"unknown network field",
			"name: my-project\nversion: 1.0.0\nnetworks:\n  local:\n    rpc_url: http://127.0.0.1:8545\n    gas: 5\n",
			"/networks/local",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Validate([]byte(tt.yaml))
			if err != nil {
				t.Fatalf("Validate error: %v", err)
			}
			if result.Valid {
				t.Fatal("Valid = true, want false")
			}
			if len(result.Issues) == 0 {
				t.Fatal("no issues reported")
			}
			found := false
			for _, issue := range result.Issues {
				if strings.HasPrefix(issue.Path, tt.wantPath) {
					found = true
				}
			}
			if !found {
				t.Errorf("no issue with path prefix %q, got %+v", tt.wantPath, result.Issues)
			}
		})
	}
}

func TestValidate_UnknownTopLevelKeysWarn(t *testing.T) {
	result, err := Validate([]byte("name: my-project\nversion: 1.0.0\nnetwroks:\n  local:\n    rpc_url: http://127.0.0.1:8545\ncompiler: solc\n"))
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if !result.Valid {
		t.Errorf("Valid = false, issues: %+v", result.Issues)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("Warnings = %v, want 2 entries", result.Warnings)
	}
	if !strings.Contains(result.Warnings[0], `"compiler"`) {
		t.Errorf("Warnings[0] = %q, want mention of compiler", result.Warnings[0])
	}
	if !strings.Contains(result.Warnings[1], `"netwroks"`) {
		t.Errorf("Warnings[1] = %q, want mention of netwroks", result.Warnings[1])
	}
}

func TestValidate_NoWarningsForKnownKeys(t *testing.T) {
	result, err := Validate([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", result.Warnings)
	}
}

func TestValidate_NotYAML(t *testing.T) {
	if _, err := Validate([]byte("name: [unclosed")); err == nil {
		t.Fatal("expected error for malformed YAML, got nil")
	}
}

func TestValidateFile(t *testing.T) {
	path := writeManifest(t, t.TempDir(), sampleManifest)
	result, err := ValidateFile(path)
	if err != nil {
		t.Fatalf("ValidateFile error: %v", err)
	}
	if !result.Valid {
		t.Errorf("Valid = false, issues: %+v", result.Issues)
	}
}

func TestValidateFile_NotFound(t *testing.T) {
	if _, err := ValidateFile("does-not-exist.yaml"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
