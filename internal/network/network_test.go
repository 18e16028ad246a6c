package network

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kiln-labs/kiln/internal/project"
)

func testManifest() *project.Manifest {
	return &project.Manifest{
		Name:    "fund-me",
		Version: "0.1.0",
		Networks: map[string]project.Network{
			"local": {
				RPCURL:  "http://127.0.0.1:8545",
				ChainID: 31337,
			},
			"sepolia": {
				RPCURLEnv: "SEPOLIA_RPC_URL",
				ChainID:   11155111,
				Account:   "deployer",
				Verify:    true,
			},
		},
	}
}

func TestResolve_Literal(t *testing.T) {
	r, err := Resolve(t.TempDir(), testManifest(), "local")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if r.RPCURL != "http://127.0.0.1:8545" {
		t.Errorf("RPCURL = %q", r.RPCURL)
	}
	if r.ChainID != 31337 {
		t.Errorf("ChainID = %d, want 31337", r.ChainID)
	}
}

func TestResolve_EnvIndirection(t *testing.T) {
	t.Setenv("SEPOLIA_RPC_URL", "https://rpc.example/sepolia")

	r, err := Resolve(t.TempDir(), testManifest(), "sepolia")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if r.RPCURL != "https://rpc.example/sepolia" {
		t.Errorf("RPCURL = %q", r.RPCURL)
	}
	if r.Account != "deployer" {
		t.Errorf("Account = %q, want %q", r.Account, "deployer")
	}
	if !r.Verify {
		t.Error("Verify = false, want true")
	}
}

func TestResolve_DotEnvFallback(t *testing.T) {
	root := t.TempDir()
	envFile := filepath.Join(root, EnvFileName)
	if err := os.WriteFile(envFile, []byte("SEPOLIA_RPC_URL=https://rpc.example/from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := Resolve(root, testManifest(), "sepolia")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if r.RPCURL != "https://rpc.example/from-dotenv" {
		t.Errorf("RPCURL = %q", r.RPCURL)
	}
}

func TestResolve_ProcessEnvWinsOverDotEnv(t *testing.T) {
	root := t.TempDir()
	envFile := filepath.Join(root, EnvFileName)
	if err := os.WriteFile(envFile, []byte("SEPOLIA_RPC_URL=https://rpc.example/from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SEPOLIA_RPC_URL", "https://rpc.example/from-process")

	r, err := Resolve(root, testManifest(), "sepolia")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if r.RPCURL != "https://rpc.example/from-process" {
		t.Errorf("RPCURL = %q, want process env value", r.RPCURL)
	}
}

func TestResolve_UnsetEnvVar(t *testing.T) {
	t.Setenv("SEPOLIA_RPC_URL", "")

	_, err := Resolve(t.TempDir(), testManifest(), "sepolia")
	if err == nil {
		t.Fatal("expected error when env var unset, got nil")
	}
	if !strings.Contains(err.Error(), "SEPOLIA_RPC_URL") {
		t.Errorf("error should name the variable, got: %v", err)
	}
}

func TestResolve_UnknownNetwork(t *testing.T) {
	_, err := Resolve(t.TempDir(), testManifest(), "mainnet")
	if err == nil {
		t.Fatal("expected error for unknown network, got nil")
	}
	if !strings.Contains(err.Error(), "local") || !strings.Contains(err.Error(), "sepolia") {
		t.Errorf("error should list available networks, got: %v", err)
	}
}

func TestNames(t *testing.T) {
	names := Names(testManifest())
	if len(names) != 2 || names[0] != "local" || names[1] != "sepolia" {
		t.Errorf("Names = %v, want [local sepolia]", names)
	}
}
