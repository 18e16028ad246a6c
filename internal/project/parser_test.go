package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleManifest = `name: token-vault
version: 0.1.0
toolchain: ">=0.2.0"
solc: "0.8.19"
deploy:
  script: script/DeployTokenVault.s.sol
dependencies:
  - name: foundry-rs/forge-std
    version: 1.9.4
networks:
  sepolia:
    rpc_url_env: SEPOLIA_RPC_URL
    chain_id: 11155111
    account: deployer
  local:
    rpc_url: http://127.0.0.1:8545
    chain_id: 31337
`

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	return path
}

func TestParse(t *testing.T) {
	path := writeManifest(t, t.TempDir(), sampleManifest)

	m, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if m.Name != "token-vault" {
		t.Errorf("Name = %q, want %q", m.Name, "token-vault")
	}
	if m.Version != "0.1.0" {
		t.Errorf("Version = %q, want %q", m.Version, "0.1.0")
	}
	if m.Toolchain != ">=0.2.0" {
		t.Errorf("Toolchain = %q, want %q", m.Toolchain, ">=0.2.0")
	}
	if m.Deploy.Script != "script/DeployTokenVault.s.sol" {
		t.Errorf("Deploy.Script = %q", m.Deploy.Script)
	}
	if len(m.Networks) != 2 {
		t.Fatalf("Networks len = %d, want 2", len(m.Networks))
	}
	sepolia := m.Networks["sepolia"]
	if sepolia.RPCURLEnv != "SEPOLIA_RPC_URL" {
		t.Errorf("sepolia RPCURLEnv = %q", sepolia.RPCURLEnv)
	}
	if sepolia.ChainID != 11155111 {
		t.Errorf("sepolia ChainID = %d", sepolia.ChainID)
	}
	if dep := m.FindDependency("foundry-rs/forge-std"); dep == nil {
		t.Error("FindDependency(foundry-rs/forge-std) = nil")
	} else if dep.Version != "1.9.4" {
		t.Errorf("dependency Version = %q, want %q", dep.Version, "1.9.4")
	}
	if m.FindDependency("openzeppelin/openzeppelin-contracts") != nil {
		t.Error("FindDependency on absent name should be nil")
	}
}

func TestParse_MissingName(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "version: 1.0.0\n")
	if _, err := Parse(path); err == nil {
		t.Fatal("expected error for manifest without name, got nil")
	}
}

func TestParse_FileNotFound(t *testing.T) {
	if _, err := Parse(filepath.Join(t.TempDir(), ManifestFileName)); err == nil {
		t.Fatal("expected error for nonexistent file, got nil")
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "name: [unclosed\n")
	if _, err := Parse(path); err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFileName)

	m := &Manifest{
		Name:    "my-project",
		Version: "0.2.0",
		Networks: map[string]Network{
			"local": {RPCURL: "http://127.0.0.1:8545", ChainID: 31337},
		},
	}
	if err := Save(path, m); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got.Name != m.Name {
		t.Errorf("Name = %q, want %q", got.Name, m.Name)
	}
	if got.Networks["local"].ChainID != 31337 {
		t.Errorf("local ChainID = %d, want 31337", got.Networks["local"].ChainID)
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, sampleManifest)
	nested := filepath.Join(root, "src", "vaults")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("from root", func(t *testing.T) {
		got, err := Discover(root)
		if err != nil {
			t.Fatalf("Discover error: %v", err)
		}
		if got != root {
			t.Errorf("Discover = %q, want %q", got, root)
		}
	})

	t.Run("from nested dir", func(t *testing.T) {
		got, err := Discover(nested)
		if err != nil {
			t.Fatalf("Discover error: %v", err)
		}
		if got != root {
			t.Errorf("Discover = %q, want %q", got, root)
		}
	})

	t.Run("outside any project", func(t *testing.T) {
		_, err := Discover(t.TempDir())
		if !errors.Is(err, ErrNoProject) {
			t.Errorf("Discover error = %v, want ErrNoProject", err)
		}
	})
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, sampleManifest)

	gotRoot, m, err := Load(root)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if gotRoot != root {
		t.Errorf("root = %q, want %q", gotRoot, root)
	}
	if m.Name != "token-vault" {
		t.Errorf("Name = %q, want %q", m.Name, "token-vault")
	}
}

func TestEffectiveLayout(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		m := &Manifest{Name: "x"}
		l := m.EffectiveLayout()
		if l.Src != "src" || l.Out != "out" || l.Test != "test" || l.Script != "script" {
			t.Errorf("unexpected defaults: %+v", l)
		}
		if len(l.Libs) != 1 || l.Libs[0] != "lib" {
			t.Errorf("Libs = %v, want [lib]", l.Libs)
		}
	})

	t.Run("partial override", func(t *testing.T) {
		m := &Manifest{Name: "x", Layout: Layout{Src: "contracts"}}
		l := m.EffectiveLayout()
		if l.Src != "contracts" {
			t.Errorf("Src = %q, want %q", l.Src, "contracts")
		}
		if l.Out != "out" {
			t.Errorf("Out = %q, want %q", l.Out, "out")
		}
	})
}
