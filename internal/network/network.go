package network

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kiln-labs/kiln/internal/project"
)

// EnvFileName is the project-local secrets file, loaded but never written.
const EnvFileName = ".env"

// Resolved is a network profile with all indirection flattened: the RPC
// URL is concrete and ready to hand to the toolchain.
type Resolved struct {
	Name    string
	RPCURL  string
	ChainID uint64
	Account string
	Verify  bool
}

// Resolve flattens the named profile from the manifest. An rpc_url_env
// indirection is looked up in the process environment first, then in the
// project's .env file. A profile that resolves to no RPC URL is an error.
func Resolve(projectRoot string, m *project.Manifest, name string) (*Resolved, error) {
	prof, ok := m.Networks[name]
	if !ok {
		return nil, fmt.Errorf("network %q not defined in %s (available: %s)",
			name, project.ManifestFileName, strings.Join(Names(m), ", "))
	}

	rpcURL := prof.RPCURL
	if prof.RPCURLEnv != "" {
		if v, found := lookupEnv(projectRoot, prof.RPCURLEnv); found {
			rpcURL = v
		}
	}
	if rpcURL == "" {
		if prof.RPCURLEnv != "" {
			return nil, fmt.Errorf("network %q: %s is not set (export it or add it to %s)",
				name, prof.RPCURLEnv, EnvFileName)
		}
		return nil, fmt.Errorf("network %q has no rpc_url", name)
	}

	return &Resolved{
		Name:    name,
		RPCURL:  rpcURL,
		ChainID: prof.ChainID,
		Account: prof.Account,
		Verify:  prof.Verify,
	}, nil
}

// Names returns the sorted profile names defined in the manifest.
func Names(m *project.Manifest) []string {
	names := make([]string, 0, len(m.Networks))
	for n := range m.Networks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// lookupEnv resolves a variable with precedence: process env, then the
// project .env file. A missing .env file is not an error.
func lookupEnv(projectRoot, key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, true
	}

	envMap, err := godotenv.Read(filepath.Join(projectRoot, EnvFileName))
	if err != nil {
		return "", false
	}
	if v, ok := envMap[key]; ok && v != "" {
		return v, true
	}
	return "", false
}
