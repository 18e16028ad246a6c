package project

// ManifestFileName is the name of the project manifest at the project root.
const ManifestFileName = "kiln.yaml"

// Manifest is the parsed kiln.yaml project manifest.
type Manifest struct {
	Name         string             `yaml:"name" json:"name"`
	Version      string             `yaml:"version" json:"version"`
	Toolchain    string             `yaml:"toolchain,omitempty" json:"toolchain,omitempty"`
	Solc         string             `yaml:"solc,omitempty" json:"solc,omitempty"`
	Layout       Layout             `yaml:"layout,omitempty" json:"layout,omitempty"`
	Deploy       Deploy             `yaml:"deploy,omitempty" json:"deploy,omitempty"`
	Dependencies []Dependency       `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Networks     map[string]Network `yaml:"networks,omitempty" json:"networks,omitempty"`
}

// Layout describes the project directory layout. Empty fields fall back
// to the conventional defaults (src/, out/, test/, script/, lib/).
type Layout struct {
	Src    string   `yaml:"src,omitempty" json:"src,omitempty"`
	Out    string   `yaml:"out,omitempty" json:"out,omitempty"`
	Test   string   `yaml:"test,omitempty" json:"test,omitempty"`
	Script string   `yaml:"script,omitempty" json:"script,omitempty"`
	Libs   []string `yaml:"libs,omitempty" json:"libs,omitempty"`
}

// Deploy holds deployment defaults used by `kiln deploy`.
type Deploy struct {
	Script string `yaml:"script,omitempty" json:"script,omitempty"`
}

// Dependency is an installed contract library, pinned to a version tag.
type Dependency struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version,omitempty" json:"version,omitempty"`
}

// Network is a named network profile. The RPC URL may be given literally
// (rpc_url) or indirectly as the name of an environment variable
// (rpc_url_env) resolved from the process env or the project .env file.
type Network struct {
	RPCURL    string `yaml:"rpc_url,omitempty" json:"rpc_url,omitempty"`
	RPCURLEnv string `yaml:"rpc_url_env,omitempty" json:"rpc_url_env,omitempty"`
	ChainID   uint64 `yaml:"chain_id,omitempty" json:"chain_id,omitempty"`
	Account   string `yaml:"account,omitempty" json:"account,omitempty"`
	Verify    bool   `yaml:"verify,omitempty" json:"verify,omitempty"`
}

// DefaultLayout returns the conventional project layout.
func DefaultLayout() Layout {
	return Layout{
		Src:    "src",
		Out:    "out",
		Test:   "test",
		Script: "script",
		Libs:   []string{"lib"},
	}
}

// EffectiveLayout returns the manifest layout with defaults applied to
// any empty field.
func (m *Manifest) EffectiveLayout() Layout {
	l := m.Layout
	def := DefaultLayout()
	if l.Src == "" {
		l.Src = def.Src
	}
	if l.Out == "" {
		l.Out = def.Out
	}
	if l.Test == "" {
		l.Test = def.Test
	}
	if l.Script == "" {
		l.Script = def.Script
	}
	if len(l.Libs) == 0 {
		l.Libs = def.Libs
	}
	return l
}

// FindDependency returns the dependency with the given name, or nil.
func (m *Manifest) FindDependency(name string) *Dependency {
	for i := range m.Dependencies {
		if m.Dependencies[i].Name == name {
			return &m.Dependencies[i]
		}
	}
	return nil
}
