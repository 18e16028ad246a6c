package toolchain

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/kiln-labs/kiln/internal/branding"
	"github.com/kiln-labs/kiln/internal/config"
)

// Tool identifies one of the external toolchain binaries kiln drives.
type Tool string

const (
	// ToolForge is the compiler / test runner / script executor.
	ToolForge Tool = "forge"
	// ToolCast is the transaction and RPC utility.
	ToolCast Tool = "cast"
	// ToolNode is the local development node.
	ToolNode Tool = "anvil"
)

// configKey returns the config key holding a binary override for a tool.
func configKey(tool Tool) string {
	switch tool {
	case ToolForge:
		return config.KeyForgeBin
	case ToolCast:
		return config.KeyCastBin
	case ToolNode:
		return config.KeyNodeBin
	default:
		return ""
	}
}

// envVar returns the env var name holding a binary override for a tool,
// e.g. KILN_FORGE_BIN.
func envVar(tool Tool) string {
	return branding.EnvVar(strings.ToUpper(string(tool)) + "_BIN")
}

// Resolve returns the executable path for a tool, checking (in order):
//  1. <PREFIX>_<TOOL>_BIN env var
//  2. config key toolchain.<tool>_bin
//  3. PATH lookup of the tool's conventional name
//
// A miss is a diagnosed error naming the binary and how to override it.
func Resolve(tool Tool) (string, error) {
	if v := os.Getenv(envVar(tool)); v != "" {
		if _, err := os.Stat(v); err != nil {
			return "", fmt.Errorf("%s (from %s) not found: %w", v, envVar(tool), err)
		}
		return v, nil
	}

	if key := configKey(tool); key != "" {
		if v := config.Get(key); v != "" {
			if _, err := os.Stat(v); err != nil {
				return "", fmt.Errorf("%s (from config %s) not found: %w", v, key, err)
			}
			return v, nil
		}
	}

	path, err := exec.LookPath(string(tool))
	if err != nil {
		return "", fmt.Errorf(
			"toolchain binary %q not found on PATH: install it or set %s / config %s",
			tool, envVar(tool), configKey(tool))
	}
	return path, nil
}
