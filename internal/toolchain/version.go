package toolchain

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// versionPattern matches the semver token in `<tool> --version` output,
// e.g. "forge 0.2.0 (a1b2c3d 2024-01-15T00:00:00Z)".
var versionPattern = regexp.MustCompile(`\bv?(\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?)\b`)

// Version probes a tool with --version and parses the reported semver.
func Version(ctx context.Context, tool Tool) (*semver.Version, error) {
	out, err := Run(ctx, Invocation{
		Tool:   tool,
		Args:   []string{"--version"},
		Stdout: io.Discard,
		Stderr: io.Discard,
	})
	if err != nil {
		return nil, err
	}
	if out.ExitCode != 0 {
		return nil, fmt.Errorf("%s --version exited with code %d", tool, out.ExitCode)
	}

	return ParseVersionOutput(out.Stdout)
}

// ParseVersionOutput extracts a semver version from raw --version output.
func ParseVersionOutput(s string) (*semver.Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("no version found in %q", strings.TrimSpace(firstLine(s)))
	}
	v, err := semver.NewVersion(m[1])
	if err != nil {
		return nil, fmt.Errorf("parsing version %q: %w", m[1], err)
	}
	return v, nil
}

// CheckConstraint reports whether a version satisfies a manifest
// constraint such as ">=0.2.0". An empty constraint always passes.
func CheckConstraint(v *semver.Version, constraint string) (bool, error) {
	if constraint == "" {
		return true, nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("parsing toolchain constraint %q: %w", constraint, err)
	}
	return c.Check(v), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
