package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/kiln-labs/kiln/internal/project"
)

// tmpSuffix is appended to the target dir during atomic clone.
const tmpSuffix = ".tmp"

// remappingsFile maps import prefixes to library source roots for the
// toolchain compiler.
const remappingsFile = "remappings.txt"

// Spec is a parsed dependency argument: owner/repo with an optional
// pinned version.
type Spec struct {
	Name    string // "owner/repo"
	Version string // "" means default branch HEAD
}

// ParseSpec parses "owner/repo" or "owner/repo@version".
func ParseSpec(arg string) (*Spec, error) {
	name := arg
	version := ""
	if at := strings.LastIndexByte(arg, '@'); at >= 0 {
		name, version = arg[:at], arg[at+1:]
		if version == "" {
			return nil, fmt.Errorf("empty version in %q", arg)
		}
	}

	parts := strings.Split(name, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("dependency %q must be owner/repo or owner/repo@version", arg)
	}

	if version != "" {
		if _, err := semver.NewVersion(strings.TrimPrefix(version, "v")); err != nil {
			return nil, fmt.Errorf("dependency version %q is not semver: %w", version, err)
		}
	}

	return &Spec{Name: name, Version: version}, nil
}

// Repo returns the repository name half of the spec ("repo" of "owner/repo").
func (s *Spec) Repo() string {
	return s.Name[strings.IndexByte(s.Name, '/')+1:]
}

// URL returns the https clone URL for the spec.
func (s *Spec) URL() string {
	return "https://github.com/" + s.Name + ".git"
}

// Install clones the dependency into the project's first lib directory,
// checks out the pinned tag when one is given, updates remappings.txt,
// and records the dependency in the manifest. The clone is atomic: a
// .tmp directory is renamed into place on success.
func Install(projectRoot string, m *project.Manifest, spec *Spec) (string, error) {
	if err := ensureGit(); err != nil {
		return "", err
	}

	libDir := filepath.Join(projectRoot, m.EffectiveLayout().Libs[0])
	targetDir := filepath.Join(libDir, spec.Repo())

	if _, err := os.Stat(targetDir); err == nil {
		return "", fmt.Errorf("%s already exists; run `update %s` to change version", targetDir, spec.Name)
	}

	tmpDir := targetDir + tmpSuffix
	_ = os.RemoveAll(tmpDir)

	if err := os.MkdirAll(libDir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", libDir, err)
	}

	if err := clone(tmpDir, spec); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("finalizing clone: %w", err)
	}

	if err := updateRemappings(projectRoot, m, spec); err != nil {
		return targetDir, err
	}

	recordDependency(m, spec)
	if err := project.Save(filepath.Join(projectRoot, project.ManifestFileName), m); err != nil {
		return targetDir, err
	}

	return targetDir, nil
}

// Update re-resolves an installed dependency to the version recorded in
// the manifest (or to a newly requested one). The new tree is cloned
// into a .tmp directory first; the installed library is only replaced
// once the clone has succeeded, so a failed update leaves it intact.
func Update(projectRoot string, m *project.Manifest, spec *Spec) (string, error) {
	if err := ensureGit(); err != nil {
		return "", err
	}

	dep := m.FindDependency(spec.Name)
	if dep == nil {
		return "", fmt.Errorf("dependency %s is not installed", spec.Name)
	}
	if spec.Version == "" {
		spec.Version = dep.Version
	}

	libDir := filepath.Join(projectRoot, m.EffectiveLayout().Libs[0])
	targetDir := filepath.Join(libDir, spec.Repo())
	tmpDir := targetDir + tmpSuffix
	_ = os.RemoveAll(tmpDir)

	if err := os.MkdirAll(libDir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", libDir, err)
	}

	if err := clone(tmpDir, spec); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}

	if err := os.RemoveAll(targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("removing %s: %w", targetDir, err)
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("finalizing clone: %w", err)
	}

	if err := updateRemappings(projectRoot, m, spec); err != nil {
		return targetDir, err
	}

	recordDependency(m, spec)
	if err := project.Save(filepath.Join(projectRoot, project.ManifestFileName), m); err != nil {
		return targetDir, err
	}

	return targetDir, nil
}

// clone performs a shallow clone, at the pinned tag when one is given.
// Both "1.2.3" and "v1.2.3" tag spellings are tried.
func clone(targetDir string, spec *Spec) error {
	if spec.Version == "" {
		return gitClone(targetDir, spec.URL(), "")
	}

	tag := strings.TrimPrefix(spec.Version, "v")
	if err := gitClone(targetDir, spec.URL(), tag); err == nil {
		return nil
	}
	_ = os.RemoveAll(targetDir)
	if err := gitClone(targetDir, spec.URL(), "v"+tag); err != nil {
		return fmt.Errorf("cloning %s at %s: %w", spec.Name, spec.Version, err)
	}
	return nil
}

func gitClone(targetDir, repoURL, tag string) error {
	args := []string{"clone", "--depth=1"}
	if tag != "" {
		args = append(args, "--branch", tag)
	}
	args = append(args, repoURL, targetDir)

	cmd := exec.Command("git", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git clone: %w\n%s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// updateRemappings adds a remapping line for the library unless one for
// the same prefix is already present. Existing lines are preserved.
func updateRemappings(projectRoot string, m *project.Manifest, spec *Spec) error {
	path := filepath.Join(projectRoot, remappingsFile)
	prefix := spec.Repo() + "/"
	libRel := m.EffectiveLayout().Libs[0] + "/" + spec.Repo()

	// Libraries with a src/ subdirectory map to it; flat ones to the root.
	target := libRel + "/"
	if _, err := os.Stat(filepath.Join(projectRoot, libRel, "src")); err == nil {
		target = libRel + "/src/"
	}

	existing := map[string]bool{}
	var lines []string
	if data, err := os.ReadFile(path); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			lines = append(lines, line)
			if eq := strings.IndexByte(line, '='); eq > 0 {
				existing[line[:eq]] = true
			}
		}
	}

	if existing[prefix] {
		return nil
	}
	lines = append(lines, prefix+"="+target)
	sort.Strings(lines)

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", remappingsFile, err)
	}
	return nil
}

func recordDependency(m *project.Manifest, spec *Spec) {
	if dep := m.FindDependency(spec.Name); dep != nil {
		dep.Version = spec.Version
		return
	}
	m.Dependencies = append(m.Dependencies, project.Dependency{
		Name:    spec.Name,
		Version: spec.Version,
	})
}

func removeDependency(m *project.Manifest, name string) {
	for i := range m.Dependencies {
		if m.Dependencies[i].Name == name {
			m.Dependencies = append(m.Dependencies[:i], m.Dependencies[i+1:]...)
			return
		}
	}
}

// ensureGit checks that git is available on PATH.
func ensureGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git is required but not found in PATH")
	}
	return nil
}
