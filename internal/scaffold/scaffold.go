package scaffold

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/kiln-labs/kiln/internal/project"
)

// namePlaceholder in a template filename is replaced with the derived
// contract name, e.g. "__Name__.t.sol.tmpl" → "FundMe.t.sol".
const namePlaceholder = "__Name__"

// Data holds all template variables available to scaffold templates.
type Data struct {
	Name         string // e.g., "fund-me"
	ContractName string // Derived: "FundMe"
	Description  string // Human-readable description
	Version      string // Semver, e.g., "0.1.0"
	Solc         string // Solidity compiler pin, e.g., "0.8.19"
	Year         int    // Current year
}

// Result holds the outcome of a scaffold generation.
type Result struct {
	OutputDir string
	Files     []string
	Warnings  []string
}

// NewData creates a Data with derived fields populated.
func NewData(name, solc string) *Data {
	return &Data{
		Name:         name,
		ContractName: ContractName(name),
		Description:  fmt.Sprintf("Kiln project: %s", name),
		Version:      "0.1.0",
		Solc:         solc,
		Year:         time.Now().Year(),
	}
}

// ContractName converts a kebab-case project name into a contract
// identifier, e.g. "fund-me" → "FundMe".
func ContractName(name string) string {
	parts := strings.Split(name, "-")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// GenerateProject creates a new project from the "project" template set.
// The output directory must be empty (or absent). The generated manifest
// is validated against the project schema; issues become warnings.
func GenerateProject(data *Data, outputDir string) (*Result, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	// Check for existing files to prevent accidental overwrites.
	existing, err := os.ReadDir(outputDir)
	if err == nil && len(existing) > 0 {
		return nil, fmt.Errorf("output directory %s is not empty; remove existing files first", outputDir)
	}

	result, err := render("project", data, outputDir, false)
	if err != nil {
		return nil, err
	}

	// Validate the generated manifest against the JSON Schema.
	manifestFile := filepath.Join(outputDir, project.ManifestFileName)
	if _, err := os.Stat(manifestFile); err == nil {
		valResult, valErr := project.ValidateFile(manifestFile)
		if valErr != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Could not validate manifest: %v", valErr))
		} else {
			for _, issue := range valResult.Issues {
				msg := issue.Message
				if issue.Path != "" {
					msg = issue.Path + ": " + msg
				}
				result.Warnings = append(result.Warnings, msg)
			}
			result.Warnings = append(result.Warnings, valResult.Warnings...)
		}
	}

	return result, nil
}

// GenerateInto renders a single-file template set ("contract", "script",
// "test") into an existing directory. Existing target files are an error;
// nothing is written until all targets are known to be free.
func GenerateInto(setName string, data *Data, destDir string) (*Result, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", destDir, err)
	}
	return render(setName, data, destDir, true)
}

// render walks the embedded template set and writes rendered files under
// outputDir, preserving subdirectories. With checkEach, each individual
// target file must not already exist.
func render(setName string, data *Data, outputDir string, checkEach bool) (*Result, error) {
	templatesDir := "templates/" + setName

	// Verify template set exists in embedded FS.
	if _, err := fs.Stat(scaffoldFS, templatesDir); err != nil {
		return nil, fmt.Errorf("template set %q not found: %w", setName, err)
	}

	result := &Result{OutputDir: outputDir}

	// Collect targets first so existence checks happen before any write.
	type renderTarget struct {
		tmplPath string
		relOut   string
	}
	var targets []renderTarget

	err := fs.WalkDir(scaffoldFS, templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(templatesDir, path)
		if err != nil {
			return err
		}
		rel = strings.TrimSuffix(rel, ".tmpl")
		rel = strings.ReplaceAll(rel, namePlaceholder, data.ContractName)
		targets = append(targets, renderTarget{tmplPath: path, relOut: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking template set %q: %w", setName, err)
	}

	if checkEach {
		for _, t := range targets {
			outPath := filepath.Join(outputDir, t.relOut)
			if _, err := os.Stat(outPath); err == nil {
				return nil, fmt.Errorf("%s already exists; refusing to overwrite", outPath)
			}
		}
	}

	for _, t := range targets {
		tmplBytes, err := fs.ReadFile(scaffoldFS, t.tmplPath)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", t.tmplPath, err)
		}

		tmpl, err := template.New(filepath.Base(t.tmplPath)).Parse(string(tmplBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", t.tmplPath, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("executing template %s: %w", t.tmplPath, err)
		}

		outPath := filepath.Join(outputDir, t.relOut)
		if dir := filepath.Dir(outPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("creating %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", outPath, err)
		}

		result.Files = append(result.Files, t.relOut)
	}

	return result, nil
}
