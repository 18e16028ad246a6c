package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kiln-labs/kiln/internal/project"
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// validateName enforces the lowercase-kebab naming rule shared by
// projects and scaffolded files.
func validateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid name %q: use lowercase letters, digits, and hyphens, starting with a letter or digit", name)
	}
	return nil
}

// requireProject loads the project enclosing the current directory.
func requireProject() (string, *project.Manifest, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("getting current directory: %w", err)
	}
	root, m, err := project.Load(cwd)
	if err == project.ErrNoProject {
		return "", nil, fmt.Errorf("%w (run `kiln init <name>` to start one)", err)
	}
	return root, m, err
}

// readLine reads one line from r, trimming the trailing newline.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptSecret prints a prompt on stderr and reads a line from the
// command's stdin. Secrets go through stdin so they never land in argv
// or shell history.
func promptSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := readLine(cmd.InOrStdin())
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// tracef prints a trace line to stderr when --verbose is set.
func tracef(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
