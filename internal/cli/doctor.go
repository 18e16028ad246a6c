package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kiln-labs/kiln/internal/config"
	"github.com/kiln-labs/kiln/internal/keystore"
	"github.com/kiln-labs/kiln/internal/network"
	"github.com/kiln-labs/kiln/internal/platform"
	"github.com/kiln-labs/kiln/internal/project"
	"github.com/kiln-labs/kiln/internal/toolchain"
	"github.com/spf13/cobra"
)

var doctorFix bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Repair fixable issues (permissions)")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the toolchain and project",
	Long: `Run diagnostic checks: toolchain binaries and versions, git, the
project manifest, network env indirection, and keystore permissions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		w := cmd.OutOrStdout()

		checkToolchain(ctx, w)
		checkGit(w)
		checkProject(ctx, w)
		checkKeystore(w, doctorFix)
		return nil
	},
}

func checkToolchain(ctx context.Context, w io.Writer) {
	fmt.Fprintln(w, "Toolchain check:")
	for _, tool := range []toolchain.Tool{toolchain.ToolForge, toolchain.ToolCast, toolchain.ToolNode} {
		bin, err := toolchain.Resolve(tool)
		if err != nil {
			fmt.Fprintf(w, "  [MISS] %s: %v\n", tool, err)
			continue
		}
		v, err := toolchain.Version(ctx, tool)
		if err != nil {
			fmt.Fprintf(w, "  [WARN] %s at %s (version unreadable: %v)\n", tool, bin, err)
			continue
		}
		fmt.Fprintf(w, "  [ OK ] %s %s at %s\n", tool, v, bin)
	}
}

func checkGit(w io.Writer) {
	if _, err := exec.LookPath("git"); err != nil {
		fmt.Fprintln(w, "  [MISS] git not found on PATH (required by `kiln install`)")
		return
	}
	fmt.Fprintln(w, "  [ OK ] git on PATH")
}

func checkProject(ctx context.Context, w io.Writer) {
	fmt.Fprintln(w, "Project check:")

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] getting current directory: %v\n", err)
		return
	}
	root, m, err := project.Load(cwd)
	if err == project.ErrNoProject {
		fmt.Fprintln(w, "  [SKIP] not inside a project")
		return
	}
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return
	}
	fmt.Fprintf(w, "  [ OK ] project %q at %s\n", m.Name, root)

	manifestPath := filepath.Join(root, project.ManifestFileName)
	result, err := project.ValidateFile(manifestPath)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] validating manifest: %v\n", err)
	} else {
		if result.Valid {
			fmt.Fprintln(w, "  [ OK ] manifest validates against schema")
		}
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "  [WARN] manifest %s: %s\n", issue.Path, issue.Message)
		}
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  [WARN] manifest: %s\n", warning)
		}
	}

	if m.Toolchain != "" {
		if v, err := toolchain.Version(ctx, toolchain.ToolForge); err != nil {
			fmt.Fprintf(w, "  [WARN] cannot check toolchain constraint %q: %v\n", m.Toolchain, err)
		} else if ok, cerr := toolchain.CheckConstraint(v, m.Toolchain); cerr != nil {
			fmt.Fprintf(w, "  [FAIL] %v\n", cerr)
		} else if !ok {
			fmt.Fprintf(w, "  [FAIL] toolchain %s does not satisfy constraint %q\n", v, m.Toolchain)
		} else {
			fmt.Fprintf(w, "  [ OK ] toolchain %s satisfies %q\n", v, m.Toolchain)
		}
	}

	// Every network that resolves through an env var should resolve now.
	for _, name := range network.Names(m) {
		if _, err := network.Resolve(root, m, name); err != nil {
			fmt.Fprintf(w, "  [WARN] %v\n", err)
		} else {
			fmt.Fprintf(w, "  [ OK ] network %q resolves\n", name)
		}
	}

	envExample := filepath.Join(root, network.EnvFileName+".example")
	envFile := filepath.Join(root, network.EnvFileName)
	if _, err := os.Stat(envExample); err == nil {
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			fmt.Fprintf(w, "  [WARN] %s exists but %s does not; copy and fill it in\n",
				network.EnvFileName+".example", network.EnvFileName)
		}
	}
}

func checkKeystore(w io.Writer, fix bool) {
	fmt.Fprintln(w, "Keystore check:")

	dir := config.KeystoreDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		fmt.Fprintln(w, "  [SKIP] no keystore yet")
		return
	}

	checkPerm(w, dir, keystore.DirPerm, fix)

	store := keystore.New(dir)
	names, err := store.List()
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return
	}
	for _, name := range names {
		checkPerm(w, store.Path(name), keystore.FilePerm, fix)
	}
}

func checkPerm(w io.Writer, path string, want os.FileMode, fix bool) {
	ok, err := platform.PermsMatch(path, want)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", path, err)
		return
	}
	if ok {
		fmt.Fprintf(w, "  [ OK ] %s has %o\n", path, want)
		return
	}
	if fix {
		if err := platform.Chmod(path, want); err != nil {
			fmt.Fprintf(w, "  [FAIL] chmod %s: %v\n", path, err)
			return
		}
		fmt.Fprintf(w, "  [FIX ] %s set to %o\n", path, want)
		return
	}
	fmt.Fprintf(w, "  [WARN] %s should be %o (run with --fix)\n", path, want)
}
