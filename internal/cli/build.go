package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kiln-labs/kiln/internal/project"
	"github.com/kiln-labs/kiln/internal/toolchain"
	"github.com/kiln-labs/kiln/internal/watch"
	"github.com/spf13/cobra"
)

var buildWatch bool

func init() {
	buildCmd.Flags().BoolVar(&buildWatch, "watch", false, "Rebuild when sources change")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile the project with the external toolchain",
	Long: `Compile the project's contracts by invoking the toolchain compiler
in the project root. With --watch, recompile whenever a source file changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, m, err := requireProject()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := gateToolchain(ctx, m); err != nil {
			return err
		}

		buildArgs := buildArgsFor(m)
		run := func() (*toolchain.Output, error) {
			tracef("exec: forge %v (dir %s)", buildArgs, root)
			return toolchain.Run(ctx, toolchain.Invocation{
				Tool:   toolchain.ToolForge,
				Args:   buildArgs,
				Dir:    root,
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			})
		}

		if buildWatch {
			return watchProject(ctx, cmd, root, m, func() {
				if out, err := run(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "build: %v\n", err)
				} else if out.ExitCode != 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "build failed (exit code %d)\n", out.ExitCode)
				}
			})
		}

		out, err := run()
		if err != nil {
			return err
		}
		if out.ExitCode != 0 {
			return fmt.Errorf("toolchain build exited with code %d", out.ExitCode)
		}
		return nil
	},
}

// buildArgsFor assembles compiler arguments from the manifest.
func buildArgsFor(m *project.Manifest) []string {
	args := []string{"build"}
	if m.Solc != "" {
		args = append(args, "--use", m.Solc)
	}
	return args
}

// gateToolchain verifies the toolchain version against the manifest
// constraint before doing any real work.
func gateToolchain(ctx context.Context, m *project.Manifest) error {
	if m.Toolchain == "" {
		return nil
	}
	v, err := toolchain.Version(ctx, toolchain.ToolForge)
	if err != nil {
		return fmt.Errorf("probing toolchain version: %w", err)
	}
	ok, err := toolchain.CheckConstraint(v, m.Toolchain)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("toolchain version %s does not satisfy the project constraint %q", v, m.Toolchain)
	}
	tracef("toolchain version %s satisfies %q", v, m.Toolchain)
	return nil
}

// watchProject runs fn once up front, then again on every debounced
// change under the project's source directories.
func watchProject(ctx context.Context, cmd *cobra.Command, root string, m *project.Manifest, fn func()) error {
	layout := m.EffectiveLayout()
	dirs := []string{
		filepath.Join(root, layout.Src),
		filepath.Join(root, layout.Test),
		filepath.Join(root, layout.Script),
	}
	ignore := append([]string{layout.Out, "cache", "broadcast", "node_modules"}, layout.Libs...)

	fn()
	fmt.Fprintln(cmd.ErrOrStderr(), "Watching for changes... (Ctrl+C to stop)")

	err := watch.Watch(ctx, watch.Options{Dirs: dirs, IgnoreDirs: ignore}, fn)
	if err == context.Canceled {
		fmt.Fprintln(cmd.ErrOrStderr(), "Stopped.")
		return nil
	}
	return err
}
