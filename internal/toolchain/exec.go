package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Invocation describes a single toolchain run.
type Invocation struct {
	Tool Tool
	Args []string
	Dir  string   // working directory; empty means inherit
	Env  []string // extra KEY=VALUE entries layered over the process env

	// Stdout and Stderr can be set for testing; defaults to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// Output captures the result of a toolchain run.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Run resolves the tool binary and executes it, streaming output to the
// configured writers while also capturing it. A non-zero toolchain exit
// is reported through Output.ExitCode, not as a Go error.
func Run(ctx context.Context, inv Invocation) (*Output, error) {
	bin, err := Resolve(inv.Tool)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, bin, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = layerEnv(os.Environ(), inv.Env)

	stdout := inv.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := inv.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = io.MultiWriter(stdout, &stdoutBuf)
	cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)

	err = cmd.Run()

	output := &Output{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			output.ExitCode = exitErr.ExitCode()
			return output, nil
		}
		return output, fmt.Errorf("executing %s: %w", inv.Tool, err)
	}

	output.ExitCode = 0
	return output, nil
}

// layerEnv overlays extra KEY=VALUE entries on a base environment,
// replacing existing keys rather than duplicating them.
func layerEnv(base, extra []string) []string {
	env := base
	for _, kv := range extra {
		eq := strings.IndexByte(kv, '=')
		if eq <= 0 {
			continue
		}
		env = setEnv(env, kv[:eq], kv[eq+1:])
	}
	return env
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
