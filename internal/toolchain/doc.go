// Package toolchain locates and executes the external contract toolchain
// binaries (forge, cast, anvil or compatible). Kiln never compiles,
// tests, or broadcasts anything itself: every such operation becomes a
// child process resolved through this package, with output streamed to
// the user and captured for inspection, and the child's exit code
// surfaced unwrapped.
package toolchain
