// Package cli defines the kiln command tree. Commands are thin: they
// parse flags, locate the project, and delegate to the internal
// packages that own the behavior.
package cli
