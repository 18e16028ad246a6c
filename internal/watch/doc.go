// Package watch reruns a callback when project sources change. Events
// are debounced so an editor save burst causes one rerun, and artifact
// directories (out, cache, lib) never trigger at all.
package watch
