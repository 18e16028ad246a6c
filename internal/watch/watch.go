package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces editor save bursts into a single rerun.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a watch session.
type Options struct {
	// Dirs are the roots to watch, recursively.
	Dirs []string
	// IgnoreDirs are directory base names that are never descended into.
	IgnoreDirs []string
	// Debounce is the quiet period before fn fires; zero means DefaultDebounce.
	Debounce time.Duration
}

// Watch blocks until ctx is done, invoking fn once per debounced burst
// of filesystem changes under the watched roots. fn runs on the watch
// goroutine, so a slow fn naturally throttles reruns.
func Watch(ctx context.Context, opts Options, fn func()) error {
	debounce := opts.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range opts.Dirs {
		if err := addRecursive(watcher, dir, opts.IgnoreDirs); err != nil {
			return err
		}
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ignored(event.Name, opts.IgnoreDirs) {
				continue
			}
			// New directories need to join the watch set.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addRecursive(watcher, event.Name, opts.IgnoreDirs)
				}
			}
			if !pending {
				pending = true
			} else if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)

		case <-timer.C:
			if pending {
				pending = false
				fn()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}

// addRecursive registers dir and all non-ignored subdirectories.
// A missing dir is skipped: projects don't always have every layout dir.
func addRecursive(watcher *fsnotify.Watcher, dir string, ignoreDirs []string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if path != dir && (strings.HasPrefix(base, ".") || contains(ignoreDirs, base)) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// ignored reports whether a path sits under an ignored or hidden
// directory, or looks like an editor temp file.
func ignored(path string, ignoreDirs []string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
		if contains(ignoreDirs, part) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
