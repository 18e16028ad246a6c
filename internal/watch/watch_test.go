package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIgnored(t *testing.T) {
	ignoreDirs := []string{"out", "cache", "lib"}

	tests := []struct {
		path string
		want bool
	}{
		{"src/FundMe.sol", false},
		{"test/FundMe.t.sol", false},
		{"out/FundMe.sol/FundMe.json", true},
		{"cache/solidity-files-cache.json", true},
		{"lib/forge-std/src/Test.sol", true},
		{"src/.FundMe.sol.swp", true},
		{"src/FundMe.sol~", true},
		{".git/index", true},
		{"src/vaults/Vault.sol", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := ignored(tt.path, ignoreDirs); got != tt.want {
				t.Errorf("ignored(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestWatch_FiresOnChange(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	if err := os.MkdirAll(srcDir, 0755); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, Options{
			Dirs:     []string{srcDir},
			Debounce: 20 * time.Millisecond,
		}, func() {
			fired <- struct{}{}
		})
	}()

	// Give the watcher time to register before touching files.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(srcDir, "FundMe.sol"), []byte("contract FundMe {}"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("watch callback did not fire")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Watch returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 16)
	go func() {
		_ = Watch(ctx, Options{
			Dirs:     []string{dir},
			Debounce: 150 * time.Millisecond,
		}, func() {
			fired <- struct{}{}
		})
	}()

	time.Sleep(100 * time.Millisecond)

	// A burst of writes inside the debounce window coalesces to one rerun.
	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, "file"+string(rune('a'+i))+".sol")
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("watch callback did not fire")
	}

	select {
	case <-fired:
		t.Error("burst produced more than one callback")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatch_MissingDirSkipped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Watch(ctx, Options{
		Dirs: []string{filepath.Join(t.TempDir(), "does-not-exist")},
	}, func() {})
	if err != context.Canceled {
		t.Errorf("Watch returned %v, want context.Canceled", err)
	}
}
