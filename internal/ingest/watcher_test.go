package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForPath(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got, ok := <-ch:
			require.True(t, ok, "event channel closed before %s arrived", want)
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestWatcherEmitsExistingFilesOnInitialScan(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "invoice.txt")
	require.NoError(t, os.WriteFile(existing, []byte("Invoice INV-1"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, InitialScan: true})
	require.NoError(t, err)

	waitForPath(t, paths, existing)
}

func TestWatcherEmitsNewFiles(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, Debounce: 20 * time.Millisecond})
	require.NoError(t, err)

	created := filepath.Join(dir, "contract.md")
	require.NoError(t, os.WriteFile(created, []byte("# Contract"), 0o644))

	waitForPath(t, paths, created)
}

func TestWatcherIgnoresDisallowedExtensions(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.pdf"), []byte("%PDF"), 0o644))
	allowed := filepath.Join(dir, "after.txt")
	require.NoError(t, os.WriteFile(allowed, []byte("text"), 0o644))

	// the txt file arrives; the pdf never does
	waitForPath(t, paths, allowed)
	select {
	case got := <-paths:
		assert.NotEqual(t, filepath.Join(dir, "scan.pdf"), got)
	default:
	}
}

func TestWatcherCoalescesCreateBursts(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, Debounce: 10 * time.Millisecond})
	require.NoError(t, err)

	const n = 200
	want := map[string]bool{}
	for i := 0; i < n; i++ {
		p := filepath.Join(dir, fmt.Sprintf("doc-%03d.txt", i))
		want[p] = false
		require.NoError(t, os.WriteFile(p, []byte("burst"), 0o644))
	}

	deadline := time.After(10 * time.Second)
	remaining := n
	for remaining > 0 {
		select {
		case got, ok := <-paths:
			require.True(t, ok, "event channel closed with %d files outstanding", remaining)
			seen, known := want[got]
			require.True(t, known, "unexpected path %s", got)
			if !seen {
				want[got] = true
				remaining--
			}
		case <-deadline:
			t.Fatalf("timed out with %d of %d burst files undelivered", remaining, n)
		}
	}
}

func TestWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}

func TestWatcherClosesOnCancel(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	paths, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}})
	require.NoError(t, err)

	cancel()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-paths:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event channel did not close after cancel")
		}
	}
}
