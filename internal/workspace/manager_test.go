package workspace_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/remote-compute/internal/common"
	"github.com/joseph-ayodele/remote-compute/internal/workspace"
)

func newManager(t *testing.T) *workspace.Manager {
	t.Helper()
	m, err := workspace.NewManager(filepath.Join(t.TempDir(), "scratch"), nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestNewManager_CreatesRoot(t *testing.T) {
	m := newManager(t)
	info, err := os.Stat(m.Root())
	if err != nil {
		t.Fatalf("stat root: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory", m.Root())
	}
}

func TestNewManager_EmptyRoot(t *testing.T) {
	_, err := workspace.NewManager("  ", nil)
	if !errors.Is(err, common.ErrWorkspace) {
		t.Errorf("expected workspace error, got %v", err)
	}
}

func TestCreateAndDestroy(t *testing.T) {
	m := newManager(t)
	path, err := m.Create("job-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if filepath.Dir(path) != m.Root() {
		t.Errorf("workspace %s not directly under root %s", path, m.Root())
	}
	if err := os.WriteFile(filepath.Join(path, "kernel.cu"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m.Destroy(path)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected workspace removed, stat err=%v", err)
	}

	// second call is a no-op
	m.Destroy(path)
}

func TestCreate_ExistingDirectoryFails(t *testing.T) {
	m := newManager(t)
	if _, err := m.Create("dup"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := m.Create("dup")
	if !errors.Is(err, common.ErrWorkspace) {
		t.Errorf("expected workspace error for duplicate id, got %v", err)
	}
}

func TestCreate_RejectsPathLikeIDs(t *testing.T) {
	m := newManager(t)
	for _, id := range []string{"", ".", "..", "a/b", "../escape"} {
		if _, err := m.Create(id); err == nil {
			t.Errorf("expected error for job id %q", id)
		}
	}
}

func TestDestroy_RefusesOutsideRoot(t *testing.T) {
	m := newManager(t)
	outside := t.TempDir()
	m.Destroy(outside)
	m.Destroy(m.Root())
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("directory outside root was touched: %v", err)
	}
	if _, err := os.Stat(m.Root()); err != nil {
		t.Errorf("scratch root was removed: %v", err)
	}
}

func TestCreate_ConcurrentIDsNeverCollide(t *testing.T) {
	m := newManager(t)
	const n = 64
	paths := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := m.Create(uuid.NewString())
			if err != nil {
				t.Errorf("Create: %v", err)
				return
			}
			paths <- p
		}()
	}
	wg.Wait()
	close(paths)

	seen := make(map[string]bool)
	for p := range paths {
		if seen[p] {
			t.Errorf("workspace %s handed out twice", p)
		}
		seen[p] = true
	}
	if len(seen) != n {
		t.Errorf("expected %d workspaces, got %d", n, len(seen))
	}
}

func TestSweep_RemovesOnlyStaleDirectories(t *testing.T) {
	m := newManager(t)
	stale, err := m.Create(uuid.NewString())
	if err != nil {
		t.Fatal(err)
	}
	fresh, err := m.Create(uuid.NewString())
	if err != nil {
		t.Fatal(err)
	}
	foreign := filepath.Join(m.Root(), "someone-elses-data")
	if err := os.MkdirAll(filepath.Join(foreign, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-48 * time.Hour)
	for _, p := range []string{stale, foreign} {
		if err := os.Chtimes(p, old, old); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := m.Sweep(24 * time.Hour)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale workspace still present")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh workspace removed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(foreign, "nested")); err != nil {
		t.Errorf("directory not owned by a job was removed: %v", err)
	}
}
