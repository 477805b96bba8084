package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/remote-compute/internal/common"
)

// Manager owns the scratch root and the per-job directories beneath it.
// Job directories are disjoint by construction, so no locking is needed.
type Manager struct {
	root   string
	logger *slog.Logger
}

// NewManager ensures root exists and returns a manager rooted there.
func NewManager(root string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, common.WorkspaceError("scratch root is required", common.ErrInvalidInput)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, common.WorkspaceError("resolve scratch root", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		logger.Error("failed to create scratch root", "root", abs, "error", err)
		return nil, common.WorkspaceError("create scratch root", err)
	}
	return &Manager{root: abs, logger: logger}, nil
}

// Root returns the absolute scratch root.
func (m *Manager) Root() string {
	return m.root
}

// Create makes the directory for jobID. It fails if the directory already
// exists, so two jobs can never share a workspace.
func (m *Manager) Create(jobID string) (string, error) {
	if jobID == "" || jobID != filepath.Base(jobID) || jobID == "." || jobID == ".." {
		return "", common.WorkspaceError(fmt.Sprintf("invalid job id %q", jobID), common.ErrInvalidInput)
	}
	path := filepath.Join(m.root, jobID)
	if err := os.Mkdir(path, 0o700); err != nil {
		m.logger.Error("failed to create workspace", "job_id", jobID, "path", path, "error", err)
		return "", common.WorkspaceError("create workspace", err)
	}
	m.logger.Debug("workspace created", "job_id", jobID, "path", path)
	return path, nil
}

// Destroy removes path and everything under it. It is idempotent and
// best-effort: failures are logged and never returned.
func (m *Manager) Destroy(path string) {
	if path == "" {
		return
	}
	if !m.owns(path) {
		m.logger.Error("refusing to remove path outside scratch root", "path", path, "root", m.root)
		return
	}
	if err := os.RemoveAll(path); err != nil {
		m.logger.Warn("failed to remove workspace", "path", path, "error", err)
		return
	}
	m.logger.Debug("workspace removed", "path", path)
}

// Sweep removes job directories left behind by earlier runs whose
// modification time is older than olderThan. Only directories named by a job
// id are considered; anything else under the root is left alone. It returns
// how many were removed.
func (m *Manager) Sweep(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return 0, common.WorkspaceError("read scratch root", err)
	}
	cutoff := time.Now().Add(-olderThan)
	removed := 0
	var errs []error
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := uuid.Parse(e.Name()); err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(m.root, e.Name())
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
		m.logger.Info("swept stale workspace", "path", path, "modified", info.ModTime())
	}
	if len(errs) > 0 {
		return removed, common.WorkspaceError("sweep scratch root", errors.Join(errs...))
	}
	return removed, nil
}

func (m *Manager) owns(path string) bool {
	rel, err := filepath.Rel(m.root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
