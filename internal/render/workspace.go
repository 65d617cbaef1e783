package render

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Workspace is a private temporary directory holding one render's intermediate files.
type Workspace struct {
	dir string
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// Path returns the path of name inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// withWorkspace creates a workspace under root (the system temp dir when
// empty), runs fn, and removes the workspace on every return path.
func withWorkspace(root, id string, fn func(ws *Workspace) error) error {
	dir, err := os.MkdirTemp(root, "noface-"+id+"-")
	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("workspace cleanup failed", "dir", dir, "err", err)
		}
	}()

	return fn(&Workspace{dir: dir})
}
