// Package store manages the on-disk workspace: uploaded inputs under
// uploads/, generated artifacts under outputs/, and the retention
// sweep over both. There is no database; processing history is not
// persisted.
package store

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/invoice-cli/internal/config"
)

// StoredFile describes one file saved into the workspace.
type StoredFile struct {
	// Filename is the original name as uploaded.
	Filename string `json:"filename"`
	// StoredName is the collision-free on-disk name.
	StoredName string `json:"stored_name"`
	// Path is the absolute or workspace-relative location on disk.
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Workspace is the uploads/outputs directory pair.
type Workspace struct {
	uploadsDir string
	outputsDir string
	retention  time.Duration
}

// NewWorkspace creates the workspace directories if needed.
func NewWorkspace(cfg config.WorkspaceConfig) (*Workspace, error) {
	for _, dir := range []string{cfg.UploadsDir, cfg.OutputsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "store: create workspace dir %s", dir)
		}
	}
	return &Workspace{
		uploadsDir: cfg.UploadsDir,
		outputsDir: cfg.OutputsDir,
		retention:  time.Duration(cfg.RetentionHours) * time.Hour,
	}, nil
}

// Retention is the configured default sweep age.
func (w *Workspace) Retention() time.Duration {
	return w.retention
}

// SaveUpload stores an uploaded file under a timestamped name so
// repeated uploads of the same filename never collide. A uuid suffix
// resolves same-second collisions.
func (w *Workspace) SaveUpload(filename string, r io.Reader) (*StoredFile, error) {
	stored := time.Now().UTC().Format("20060102_150405") + "_" + sanitizeFilename(filename)
	path := filepath.Join(w.uploadsDir, stored)

	if _, err := os.Stat(path); err == nil {
		ext := filepath.Ext(stored)
		stored = strings.TrimSuffix(stored, ext) + "_" + uuid.NewString()[:8] + ext
		path = filepath.Join(w.uploadsDir, stored)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "store: create upload %s", stored)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, eris.Wrapf(err, "store: write upload %s", stored)
	}
	if err := f.Close(); err != nil {
		return nil, eris.Wrapf(err, "store: close upload %s", stored)
	}

	return &StoredFile{
		Filename:   filename,
		StoredName: stored,
		Path:       path,
		Size:       n,
	}, nil
}

// OutputPath resolves a generated artifact name inside outputs/.
// Names carrying path separators or traversal are rejected so the
// download handler cannot be walked out of the directory.
func (w *Workspace) OutputPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", eris.Errorf("store: invalid artifact name %q", name)
	}
	return filepath.Join(w.outputsDir, name), nil
}

// OpenOutput opens a generated artifact for reading.
func (w *Workspace) OpenOutput(name string) (*os.File, error) {
	path, err := w.OutputPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "store: open artifact %s", name)
	}
	return f, nil
}

// Sweep removes files older than maxAge from both directories and
// returns how many were removed. Unremovable files are logged and
// skipped; the sweep always finishes.
func (w *Workspace) Sweep(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, dir := range []string{w.uploadsDir, w.outputsDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return removed, eris.Wrapf(err, "store: read dir %s", dir)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				zap.L().Warn("sweep: remove failed",
					zap.String("path", path),
					zap.Error(err),
				)
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// SweepCandidates lists the files a Sweep with the same maxAge would
// remove, without removing anything.
func (w *Workspace) SweepCandidates(maxAge time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-maxAge)
	var names []string

	for _, dir := range []string{w.uploadsDir, w.outputsDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, eris.Wrapf(err, "store: read dir %s", dir)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
			names = append(names, filepath.Join(dir, entry.Name()))
		}
	}
	return names, nil
}

// sanitizeFilename strips path components and shell-hostile runes
// from a client-supplied filename.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}
