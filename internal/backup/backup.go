// Package backup implements the Backup & Integrity subsystem: pre-mutation
// and periodic snapshots, rotation, a health check, and recovery.
package backup

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/corevault/corevault/internal/pathcfg"
)

// Manifest describes one snapshot's contents, written alongside the copied
// trees as backup-manifest.json. Fields mirror the on-disk layout the
// health check and recovery both need to reason about without re-walking
// the snapshot.
type Manifest struct {
	Timestamp  time.Time         `json:"timestamp"`
	Reason     string            `json:"reason"`
	Version    string            `json:"version"`
	Paths      map[string]string `json:"paths"`
	Contents   Contents          `json:"contents"`
	Statistics Statistics        `json:"statistics"`
	Settings   map[string]any    `json:"settings,omitempty"`
}

// Contents lists the relative file paths copied into each subtree.
type Contents struct {
	Memories []string `json:"memories"`
	Tasks    []string `json:"tasks"`
	Data     []string `json:"data"`
}

// Statistics summarizes a snapshot for the health check and listings.
type Statistics struct {
	Tasks     int   `json:"tasks"`
	Memories  int   `json:"memories"`
	DataFiles int   `json:"dataFiles"`
	TotalSize int64 `json:"totalSize"`
}

const ManifestVersion = "1"

// Snapshotter takes and manages snapshots of the three data roots under
// dataRoot/backups.
type Snapshotter struct {
	roots       pathcfg.Roots
	backupsRoot string
	maxBackups  int
}

// New returns a Snapshotter rooted at roots.DataRoot/backups, retaining at
// most maxBackups snapshots (the N most recent by parsed directory
// timestamp).
func New(roots pathcfg.Roots, maxBackups int) (*Snapshotter, error) {
	if maxBackups <= 0 {
		maxBackups = 10
	}
	backupsRoot := filepath.Join(roots.DataRoot, "backups")
	if err := os.MkdirAll(backupsRoot, 0o700); err != nil {
		return nil, fmt.Errorf("backup: creating %s: %w", backupsRoot, err)
	}
	return &Snapshotter{roots: roots, backupsRoot: backupsRoot, maxBackups: maxBackups}, nil
}

// Snapshot copies memoriesRoot/tasksRoot/dataRoot into a new
// <iso-ts>-<reason> directory, writes its manifest, and rotates old
// snapshots. It returns the new snapshot's directory name.
func (s *Snapshotter) Snapshot(reason string) (string, error) {
	name := fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102T150405Z"), sanitizeReason(reason))
	dir := filepath.Join(s.backupsRoot, name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("backup: creating snapshot dir: %w", err)
	}

	contents := Contents{}
	stats := Statistics{}

	memFiles, memSize, err := copyTree(s.roots.MemoriesRoot, filepath.Join(dir, "memories"))
	if err != nil {
		return "", err
	}
	contents.Memories, stats.Memories = memFiles, len(memFiles)

	taskFiles, taskSize, err := copyTree(s.roots.TasksRoot, filepath.Join(dir, "tasks"))
	if err != nil {
		return "", err
	}
	contents.Tasks, stats.Tasks = taskFiles, len(taskFiles)

	dataFiles, dataSize, err := copyTree(filepath.Join(s.roots.DataRoot), filepath.Join(dir, "data"), s.backupsRoot)
	if err != nil {
		return "", err
	}
	contents.Data, stats.DataFiles = dataFiles, len(dataFiles)

	stats.TotalSize = memSize + taskSize + dataSize

	manifest := Manifest{
		Timestamp: time.Now().UTC(),
		Reason:    reason,
		Version:   ManifestVersion,
		Paths: map[string]string{
			"memories": s.roots.MemoriesRoot,
			"tasks":    s.roots.TasksRoot,
			"data":     s.roots.DataRoot,
		},
		Contents:   contents,
		Statistics: stats,
	}
	if err := writeManifest(dir, manifest); err != nil {
		return "", err
	}

	if err := s.rotate(); err != nil {
		return name, err
	}
	return name, nil
}

func sanitizeReason(reason string) string {
	if reason == "" {
		return "snapshot"
	}
	var b strings.Builder
	for _, r := range reason {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	s := b.String()
	if s == "" {
		return "snapshot"
	}
	return s
}

func writeManifest(dir string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("backup: marshaling manifest: %w", err)
	}
	path := filepath.Join(dir, "backup-manifest.json")
	tmp, err := os.CreateTemp(dir, ".manifest-*")
	if err != nil {
		return fmt.Errorf("backup: creating temp manifest: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("backup: writing manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("backup: closing manifest: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("backup: renaming manifest into place: %w", err)
	}
	return os.Chmod(path, 0o600)
}

// copyTree copies every regular file under src into dst, skipping any
// subtree rooted at skip (used to keep a dataRoot snapshot from recursively
// copying its own backups directory).
func copyTree(src, dst string, skip ...string) ([]string, int64, error) {
	var files []string
	var total int64

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		for _, s := range skip {
			if path == s || strings.HasPrefix(path, s+string(filepath.Separator)) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o600); err != nil {
			return err
		}
		files = append(files, rel)
		total += int64(len(data))
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, 0, fmt.Errorf("backup: copying %s: %w", src, err)
	}
	return files, total, nil
}

// rotate evicts the oldest snapshots beyond maxBackups, ordered by the
// timestamp parsed from each directory name.
func (s *Snapshotter) rotate() error {
	names, err := s.listSnapshots()
	if err != nil {
		return err
	}
	if len(names) <= s.maxBackups {
		return nil
	}
	for _, name := range names[:len(names)-s.maxBackups] {
		if err := os.RemoveAll(filepath.Join(s.backupsRoot, name)); err != nil {
			return fmt.Errorf("backup: evicting %s: %w", name, err)
		}
	}
	return nil
}

// listSnapshots returns snapshot directory names sorted oldest first.
func (s *Snapshotter) listSnapshots() ([]string, error) {
	entries, err := os.ReadDir(s.backupsRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("backup: listing %s: %w", s.backupsRoot, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool { return snapshotTime(names[i]).Before(snapshotTime(names[j])) })
	return names, nil
}

func snapshotTime(name string) time.Time {
	parts := strings.SplitN(name, "-", 2)
	t, err := time.Parse("20060102T150405Z", parts[0])
	if err != nil {
		return time.Time{}
	}
	return t
}
