package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/corevault/corevault/internal/pathcfg"
	"github.com/stretchr/testify/require"
)

func newTestRoots(t *testing.T) pathcfg.Roots {
	t.Helper()
	dataRoot := t.TempDir()
	roots := pathcfg.Roots{
		MemoriesRoot: filepath.Join(dataRoot, "memories"),
		TasksRoot:    filepath.Join(dataRoot, "tasks"),
		DataRoot:     dataRoot,
	}
	require.NoError(t, os.MkdirAll(roots.MemoriesRoot, 0o700))
	require.NoError(t, os.MkdirAll(roots.TasksRoot, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(roots.MemoriesRoot, "note.md"), []byte("---\nid: m1\n---\n\nbody"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(roots.TasksRoot, "tasks.md"), []byte("---\nid: t1\n---\n"), 0o600))
	return roots
}

func TestSnapshotWritesManifestAndCopiesFiles(t *testing.T) {
	roots := newTestRoots(t)
	s, err := New(roots, 10)
	require.NoError(t, err)

	name, err := s.Snapshot("pre-delete")
	require.NoError(t, err)

	manifestPath := filepath.Join(roots.DataRoot, "backups", name, "backup-manifest.json")
	require.FileExists(t, manifestPath)

	copiedMemory := filepath.Join(roots.DataRoot, "backups", name, "memories", "note.md")
	require.FileExists(t, copiedMemory)
}

func TestRotationEvictsOldest(t *testing.T) {
	roots := newTestRoots(t)
	s, err := New(roots, 2)
	require.NoError(t, err)

	var names []string
	for i := 0; i < 4; i++ {
		name, err := s.Snapshot("periodic")
		require.NoError(t, err)
		names = append(names, name)
		time.Sleep(1100 * time.Millisecond)
	}

	remaining, err := s.listSnapshots()
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	require.Equal(t, names[len(names)-2:], remaining)
}

func TestCheckHealthFlagsUnexpectedFiles(t *testing.T) {
	roots := newTestRoots(t)
	require.NoError(t, os.WriteFile(filepath.Join(roots.MemoriesRoot, "stray.txt"), []byte("oops"), 0o600))

	s, err := New(roots, 10)
	require.NoError(t, err)

	report, err := s.CheckHealth(time.Hour)
	require.NoError(t, err)
	require.True(t, report.Overdue)
	require.Len(t, report.UnexpectedFiles, 1)
}

func TestRecoverRestoresDeletedFile(t *testing.T) {
	roots := newTestRoots(t)
	s, err := New(roots, 10)
	require.NoError(t, err)

	name, err := s.Snapshot("pre-delete")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(roots.MemoriesRoot, "note.md")))

	require.NoError(t, s.Recover(name))
	require.FileExists(t, filepath.Join(roots.MemoriesRoot, "note.md"))

	snaps, err := s.listSnapshots()
	require.NoError(t, err)
	foundPreRecovery := false
	for _, n := range snaps {
		if filepathContains(n, "pre-recovery") {
			foundPreRecovery = true
		}
	}
	require.True(t, foundPreRecovery)
}

func filepathContains(name, substr string) bool {
	for i := 0; i+len(substr) <= len(name); i++ {
		if name[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
