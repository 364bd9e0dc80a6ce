package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Recover restores the memories/tasks/data trees from the snapshot named
// name: verify its manifest, take a pre-recovery snapshot of the current
// state, then atomically swap each subtree (move current aside, move
// backup into place).
func (s *Snapshotter) Recover(name string) error {
	dir := filepath.Join(s.backupsRoot, name)
	manifest, err := readManifest(dir)
	if err != nil {
		return fmt.Errorf("backup: verifying manifest for %s: %w", name, err)
	}

	if _, err := s.Snapshot("pre-recovery"); err != nil {
		return fmt.Errorf("backup: pre-recovery snapshot: %w", err)
	}

	swaps := []struct {
		from, to string
	}{
		{filepath.Join(dir, "memories"), manifest.Paths["memories"]},
		{filepath.Join(dir, "tasks"), manifest.Paths["tasks"]},
		{filepath.Join(dir, "data"), manifest.Paths["data"]},
	}

	for _, sw := range swaps {
		if err := atomicSwap(sw.from, sw.to); err != nil {
			return fmt.Errorf("backup: restoring %s: %w", sw.to, err)
		}
	}
	return nil
}

func readManifest(dir string) (Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "backup-manifest.json"))
	if err != nil {
		return Manifest{}, fmt.Errorf("backup: reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("backup: decoding manifest: %w", err)
	}
	if m.Version != ManifestVersion {
		return Manifest{}, fmt.Errorf("backup: unsupported manifest version %q", m.Version)
	}
	return m, nil
}

// atomicSwap moves the directory at to aside (into a sibling .bak-<pid>
// directory, left for the operator to clean up), then moves from into to's
// place. Both are on the same filesystem (same dataRoot), so os.Rename is
// atomic.
func atomicSwap(from, to string) error {
	if _, err := os.Stat(from); os.IsNotExist(err) {
		return nil // nothing to restore for this subtree
	}
	if _, err := os.Stat(to); err == nil {
		aside := to + ".bak-" + fmt.Sprint(os.Getpid())
		if err := os.Rename(to, aside); err != nil {
			return fmt.Errorf("moving current tree aside: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(to), 0o700); err != nil {
		return err
	}
	return os.Rename(from, to)
}
