package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// HealthReport covers snapshot freshness and on-disk file hygiene.
// Orphaned memory_connections are detected separately by
// store.Store.DetectOrphans, which needs the live index this package does
// not have; the corevaultd healthcheck command merges both.
type HealthReport struct {
	SnapshotCount     int
	LatestSnapshot    string
	LatestSnapshotAge time.Duration
	Overdue           bool
	UnexpectedFiles   []string
}

// CheckHealth inspects the backups directory for freshness (overdue if the
// most recent snapshot is older than 2x interval) and scans memoriesRoot/
// tasksRoot for files other than .md entity files and .lock files.
func (s *Snapshotter) CheckHealth(interval time.Duration) (HealthReport, error) {
	names, err := s.listSnapshots()
	if err != nil {
		return HealthReport{}, err
	}

	report := HealthReport{SnapshotCount: len(names)}
	if len(names) > 0 {
		latest := names[len(names)-1]
		report.LatestSnapshot = latest
		age := time.Since(snapshotTime(latest))
		report.LatestSnapshotAge = age
		if interval > 0 && age > 2*interval {
			report.Overdue = true
		}
	} else if interval > 0 {
		report.Overdue = true
	}

	for _, root := range []string{s.roots.MemoriesRoot, s.roots.TasksRoot} {
		unexpected, err := findUnexpectedFiles(root)
		if err != nil {
			return HealthReport{}, err
		}
		report.UnexpectedFiles = append(report.UnexpectedFiles, unexpected...)
	}

	return report, nil
}

func findUnexpectedFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".md") || strings.HasSuffix(path, ".lock") {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("backup: scanning %s: %w", root, err)
	}
	return out, nil
}
