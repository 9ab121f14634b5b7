package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/felixgeelhaar/bolt/v3"
)

// DefaultRetention is the number of timestamped snapshots kept per file.
const DefaultRetention = 10

// BackupSet keeps timestamped snapshots of a persisted file, pruned FIFO by
// timestamp once the retention count is exceeded.
type BackupSet struct {
	dir       string
	retention int
	log       *bolt.Logger
}

// NewBackupSet creates the backup directory if needed. retention <= 0
// selects DefaultRetention.
func NewBackupSet(dir string, retention int, log *bolt.Logger) (*BackupSet, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &BackupSet{dir: dir, retention: retention, log: log}, nil
}

// Rotate copies the live file into the set under a timestamped name and
// prunes old snapshots. A missing live file is not an error; the first save
// of a record has nothing to rotate.
func (b *BackupSet) Rotate(livePath string) error {
	src, err := os.Open(livePath) // #nosec G304
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open live file for backup: %w", err)
	}
	defer src.Close()

	stem := strings.TrimSuffix(filepath.Base(livePath), filepath.Ext(livePath))
	name := fmt.Sprintf("%s_%s.json", stem, time.Now().UTC().Format("20060102T150405.000000000"))

	dst, err := os.OpenFile(filepath.Join(b.dir, name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to copy backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to close backup: %w", err)
	}

	if err := b.prune(stem); err != nil {
		b.log.Warn().Str("stem", stem).Err(err).Msg("backup pruning failed")
	}
	return nil
}

// snapshotPattern matches <stem>_<timestamp>.json with the timestamp digits
// spelled out, so a stem never captures snapshots of a longer stem that
// extends it ("alice" vs "alice_b").
func snapshotPattern(stem string) string {
	d := "[0-9]"
	ts := strings.Repeat(d, 8) + "T" + strings.Repeat(d, 6) + "." + strings.Repeat(d, 9)
	return stem + "_" + ts + ".json"
}

// Snapshots returns the snapshot names for a file stem, oldest first.
func (b *BackupSet) Snapshots(stem string) ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	pattern := snapshotPattern(stem)
	type snap struct {
		name string
		mod  time.Time
	}
	var snaps []snap
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ok, err := doublestar.Match(pattern, entry.Name()); err != nil || !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snaps = append(snaps, snap{name: entry.Name(), mod: info.ModTime()})
	}

	sort.Slice(snaps, func(i, j int) bool {
		if snaps[i].mod.Equal(snaps[j].mod) {
			return snaps[i].name < snaps[j].name
		}
		return snaps[i].mod.Before(snaps[j].mod)
	})

	names := make([]string, len(snaps))
	for i, s := range snaps {
		names[i] = s.name
	}
	return names, nil
}

func (b *BackupSet) prune(stem string) error {
	names, err := b.Snapshots(stem)
	if err != nil {
		return err
	}
	for len(names) > b.retention {
		if err := os.Remove(filepath.Join(b.dir, names[0])); err != nil {
			return fmt.Errorf("failed to remove old backup: %w", err)
		}
		names = names[1:]
	}
	return nil
}
