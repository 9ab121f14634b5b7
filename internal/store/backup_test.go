package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBackupSet_RotateMissingLiveFile(t *testing.T) {
	b, err := NewBackupSet(t.TempDir(), 10, testLogger())
	if err != nil {
		t.Fatalf("NewBackupSet failed: %v", err)
	}

	if err := b.Rotate(filepath.Join(t.TempDir(), "nope.json")); err != nil {
		t.Errorf("rotating a missing live file should be a no-op, got %v", err)
	}
	snaps, err := b.Snapshots("nope")
	if err != nil {
		t.Fatalf("Snapshots failed: %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("expected no snapshots, got %v", snaps)
	}
}

func TestBackupSet_RotatePreservesContent(t *testing.T) {
	liveDir := t.TempDir()
	b, err := NewBackupSet(t.TempDir(), 10, testLogger())
	if err != nil {
		t.Fatalf("NewBackupSet failed: %v", err)
	}

	live := filepath.Join(liveDir, "u1.json")
	if err := os.WriteFile(live, []byte(`{"v":1}`), 0600); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := b.Rotate(live); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}

	snaps, err := b.Snapshots("u1")
	if err != nil {
		t.Fatalf("Snapshots failed: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("snapshot count = %d, want 1", len(snaps))
	}
	if !strings.HasPrefix(snaps[0], "u1_") || !strings.HasSuffix(snaps[0], ".json") {
		t.Errorf("snapshot name %q does not follow <stem>_<timestamp>.json", snaps[0])
	}

	data, err := os.ReadFile(filepath.Join(b.dir, snaps[0]))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != `{"v":1}` {
		t.Errorf("snapshot content = %q, want the live file content", data)
	}
}

func TestBackupSet_RetentionPrunesOldest(t *testing.T) {
	liveDir := t.TempDir()
	b, err := NewBackupSet(t.TempDir(), 3, testLogger())
	if err != nil {
		t.Fatalf("NewBackupSet failed: %v", err)
	}

	live := filepath.Join(liveDir, "u1.json")
	for i := 0; i < 7; i++ {
		if err := os.WriteFile(live, []byte{byte('0' + i)}, 0600); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if err := b.Rotate(live); err != nil {
			t.Fatalf("Rotate %d failed: %v", i, err)
		}
	}

	snaps, err := b.Snapshots("u1")
	if err != nil {
		t.Fatalf("Snapshots failed: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("snapshot count = %d, want 3", len(snaps))
	}

	// The three survivors must be the newest rotations, contents "4" "5" "6".
	for i, want := range []string{"4", "5", "6"} {
		data, err := os.ReadFile(filepath.Join(b.dir, snaps[i]))
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if string(data) != want {
			t.Errorf("snapshot %d content = %q, want %q", i, data, want)
		}
	}
}

func TestBackupSet_StemsDoNotInterfere(t *testing.T) {
	liveDir := t.TempDir()
	b, err := NewBackupSet(t.TempDir(), 2, testLogger())
	if err != nil {
		t.Fatalf("NewBackupSet failed: %v", err)
	}

	for _, user := range []string{"alice", "bob"} {
		live := filepath.Join(liveDir, user+".json")
		for i := 0; i < 4; i++ {
			if err := os.WriteFile(live, []byte(user), 0600); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			if err := b.Rotate(live); err != nil {
				t.Fatalf("Rotate failed: %v", err)
			}
		}
	}

	for _, user := range []string{"alice", "bob"} {
		snaps, err := b.Snapshots(user)
		if err != nil {
			t.Fatalf("Snapshots(%s) failed: %v", user, err)
		}
		if len(snaps) != 2 {
			t.Errorf("user %s snapshot count = %d, want 2", user, len(snaps))
		}
	}
}

func TestBackupSet_PrefixStemDoesNotCaptureLongerStem(t *testing.T) {
	liveDir := t.TempDir()
	b, err := NewBackupSet(t.TempDir(), 2, testLogger())
	if err != nil {
		t.Fatalf("NewBackupSet failed: %v", err)
	}

	// "alice" is a prefix of "alice_b"; pruning for one must never touch
	// the other's snapshots.
	long := filepath.Join(liveDir, "alice_b.json")
	for i := 0; i < 2; i++ {
		if err := os.WriteFile(long, []byte("long"), 0600); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if err := b.Rotate(long); err != nil {
			t.Fatalf("Rotate failed: %v", err)
		}
	}

	short := filepath.Join(liveDir, "alice.json")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(short, []byte("short"), 0600); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if err := b.Rotate(short); err != nil {
			t.Fatalf("Rotate failed: %v", err)
		}
	}

	longSnaps, err := b.Snapshots("alice_b")
	if err != nil {
		t.Fatalf("Snapshots(alice_b) failed: %v", err)
	}
	if len(longSnaps) != 2 {
		t.Errorf("alice_b snapshot count = %d, want 2", len(longSnaps))
	}
	shortSnaps, err := b.Snapshots("alice")
	if err != nil {
		t.Fatalf("Snapshots(alice) failed: %v", err)
	}
	if len(shortSnaps) != 2 {
		t.Errorf("alice snapshot count = %d, want 2", len(shortSnaps))
	}
	for _, name := range shortSnaps {
		if strings.HasPrefix(name, "alice_b_") {
			t.Errorf("Snapshots(alice) returned %q, which belongs to alice_b", name)
		}
	}
}

func TestContextStore_SaveRotatesBackups(t *testing.T) {
	dir := t.TempDir()
	s, err := NewContextStore(dir, 50, 10, testLogger())
	if err != nil {
		t.Fatalf("NewContextStore failed: %v", err)
	}

	for i := 0; i < 15; i++ {
		if err := s.AppendTurn("u1", Turn{Role: "user", Text: "x"}); err != nil {
			t.Fatalf("AppendTurn %d failed: %v", i, err)
		}
	}

	snaps, err := s.Backups().Snapshots("u1")
	if err != nil {
		t.Fatalf("Snapshots failed: %v", err)
	}
	// 15 saves produce 14 rotations (the first save has nothing to rotate),
	// pruned down to the retention count.
	if len(snaps) != 10 {
		t.Errorf("snapshot count = %d, want 10", len(snaps))
	}
}
