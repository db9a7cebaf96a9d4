package snapshot

import (
	"testing"

	"fondo/internal/core"
)

func TestStoreZeroValue(t *testing.T) {
	s := NewStore()
	snap := s.Current()
	if snap.Version != 0 || len(snap.Transactions) != 0 {
		t.Fatalf("fresh store should return the zero snapshot, got %+v", snap)
	}
}

func TestStoreReplaceBumpsVersion(t *testing.T) {
	s := NewStore()

	v1 := s.Replace(Snapshot{Transactions: []core.Transaction{{ID: "t1"}}})
	if v1 != 1 {
		t.Fatalf("first version = %d, want 1", v1)
	}
	v2 := s.Replace(Snapshot{})
	if v2 != 2 {
		t.Fatalf("second version = %d, want 2", v2)
	}
	if got := s.Current().Version; got != 2 {
		t.Fatalf("current version = %d, want 2", got)
	}
	if s.Version() != 2 {
		t.Fatalf("Version() = %d, want 2", s.Version())
	}
}

func TestStoreChangeCoalescing(t *testing.T) {
	s := NewStore()

	s.Replace(Snapshot{})
	s.Replace(Snapshot{})
	s.Replace(Snapshot{})

	select {
	case <-s.Changed():
	default:
		t.Fatalf("expected a pending change notification")
	}
	// The burst collapsed into exactly one signal.
	select {
	case <-s.Changed():
		t.Fatalf("expected notifications to coalesce")
	default:
	}
}

func TestStoreReplaceStampsLoadedAt(t *testing.T) {
	s := NewStore()
	s.Replace(Snapshot{})
	if s.Current().LoadedAt.IsZero() {
		t.Fatalf("LoadedAt should be stamped on replace")
	}
}
