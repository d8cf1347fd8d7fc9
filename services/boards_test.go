package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/proplanet/ecoledger/core"
)

// Requirement: a client keeps its board across requests; unknown or
// malformed ids get a fresh one.
func TestBoardRegistry_Board(t *testing.T) {
	r := NewBoardRegistry(core.BoardConfig{})

	first := r.Board("")
	if _, err := uuid.Parse(first.ID); err != nil {
		t.Fatalf("new board id %q is not a uuid", first.ID)
	}
	if again := r.Board(first.ID); again != first {
		t.Error("same id should return the same board")
	}
	if other := r.Board("../../etc/passwd"); other == first || other.ID == "../../etc/passwd" {
		t.Error("malformed id should get a fresh board with a generated id")
	}

	known := uuid.NewString()
	if b := r.Board(known); b.ID != known {
		t.Errorf("board id = %s, want client id %s", b.ID, known)
	}
	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
}

// Requirement: idle boards expire and the registry never grows past its
// size bound.
func TestBoardRegistry_Eviction(t *testing.T) {
	now := time.Now()
	r := NewBoardRegistry(core.BoardConfig{TTL: time.Hour, MaxSize: 2})
	r.now = func() time.Time { return now }

	a := r.Board("")
	if _, ok := a.Complete("1"); !ok {
		t.Fatal("Complete() on fresh board failed")
	}

	now = now.Add(time.Minute)
	b := r.Board("")

	// expired board comes back empty
	now = now.Add(2 * time.Hour)
	if fresh := r.Board(a.ID); fresh == a || fresh.LocalCoins() != 0 {
		t.Error("expired board should be replaced")
	}

	// full: idle boards make room for the new one
	now = now.Add(time.Minute)
	r.Board("")
	if r.Len() > 2 {
		t.Errorf("Len() = %d, want <= 2", r.Len())
	}
	if again := r.Board(b.ID); again == b {
		t.Error("idle board should have been evicted")
	}
}
