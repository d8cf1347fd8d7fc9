package core

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestDefaultTasks(t *testing.T) {
	tasks := DefaultTasks()

	if len(tasks) != 8 {
		t.Fatalf("len(DefaultTasks()) = %d, want 8", len(tasks))
	}
	seen := make(map[string]bool)
	for _, task := range tasks {
		if seen[task.ID] {
			t.Errorf("duplicate id %s", task.ID)
		}
		seen[task.ID] = true
		if task.Coins <= 0 || !task.Category.Valid() || task.Completed || task.UserCreated {
			t.Errorf("bad built-in task %+v", task)
		}
	}

	// each call is an independent copy
	tasks[0].Completed = true
	if DefaultTasks()[0].Completed {
		t.Error("DefaultTasks() shares state between calls")
	}
}

// Requirement: Complete pays out once even under concurrent calls.
func TestBoard_CompleteOnce(t *testing.T) {
	b := NewBoard("b")

	var (
		wg   sync.WaitGroup
		wins int32
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := b.Complete("4"); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("Complete() succeeded %d times, want 1", wins)
	}
	if b.LocalCoins() != 100 {
		t.Errorf("LocalCoins() = %d, want 100", b.LocalCoins())
	}
}

func TestBoard_RevertAndDebit(t *testing.T) {
	b := NewBoard("b")
	if _, ok := b.Complete("6"); !ok {
		t.Fatal("Complete() failed")
	}

	b.Revert("6")
	if b.LocalCoins() != 0 {
		t.Errorf("LocalCoins() after Revert() = %d, want 0", b.LocalCoins())
	}
	if task, ok := b.Complete("6"); !ok || task.Coins != 75 {
		t.Error("reverted task should be completable again")
	}

	b.Debit(50)
	if b.LocalCoins() != 25 {
		t.Errorf("LocalCoins() after Debit(50) = %d, want 25", b.LocalCoins())
	}

	// Requirement: a debit larger than the board total floors at zero.
	b.Debit(100)
	if b.LocalCoins() != 0 {
		t.Errorf("LocalCoins() after Debit(100) = %d, want 0", b.LocalCoins())
	}
}

func TestBoard_RemoveUserTask(t *testing.T) {
	b := NewBoard("b")
	b.Prepend(&Task{ID: "mine", Title: "Plant basil", Category: CategoryPlanting, Coins: CustomTaskReward, UserCreated: true})

	if got := b.Snapshot("")[0].ID; got != "mine" {
		t.Errorf("first task = %s, want mine", got)
	}
	if b.RemoveUserTask("1") {
		t.Error("built-in task removed")
	}
	if !b.RemoveUserTask("mine") {
		t.Error("user task not removed")
	}
	if n := len(b.Snapshot("")); n != 8 {
		t.Errorf("board size = %d, want 8", n)
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("%s should be valid", c)
		}
	}
	for _, c := range []Category{"", "all", "Recycling", "gardening"} {
		if c.Valid() {
			t.Errorf("%q should be invalid", c)
		}
	}
}
