package core

import (
	"sync"
	"time"
)

type Category string

const (
	CategoryRecycling Category = "recycling"
	CategoryEnergy    Category = "energy"
	CategoryWater     Category = "water"
	CategoryCommunity Category = "community"
	CategoryEducation Category = "education"
	CategoryPlanting  Category = "planting"
)

// Categories lists every valid task category in display order.
var Categories = []Category{
	CategoryRecycling,
	CategoryEnergy,
	CategoryWater,
	CategoryCommunity,
	CategoryEducation,
	CategoryPlanting,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const (
	// CustomTaskReward is the fixed payout for user-authored tasks.
	CustomTaskReward int64 = 50

	DefaultCustomImpact = "Personal contribution to a greener planet"
)

type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Category    Category `json:"category"`
	Coins       int64    `json:"coins"`
	Impact      string   `json:"impact"`
	Completed   bool     `json:"completed"`
	UserCreated bool     `json:"isUserCreated"`
}

// DefaultTasks returns a fresh copy of the built-in task catalog.
func DefaultTasks() []*Task {
	return []*Task{
		{ID: "1", Title: "Recycle 1kg of plastic", Category: CategoryRecycling, Coins: 50, Impact: "Prevents plastic pollution and reduces landfill waste"},
		{ID: "2", Title: "Switch to LED bulbs", Category: CategoryEnergy, Coins: 30, Impact: "Reduces energy consumption and lowers carbon emissions"},
		{ID: "3", Title: "Install water-saving fixtures", Category: CategoryWater, Coins: 40, Impact: "Conserves water, crucial for water security"},
		{ID: "4", Title: "Participate in cleanup drive", Category: CategoryCommunity, Coins: 100, Impact: "Improves local environments and builds community spirit"},
		{ID: "5", Title: "Complete eco-education module", Category: CategoryEducation, Coins: 25, Impact: "Spreads awareness and inspires others to act"},
		{ID: "6", Title: "Plant a tree", Category: CategoryPlanting, Coins: 75, Impact: "Absorbs CO2 and improves air quality"},
		{ID: "7", Title: "Use public transport for a week", Category: CategoryEnergy, Coins: 60, Impact: "Reduces carbon footprint from personal vehicles"},
		{ID: "8", Title: "Start composting at home", Category: CategoryRecycling, Coins: 80, Impact: "Reduces organic waste going to landfills"},
	}
}

// Board is one client's working set of tasks together with the running
// coin total earned on it. Boards are never persisted; only the effect of a
// completion on an authenticated balance survives.
type Board struct {
	ID         string
	mu         sync.Mutex
	tasks      []*Task
	localCoins int64
	lastSeen   time.Time
}

func NewBoard(id string) *Board {
	return &Board{
		ID:       id,
		tasks:    DefaultTasks(),
		lastSeen: time.Now(),
	}
}

// Complete flips the task to completed and returns a copy of it. It
// returns false when the task is unknown or already completed, which makes
// repeated calls for the same id safe.
func (b *Board) Complete(taskID string) (Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, t := range b.tasks {
		if t.ID != taskID {
			continue
		}
		if t.Completed {
			return Task{}, false
		}
		t.Completed = true
		b.localCoins += t.Coins
		return *t, true
	}
	return Task{}, false
}

// Revert undoes a Complete whose credit could not be stored.
func (b *Board) Revert(taskID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, t := range b.tasks {
		if t.ID == taskID && t.Completed {
			t.Completed = false
			b.localCoins -= t.Coins
			return
		}
	}
}

// Prepend inserts a task at the head of the board.
func (b *Board) Prepend(t *Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = append([]*Task{t}, b.tasks...)
}

// RemoveUserTask deletes a user-authored task. Built-in tasks are left alone.
func (b *Board) RemoveUserTask(taskID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, t := range b.tasks {
		if t.ID == taskID {
			if !t.UserCreated {
				return false
			}
			b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns copies of the tasks matching category. An empty
// category returns everything.
func (b *Board) Snapshot(category Category) []Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		if category != "" && t.Category != category {
			continue
		}
		out = append(out, *t)
	}
	return out
}

// LocalCoins is the running total earned on this board, authenticated or not.
func (b *Board) LocalCoins() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.localCoins
}

// Debit lowers the local running total after a redemption so the board
// display follows the account. The total never drops below zero.
func (b *Board) Debit(coins int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.localCoins = max(b.localCoins-coins, 0)
}

func (b *Board) Touch(now time.Time) {
	b.mu.Lock()
	b.lastSeen = now
	b.mu.Unlock()
}

func (b *Board) LastSeen() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSeen
}
