package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/proplanet/ecoledger/core"
)

const (
	DefaultBoardTTL     = 24 * time.Hour
	DefaultBoardMaxSize = 10000
)

var _ core.BoardProvider = (*BoardRegistry)(nil)

// BoardRegistry keeps one task board per client. Idle boards are dropped
// lazily when room is needed; nothing runs in the background.
type BoardRegistry struct {
	mu      sync.Mutex
	boards  map[string]*core.Board
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

func NewBoardRegistry(c core.BoardConfig) *BoardRegistry {
	if c.TTL <= 0 {
		c.TTL = DefaultBoardTTL
	}
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultBoardMaxSize
	}
	return &BoardRegistry{
		boards:  make(map[string]*core.Board),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
		now:     time.Now,
	}
}

// Board returns the board registered under id, creating a fresh one when
// id is unknown, expired or not a valid board id. Callers read the
// resulting board's ID to learn which id to hand back to the client.
func (r *BoardRegistry) Board(id string) *core.Board {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	if b, ok := r.boards[id]; ok {
		if now.Sub(b.LastSeen()) <= r.ttl {
			b.Touch(now)
			return b
		}
		delete(r.boards, id)
	}

	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	if len(r.boards) >= r.maxSize {
		r.evictLocked(now)
	}

	b := core.NewBoard(id)
	b.Touch(now)
	r.boards[id] = b
	return b
}

func (r *BoardRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}

// evictLocked drops expired boards, then the least recently used one if
// the registry is still full.
func (r *BoardRegistry) evictLocked(now time.Time) {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, b := range r.boards {
		seen := b.LastSeen()
		if now.Sub(seen) > r.ttl {
			delete(r.boards, id)
			continue
		}
		if oldestID == "" || seen.Before(oldest) {
			oldestID, oldest = id, seen
		}
	}
	if len(r.boards) >= r.maxSize && oldestID != "" {
		delete(r.boards, oldestID)
	}
}
