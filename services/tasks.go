package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/proplanet/ecoledger/core"
)

// BalanceAdjuster credits or debits the signed-in user's stored balance.
type BalanceAdjuster interface {
	AdjustBalance(ctx context.Context, sess *core.SessionData, delta int64) error
}

var _ BalanceAdjuster = (*AccountService)(nil)

// TaskLedger applies task operations to a client's board and forwards
// earned rewards to the account balance.
type TaskLedger struct {
	accounts BalanceAdjuster
	filter   core.EnvironmentalFilter
	logger   *slog.Logger
	recorder core.Recorder
}

// Ensure TaskLedger implements TaskHandler
var _ core.TaskHandler = (*TaskLedger)(nil)

func NewTaskLedger(accounts BalanceAdjuster, filter core.EnvironmentalFilter, opts Options) *TaskLedger {
	if filter == nil {
		filter = core.NewKeywordFilter()
	}
	return &TaskLedger{
		accounts: accounts,
		filter:   filter,
		logger:   opts.logger(),
		recorder: opts.recorder(),
	}
}

// Tasks lists the board, optionally narrowed to one category. "all" and ""
// disable the filter.
func (l *TaskLedger) Tasks(board *core.Board, category core.Category) []core.Task {
	if category == "all" {
		category = ""
	}
	return board.Snapshot(category)
}

// CompleteTask marks taskID completed and credits its reward once. Unknown
// or already completed tasks are a no-op returning 0.
func (l *TaskLedger) CompleteTask(ctx context.Context, board *core.Board, sess *core.SessionData, taskID string) (int64, error) {
	// Step 1: Flip the task under the board lock
	task, ok := board.Complete(taskID)
	if !ok {
		return 0, nil
	}

	// Step 2: Credit the account when signed in
	if err := l.accounts.AdjustBalance(ctx, sess, task.Coins); err != nil {
		board.Revert(taskID)
		return 0, fmt.Errorf("failed to credit task reward: %w", err)
	}

	l.recorder.TaskCompleted(task.Category, task.Coins)
	l.logger.Info("task completed", "board", board.ID, "task_id", taskID, "coins", task.Coins, "user_id", sess.UserID())

	return task.Coins, nil
}

// AddTask validates and prepends a user-authored task worth
// core.CustomTaskReward coins.
func (l *TaskLedger) AddTask(board *core.Board, title string, category core.Category, impact string) (*core.Task, error) {
	title = strings.TrimSpace(title)
	impact = strings.TrimSpace(impact)

	if title == "" {
		return nil, core.ErrTitleRequired
	}
	if !category.Valid() {
		return nil, core.ErrInvalidCategory
	}
	if !l.filter.IsEnvironmental(title, impact) {
		return nil, core.ErrNotEnvironmental
	}
	if impact == "" {
		impact = core.DefaultCustomImpact
	}

	task := &core.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Category:    category,
		Coins:       core.CustomTaskReward,
		Impact:      impact,
		UserCreated: true,
	}
	board.Prepend(task)

	out := *task
	return &out, nil
}

// DeleteTask removes a user-authored task. Built-in and unknown ids are
// ignored. Coins already earned from the task stay credited.
func (l *TaskLedger) DeleteTask(board *core.Board, taskID string) bool {
	return board.RemoveUserTask(taskID)
}
