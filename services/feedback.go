package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/proplanet/ecoledger/core"
)

type FeedbackService struct {
	db     core.FeedbackStorage
	logger *slog.Logger
}

var _ core.FeedbackHandler = (*FeedbackService)(nil)

func NewFeedbackService(db core.FeedbackStorage, opts Options) *FeedbackService {
	return &FeedbackService{db: db, logger: opts.logger()}
}

// Submit stores a rating with a message. Anonymous submissions are
// accepted; signed-in ones carry the user id.
func (s *FeedbackService) Submit(ctx context.Context, sess *core.SessionData, input core.FeedbackInput) (*core.Feedback, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, core.ErrRatingRequired
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, core.ErrFeedbackRequired
	}
	kind := input.Type
	if kind == "" {
		kind = core.FeedbackSuggestion
	}
	if !kind.Valid() {
		return nil, core.ErrInvalidFeedbackType
	}

	f := &core.Feedback{
		ID:      uuid.NewString(),
		Rating:  input.Rating,
		Message: message,
		Type:    kind,
	}
	if id := sess.UserID(); id != "" {
		f.UserID = &id
	}

	if err := s.db.CreateFeedback(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}

	s.logger.Info("feedback received", "feedback_id", f.ID, "type", f.Type, "rating", f.Rating)
	return f, nil
}
