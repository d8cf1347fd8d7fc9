package core

import "time"

type FeedbackType string

const (
	FeedbackSuggestion   FeedbackType = "suggestion"
	FeedbackBug          FeedbackType = "bug"
	FeedbackAppreciation FeedbackType = "appreciation"
)

func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackSuggestion, FeedbackBug, FeedbackAppreciation:
		return true
	}
	return false
}

type Feedback struct {
	ID        string       `json:"id"`
	UserID    *string      `json:"userId,omitempty"`
	Rating    int          `json:"rating"`
	Message   string       `json:"feedback"`
	Type      FeedbackType `json:"type"`
	CreatedAt time.Time    `json:"createdAt"`
}

type FeedbackInput struct {
	Rating  int          `json:"rating"`
	Message string       `json:"feedback"`
	Type    FeedbackType `json:"type"`
}
