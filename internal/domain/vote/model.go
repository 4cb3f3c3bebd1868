package vote

import (
	"context"
	"time"
)

type Vote struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"question_id"`
	ChoiceID   int64     `json:"choice_id"`
	UserID     int64     `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type Repository interface {
	// FindByUserAndQuestion returns ErrNoVote when the user has not voted
	// on the question.
	FindByUserAndQuestion(ctx context.Context, userID, questionID int64) (*Vote, error)
	// Create inserts the vote and increments the chosen choice's tally in
	// one transaction.
	Create(ctx context.Context, v *Vote) error
	// ChangeChoice repoints an existing vote, decrementing the old choice's
	// tally and incrementing the new one's in one transaction.
	ChangeChoice(ctx context.Context, voteID, toChoiceID int64) error
	CountsByQuestion(ctx context.Context, questionID int64) (map[int64]int64, int64, error)
}
