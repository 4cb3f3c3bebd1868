package question

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("question not found")

type Question struct {
	ID        int64      `json:"id"`
	Text      string     `json:"text"`
	PubDate   time.Time  `json:"pub_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type Choice struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
	VoteCount  int64  `json:"vote_count"`
}

type Repository interface {
	Create(ctx context.Context, q *Question, choices []Choice) (int64, error)
	GetByID(ctx context.Context, id int64) (*Question, []Choice, error)
	ListPublished(ctx context.Context, now time.Time) ([]Question, error)
	Delete(ctx context.Context, id int64) error
}
