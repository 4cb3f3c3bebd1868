package question

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTextRequired  = errors.New("question text required")
	ErrTooFewChoices = errors.New("question must have at least 2 choices")
	ErrInvalidDates  = errors.New("end_date must not precede pub_date")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, q *Question, choices []Choice) (int64, error) {
	if q.Text == "" {
		return 0, ErrTextRequired
	}
	if len(choices) < 2 {
		return 0, ErrTooFewChoices
	}
	if q.PubDate.IsZero() {
		q.PubDate = time.Now()
	}
	if q.EndDate != nil && q.EndDate.Before(q.PubDate) {
		return 0, ErrInvalidDates
	}
	return s.repo.Create(ctx, q, choices)
}

func (s *Service) Get(ctx context.Context, id int64) (*Question, []Choice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPublished(ctx context.Context, now time.Time) ([]Question, error) {
	return s.repo.ListPublished(ctx, now)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
