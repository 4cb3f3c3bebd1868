package vote

import (
	"context"
	"errors"
	"time"

	"pollboard/internal/domain/question"
)

var (
	ErrNoVote              = errors.New("no vote for this user and question")
	ErrVotingClosed        = errors.New("voting window is closed")
	ErrChoiceNotInQuestion = errors.New("choice does not belong to question")
	ErrDuplicateVote       = errors.New("user already has a vote for this question")
)

// Outcome tells what Cast did with the ballot.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeChanged   Outcome = "changed"
	OutcomeUnchanged Outcome = "unchanged"
)

type Service struct {
	repo      Repository
	questions question.Repository
}

func NewService(repo Repository, questions question.Repository) *Service {
	return &Service{repo: repo, questions: questions}
}

// Cast records the user's vote for a choice of the question. A first vote
// creates the row; a vote for a different choice moves the existing row and
// both tallies; re-voting the same choice is a no-op.
func (s *Service) Cast(ctx context.Context, questionID, choiceID, userID int64, now time.Time) (Outcome, error) {
	q, choices, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return "", err
	}

	if !question.CanVote(q, now) {
		return "", ErrVotingClosed
	}

	var selected *question.Choice
	for i := range choices {
		if choices[i].ID == choiceID {
			selected = &choices[i]
			break
		}
	}
	if selected == nil {
		return "", ErrChoiceNotInQuestion
	}

	existing, err := s.repo.FindByUserAndQuestion(ctx, userID, questionID)
	switch {
	case errors.Is(err, ErrNoVote):
		v := &Vote{
			QuestionID: questionID,
			ChoiceID:   choiceID,
			UserID:     userID,
		}
		if err := s.repo.Create(ctx, v); err != nil {
			return "", err
		}
		return OutcomeCreated, nil
	case err != nil:
		return "", err
	}

	if existing.ChoiceID == choiceID {
		return OutcomeUnchanged, nil
	}

	if err := s.repo.ChangeChoice(ctx, existing.ID, choiceID); err != nil {
		return "", err
	}
	return OutcomeChanged, nil
}

type Result struct {
	ChoiceID   int64   `json:"choice_id"`
	Text       string  `json:"text"`
	Votes      int64   `json:"votes"`
	Percentage float64 `json:"percentage"`
}

// Results returns per-choice tallies for a published question, including
// choices nobody picked yet.
func (s *Service) Results(ctx context.Context, questionID int64, now time.Time) (*question.Question, []Result, int64, error) {
	q, choices, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, nil, 0, err
	}
	if !question.IsPublished(q, now) {
		return nil, nil, 0, question.ErrNotFound
	}

	counts, total, err := s.repo.CountsByQuestion(ctx, questionID)
	if err != nil {
		return nil, nil, 0, err
	}

	results := make([]Result, 0, len(choices))
	for _, c := range choices {
		n := counts[c.ID]
		var p float64
		if total > 0 {
			p = float64(n) * 100.0 / float64(total)
		}
		results = append(results, Result{
			ChoiceID:   c.ID,
			Text:       c.Text,
			Votes:      n,
			Percentage: p,
		})
	}

	return q, results, total, nil
}

// PreviousChoice returns the choice id the user currently has a vote for,
// or 0 when the user has not voted on the question.
func (s *Service) PreviousChoice(ctx context.Context, userID, questionID int64) (int64, error) {
	v, err := s.repo.FindByUserAndQuestion(ctx, userID, questionID)
	if errors.Is(err, ErrNoVote) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v.ChoiceID, nil
}
