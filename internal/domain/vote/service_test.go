package vote

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pollboard/internal/domain/question"
)

type memoryStore struct {
	mu        sync.Mutex
	questions map[int64]*question.Question
	choices   map[int64][]question.Choice
	votes     map[int64]*Vote
	nextVote  int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		questions: make(map[int64]*question.Question),
		choices:   make(map[int64][]question.Choice),
		votes:     make(map[int64]*Vote),
		nextVote:  1,
	}
}

func (s *memoryStore) addQuestion(q *question.Question, choices ...question.Choice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[q.ID] = q
	s.choices[q.ID] = choices
}

func (s *memoryStore) tally(questionID, choiceID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.choices[questionID] {
		if c.ID == choiceID {
			return c.VoteCount
		}
	}
	return -1
}

func (s *memoryStore) adjustTally(choiceID, delta int64) {
	for qid, choices := range s.choices {
		for i := range choices {
			if choices[i].ID == choiceID {
				s.choices[qid][i].VoteCount += delta
				return
			}
		}
	}
}

// question.Repository

func (s *memoryStore) Create(ctx context.Context, q *question.Question, choices []question.Choice) (int64, error) {
	panic("not used")
}

func (s *memoryStore) GetByID(ctx context.Context, id int64) (*question.Question, []question.Choice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, nil, question.ErrNotFound
	}
	copyQ := *q
	copied := make([]question.Choice, len(s.choices[id]))
	copy(copied, s.choices[id])
	return &copyQ, copied, nil
}

func (s *memoryStore) ListPublished(ctx context.Context, now time.Time) ([]question.Question, error) {
	return nil, nil
}

func (s *memoryStore) Delete(ctx context.Context, id int64) error {
	return nil
}

// Repository

type voteStore struct {
	*memoryStore
}

func (s voteStore) FindByUserAndQuestion(ctx context.Context, userID, questionID int64) (*Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.votes {
		if v.UserID == userID && v.QuestionID == questionID {
			copyV := *v
			return &copyV, nil
		}
	}
	return nil, ErrNoVote
}

func (s voteStore) Create(ctx context.Context, v *Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.votes {
		if existing.UserID == v.UserID && existing.QuestionID == v.QuestionID {
			return ErrDuplicateVote
		}
	}
	v.ID = s.nextVote
	s.nextVote++
	v.CreatedAt = time.Now()
	copyV := *v
	s.votes[v.ID] = &copyV
	s.adjustTally(v.ChoiceID, 1)
	return nil
}

func (s voteStore) ChangeChoice(ctx context.Context, voteID, toChoiceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.votes[voteID]
	if !ok {
		return ErrNoVote
	}
	if v.ChoiceID == toChoiceID {
		return nil
	}
	s.adjustTally(v.ChoiceID, -1)
	v.ChoiceID = toChoiceID
	s.adjustTally(toChoiceID, 1)
	return nil
}

func (s voteStore) CountsByQuestion(ctx context.Context, questionID int64) (map[int64]int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make(map[int64]int64)
	var total int64
	for _, c := range s.choices[questionID] {
		res[c.ID] = c.VoteCount
		total += c.VoteCount
	}
	return res, total, nil
}

func openQuestion(now time.Time) *question.Question {
	end := now.Add(5 * 24 * time.Hour)
	return &question.Question{ID: 1, Text: "Q", PubDate: now.Add(-24 * time.Hour), EndDate: &end}
}

func setup(now time.Time) (*Service, *memoryStore) {
	store := newMemoryStore()
	store.addQuestion(openQuestion(now),
		question.Choice{ID: 10, QuestionID: 1, Text: "A"},
		question.Choice{ID: 11, QuestionID: 1, Text: "B"},
	)
	return NewService(voteStore{store}, store), store
}

func TestCastCreatesFirstVote(t *testing.T) {
	now := time.Now()
	svc, store := setup(now)
	ctx := context.Background()

	outcome, err := svc.Cast(ctx, 1, 10, 42, now)
	if err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	if outcome != OutcomeCreated {
		t.Fatalf("expected created outcome, got %s", outcome)
	}
	if got := store.tally(1, 10); got != 1 {
		t.Fatalf("expected tally 1, got %d", got)
	}
}

func TestCastIsIdempotentForSameChoice(t *testing.T) {
	now := time.Now()
	svc, store := setup(now)
	ctx := context.Background()

	if _, err := svc.Cast(ctx, 1, 10, 42, now); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	outcome, err := svc.Cast(ctx, 1, 10, 42, now)
	if err != nil {
		t.Fatalf("repeat vote failed: %v", err)
	}
	if outcome != OutcomeUnchanged {
		t.Fatalf("expected unchanged outcome, got %s", outcome)
	}
	if got := store.tally(1, 10); got != 1 {
		t.Fatalf("repeat vote must not change the tally, got %d", got)
	}
}

func TestCastMovesVoteBetweenChoices(t *testing.T) {
	now := time.Now()
	svc, store := setup(now)
	ctx := context.Background()

	if _, err := svc.Cast(ctx, 1, 10, 42, now); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	outcome, err := svc.Cast(ctx, 1, 11, 42, now)
	if err != nil {
		t.Fatalf("change vote failed: %v", err)
	}
	if outcome != OutcomeChanged {
		t.Fatalf("expected changed outcome, got %s", outcome)
	}
	if got := store.tally(1, 10); got != 0 {
		t.Fatalf("old choice tally must drop to 0, got %d", got)
	}
	if got := store.tally(1, 11); got != 1 {
		t.Fatalf("new choice tally must rise to 1, got %d", got)
	}

	_, total, err := voteStore{store}.CountsByQuestion(ctx, 1)
	if err != nil {
		t.Fatalf("counts error: %v", err)
	}
	if total != 1 {
		t.Fatalf("total tally must stay 1 across a change, got %d", total)
	}
}

func TestCastRejectsClosedWindow(t *testing.T) {
	now := time.Now()
	store := newMemoryStore()
	svc := NewService(voteStore{store}, store)
	ctx := context.Background()

	future := &question.Question{ID: 1, Text: "future", PubDate: now.Add(5 * 24 * time.Hour)}
	store.addQuestion(future, question.Choice{ID: 10, QuestionID: 1, Text: "A"}, question.Choice{ID: 11, QuestionID: 1, Text: "B"})

	if _, err := svc.Cast(ctx, 1, 10, 42, now); !errors.Is(err, ErrVotingClosed) {
		t.Fatalf("expected voting closed before pub_date, got %v", err)
	}
	if got := store.tally(1, 10); got != 0 {
		t.Fatalf("rejected vote must not mutate the tally, got %d", got)
	}

	end := now.Add(-time.Hour)
	expired := &question.Question{ID: 2, Text: "expired", PubDate: now.Add(-48 * time.Hour), EndDate: &end}
	store.addQuestion(expired, question.Choice{ID: 20, QuestionID: 2, Text: "A"}, question.Choice{ID: 21, QuestionID: 2, Text: "B"})

	if _, err := svc.Cast(ctx, 2, 20, 42, now); !errors.Is(err, ErrVotingClosed) {
		t.Fatalf("expected voting closed after end_date, got %v", err)
	}
}

func TestCastAllowedAtExactEndDate(t *testing.T) {
	now := time.Now()
	store := newMemoryStore()
	svc := NewService(voteStore{store}, store)
	ctx := context.Background()

	end := now
	q := &question.Question{ID: 1, Text: "ending now", PubDate: now.Add(-24 * time.Hour), EndDate: &end}
	store.addQuestion(q, question.Choice{ID: 10, QuestionID: 1, Text: "A"}, question.Choice{ID: 11, QuestionID: 1, Text: "B"})

	if _, err := svc.Cast(ctx, 1, 10, 42, now); err != nil {
		t.Fatalf("vote at exactly end_date must be accepted, got %v", err)
	}
}

func TestCastRejectsForeignChoice(t *testing.T) {
	now := time.Now()
	svc, store := setup(now)
	ctx := context.Background()

	if _, err := svc.Cast(ctx, 1, 999, 42, now); !errors.Is(err, ErrChoiceNotInQuestion) {
		t.Fatalf("expected choice ownership error, got %v", err)
	}
	if got := store.tally(1, 10); got != 0 {
		t.Fatalf("rejected vote must not mutate the tally, got %d", got)
	}
}

func TestCastUnknownQuestion(t *testing.T) {
	now := time.Now()
	store := newMemoryStore()
	svc := NewService(voteStore{store}, store)

	if _, err := svc.Cast(context.Background(), 404, 1, 42, now); !errors.Is(err, question.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResults(t *testing.T) {
	now := time.Now()
	svc, _ := setup(now)
	ctx := context.Background()

	if _, err := svc.Cast(ctx, 1, 10, 1, now); err != nil {
		t.Fatalf("vote 1: %v", err)
	}
	if _, err := svc.Cast(ctx, 1, 10, 2, now); err != nil {
		t.Fatalf("vote 2: %v", err)
	}
	if _, err := svc.Cast(ctx, 1, 11, 3, now); err != nil {
		t.Fatalf("vote 3: %v", err)
	}

	q, results, total, err := svc.Results(ctx, 1, now)
	if err != nil {
		t.Fatalf("results error: %v", err)
	}
	if q.ID != 1 || total != 3 {
		t.Fatalf("unexpected question %d total %d", q.ID, total)
	}
	if len(results) != 2 {
		t.Fatalf("expected results for both choices, got %d", len(results))
	}
	for _, res := range results {
		switch res.ChoiceID {
		case 10:
			if res.Votes != 2 || res.Percentage < 66 || res.Percentage > 67 {
				t.Fatalf("unexpected result for choice 10: %+v", res)
			}
		case 11:
			if res.Votes != 1 {
				t.Fatalf("unexpected result for choice 11: %+v", res)
			}
		default:
			t.Fatalf("unexpected choice %d in results", res.ChoiceID)
		}
	}
}

func TestResultsHiddenBeforePublication(t *testing.T) {
	now := time.Now()
	store := newMemoryStore()
	svc := NewService(voteStore{store}, store)

	future := &question.Question{ID: 1, Text: "future", PubDate: now.Add(5 * 24 * time.Hour)}
	store.addQuestion(future, question.Choice{ID: 10, QuestionID: 1, Text: "A"}, question.Choice{ID: 11, QuestionID: 1, Text: "B"})

	if _, _, _, err := svc.Results(context.Background(), 1, now); !errors.Is(err, question.ErrNotFound) {
		t.Fatalf("unpublished results must look like not found, got %v", err)
	}
}

func TestPreviousChoice(t *testing.T) {
	now := time.Now()
	svc, _ := setup(now)
	ctx := context.Background()

	prev, err := svc.PreviousChoice(ctx, 42, 1)
	if err != nil {
		t.Fatalf("previous choice error: %v", err)
	}
	if prev != 0 {
		t.Fatalf("expected no previous choice, got %d", prev)
	}

	if _, err := svc.Cast(ctx, 1, 11, 42, now); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	prev, err = svc.PreviousChoice(ctx, 42, 1)
	if err != nil {
		t.Fatalf("previous choice error: %v", err)
	}
	if prev != 11 {
		t.Fatalf("expected previous choice 11, got %d", prev)
	}
}
