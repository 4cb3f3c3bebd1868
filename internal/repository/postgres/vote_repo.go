package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"pollboard/internal/domain/vote"
)

type VoteRepo struct {
	db *sql.DB
}

func NewVoteRepo(db *sql.DB) *VoteRepo {
	return &VoteRepo{db: db}
}

func (r *VoteRepo) FindByUserAndQuestion(ctx context.Context, userID, questionID int64) (*vote.Vote, error) {
	v := &vote.Vote{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, question_id, choice_id, user_id, created_at
        FROM votes
        WHERE user_id = $1 AND question_id = $2
    `, userID, questionID).Scan(&v.ID, &v.QuestionID, &v.ChoiceID, &v.UserID, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, vote.ErrNoVote
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *VoteRepo) Create(ctx context.Context, v *vote.Vote) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
        INSERT INTO votes (question_id, choice_id, user_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `, v.QuestionID, v.ChoiceID, v.UserID).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return vote.ErrDuplicateVote
		}
		return err
	}

	// Relative adjustment, evaluated in the store; never read-modify-write.
	if _, err := tx.ExecContext(ctx, `
        UPDATE choices SET vote_count = vote_count + 1 WHERE id = $1
    `, v.ChoiceID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *VoteRepo) ChangeChoice(ctx context.Context, voteID, toChoiceID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var fromChoiceID int64
	err = tx.QueryRowContext(ctx, `
        SELECT choice_id FROM votes WHERE id = $1 FOR UPDATE
    `, voteID).Scan(&fromChoiceID)
	if errors.Is(err, sql.ErrNoRows) {
		return vote.ErrNoVote
	}
	if err != nil {
		return err
	}

	if fromChoiceID == toChoiceID {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
        UPDATE choices SET vote_count = vote_count - 1 WHERE id = $1
    `, fromChoiceID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
        UPDATE votes SET choice_id = $1 WHERE id = $2
    `, toChoiceID, voteID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
        UPDATE choices SET vote_count = vote_count + 1 WHERE id = $1
    `, toChoiceID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *VoteRepo) CountsByQuestion(ctx context.Context, questionID int64) (map[int64]int64, int64, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, vote_count
        FROM choices
        WHERE question_id = $1
    `, questionID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	res := make(map[int64]int64)
	var total int64
	for rows.Next() {
		var choiceID int64
		var c int64
		if err := rows.Scan(&choiceID, &c); err != nil {
			return nil, 0, err
		}
		res[choiceID] = c
		total += c
	}

	return res, total, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
