package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pollboard/internal/domain/question"
)

type QuestionRepo struct {
	db *sql.DB
}

func NewQuestionRepo(db *sql.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

func (r *QuestionRepo) Create(ctx context.Context, q *question.Question, choices []question.Choice) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	queryQuestion := `
        INSERT INTO questions (text, pub_date, end_date)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `

	err = tx.QueryRowContext(ctx, queryQuestion, q.Text, q.PubDate, q.EndDate).
		Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return 0, err
	}

	queryChoice := `
        INSERT INTO choices (question_id, text)
        VALUES ($1, $2)
        RETURNING id
    `

	for i := range choices {
		choices[i].QuestionID = q.ID
		if err := tx.QueryRowContext(ctx, queryChoice, choices[i].QuestionID, choices[i].Text).
			Scan(&choices[i].ID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return q.ID, nil
}

func (r *QuestionRepo) GetByID(ctx context.Context, id int64) (*question.Question, []question.Choice, error) {
	q := &question.Question{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, text, pub_date, end_date, created_at
        FROM questions WHERE id = $1
    `, id).Scan(&q.ID, &q.Text, &q.PubDate, &q.EndDate, &q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, question.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT id, question_id, text, vote_count
        FROM choices WHERE question_id = $1 ORDER BY id
    `, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var choices []question.Choice
	for rows.Next() {
		var c question.Choice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.Text, &c.VoteCount); err != nil {
			return nil, nil, err
		}
		choices = append(choices, c)
	}

	return q, choices, rows.Err()
}

func (r *QuestionRepo) ListPublished(ctx context.Context, now time.Time) ([]question.Question, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, text, pub_date, end_date, created_at
        FROM questions
        WHERE pub_date <= $1
        ORDER BY pub_date DESC
    `, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []question.Question
	for rows.Next() {
		var q question.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.PubDate, &q.EndDate, &q.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, q)
	}
	return res, rows.Err()
}

func (r *QuestionRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return question.ErrNotFound
	}
	return nil
}
